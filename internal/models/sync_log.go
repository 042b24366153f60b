package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Статусы записи журнала синхронизации
const (
	SyncStatusStarted = "started"
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// CatalogSyncLog - одна запись журнала на каждую попытку синхронизации магазина
// Создается со статусом started при входе в fetch и обновляется в терминальном
// состоянии со счетчиками и длительностью
type CatalogSyncLog struct {
	ID                  string     `json:"id" gorm:"type:uuid;primaryKey"`
	ShopCode            string     `json:"shop_code" gorm:"type:varchar(50);not null;index"`
	SyncType            string     `json:"sync_type" gorm:"type:varchar(20);default:'full'"`
	Status              string     `json:"status" gorm:"type:varchar(20);not null;index"`
	ProductsSynced      int        `json:"products_synced" gorm:"default:0"`
	ProductsAdded       int        `json:"products_added" gorm:"default:0"`
	ProductsUpdated     int        `json:"products_updated" gorm:"default:0"`
	ProductsDeactivated int        `json:"products_deactivated" gorm:"default:0"`
	ErrorMessage        string     `json:"error_message" gorm:"type:text"`
	DurationMs          int64      `json:"duration_ms" gorm:"default:0"`
	StartedAt           time.Time  `json:"started_at" gorm:"index"`
	CompletedAt         *time.Time `json:"completed_at"`
}

// TableName указывает имя таблицы
func (CatalogSyncLog) TableName() string {
	return "catalog_sync_log"
}

// BeforeCreate генерирует UUID
func (l *CatalogSyncLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
