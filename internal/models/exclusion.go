package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Типы исключений каталога
const (
	ExclusionTypeProduct  = "product"
	ExclusionTypeCategory = "category"
)

// CatalogExclusion представляет ручное исключение категории или товара
// из публичного каталога. Удаляется только мягко (is_active=false),
// чтобы история исключений оставалась доступной для аудита
type CatalogExclusion struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey"`
	ExclusionType string    `json:"exclusion_type" gorm:"type:varchar(20);not null;index"`
	ItemID        string    `json:"item_id" gorm:"type:varchar(100);not null;index"`
	Reason        string    `json:"reason" gorm:"type:varchar(500)"`
	IsActive      bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы
func (CatalogExclusion) TableName() string {
	return "catalog_exclusions"
}

// BeforeCreate генерирует UUID
func (e *CatalogExclusion) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
