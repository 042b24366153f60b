package models

import (
	"time"
)

// Shop представляет один магазин (торговую точку)
// Каждый магазин синхронизируется с поставщиком независимо по своему shop_code
type Shop struct {
	Code      string    `json:"code" gorm:"type:varchar(50);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Address   string    `json:"address" gorm:"type:varchar(500)"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы
func (Shop) TableName() string {
	return "shops"
}
