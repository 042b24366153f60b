package models

import (
	"log"

	"gorm.io/gorm"
)

// AutoMigrate создает таблицы каталога в БД
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Shop{},
		&CatalogCategory{},
		&CatalogItem{},
		&CatalogExclusion{},
		&CatalogSyncLog{},
	)
	if err != nil {
		log.Printf("❌ AutoMigrate для таблиц каталога failed: %v", err)
		return err
	}
	log.Println("✅ Таблицы каталога мигрированы")
	return nil
}
