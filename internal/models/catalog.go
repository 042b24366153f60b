package models

import (
	"time"
)

// CatalogCategory представляет категорию каталога, привязанную к магазину
// Составной первичный ключ (id, shop_code): один и тот же id категории
// может существовать в нескольких магазинах независимо
type CatalogCategory struct {
	ID       string  `json:"id" gorm:"type:varchar(100);primaryKey"`
	ShopCode string  `json:"shop_code" gorm:"type:varchar(50);primaryKey;index"`
	Name     string  `json:"name" gorm:"type:varchar(255);not null"`
	ParentID *string `json:"parent_id" gorm:"type:varchar(100);index"`
	// Уровень вложенности: 0 для корневых категорий
	Level int `json:"level" gorm:"default:0"`
	// Человекочитаемый путь от корня: "Жидкости > Солевые"
	// Вычисляется при синхронизации, от поставщика не приходит
	FullPath  string    `json:"full_path" gorm:"type:varchar(1000)"`
	Quanty    *float64  `json:"quanty" gorm:"column:quanty;type:decimal(12,3)"`
	IsActive  bool      `json:"is_active" gorm:"default:true;index"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	// Выставляется явно при каждой синхронизации: по этому полю работает
	// массовая деактивация строк, не тронутых текущим циклом
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName указывает имя таблицы
func (CatalogCategory) TableName() string {
	return "catalog_categories"
}

// CatalogItem представляет товар каталога, привязанный к магазину
// Закупочная цена поставщика сюда не попадает никогда
type CatalogItem struct {
	ID          string   `json:"id" gorm:"type:varchar(100);primaryKey"`
	ShopCode    string   `json:"shop_code" gorm:"type:varchar(50);primaryKey;index"`
	CategoryID  string   `json:"category_id" gorm:"type:varchar(100);index"`
	Name        string   `json:"name" gorm:"type:varchar(500);not null"`
	Quanty      *float64 `json:"quanty" gorm:"column:quanty;type:decimal(12,3)"`
	RetailPrice *float64 `json:"retail_price" gorm:"type:decimal(12,2)"`
	// Характеристики для поиска и фильтров: всегда содержит full_path,
	// опционально - корзины "вкус"/"цвет"/"вариант" из имен модификаций
	Characteristics JSONMap   `json:"characteristics" gorm:"type:jsonb"`
	Modifications   JSONArray `json:"modifications" gorm:"type:jsonb"`
	IsActive        bool      `json:"is_active" gorm:"default:true;index"`
	LastUpdated     time.Time `json:"last_updated" gorm:"column:last_updated"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы
func (CatalogItem) TableName() string {
	return "catalog_items"
}
