package services

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"mdastore/server/internal/models"
	"mdastore/server/internal/utils"
)

// CatalogService - read-path каталога для витрины и админки.
// Отдает только активные строки; закупочных цен в таблицах каталога
// нет вообще, поэтому утечь им отсюда неоткуда
type CatalogService struct {
	db        *gorm.DB
	redisUtil *utils.RedisClient
}

// NewCatalogService создает новый сервис чтения каталога
func NewCatalogService(db *gorm.DB, redisUtil *utils.RedisClient) *CatalogService {
	return &CatalogService{db: db, redisUtil: redisUtil}
}

// GetCategories возвращает активные категории магазина в порядке обхода
func (s *CatalogService) GetCategories(shopCode string) ([]models.CatalogCategory, error) {
	var cats []models.CatalogCategory
	err := s.db.
		Where("shop_code = ? AND is_active = ?", shopCode, true).
		Order("level, sort_order, name").
		Find(&cats).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки категорий магазина %s: %w", shopCode, err)
	}
	return cats, nil
}

// GetItems возвращает активные товары магазина, опционально по категории
func (s *CatalogService) GetItems(shopCode, categoryID string) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	query := s.db.Where("shop_code = ? AND is_active = ?", shopCode, true)
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if err := query.Order("name").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки товаров магазина %s: %w", shopCode, err)
	}
	return items, nil
}

// GetTree возвращает каноническое дерево каталога магазина.
// Сначала пробует кэш Redis, заполненный последней синхронизацией;
// на промахе собирает дерево из строк БД и кэширует результат
func (s *CatalogService) GetTree(shopCode string) ([]CanonicalCategory, error) {
	if s.redisUtil != nil {
		var cached []CanonicalCategory
		if err := s.redisUtil.GetJSON(catalogTreeCachePrefix+shopCode, &cached); err == nil {
			return cached, nil
		}
	}

	tree, err := s.buildTreeFromDB(shopCode)
	if err != nil {
		return nil, err
	}

	if s.redisUtil != nil {
		if err := s.redisUtil.Set(catalogTreeCachePrefix+shopCode, tree, catalogTreeCacheTTL); err != nil {
			log.Printf("⚠️ Не удалось закэшировать дерево каталога %s: %v", shopCode, err)
		}
	}
	return tree, nil
}

// buildTreeFromDB восстанавливает дерево из плоских строк категорий и товаров
func (s *CatalogService) buildTreeFromDB(shopCode string) ([]CanonicalCategory, error) {
	cats, err := s.GetCategories(shopCode)
	if err != nil {
		return nil, err
	}
	items, err := s.GetItems(shopCode, "")
	if err != nil {
		return nil, err
	}

	itemsByCategory := map[string][]CanonicalProduct{}
	for _, item := range items {
		product := CanonicalProduct{
			ID:          item.ID,
			Name:        item.Name,
			Quanty:      item.Quanty,
			RetailPrice: item.RetailPrice,
		}
		for _, raw := range item.Modifications {
			mod, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			product.Modifications = append(product.Modifications, Modification{
				ID:          stringField(mod, "id"),
				Name:        stringField(mod, "name"),
				Quanty:      ParseLocaleNumber(mod["quanty"]),
				RetailPrice: ParseLocaleNumber(mod["retail_price"]),
			})
		}
		itemsByCategory[item.CategoryID] = append(itemsByCategory[item.CategoryID], product)
	}

	nodes := make(map[string]*CanonicalCategory, len(cats))
	order := make([]string, 0, len(cats))
	for _, cat := range cats {
		nodes[cat.ID] = &CanonicalCategory{
			ID:       cat.ID,
			Name:     cat.Name,
			Quanty:   cat.Quanty,
			Products: itemsByCategory[cat.ID],
		}
		order = append(order, cat.ID)
	}

	var roots []CanonicalCategory
	// Категории отсортированы по level, поэтому родитель всегда
	// обрабатывается раньше детей
	childrenOf := map[string][]string{}
	parentOf := map[string]*string{}
	for _, cat := range cats {
		parentOf[cat.ID] = cat.ParentID
		if cat.ParentID != nil {
			childrenOf[*cat.ParentID] = append(childrenOf[*cat.ParentID], cat.ID)
		}
	}

	var attach func(id string) CanonicalCategory
	attach = func(id string) CanonicalCategory {
		node := *nodes[id]
		for _, childID := range childrenOf[id] {
			node.Subcategories = append(node.Subcategories, attach(childID))
		}
		if node.Products == nil && len(node.Subcategories) == 0 {
			node.Products = []CanonicalProduct{}
		}
		return node
	}

	for _, id := range order {
		if parent := parentOf[id]; parent == nil || nodes[*parent] == nil {
			roots = append(roots, attach(id))
		}
	}
	return roots, nil
}
