package services

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"mdastore/server/internal/models"
)

// ReconcilePlan - результат чистого обхода канонического дерева:
// готовые строки категорий и товаров для upsert в рамках одной транзакции
type ReconcilePlan struct {
	Categories []models.CatalogCategory
	Items      []models.CatalogItem
}

var nonSlugRe = regexp.MustCompile(`[^a-zа-я0-9]+`)

// synthesizeCategoryID выдает id для категории, у которой поставщик
// id не прислал (чистые группировочные узлы). Соль из времени синка
// нужна, потому что на стабильность имен тоже нельзя полагаться
func synthesizeCategoryID(name string, now time.Time) string {
	slug := strings.ToLower(name)
	slug = nonSlugRe.ReplaceAllString(slug, "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "category"
	}
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return fmt.Sprintf("%s_%d", slug, now.Unix())
}

// BuildReconcilePlan обходит дерево в глубину, назначая каждой категории
// level (корень = 0), full_path (имена от корня через " > ") и sort_order.
// Путь передается явным аккумулятором, состояние снаружи не захватывается
func BuildReconcilePlan(shopCode string, cats []CanonicalCategory, now time.Time) ReconcilePlan {
	plan := ReconcilePlan{}
	for i, cat := range cats {
		walkCategory(&plan, shopCode, cat, nil, 0, nil, i, now)
	}
	return plan
}

func walkCategory(plan *ReconcilePlan, shopCode string, cat CanonicalCategory, parentID *string, level int, path []string, sortOrder int, now time.Time) {
	id := cat.ID
	if id == "" {
		id = synthesizeCategoryID(cat.Name, now)
	}

	fullPath := strings.Join(append(append([]string{}, path...), cat.Name), " > ")

	plan.Categories = append(plan.Categories, models.CatalogCategory{
		ID:        id,
		ShopCode:  shopCode,
		Name:      cat.Name,
		ParentID:  parentID,
		Level:     level,
		FullPath:  fullPath,
		Quanty:    cat.Quanty,
		IsActive:  true,
		SortOrder: sortOrder,
		UpdatedAt: now,
	})

	childPath := append(append([]string{}, path...), cat.Name)
	for i, sub := range cat.Subcategories {
		walkCategory(plan, shopCode, sub, &id, level+1, childPath, i, now)
	}

	for _, product := range cat.Products {
		item, ok := buildItemRow(shopCode, id, fullPath, product, now)
		if !ok {
			continue
		}
		plan.Items = append(plan.Items, item)
	}
}

// buildItemRow собирает строку товара. Товар без id поставщика сохранить
// нельзя (составной ключ) - такой товар пропускается, остальные
// синхронизируются дальше
func buildItemRow(shopCode, categoryID, fullPath string, product CanonicalProduct, now time.Time) (models.CatalogItem, bool) {
	if product.ID == "" {
		log.Printf("⚠️ Товар '%s' без id пропущен при синхронизации магазина %s", product.Name, shopCode)
		return models.CatalogItem{}, false
	}

	characteristics := models.JSONMap{"full_path": fullPath}
	for bucket, values := range ModificationBuckets(product.Name, product.Modifications) {
		characteristics[bucket] = values
	}

	return models.CatalogItem{
		ID:              product.ID,
		ShopCode:        shopCode,
		CategoryID:      categoryID,
		Name:            product.Name,
		Quanty:          product.Quanty,
		RetailPrice:     product.RetailPrice,
		Characteristics: characteristics,
		Modifications:   modificationsJSON(product.Modifications),
		IsActive:        true,
		LastUpdated:     now,
	}, true
}

// modificationsJSON переводит модификации в jsonb-массив.
// Модификации с пустым именем не сохраняются; если не осталось ни одной,
// колонка остается NULL
func modificationsJSON(mods []Modification) models.JSONArray {
	if len(mods) == 0 {
		return nil
	}
	arr := make(models.JSONArray, 0, len(mods))
	for _, mod := range mods {
		if strings.TrimSpace(mod.Name) == "" {
			continue
		}
		entry := map[string]interface{}{
			"id":   mod.ID,
			"name": mod.Name,
		}
		if mod.Quanty != nil {
			entry["quanty"] = *mod.Quanty
		}
		if mod.RetailPrice != nil {
			entry["retail_price"] = *mod.RetailPrice
		}
		arr = append(arr, entry)
	}
	if len(arr) == 0 {
		return nil
	}
	return arr
}

var (
	flavorKeywordRe = regexp.MustCompile(`(?i)(вкус|аромат)[:\s]*`)
	colorKeywordRe  = regexp.MustCompile(`(?i)(цвет|окраска)[:\s]*`)
)

// ModificationBuckets раскладывает имена модификаций по корзинам
// характеристик для legacy-поиска: "вкус" и "цвет" по ключевым словам,
// все остальное в "вариант". Модификация учитывается, только если ее имя
// отличается от имени самого товара
func ModificationBuckets(productName string, mods []Modification) map[string][]string {
	buckets := map[string][]string{}
	for _, mod := range mods {
		name := strings.TrimSpace(mod.Name)
		if name == "" || name == productName {
			continue
		}

		switch {
		case flavorKeywordRe.MatchString(name):
			buckets["вкус"] = append(buckets["вкус"], bucketValue(name, flavorKeywordRe))
		case colorKeywordRe.MatchString(name):
			buckets["цвет"] = append(buckets["цвет"], bucketValue(name, colorKeywordRe))
		default:
			buckets["вариант"] = append(buckets["вариант"], name)
		}
	}
	return buckets
}

// bucketValue убирает само ключевое слово из значения ("Вкус: Манго" -> "Манго")
func bucketValue(name string, keywordRe *regexp.Regexp) string {
	value := strings.TrimSpace(keywordRe.ReplaceAllString(name, ""))
	if value == "" {
		return name
	}
	return value
}
