package services

import (
	"encoding/json"
	"fmt"
)

// Канонические типы дерева каталога. Классификатор переводит сырой
// самоописывающийся ответ поставщика в эту форму, дальше по пайплайну
// ходит только она

// Modification - ценовой вариант товара (вкус, цвет и т.д.)
type Modification struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Quanty      *float64 `json:"quanty,omitempty"`
	RetailPrice *float64 `json:"retail_price,omitempty"`
}

// CanonicalProduct - товар канонического дерева
// PurchasePrice живет только до фильтра исключений: закупочная цена
// не должна пережить эту границу
type CanonicalProduct struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Quanty        *float64       `json:"quanty,omitempty"`
	RetailPrice   *float64       `json:"retail_price,omitempty"`
	PurchasePrice *float64       `json:"purchase_price,omitempty"`
	Modifications []Modification `json:"modifications,omitempty"`
}

// CanonicalCategory - категория канонического дерева
// Инвариант: заполнено либо Products, либо Subcategories, но не оба сразу
type CanonicalCategory struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Quanty        *float64            `json:"quanty,omitempty"`
	Products      []CanonicalProduct  `json:"products"`
	Subcategories []CanonicalCategory `json:"subcategories,omitempty"`
}

// ClassifyShopData превращает сырой ответ поставщика в канонические категории.
// Быстрый путь: ответ уже содержит готовый массив categories - пропускаем как есть.
// Медленный путь: ответ содержит сырое дерево items - классифицируем рекурсивно.
// Любая другая структура - явная ошибка, а не попытка угадать
func ClassifyShopData(payload interface{}) ([]CanonicalCategory, error) {
	root, ok := payload.(map[string]interface{})
	if !ok {
		// Поставщик иногда отдает массив верхнего уровня без обертки
		if items, ok := payload.([]interface{}); ok {
			return classifyCategoryNodes(items), nil
		}
		return nil, fmt.Errorf("неизвестная структура данных магазина: ожидался объект, получен %T", payload)
	}

	if rawCats, ok := root["categories"].([]interface{}); ok {
		return decodeCanonicalCategories(rawCats)
	}

	if items, ok := root["items"].([]interface{}); ok {
		return classifyCategoryNodes(items), nil
	}

	return nil, fmt.Errorf("неизвестная структура данных магазина: нет ни categories, ни items")
}

// decodeCanonicalCategories перекладывает уже готовое каноническое дерево
// без изменений (идемпотентность с ранее построенными каталогами)
func decodeCanonicalCategories(rawCats []interface{}) ([]CanonicalCategory, error) {
	data, err := json.Marshal(rawCats)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации categories: %w", err)
	}
	var cats []CanonicalCategory
	if err := json.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("ошибка разбора categories: %w", err)
	}
	return cats, nil
}

// classifyCategoryNodes классифицирует список сырых узлов как категории
func classifyCategoryNodes(nodes []interface{}) []CanonicalCategory {
	cats := make([]CanonicalCategory, 0, len(nodes))
	for _, raw := range nodes {
		node, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		cats = append(cats, classifyCategory(node))
	}
	return cats
}

// classifyCategory решает для узла-категории, содержит он подкатегории или товары.
// Единственное правило на всех уровнях: если у какого-то ребенка есть свой массив
// items, в котором НЕ все элементы несут retail_price, этот ребенок - сам категория,
// и значит родитель содержит подкатегории. Иначе все дети - товары
func classifyCategory(node map[string]interface{}) CanonicalCategory {
	cat := CanonicalCategory{
		ID:     stringField(node, "id"),
		Name:   CleanName(stringField(node, "name")),
		Quanty: ParseLocaleNumber(node["quanty"]),
	}

	children, ok := node["items"].([]interface{})
	if !ok || len(children) == 0 {
		// Узел без items и без цены - пустая категория товаров,
		// это валидное состояние, а не ошибка
		cat.Products = []CanonicalProduct{}
		return cat
	}

	hasSubcategories := false
	for _, raw := range children {
		child, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if grandchildren, ok := child["items"].([]interface{}); ok {
			if !allChildrenPriced(grandchildren) {
				hasSubcategories = true
				break
			}
		}
	}

	if hasSubcategories {
		cat.Subcategories = classifyCategoryNodes(children)
		return cat
	}

	cat.Products = make([]CanonicalProduct, 0, len(children))
	for _, raw := range children {
		child, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		cat.Products = append(cat.Products, classifyProduct(child))
	}
	return cat
}

// classifyProduct строит товар из сырого узла.
// Если все дети узла несут retail_price - это товар с модификациями,
// цена и закупка берутся из первого ребенка (поставщик сообщает цены
// вариантов только на листьях). Если дети есть, но не все с ценой -
// товар с единственным листом, цена из первого ребенка
func classifyProduct(node map[string]interface{}) CanonicalProduct {
	product := CanonicalProduct{
		ID:     stringField(node, "id"),
		Name:   CleanName(stringField(node, "name")),
		Quanty: ParseLocaleNumber(node["quanty"]),
	}

	children, ok := node["items"].([]interface{})
	if !ok || len(children) == 0 {
		product.RetailPrice = ParseLocaleNumber(node["retail_price"])
		product.PurchasePrice = ParseLocaleNumber(node["purchase_price"])
		return product
	}

	if allChildrenPriced(children) {
		product.Modifications = make([]Modification, 0, len(children))
		for _, raw := range children {
			child, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			product.Modifications = append(product.Modifications, Modification{
				ID:          stringField(child, "id"),
				Name:        CleanName(stringField(child, "name")),
				Quanty:      ParseLocaleNumber(child["quanty"]),
				RetailPrice: ParseLocaleNumber(child["retail_price"]),
			})
		}
		if len(product.Modifications) > 0 {
			product.RetailPrice = product.Modifications[0].RetailPrice
		}
		if first, ok := children[0].(map[string]interface{}); ok {
			product.PurchasePrice = ParseLocaleNumber(first["purchase_price"])
		}
		return product
	}

	if first, ok := children[0].(map[string]interface{}); ok {
		product.RetailPrice = ParseLocaleNumber(first["retail_price"])
		product.PurchasePrice = ParseLocaleNumber(first["purchase_price"])
		if product.Quanty == nil {
			product.Quanty = ParseLocaleNumber(first["quanty"])
		}
	}
	return product
}

// allChildrenPriced проверяет, что каждый элемент - объект с полем retail_price.
// Важно именно наличие поля, а не его парсабельность: так решает сам поставщик.
// Для пустого списка правило выполняется (как every в исходной выгрузке)
func allChildrenPriced(children []interface{}) bool {
	for _, raw := range children {
		child, ok := raw.(map[string]interface{})
		if !ok {
			return false
		}
		if _, has := child["retail_price"]; !has {
			return false
		}
	}
	return true
}

func stringField(node map[string]interface{}, key string) string {
	switch v := node[key].(type) {
	case string:
		return v
	case float64:
		// Поставщик иногда отдает числовые id
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}
