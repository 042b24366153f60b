package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() []CanonicalCategory {
	return []CanonicalCategory{
		{
			ID:   "cat-drinks",
			Name: "Напитки",
			Products: []CanonicalProduct{
				{ID: "p-cola", Name: "Кола", RetailPrice: ptrFloat(95), PurchasePrice: ptrFloat(60)},
				{ID: "p-fanta", Name: "Фанта", RetailPrice: ptrFloat(90), PurchasePrice: ptrFloat(55)},
			},
		},
		{
			ID:   "cat-tobacco",
			Name: "Табак",
			Subcategories: []CanonicalCategory{
				{
					ID:   "cat-hookah",
					Name: "Кальянный",
					Products: []CanonicalProduct{
						{ID: "p-darkside", Name: "Darkside", RetailPrice: ptrFloat(890), PurchasePrice: ptrFloat(500)},
					},
				},
			},
		},
	}
}

func TestApply_EmptySetKeepsTreeButStripsPurchasePrice(t *testing.T) {
	svc := &ExclusionService{}

	filtered := svc.Apply(sampleTree(), emptyExclusionSet())
	require.Len(t, filtered, 2)
	require.Len(t, filtered[0].Products, 2)

	// Закупочная цена не переживает фильтр ни при каких условиях
	for _, cat := range filtered {
		for _, p := range cat.Products {
			assert.Nil(t, p.PurchasePrice)
		}
		for _, sub := range cat.Subcategories {
			for _, p := range sub.Products {
				assert.Nil(t, p.PurchasePrice)
			}
		}
	}
}

func TestApply_ExcludedProductRemoved(t *testing.T) {
	svc := &ExclusionService{}
	set := emptyExclusionSet()
	set.Products["p-fanta"] = true

	filtered := svc.Apply(sampleTree(), set)
	require.Len(t, filtered, 2)
	require.Len(t, filtered[0].Products, 1)
	assert.Equal(t, "p-cola", filtered[0].Products[0].ID)
}

func TestApply_ExcludedCategoryDropsSubtree(t *testing.T) {
	svc := &ExclusionService{}
	set := emptyExclusionSet()
	set.Categories["cat-tobacco"] = true

	filtered := svc.Apply(sampleTree(), set)
	require.Len(t, filtered, 1)
	assert.Equal(t, "cat-drinks", filtered[0].ID)
}

func TestApply_ExcludedNestedCategory(t *testing.T) {
	svc := &ExclusionService{}
	set := emptyExclusionSet()
	set.Categories["cat-hookah"] = true

	filtered := svc.Apply(sampleTree(), set)
	require.Len(t, filtered, 2)
	// Родитель остается, но уже без исключенной подкатегории
	assert.Equal(t, "cat-tobacco", filtered[1].ID)
	assert.Empty(t, filtered[1].Subcategories)
}

func TestApply_EmptiedCategoryStays(t *testing.T) {
	svc := &ExclusionService{}
	set := emptyExclusionSet()
	set.Products["p-cola"] = true
	set.Products["p-fanta"] = true

	filtered := svc.Apply(sampleTree(), set)
	require.Len(t, filtered, 2)
	// Категория опустела, но осталась: пустая и отсутствующая - разные состояния
	assert.Equal(t, "cat-drinks", filtered[0].ID)
	assert.Empty(t, filtered[0].Products)
}

func TestApply_Idempotent(t *testing.T) {
	svc := &ExclusionService{}
	set := emptyExclusionSet()
	set.Products["p-fanta"] = true
	set.Categories["cat-hookah"] = true

	once := svc.Apply(sampleTree(), set)
	twice := svc.Apply(once, set)
	assert.Equal(t, once, twice)
}
