package services

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReconcilePlan_LevelsAndPaths(t *testing.T) {
	now := time.Now()
	cats := []CanonicalCategory{
		{
			ID:   "root",
			Name: "Табак",
			Subcategories: []CanonicalCategory{
				{
					ID:   "sub",
					Name: "Кальянный",
					Products: []CanonicalProduct{
						{ID: "p-1", Name: "Darkside", RetailPrice: ptrFloat(890)},
					},
				},
			},
		},
	}

	plan := BuildReconcilePlan("shop-1", cats, now)
	require.Len(t, plan.Categories, 2)
	require.Len(t, plan.Items, 1)

	root := plan.Categories[0]
	assert.Equal(t, "root", root.ID)
	assert.Equal(t, "shop-1", root.ShopCode)
	assert.Equal(t, 0, root.Level)
	assert.Nil(t, root.ParentID)
	assert.Equal(t, "Табак", root.FullPath)
	assert.True(t, root.IsActive)

	sub := plan.Categories[1]
	assert.Equal(t, 1, sub.Level)
	require.NotNil(t, sub.ParentID)
	assert.Equal(t, "root", *sub.ParentID)
	assert.Equal(t, "Табак > Кальянный", sub.FullPath)

	item := plan.Items[0]
	assert.Equal(t, "p-1", item.ID)
	assert.Equal(t, "sub", item.CategoryID)
	assert.Equal(t, "Табак > Кальянный", item.Characteristics["full_path"])
	assert.True(t, item.IsActive)
	assert.Equal(t, now, item.LastUpdated)
}

func TestBuildReconcilePlan_SortOrderPerSibling(t *testing.T) {
	cats := []CanonicalCategory{
		{ID: "a", Name: "А"},
		{ID: "b", Name: "Б"},
		{ID: "c", Name: "В"},
	}

	plan := BuildReconcilePlan("shop-1", cats, time.Now())
	require.Len(t, plan.Categories, 3)
	for i, cat := range plan.Categories {
		assert.Equal(t, i, cat.SortOrder)
	}
}

func TestBuildReconcilePlan_SynthesizesCategoryID(t *testing.T) {
	now := time.Now()
	cats := []CanonicalCategory{
		{Name: "Новые поступления!"},
	}

	plan := BuildReconcilePlan("shop-1", cats, now)
	require.Len(t, plan.Categories, 1)

	id := plan.Categories[0].ID
	assert.NotEmpty(t, id)
	assert.True(t, strings.HasPrefix(id, "новые_поступления"), "got %q", id)
	assert.True(t, strings.HasSuffix(id, "_"+strconv.FormatInt(now.Unix(), 10)), "got %q", id)
}

func TestBuildReconcilePlan_SkipsItemWithoutID(t *testing.T) {
	cats := []CanonicalCategory{
		{
			ID:   "cat",
			Name: "Напитки",
			Products: []CanonicalProduct{
				{Name: "Без идентификатора", RetailPrice: ptrFloat(10)},
				{ID: "p-ok", Name: "Кола", RetailPrice: ptrFloat(95)},
			},
		},
	}

	plan := BuildReconcilePlan("shop-1", cats, time.Now())
	require.Len(t, plan.Items, 1)
	assert.Equal(t, "p-ok", plan.Items[0].ID)
}

func TestBuildReconcilePlan_NilPriceStaysNil(t *testing.T) {
	cats := []CanonicalCategory{
		{
			ID:   "cat",
			Name: "Напитки",
			Products: []CanonicalProduct{
				{ID: "p-1", Name: "Нет цены"},
			},
		},
	}

	plan := BuildReconcilePlan("shop-1", cats, time.Now())
	require.Len(t, plan.Items, 1)
	// Отсутствующая цена не схлопывается в 0
	assert.Nil(t, plan.Items[0].RetailPrice)
}

func TestModificationsJSON_DropsBlankNames(t *testing.T) {
	mods := []Modification{
		{ID: "m-1", Name: "Манго", RetailPrice: ptrFloat(450)},
		{ID: "m-2", Name: "   "},
	}

	arr := modificationsJSON(mods)
	require.Len(t, arr, 1)

	entry := arr[0].(map[string]interface{})
	assert.Equal(t, "Манго", entry["name"])
}

func TestModificationsJSON_AllBlankGivesNil(t *testing.T) {
	assert.Nil(t, modificationsJSON(nil))
	assert.Nil(t, modificationsJSON([]Modification{{ID: "m-1", Name: ""}}))
}

func TestModificationBuckets(t *testing.T) {
	mods := []Modification{
		{Name: "Вкус: Манго"},
		{Name: "вкус Вишня"},
		{Name: "Цвет: Черный"},
		{Name: "XL"},
		{Name: "Pod Salt"}, // совпадает с именем товара - не учитывается
		{Name: ""},
	}

	buckets := ModificationBuckets("Pod Salt", mods)
	assert.Equal(t, []string{"Манго", "Вишня"}, buckets["вкус"])
	assert.Equal(t, []string{"Черный"}, buckets["цвет"])
	assert.Equal(t, []string{"XL"}, buckets["вариант"])
}

func TestSynthesizeCategoryID_Truncation(t *testing.T) {
	now := time.Unix(1700000000, 0)
	long := strings.Repeat("категория", 20)

	id := synthesizeCategoryID(long, now)
	assert.LessOrEqual(t, len(strings.TrimSuffix(id, "_1700000000")), 40)

	// Совсем пустое имя получает дефолтный слаг
	assert.Equal(t, "category_1700000000", synthesizeCategoryID("!!!", now))
}
