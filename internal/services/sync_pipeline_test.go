package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Сквозной сценарий: сырое дерево поставщика проходит классификацию,
// фильтр исключений и сборку плана сверки
func TestPipeline_RawTreeToReconcilePlan(t *testing.T) {
	payload := decodeJSON(t, `{
		"items": [
			{
				"id": "c1",
				"name": "Жидкости",
				"items": [
					{
						"id": "p1",
						"name": "Juice (акциз)",
						"items": [
							{"id": "m1", "name": "Вкус: Манго", "retail_price": "1 200,00", "purchase_price": "800,00"},
							{"id": "m2", "name": "Вкус: Яблоко", "retail_price": "1 200,00", "purchase_price": "800,00"}
						]
					}
				]
			}
		]
	}`)

	cats, err := ClassifyShopData(payload)
	require.NoError(t, err)

	svc := &ExclusionService{}
	cats = svc.Apply(cats, emptyExclusionSet())

	now := time.Now()
	plan := BuildReconcilePlan("shop-1", cats, now)

	require.Len(t, plan.Categories, 1)
	assert.Equal(t, "Жидкости", plan.Categories[0].Name)
	assert.Equal(t, 0, plan.Categories[0].Level)

	require.Len(t, plan.Items, 1)
	item := plan.Items[0]
	assert.Equal(t, "p1", item.ID)
	assert.Equal(t, "Juice", item.Name)
	require.NotNil(t, item.RetailPrice)
	assert.Equal(t, 1200.0, *item.RetailPrice)

	// Имена модификаций разложены в корзину "вкус" без ключевого слова
	assert.Equal(t, "Жидкости", item.Characteristics["full_path"])
	assert.Equal(t, []string{"Манго", "Яблоко"}, item.Characteristics["вкус"])

	// Закупочная цена не доходит до строк каталога ни в каком виде
	require.Len(t, item.Modifications, 2)
	for _, raw := range item.Modifications {
		mod := raw.(map[string]interface{})
		assert.NotContains(t, mod, "purchase_price")
		assert.Equal(t, 1200.0, mod["retail_price"])
	}
}
