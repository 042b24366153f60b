package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdastore/server/internal/models"
)

func testShops(n int) []models.Shop {
	shops := make([]models.Shop, n)
	for i := range shops {
		shops[i] = models.Shop{Code: fmt.Sprintf("shop-%d", i), Name: fmt.Sprintf("Магазин %d", i), IsActive: true}
	}
	return shops
}

func TestRunSyncPool_OneResultPerShop(t *testing.T) {
	shops := testShops(10)

	results := runSyncPool(shops, 4, func(shop models.Shop) SyncResult {
		return SyncResult{Success: true, ShopCode: shop.Code}
	})

	require.Len(t, results, 10)
	// Результаты лежат в порядке магазинов независимо от порядка выполнения
	for i, r := range results {
		assert.Equal(t, shops[i].Code, r.ShopCode)
		assert.True(t, r.Success)
	}
}

func TestRunSyncPool_BoundedConcurrency(t *testing.T) {
	shops := testShops(20)
	var current, peak int32
	var mu sync.Mutex

	results := runSyncPool(shops, 4, func(shop models.Shop) SyncResult {
		n := atomic.AddInt32(&current, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		defer atomic.AddInt32(&current, -1)
		return SyncResult{Success: true, ShopCode: shop.Code}
	})

	require.Len(t, results, 20)
	assert.LessOrEqual(t, peak, int32(4))
}

func TestRunSyncPool_FailureDoesNotStopOthers(t *testing.T) {
	shops := testShops(5)

	results := runSyncPool(shops, 2, func(shop models.Shop) SyncResult {
		if shop.Code == "shop-2" {
			return SyncResult{ShopCode: shop.Code, Error: "поставщик недоступен"}
		}
		return SyncResult{Success: true, ShopCode: shop.Code}
	})

	require.Len(t, results, 5)
	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}
	assert.Equal(t, 4, successful)
	assert.Equal(t, "поставщик недоступен", results[2].Error)
}

func TestRunSyncPool_PanicBecomesFailedResult(t *testing.T) {
	shops := testShops(3)

	results := runSyncPool(shops, 2, func(shop models.Shop) SyncResult {
		if shop.Code == "shop-1" {
			panic("что-то пошло не так")
		}
		return SyncResult{Success: true, ShopCode: shop.Code}
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "что-то пошло не так")
	assert.True(t, results[2].Success)
}

func TestRunSyncPool_WorkerCountClamped(t *testing.T) {
	shops := testShops(2)

	// Нулевое и отрицательное число воркеров не должны блокировать пул
	for _, workers := range []int{0, -1, 100} {
		results := runSyncPool(shops, workers, func(shop models.Shop) SyncResult {
			return SyncResult{Success: true, ShopCode: shop.Code}
		})
		require.Len(t, results, 2)
	}
}
