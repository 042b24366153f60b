package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"mdastore/server/internal/services"
)

type SyncController struct {
	syncService *services.CatalogSyncService
}

func NewSyncController(syncService *services.CatalogSyncService) *SyncController {
	return &SyncController{syncService: syncService}
}

// SyncShop запускает синхронизацию одного магазина
// POST /api/v1/sync/shops/:code
func (sc *SyncController) SyncShop(c *gin.Context) {
	code := c.Param("code")

	result := sc.syncService.SyncShop(code)
	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SyncAllShops запускает синхронизацию всех активных магазинов.
// Ручной аналог планового запуска: ждет завершения и возвращает результаты
// POST /api/v1/sync/shops
func (sc *SyncController) SyncAllShops(c *gin.Context) {
	results, err := sc.syncService.SyncAllShops()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	successful, failed := 0, 0
	for _, r := range results {
		if r.Success {
			successful++
		} else {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"results":    results,
		"successful": successful,
		"failed":     failed,
	})
}

// GetSyncLogs возвращает журнал синхронизаций
// GET /api/v1/sync/logs?shop_code=xxx&limit=50
func (sc *SyncController) GetSyncLogs(c *gin.Context) {
	shopCode := c.Query("shop_code")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := sc.syncService.GetSyncLogs(shopCode, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetSyncStatus возвращает сводку последнего планового запуска
// GET /api/v1/sync/status
func (sc *SyncController) GetSyncStatus(c *gin.Context) {
	summary, err := sc.syncService.LastRunSummary()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Синхронизация еще не выполнялась"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
