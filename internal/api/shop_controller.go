package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mdastore/server/internal/models"
	"mdastore/server/internal/services"
)

type ShopController struct {
	service *services.ShopService
}

func NewShopController(service *services.ShopService) *ShopController {
	return &ShopController{service: service}
}

// GetShops получает список магазинов
// GET /api/v1/shops?include_inactive=true
func (sc *ShopController) GetShops(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	shops, err := sc.service.GetShops(includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shops": shops,
		"count": len(shops),
	})
}

// GetShop получает магазин по коду
// GET /api/v1/shops/:code
func (sc *ShopController) GetShop(c *gin.Context) {
	code := c.Param("code")

	shop, err := sc.service.GetShop(code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, shop)
}

// CreateShop создает новый магазин
// POST /api/v1/shops
func (sc *ShopController) CreateShop(c *gin.Context) {
	var shop models.Shop

	if err := c.ShouldBindJSON(&shop); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if err := sc.service.CreateShop(&shop); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, shop)
}

// UpdateShop обновляет магазин
// PUT /api/v1/shops/:code
func (sc *ShopController) UpdateShop(c *gin.Context) {
	code := c.Param("code")

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	shop, err := sc.service.UpdateShop(code, updates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, shop)
}

// DeleteShop деактивирует магазин (soft delete)
// DELETE /api/v1/shops/:code
func (sc *ShopController) DeleteShop(c *gin.Context) {
	code := c.Param("code")

	if err := sc.service.DeactivateShop(code); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Магазин деактивирован"})
}
