package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mdastore/server/internal/services"
)

type CatalogController struct {
	service *services.CatalogService
}

func NewCatalogController(service *services.CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

// GetTree возвращает дерево каталога магазина для витрины
// GET /api/v1/catalog/:shop_code/tree
func (cc *CatalogController) GetTree(c *gin.Context) {
	shopCode := c.Param("shop_code")

	tree, err := cc.service.GetTree(shopCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shop_code":  shopCode,
		"categories": tree,
	})
}

// GetCategories возвращает плоский список активных категорий магазина
// GET /api/v1/catalog/:shop_code/categories
func (cc *CatalogController) GetCategories(c *gin.Context) {
	shopCode := c.Param("shop_code")

	categories, err := cc.service.GetCategories(shopCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// GetItems возвращает активные товары магазина
// GET /api/v1/catalog/:shop_code/items?category_id=xxx
func (cc *CatalogController) GetItems(c *gin.Context) {
	shopCode := c.Param("shop_code")
	categoryID := c.Query("category_id")

	items, err := cc.service.GetItems(shopCode, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
