package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mdastore/server/internal/models"
	"mdastore/server/internal/services"
)

type ExclusionController struct {
	service *services.ExclusionService
}

func NewExclusionController(service *services.ExclusionService) *ExclusionController {
	return &ExclusionController{service: service}
}

// GetExclusions возвращает список исключений каталога
// GET /api/v1/exclusions?include_inactive=true
func (ec *ExclusionController) GetExclusions(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	exclusions, err := ec.service.ListExclusions(includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exclusions": exclusions,
		"count":      len(exclusions),
	})
}

// CreateExclusion добавляет новое исключение
// POST /api/v1/exclusions
func (ec *ExclusionController) CreateExclusion(c *gin.Context) {
	var req struct {
		ExclusionType string `json:"exclusion_type" binding:"required"`
		ItemID        string `json:"item_id" binding:"required"`
		Reason        string `json:"reason"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные данные",
			"details": err.Error(),
		})
		return
	}

	if req.ExclusionType != models.ExclusionTypeProduct && req.ExclusionType != models.ExclusionTypeCategory {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "exclusion_type должен быть product или category",
		})
		return
	}

	exclusion, err := ec.service.CreateExclusion(req.ExclusionType, req.ItemID, req.Reason)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, exclusion)
}

// DeleteExclusion деактивирует исключение (soft delete)
// DELETE /api/v1/exclusions/:id
func (ec *ExclusionController) DeleteExclusion(c *gin.Context) {
	id := c.Param("id")

	if err := ec.service.DeactivateExclusion(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Исключение удалено"})
}
