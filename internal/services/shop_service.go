package services

import (
	"fmt"

	"gorm.io/gorm"

	"mdastore/server/internal/models"
)

// ShopService управляет магазинами - целями синхронизации каталога
type ShopService struct {
	db *gorm.DB
}

// NewShopService создает новый сервис магазинов
func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{db: db}
}

// GetShops возвращает магазины; по умолчанию только активные
func (s *ShopService) GetShops(includeInactive bool) ([]models.Shop, error) {
	var shops []models.Shop
	query := s.db.Order("code")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки магазинов: %w", err)
	}
	return shops, nil
}

// GetShop возвращает магазин по коду
func (s *ShopService) GetShop(code string) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.Where("code = ?", code).First(&shop).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("магазин %s не найден", code)
		}
		return nil, fmt.Errorf("ошибка поиска магазина: %w", err)
	}
	return &shop, nil
}

// CreateShop создает магазин
func (s *ShopService) CreateShop(shop *models.Shop) error {
	if shop.Code == "" {
		return fmt.Errorf("код магазина обязателен")
	}
	if shop.Name == "" {
		return fmt.Errorf("название магазина обязательно")
	}
	if err := s.db.Create(shop).Error; err != nil {
		return fmt.Errorf("ошибка создания магазина: %w", err)
	}
	return nil
}

// UpdateShop обновляет название, адрес и активность магазина
func (s *ShopService) UpdateShop(code string, updates map[string]interface{}) (*models.Shop, error) {
	allowed := map[string]bool{"name": true, "address": true, "is_active": true}
	for key := range updates {
		if !allowed[key] {
			delete(updates, key)
		}
	}

	result := s.db.Model(&models.Shop{}).Where("code = ?", code).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("ошибка обновления магазина: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("магазин %s не найден", code)
	}
	return s.GetShop(code)
}

// DeactivateShop выключает магазин из синхронизации (мягко, без удаления)
func (s *ShopService) DeactivateShop(code string) error {
	result := s.db.Model(&models.Shop{}).Where("code = ?", code).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("ошибка деактивации магазина: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("магазин %s не найден", code)
	}
	return nil
}
