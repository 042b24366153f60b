package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"mdastore/server/internal/models"
	"mdastore/server/internal/utils"
)

const exclusionsInvalidateChannel = "catalog:exclusions:invalidate"

// ExclusionSet - множества исключенных id, разнесенные по типу
type ExclusionSet struct {
	Products   map[string]bool
	Categories map[string]bool
}

func emptyExclusionSet() ExclusionSet {
	return ExclusionSet{
		Products:   map[string]bool{},
		Categories: map[string]bool{},
	}
}

// ExclusionService управляет черным списком категорий и товаров
// Держит множества исключений в памяти с TTL 5 минут: полная перезагрузка
// из БД на каждый синк была бы лишней, а операторские правки редки
type ExclusionService struct {
	db        *gorm.DB
	redisUtil *utils.RedisClient

	mu       sync.Mutex
	cached   ExclusionSet
	loadedAt time.Time
	ttl      time.Duration
}

// NewExclusionService создает новый сервис исключений
func NewExclusionService(db *gorm.DB, redisUtil *utils.RedisClient) *ExclusionService {
	return &ExclusionService{
		db:        db,
		redisUtil: redisUtil,
		ttl:       5 * time.Minute,
	}
}

// Load возвращает актуальные множества исключений.
// При ошибке загрузки возвращает пустые множества: временный сбой БД
// не должен блокировать синхронизацию целого каталога
func (s *ExclusionService) Load() ExclusionSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached.Products != nil && time.Since(s.loadedAt) < s.ttl {
		return s.cached
	}

	var rows []models.CatalogExclusion
	if err := s.db.Where("is_active = ?", true).Find(&rows).Error; err != nil {
		log.Printf("⚠️ Не удалось загрузить исключения каталога: %v (синхронизация продолжится без исключений)", err)
		return emptyExclusionSet()
	}

	set := emptyExclusionSet()
	for _, row := range rows {
		switch row.ExclusionType {
		case models.ExclusionTypeProduct:
			set.Products[row.ItemID] = true
		case models.ExclusionTypeCategory:
			set.Categories[row.ItemID] = true
		}
	}

	s.cached = set
	s.loadedAt = time.Now()
	return set
}

// Invalidate сбрасывает кэш исключений. Вызывается операторским write-path
// и оповещает соседние инстансы через Redis
func (s *ExclusionService) Invalidate() {
	s.mu.Lock()
	s.loadedAt = time.Time{}
	s.mu.Unlock()

	if s.redisUtil != nil {
		if err := s.redisUtil.Publish(exclusionsInvalidateChannel, "invalidate"); err != nil {
			log.Printf("⚠️ Не удалось опубликовать инвалидацию исключений в Redis: %v", err)
		}
	}
}

// StartAutoReload подписывается на канал инвалидации в Redis,
// чтобы правки исключений на другом инстансе сбрасывали и наш кэш
func (s *ExclusionService) StartAutoReload() {
	if s.redisUtil == nil {
		return
	}
	pubsub := s.redisUtil.Subscribe(exclusionsInvalidateChannel)
	go func() {
		for range pubsub.Channel() {
			s.mu.Lock()
			s.loadedAt = time.Time{}
			s.mu.Unlock()
			log.Println("🔄 Кэш исключений сброшен по сообщению из Redis")
		}
	}()
	log.Println("✅ Автосброс кэша исключений запущен (Redis Pub/Sub)")
}

// Apply фильтрует каноническое дерево: выбрасывает исключенные категории
// целиком с поддеревом и исключенные товары, пересобирая списки родителя.
// Опустевшие категории остаются - пустая категория и "не существует" это
// разные состояния. Здесь же из всех товаров вычищается закупочная цена:
// дальше этой границы она не проходит
func (s *ExclusionService) Apply(cats []CanonicalCategory, set ExclusionSet) []CanonicalCategory {
	filtered := make([]CanonicalCategory, 0, len(cats))
	for _, cat := range cats {
		if set.Categories[cat.ID] {
			continue
		}

		if len(cat.Subcategories) > 0 {
			cat.Subcategories = s.Apply(cat.Subcategories, set)
		}

		if len(cat.Products) > 0 {
			products := make([]CanonicalProduct, 0, len(cat.Products))
			for _, p := range cat.Products {
				if set.Products[p.ID] {
					continue
				}
				p.PurchasePrice = nil
				products = append(products, p)
			}
			cat.Products = products
		}

		filtered = append(filtered, cat)
	}
	return filtered
}

// CreateExclusion добавляет исключение и сбрасывает кэш
func (s *ExclusionService) CreateExclusion(exclusionType, itemID, reason string) (*models.CatalogExclusion, error) {
	if exclusionType != models.ExclusionTypeProduct && exclusionType != models.ExclusionTypeCategory {
		return nil, fmt.Errorf("неверный тип исключения: %s", exclusionType)
	}
	if itemID == "" {
		return nil, fmt.Errorf("item_id обязателен")
	}

	exclusion := models.CatalogExclusion{
		ExclusionType: exclusionType,
		ItemID:        itemID,
		Reason:        reason,
		IsActive:      true,
	}
	if err := s.db.Create(&exclusion).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания исключения: %w", err)
	}

	s.Invalidate()
	log.Printf("🚫 Добавлено исключение %s для %s", exclusionType, itemID)
	return &exclusion, nil
}

// ListExclusions возвращает исключения; по умолчанию только активные
func (s *ExclusionService) ListExclusions(includeInactive bool) ([]models.CatalogExclusion, error) {
	var rows []models.CatalogExclusion
	query := s.db.Order("created_at DESC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки исключений: %w", err)
	}
	return rows, nil
}

// DeactivateExclusion мягко удаляет исключение (история остается)
func (s *ExclusionService) DeactivateExclusion(id string) error {
	result := s.db.Model(&models.CatalogExclusion{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("ошибка удаления исключения: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("исключение %s не найдено", id)
	}

	s.Invalidate()
	return nil
}
