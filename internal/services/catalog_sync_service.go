package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mdastore/server/internal/models"
	"mdastore/server/internal/utils"
)

const (
	catalogTreeCachePrefix = "catalog:tree:"
	lastSyncSummaryKey     = "catalog:sync:last"
	catalogTreeCacheTTL    = time.Hour
)

// SyncResult - итог синхронизации одного магазина
type SyncResult struct {
	Success             bool   `json:"success"`
	ShopCode            string `json:"shop_code"`
	ShopName            string `json:"shop_name"`
	ProductsAdded       int    `json:"products_added"`
	ProductsUpdated     int    `json:"products_updated"`
	ProductsDeactivated int    `json:"products_deactivated"`
	TotalProducts       int    `json:"total_products"`
	Error               string `json:"error,omitempty"`
	DurationMs          int64  `json:"duration_ms"`
}

// SyncRunSummary - сводка последнего запуска syncAllShops для операторов
type SyncRunSummary struct {
	RanAt      time.Time    `json:"ran_at"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Results    []SyncResult `json:"results"`
}

// shopDataFetcher - то, что оркестратору нужно от транспорта
type shopDataFetcher interface {
	FetchShopData(shopCode, requestType string) (interface{}, error)
}

// CatalogSyncService ведет синхронизацию каталога магазина от запроса
// к поставщику до сверки с БД. Каждый магазин синхронизируется в своей
// транзакции, ошибки не пересекают границ магазина
type CatalogSyncService struct {
	db         *gorm.DB
	fetcher    shopDataFetcher
	exclusions *ExclusionService
	redisUtil  *utils.RedisClient
	publisher  *SyncEventPublisher
	workers    int
}

// NewCatalogSyncService создает новый сервис синхронизации каталога
func NewCatalogSyncService(db *gorm.DB, fetcher shopDataFetcher, exclusions *ExclusionService, redisUtil *utils.RedisClient) *CatalogSyncService {
	return &CatalogSyncService{
		db:         db,
		fetcher:    fetcher,
		exclusions: exclusions,
		redisUtil:  redisUtil,
		workers:    4,
	}
}

// SetEventPublisher подключает публикацию событий синхронизации в Kafka
func (s *CatalogSyncService) SetEventPublisher(publisher *SyncEventPublisher) {
	s.publisher = publisher
}

// SetWorkerCount задает размер пула воркеров для syncAllShops
func (s *CatalogSyncService) SetWorkerCount(workers int) {
	if workers > 0 {
		s.workers = workers
	}
}

// SyncShop синхронизирует один магазин по коду.
// Отсутствующий или выключенный магазин - неуспешный результат без
// обращения к поставщику
func (s *CatalogSyncService) SyncShop(shopCode string) SyncResult {
	start := time.Now()
	var shop models.Shop
	if err := s.db.Where("code = ? AND is_active = ?", shopCode, true).First(&shop).Error; err != nil {
		return SyncResult{
			ShopCode:   shopCode,
			Error:      "Shop not found or inactive",
			DurationMs: time.Since(start).Milliseconds(),
		}
	}
	return s.syncShop(shop)
}

// syncShop - один проход конвейера: fetch -> classify -> filter -> reconcile.
// Запись журнала создается со статусом started перед fetch и закрывается
// в терминальном состоянии. Повторов внутри нет: повтор - это следующий
// тик планировщика
func (s *CatalogSyncService) syncShop(shop models.Shop) SyncResult {
	start := time.Now()
	result := SyncResult{ShopCode: shop.Code, ShopName: shop.Name}

	logEntry := models.CatalogSyncLog{
		ShopCode:  shop.Code,
		SyncType:  "full",
		Status:    models.SyncStatusStarted,
		StartedAt: start,
	}
	if err := s.db.Create(&logEntry).Error; err != nil {
		log.Printf("⚠️ Не удалось создать запись журнала синхронизации для %s: %v", shop.Code, err)
	}

	fail := func(stage string, err error) SyncResult {
		result.Error = err.Error()
		result.DurationMs = time.Since(start).Milliseconds()
		log.Printf("❌ Синхронизация %s: этап %s: %v", shop.Code, stage, err)
		s.finishSyncLog(&logEntry, models.SyncStatusFailed, result)
		return result
	}

	payload, err := s.fetcher.FetchShopData(shop.Code, "store_data")
	if err != nil {
		return fail("fetch", err)
	}

	cats, err := ClassifyShopData(payload)
	if err != nil {
		return fail("classify", err)
	}

	cats = s.exclusions.Apply(cats, s.exclusions.Load())

	stats, err := s.reconcile(shop.Code, cats, start)
	if err != nil {
		return fail("reconcile", err)
	}

	result.Success = true
	result.ProductsAdded = stats.added
	result.ProductsUpdated = stats.updated
	result.ProductsDeactivated = stats.deactivated
	result.TotalProducts = stats.products
	result.DurationMs = time.Since(start).Milliseconds()

	s.finishSyncLog(&logEntry, models.SyncStatusSuccess, result)
	s.cacheCatalogTree(shop.Code, cats)

	if s.publisher != nil {
		s.publisher.Publish(result)
	}

	log.Printf("✅ Синхронизация %s (%s): %d товаров, +%d / ~%d / -%d за %d мс",
		shop.Code, shop.Name, stats.products, stats.added, stats.updated, stats.deactivated, result.DurationMs)
	return result
}

// finishSyncLog закрывает запись журнала терминальным статусом
func (s *CatalogSyncService) finishSyncLog(entry *models.CatalogSyncLog, status string, result SyncResult) {
	now := time.Now()
	entry.Status = status
	entry.ProductsSynced = result.TotalProducts
	entry.ProductsAdded = result.ProductsAdded
	entry.ProductsUpdated = result.ProductsUpdated
	entry.ProductsDeactivated = result.ProductsDeactivated
	entry.ErrorMessage = result.Error
	entry.DurationMs = result.DurationMs
	entry.CompletedAt = &now

	if err := s.db.Save(entry).Error; err != nil {
		log.Printf("⚠️ Не удалось обновить запись журнала синхронизации %s: %v", entry.ID, err)
	}
}

type reconcileStats struct {
	categories  int
	products    int
	added       int
	updated     int
	deactivated int
}

// reconcile приводит БД к состоянию канонического дерева в одной транзакции:
// upsert всех категорий и товаров, затем один массовый UPDATE деактивирует
// все строки магазина, не тронутые этим циклом. Порог деактивации - момент
// старта синхронизации, зафиксированный до первого upsert
func (s *CatalogSyncService) reconcile(shopCode string, cats []CanonicalCategory, syncStart time.Time) (reconcileStats, error) {
	plan := BuildReconcilePlan(shopCode, cats, time.Now())
	stats := reconcileStats{categories: len(plan.Categories), products: len(plan.Items)}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existingIDs []string
		if err := tx.Model(&models.CatalogItem{}).Where("shop_code = ?", shopCode).Pluck("id", &existingIDs).Error; err != nil {
			return fmt.Errorf("ошибка загрузки существующих товаров: %w", err)
		}
		existing := make(map[string]bool, len(existingIDs))
		for _, id := range existingIDs {
			existing[id] = true
		}
		for _, item := range plan.Items {
			if existing[item.ID] {
				stats.updated++
			} else {
				stats.added++
			}
		}

		if len(plan.Categories) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}, {Name: "shop_code"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "parent_id", "level", "full_path", "quanty", "is_active", "sort_order", "updated_at",
				}),
			}).CreateInBatches(&plan.Categories, 200).Error
			if err != nil {
				return fmt.Errorf("ошибка upsert категорий: %w", err)
			}
		}

		if len(plan.Items) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}, {Name: "shop_code"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"category_id", "name", "quanty", "retail_price", "characteristics", "modifications", "is_active", "last_updated",
				}),
			}).CreateInBatches(&plan.Items, 200).Error
			if err != nil {
				return fmt.Errorf("ошибка upsert товаров: %w", err)
			}
		}

		res := tx.Model(&models.CatalogItem{}).
			Where("shop_code = ? AND is_active = ? AND last_updated < ?", shopCode, true, syncStart).
			Update("is_active", false)
		if res.Error != nil {
			return fmt.Errorf("ошибка деактивации товаров: %w", res.Error)
		}
		stats.deactivated = int(res.RowsAffected)

		res = tx.Model(&models.CatalogCategory{}).
			Where("shop_code = ? AND is_active = ? AND updated_at < ?", shopCode, true, syncStart).
			Update("is_active", false)
		if res.Error != nil {
			return fmt.Errorf("ошибка деактивации категорий: %w", res.Error)
		}

		return nil
	})
	if err != nil {
		return reconcileStats{}, err
	}
	return stats, nil
}

// SyncAllShops синхронизирует все активные магазины через ограниченный
// пул воркеров. Ошибка одного магазина становится его неуспешным
// результатом, остальные магазины продолжаются; на каждый магазин
// всегда возвращается ровно один результат
func (s *CatalogSyncService) SyncAllShops() ([]SyncResult, error) {
	var shops []models.Shop
	if err := s.db.Where("is_active = ?", true).Order("code").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("не удалось загрузить список активных магазинов: %w", err)
	}

	if len(shops) == 0 {
		log.Println("⚠️ Нет активных магазинов для синхронизации")
		return []SyncResult{}, nil
	}

	log.Printf("🔄 Запуск синхронизации %d магазинов (%d воркеров)", len(shops), s.workers)
	results := runSyncPool(shops, s.workers, s.syncShop)

	successful, failed := 0, 0
	for _, r := range results {
		if r.Success {
			successful++
		} else {
			failed++
		}
	}
	log.Printf("📦 Синхронизация завершена: %d успешно, %d с ошибками", successful, failed)

	if s.redisUtil != nil {
		summary := SyncRunSummary{
			RanAt:      time.Now(),
			Successful: successful,
			Failed:     failed,
			Results:    results,
		}
		if err := s.redisUtil.Set(lastSyncSummaryKey, summary, 0); err != nil {
			log.Printf("⚠️ Не удалось сохранить сводку синхронизации в Redis: %v", err)
		}
	}

	return results, nil
}

// runSyncPool раскладывает магазины по ограниченному числу воркеров.
// Паника внутри синка одного магазина превращается в его неуспешный
// результат и не валит остальных
func runSyncPool(shops []models.Shop, workers int, syncFn func(models.Shop) SyncResult) []SyncResult {
	if workers < 1 {
		workers = 1
	}
	if workers > len(shops) {
		workers = len(shops)
	}

	type job struct {
		idx  int
		shop models.Shop
	}

	results := make([]SyncResult, len(shops))
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.idx] = syncShopSafe(j.shop, syncFn)
			}
		}()
	}

	for i, shop := range shops {
		jobs <- job{idx: i, shop: shop}
	}
	close(jobs)
	wg.Wait()

	return results
}

func syncShopSafe(shop models.Shop, syncFn func(models.Shop) SyncResult) (result SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Паника при синхронизации магазина %s: %v", shop.Code, r)
			result = SyncResult{
				ShopCode: shop.Code,
				ShopName: shop.Name,
				Error:    fmt.Sprintf("внутренняя ошибка: %v", r),
			}
		}
	}()
	return syncFn(shop)
}

// cacheCatalogTree кладет каноническое дерево магазина в Redis,
// чтобы read-path каталога не пересобирал его из строк БД
func (s *CatalogSyncService) cacheCatalogTree(shopCode string, cats []CanonicalCategory) {
	if s.redisUtil == nil {
		return
	}
	if err := s.redisUtil.Set(catalogTreeCachePrefix+shopCode, cats, catalogTreeCacheTTL); err != nil {
		log.Printf("⚠️ Не удалось закэшировать каталог магазина %s: %v", shopCode, err)
	}
}

// GetSyncLogs возвращает последние записи журнала синхронизации,
// опционально по одному магазину
func (s *CatalogSyncService) GetSyncLogs(shopCode string, limit int) ([]models.CatalogSyncLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := s.db.Order("started_at DESC").Limit(limit)
	if shopCode != "" {
		query = query.Where("shop_code = ?", shopCode)
	}
	var logs []models.CatalogSyncLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("ошибка загрузки журнала синхронизации: %w", err)
	}
	return logs, nil
}

// LastRunSummary возвращает сводку последнего запуска из Redis
func (s *CatalogSyncService) LastRunSummary() (*SyncRunSummary, error) {
	if s.redisUtil == nil {
		return nil, fmt.Errorf("redis недоступен")
	}
	var summary SyncRunSummary
	if err := s.redisUtil.GetJSON(lastSyncSummaryKey, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
