package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"mdastore/server/internal/api"
	"mdastore/server/internal/config"
	"mdastore/server/internal/database"
	"mdastore/server/internal/models"
	"mdastore/server/internal/services"
	"mdastore/server/internal/utils"
)

func main() {
	// Загружаем переменные окружения из .env файла (если существует)
	// Игнорируем ошибку, если файл не найден (для production окружений)
	if err := godotenv.Load(); err != nil {
		log.Printf("ℹ️ .env файл не найден, используем переменные окружения системы")
	} else {
		log.Printf("✅ Переменные окружения загружены из .env файла")
	}

	// Загрузка конфигурации
	cfg := config.Load()

	// Логируем наличие DATABASE_URL (без пароля)
	if cfg.DatabaseURL != "" {
		safeURL := cfg.DatabaseURL
		if idx := strings.Index(safeURL, "@"); idx > 0 {
			if schemeIdx := strings.Index(safeURL, "://"); schemeIdx > 0 {
				safeURL = safeURL[:schemeIdx+3] + "***@" + safeURL[idx+1:]
			}
		}
		log.Printf("📋 DATABASE_URL установлен: %s", safeURL)
	}

	// Подключение к PostgreSQL. Без БД сервер не имеет смысла:
	// каталог, журнал и исключения живут в ней
	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ PostgreSQL connection failed: %v", err)
	}
	defer database.ClosePostgres(db)

	// Выполняем миграции
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// Подключение к Redis (кэш деревьев, сводки, инвалидация исключений).
	// Redis опционален: без него все работает, только медленнее
	var redisUtil *utils.RedisClient
	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Printf("⚠️ Redis connection failed: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		redisUtil = utils.NewRedisClient(redisClient)
	}
	defer database.CloseRedis(redisClient)

	// HTTP клиент к API поставщика (mutual TLS + basic auth)
	balanceClient := services.NewBalanceClient(
		cfg.BalanceAPIURL,
		cfg.BalanceAPIUsername,
		cfg.BalanceAPIPassword,
		cfg.CertPath,
		cfg.CertPassword,
	)
	log.Printf("🔐 Balance API клиент: %s (сертификат: %s)", cfg.BalanceAPIURL, cfg.CertPath)

	// Сервис исключений каталога с кэшем и авто-перезагрузкой по Pub/Sub
	exclusionService := services.NewExclusionService(db, redisUtil)
	exclusionService.StartAutoReload()

	// Оркестратор синхронизации
	syncService := services.NewCatalogSyncService(db, balanceClient, exclusionService, redisUtil)
	syncService.SetWorkerCount(cfg.SyncWorkers)

	// Публикация событий синхронизации в Kafka (опционально)
	if cfg.KafkaBrokers != "" {
		publisher := services.NewSyncEventPublisher(
			cfg.KafkaBrokers, "catalog.sync.results",
			cfg.KafkaUsername, cfg.KafkaPassword, cfg.KafkaCACert,
		)
		defer publisher.Close()
		syncService.SetEventPublisher(publisher)
		log.Printf("📡 Kafka publisher подключен: %s -> catalog.sync.results", cfg.KafkaBrokers)
	} else {
		log.Println("⚠️ KAFKA_BROKERS не установлен, события синхронизации не публикуются")
	}

	// Остальные сервисы
	shopService := services.NewShopService(db)
	catalogService := services.NewCatalogService(db, redisUtil)

	// Планировщик фоновой синхронизации
	interval := time.Duration(cfg.SyncIntervalMinutes) * time.Minute
	scheduler := services.NewSyncScheduler(syncService, interval)
	scheduler.Start()
	defer scheduler.Stop()

	// Отключаем логи для бешеной скорости
	gin.SetMode(gin.ReleaseMode)

	// Создаем пустой движок без лишних прослоек
	r := gin.New()

	// Health check endpoint
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "MDA Store Catalog Server",
			"version": "1.0.0",
		})
	})

	// Логирование всех запросов
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		log.Printf("🌐 %s %s - Status: %d - Latency: %v", method, path, status, latency)
	})

	// CORS для фронтенда
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Контроллеры
	shopController := api.NewShopController(shopService)
	catalogController := api.NewCatalogController(catalogService)
	syncController := api.NewSyncController(syncService)
	exclusionController := api.NewExclusionController(exclusionService)

	// API routes
	apiGroup := r.Group("/api/v1")
	{
		shopsGroup := apiGroup.Group("/shops")
		{
			shopsGroup.GET("", shopController.GetShops)
			shopsGroup.GET("/:code", shopController.GetShop)
			shopsGroup.POST("", shopController.CreateShop)
			shopsGroup.PUT("/:code", shopController.UpdateShop)
			shopsGroup.DELETE("/:code", shopController.DeleteShop)
		}

		catalogGroup := apiGroup.Group("/catalog")
		{
			catalogGroup.GET("/:shop_code/tree", catalogController.GetTree)
			catalogGroup.GET("/:shop_code/categories", catalogController.GetCategories)
			catalogGroup.GET("/:shop_code/items", catalogController.GetItems)
		}

		syncGroup := apiGroup.Group("/sync")
		{
			syncGroup.POST("/shops", syncController.SyncAllShops)
			syncGroup.POST("/shops/:code", syncController.SyncShop)
			syncGroup.GET("/logs", syncController.GetSyncLogs)
			syncGroup.GET("/status", syncController.GetSyncStatus)
		}

		exclusionsGroup := apiGroup.Group("/exclusions")
		{
			exclusionsGroup.GET("", exclusionController.GetExclusions)
			exclusionsGroup.POST("", exclusionController.CreateExclusion)
			exclusionsGroup.DELETE("/:id", exclusionController.DeleteExclusion)
		}
	}

	port := cfg.ServerPort

	log.Printf("🚀 Server starting on port %s", port)
	log.Printf("📡 API доступен на http://0.0.0.0:%s/api/v1", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
