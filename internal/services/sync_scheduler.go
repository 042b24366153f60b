package services

import (
	"log"
	"sync"
	"time"
)

// shopSyncer - то, что планировщику нужно от оркестратора
type shopSyncer interface {
	SyncAllShops() ([]SyncResult, error)
}

// SyncScheduler запускает синхронизацию всех магазинов по фиксированному
// интервалу и один раз вскоре после старта процесса. Сбой одного запуска
// не останавливает расписание
type SyncScheduler struct {
	syncer   shopSyncer
	interval time.Duration
	warmup   time.Duration

	stopOnce sync.Once
	stopChan chan struct{}
}

// NewSyncScheduler создает планировщик синхронизации
func NewSyncScheduler(syncer shopSyncer, interval time.Duration) *SyncScheduler {
	return &SyncScheduler{
		syncer:   syncer,
		interval: interval,
		warmup:   10 * time.Second,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновый цикл планировщика
func (s *SyncScheduler) Start() {
	go func() {
		// Прогревочный запуск вскоре после старта процесса
		warmupTimer := time.NewTimer(s.warmup)
		defer warmupTimer.Stop()

		select {
		case <-warmupTimer.C:
			s.runOnce()
		case <-s.stopChan:
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopChan:
				return
			}
		}
	}()
	log.Printf("⏰ Планировщик синхронизации каталога запущен (интервал %v, прогрев через %v)", s.interval, s.warmup)
}

// Stop останавливает планировщик
func (s *SyncScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *SyncScheduler) runOnce() {
	if _, err := s.syncer.SyncAllShops(); err != nil {
		// Сюда попадают только катастрофические сбои (например, не удалось
		// получить список магазинов) - потеря одного запуска, ждем следующего тика
		log.Printf("❌ Плановая синхронизация не выполнена: %v", err)
	}
}
