package services

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSyncer struct {
	calls int32
}

func (c *countingSyncer) SyncAllShops() ([]SyncResult, error) {
	atomic.AddInt32(&c.calls, 1)
	return []SyncResult{}, nil
}

func TestSyncScheduler_WarmupAndTicks(t *testing.T) {
	syncer := &countingSyncer{}
	scheduler := NewSyncScheduler(syncer, 50*time.Millisecond)
	scheduler.warmup = 10 * time.Millisecond

	scheduler.Start()
	defer scheduler.Stop()

	// Прогревочный запуск, затем минимум один тик
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&syncer.calls) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSyncScheduler_StopBeforeWarmup(t *testing.T) {
	syncer := &countingSyncer{}
	scheduler := NewSyncScheduler(syncer, time.Hour)
	scheduler.warmup = time.Hour

	scheduler.Start()
	scheduler.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&syncer.calls))
}

func TestSyncScheduler_StopIsIdempotent(t *testing.T) {
	scheduler := NewSyncScheduler(&countingSyncer{}, time.Hour)
	scheduler.Start()

	// Повторный Stop не должен паниковать на закрытом канале
	scheduler.Stop()
	scheduler.Stop()
}
