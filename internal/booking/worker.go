package booking

import (
	"context"
	"sync"
	"time"

	"cinecore/pkg/logger"
)

// ExpiryWorkerConfig controls the overdue-booking sweep.
type ExpiryWorkerConfig struct {
	ScanInterval time.Duration
	BatchSize    int
}

func DefaultExpiryWorkerConfig() *ExpiryWorkerConfig {
	return &ExpiryWorkerConfig{
		ScanInterval: 30 * time.Second,
		BatchSize:    100,
	}
}

// ExpiryWorkerStats is a point-in-time snapshot of the sweep.
type ExpiryWorkerStats struct {
	IsRunning        bool      `json:"is_running"`
	TotalExpired     int64     `json:"total_expired"`
	LastScanTime     time.Time `json:"last_scan_time"`
	LastExpiredCount int       `json:"last_expired_count"`
}

// ExpiryWorker periodically fails overdue bookings and frees their seats.
// The sweep is a reclamation optimization: lazy expiry on read keeps the
// state machine correct even if the worker is down.
type ExpiryWorker struct {
	service Service
	config  *ExpiryWorkerConfig

	mu               sync.Mutex
	running          bool
	stop             chan struct{}
	done             chan struct{}
	totalExpired     int64
	lastScanTime     time.Time
	lastExpiredCount int
}

func NewExpiryWorker(service Service, config *ExpiryWorkerConfig) *ExpiryWorker {
	if config == nil {
		config = DefaultExpiryWorkerConfig()
	}
	return &ExpiryWorker{
		service: service,
		config:  config,
	}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.run(ctx)

	logger.GetDefault().InfoWithContext(ctx, "expiry worker started", map[string]interface{}{
		"scan_interval": w.config.ScanInterval.String(),
		"batch_size":    w.config.BatchSize,
	})
}

func (w *ExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stop)
	done := w.done
	w.mu.Unlock()

	<-done
}

func (w *ExpiryWorker) GetStats() ExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ExpiryWorkerStats{
		IsRunning:        w.running,
		TotalExpired:     w.totalExpired,
		LastScanTime:     w.lastScanTime,
		LastExpiredCount: w.lastExpiredCount,
	}
}

func (w *ExpiryWorker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *ExpiryWorker) scan(ctx context.Context) {
	expired, err := w.service.ExpireOverdue(ctx, w.config.BatchSize)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "expiry scan failed", err, nil)
		return
	}

	w.mu.Lock()
	w.totalExpired += int64(expired)
	w.lastScanTime = time.Now()
	w.lastExpiredCount = expired
	w.mu.Unlock()

	if expired > 0 {
		logger.GetDefault().InfoWithContext(ctx, "expired overdue bookings", map[string]interface{}{
			"count": expired,
		})
	}
}
