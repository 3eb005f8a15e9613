package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/nemocrk/my-wedding-app/internal/domain"
	"github.com/nemocrk/my-wedding-app/pkg/logger"
)

// queueDrainer is the minimal worker surface the scheduler drives.
// It matches QueueWorker and lets unit tests plug in a small fake.
type queueDrainer interface {
	ProcessDueMessages(ctx context.Context) ([]domain.SendResult, error)
	RefreshStats(ctx context.Context) (*domain.QueueStats, error)
}

// Scheduler runs the queue worker on a fixed interval. Each tick also
// refreshes the durable queue counters, the periodic safety net behind
// the push stream: it only re-reads the durable layer and never writes
// into the realtime bridge's view.
type Scheduler struct {
	worker   queueDrainer
	interval time.Duration

	// Internal state
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
	mu       sync.RWMutex

	// Statistics
	lastRunAt    time.Time
	messagesSent int64
	runsCount    int64
	lastStats    *domain.QueueStats

	// Consecutive ticks where every transmission failed. A long streak
	// usually means a sender session lost its pairing.
	consecutiveAllFailCount int
}

func NewScheduler(worker queueDrainer, interval time.Duration) *Scheduler {
	return &Scheduler{
		worker:   worker,
		interval: interval,
		running:  false,
	}
}

// StartWithInterval overrides the configured interval before starting.
func (s *Scheduler) StartWithInterval(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}

	s.mu.Lock()
	s.interval = interval
	s.consecutiveAllFailCount = 0
	s.mu.Unlock()

	return s.Start(ctx)
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.running {
		s.mu.Unlock()
		logger.Warnf("Queue worker is already running")
		return nil
	}

	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.mu.Unlock()

	logger.Infof("Starting queue worker with interval: %v", s.interval)

	go s.run(ctx)

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneChan)

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Infof("Queue worker running. Next drain in %v", s.interval)

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
			logger.Debugf("Next drain in %v", s.interval)

		case <-s.stopChan:
			logger.Warnf("Queue worker received stop signal")
			return

		case <-ctx.Done():
			logger.Warnf("Queue worker context cancelled")
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	s.lastRunAt = time.Now()
	s.runsCount++
	runNumber := s.runsCount
	s.mu.Unlock()

	logger.Infof("[Drain #%d] Starting at %s", runNumber, time.Now().Format(time.RFC3339))

	results, err := s.worker.ProcessDueMessages(ctx)
	if err != nil {
		logger.Errorf("[Drain #%d] Error transmitting messages: %v", runNumber, err)
		return
	}

	s.refreshStats(ctx, runNumber)

	if results == nil {
		logger.Debugf("[Drain #%d] Queue is empty", runNumber)
		return
	}

	successCount := 0
	skippedCount := 0
	for _, r := range results {
		if r.Skipped {
			skippedCount++
			continue
		}
		if r.Success {
			successCount++
		}
	}
	failedCount := len(results) - successCount - skippedCount

	s.mu.Lock()
	s.messagesSent += int64(successCount)

	if failedCount > 0 && successCount == 0 {
		s.consecutiveAllFailCount++
		logger.Warnf("[Drain #%d] All %d transmissions failed (consecutive: %d) - check gateway session pairing",
			runNumber, failedCount, s.consecutiveAllFailCount)
	} else {
		s.consecutiveAllFailCount = 0
	}
	s.mu.Unlock()

	logger.Infof("[Drain #%d] Processed %d messages: %d sent, %d failed, %d skipped",
		runNumber, len(results), successCount, failedCount, skippedCount)
}

func (s *Scheduler) refreshStats(ctx context.Context, runNumber int64) {
	stats, err := s.worker.RefreshStats(ctx)
	if err != nil {
		logger.Warnf("[Drain #%d] Failed to refresh queue stats: %v", runNumber, err)
		return
	}

	s.mu.Lock()
	s.lastStats = stats
	s.mu.Unlock()
}

func (s *Scheduler) Stop() error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		logger.Warnf("Queue worker is not running")
		return nil
	}

	s.running = false
	stopChan := s.stopChan
	doneChan := s.doneChan
	s.mu.Unlock()

	// Send stop signal
	close(stopChan)

	// Wait for goroutine to finish
	<-doneChan

	logger.Infof("Queue worker stopped")
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) GetStatus() WorkerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := WorkerStatus{
		Running:                 s.running,
		LastRunAt:               s.lastRunAt,
		MessagesSent:            s.messagesSent,
		RunsCount:               s.runsCount,
		Interval:                s.interval,
		ConsecutiveAllFailCount: s.consecutiveAllFailCount,
		QueueStats:              s.lastStats,
	}

	if s.running && !s.lastRunAt.IsZero() {
		status.NextRunAt = s.lastRunAt.Add(s.interval)
	}

	return status
}

type WorkerStatus struct {
	Running                 bool               `json:"running"`
	LastRunAt               time.Time          `json:"lastRunAt,omitempty"`
	NextRunAt               time.Time          `json:"nextRunAt,omitempty"`
	MessagesSent            int64              `json:"messagesSent"`
	RunsCount               int64              `json:"runsCount"`
	Interval                time.Duration      `json:"interval"`
	ConsecutiveAllFailCount int                `json:"consecutiveAllFailCount"`
	QueueStats              *domain.QueueStats `json:"queueStats,omitempty"`
}
