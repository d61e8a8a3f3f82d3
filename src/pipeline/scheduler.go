package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gridwatch/src/interfaces"
	"gridwatch/src/logger"
	"gridwatch/src/models"
)

// Scheduler repeats pipeline runs on a fixed interval, publishes each report
// and prunes expired history.
type Scheduler struct {
	Pipeline  *Pipeline
	Store     interfaces.IPriceStore
	Exchanger interfaces.IDataExchanger
	Interval  time.Duration
	Logger    *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// -----------------------------------------------------------------------------

// NewScheduler wires a scheduler. exchanger may be nil when nothing consumes
// the reports.
func NewScheduler(cfg *models.MConfig, p *Pipeline, store interfaces.IPriceStore, exchanger interfaces.IDataExchanger, log *logger.Logger) *Scheduler {
	interval := time.Hour
	if cfg != nil && cfg.DataSource.UpdateIntervalSeconds > 0 {
		interval = time.Duration(cfg.DataSource.UpdateIntervalSeconds) * time.Second
	}
	return &Scheduler{
		Pipeline:  p,
		Store:     store,
		Exchanger: exchanger,
		Interval:  interval,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// RunOnce executes a single pass and publishes its report.
func (s *Scheduler) RunOnce(ctx context.Context) (models.MRunReport, error) {
	report, err := s.Pipeline.Run(ctx, time.Time{})
	if err != nil {
		s.Logger.Error("Run %s completed with errors: %v", report.RunID, err)
	}

	if s.Exchanger != nil {
		s.Exchanger.UpdateAllDatas(report)
		s.Exchanger.Broadcast(report)
	}

	if cerr := s.Store.CleanupOldData(); cerr != nil {
		s.Logger.Warning("Cleanup failed: %v", cerr)
	}

	return report, err
}

// -----------------------------------------------------------------------------

// Start runs immediately and then on every tick until Stop or ctx ends.
func (s *Scheduler) Start(parentCtx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.runLoop(ctx)
	s.Logger.Info("Scheduler started (interval %s)", s.Interval)
	return nil
}

// -----------------------------------------------------------------------------

// Stop cancels the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.Logger.Info("Scheduler stopped")
	return nil
}

// -----------------------------------------------------------------------------

func (s *Scheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}
