package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"meetdesk/internal/notify"
	"meetdesk/internal/reminders/domain"
)

// SweeperConfig holds configuration for the reminder sweeper.
type SweeperConfig struct {
	// Interval between sweeps.
	Interval time.Duration
	// BatchSize is the maximum number of reminders claimed per sweep.
	BatchSize int
	// DispatchTimeout bounds a single delivery attempt.
	DispatchTimeout time.Duration
}

// DefaultSweeperConfig returns sensible defaults.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Interval:        5 * time.Minute,
		BatchSize:       100,
		DispatchTimeout: 30 * time.Second,
	}
}

// Sweeper periodically drains due reminders and hands them to the notifier.
// Delivery is at-least-once: a reminder is marked sent only after the
// notifier accepts it, so a crash between send and mark can repeat a send.
type Sweeper struct {
	repo     domain.Repository
	notifier notify.Notifier
	config   SweeperConfig
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	stats    SweeperStats
}

// SweeperStats tracks sweeper metrics.
type SweeperStats struct {
	Sent        int64
	Failed      int64
	LastError   string
	LastSweepAt time.Time
}

// NewSweeper creates a new reminder sweeper.
func NewSweeper(repo domain.Repository, notifier notify.Notifier, config SweeperConfig, logger *slog.Logger) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.DispatchTimeout <= 0 {
		config.DispatchTimeout = 30 * time.Second
	}

	return &Sweeper{
		repo:     repo,
		notifier: notifier,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Start begins the background sweep loop. Calling Start on a running sweeper
// is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true
	s.stopChan = make(chan struct{})
	s.wg.Add(1)

	go s.run(ctx)

	s.logger.Info("reminder sweeper started",
		"interval", s.config.Interval,
		"batch_size", s.config.BatchSize,
	)
}

// Stop halts the sweep loop and waits for the in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("reminder sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Sweep immediately on start, then on every tick.
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// SweepOnce runs a single sweep synchronously. It returns the number of
// reminders sent and the number that failed.
func (s *Sweeper) SweepOnce(ctx context.Context) (sent, failed int) {
	return s.sweep(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) (sent, failed int) {
	now := s.now()

	due, err := s.repo.FindDue(ctx, now, s.config.BatchSize)
	if err != nil {
		s.logger.Error("failed to fetch due reminders", "error", err)
		s.recordSweep(now, 0, 0, err)
		return 0, 0
	}

	for _, reminder := range due {
		if err := s.dispatch(ctx, reminder); err != nil {
			failed++
			s.logger.Error("failed to dispatch reminder",
				"reminder_id", reminder.ID(),
				"recipient", reminder.Recipient(),
				"error", err,
			)
			continue
		}
		sent++
	}

	if len(due) > 0 {
		s.logger.Info("reminder sweep completed", "due", len(due), "sent", sent, "failed", failed)
	}
	s.recordSweep(now, sent, failed, nil)
	return sent, failed
}

func (s *Sweeper) dispatch(ctx context.Context, reminder *domain.Reminder) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.config.DispatchTimeout)
	defer cancel()

	if err := s.notifier.Send(sendCtx, []string{reminder.Recipient()}, reminder.Subject(), reminder.Body()); err != nil {
		return err
	}

	claimed, err := s.repo.MarkSent(ctx, reminder.ID(), s.now())
	if err != nil {
		return err
	}
	if !claimed {
		// Another sweeper won the flag between FindDue and here. The
		// recipient got a duplicate; nothing to undo.
		s.logger.Warn("reminder already marked sent", "reminder_id", reminder.ID())
	}
	return nil
}

func (s *Sweeper) recordSweep(at time.Time, sent, failed int, sweepErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Sent += int64(sent)
	s.stats.Failed += int64(failed)
	s.stats.LastSweepAt = at
	if sweepErr != nil {
		s.stats.LastError = sweepErr.Error()
	}
}

// Stats returns a copy of the sweeper metrics.
func (s *Sweeper) Stats() SweeperStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
