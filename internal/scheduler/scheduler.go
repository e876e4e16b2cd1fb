package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"reelpipe/internal/logging"
	"reelpipe/internal/pipeline"
)

// Runner executes one pipeline pass for an account.
type Runner interface {
	RunOnce(ctx context.Context) pipeline.Outcome
}

type job struct {
	account  string
	runner   Runner
	interval time.Duration
}

// Scheduler drives registered account jobs until their queues drain or the
// context is cancelled.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*job
	logger *slog.Logger

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started bool
}

// New builds an empty scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		jobs:   make(map[string]*job),
		logger: logging.NewComponentLogger(logger, "scheduler"),
	}
}

// Add registers an account job. Accounts are unique; interval must be
// positive.
func (s *Scheduler) Add(account string, runner Runner, interval time.Duration) error {
	if account == "" {
		return fmt.Errorf("account name must not be empty")
	}
	if runner == nil {
		return fmt.Errorf("account %s: runner must not be nil", account)
	}
	if interval <= 0 {
		return fmt.Errorf("account %s: interval must be positive", account)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	if _, exists := s.jobs[account]; exists {
		return fmt.Errorf("account %s already registered", account)
	}
	s.jobs[account] = &job{account: account, runner: runner, interval: interval}
	return nil
}

// Start launches one goroutine per registered account. Each job runs a pass
// immediately, then once per interval, stopping when its queue reports empty
// or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	if len(s.jobs) == 0 {
		return fmt.Errorf("no accounts registered")
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, j := range s.jobs {
		s.wg.Add(1)
		go func(j *job) {
			defer s.wg.Done()
			s.runJob(ctx, j)
		}(j)
	}
	return nil
}

// Wait blocks until every job has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Stop cancels all jobs and waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, j *job) {
	logger := s.logger.With(logging.String(logging.FieldAccount, j.account))
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		outcome := j.runner.RunOnce(ctx)
		switch outcome.Kind {
		case pipeline.EmptyQueue:
			logger.Info("queue drained; leaving rotation")
			return
		case pipeline.Failed:
			logger.Error("pipeline pass failed",
				logging.String(logging.FieldStage, outcome.Stage),
				logging.Int64(logging.FieldItemID, outcome.ItemID),
				logging.Error(outcome.Err),
			)
		default:
			logger.Info("pipeline pass complete",
				logging.Int64(logging.FieldItemID, outcome.ItemID),
				logging.String("media_id", outcome.MediaID),
			)
		}

		select {
		case <-ctx.Done():
			logger.Info("scheduler stopping")
			return
		case <-ticker.C:
		}
	}
}
