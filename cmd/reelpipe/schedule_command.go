package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelpipe/internal/config"
	"reelpipe/internal/logging"
	"reelpipe/internal/notifications"
	"reelpipe/internal/pipeline"
	"reelpipe/internal/queue"
	"reelpipe/internal/scheduler"
)

// notifyingRunner forwards pipeline outcomes to the account's notifier.
type notifyingRunner struct {
	orch     *pipeline.Orchestrator
	notifier notifications.Service
	account  string
}

func (r *notifyingRunner) RunOnce(ctx context.Context) pipeline.Outcome {
	outcome := r.orch.RunOnce(ctx)
	switch outcome.Kind {
	case pipeline.Processed:
		_ = r.notifier.NotifyPublished(ctx, r.account, outcome.ItemID, outcome.MediaID)
	case pipeline.EmptyQueue:
		_ = r.notifier.NotifyQueueDrained(ctx, r.account)
	case pipeline.Failed:
		_ = r.notifier.NotifyPublishFailed(ctx, r.account, outcome.Stage, outcome.ItemID, outcome.Err)
	}
	return outcome
}

// scheduledAccount keeps one account's collaborators alive for the lifetime
// of the scheduler run.
type scheduledAccount struct {
	cfg   *config.Config
	store *queue.Store
	orch  *pipeline.Orchestrator
}

func (a *scheduledAccount) close() {
	if a.store != nil {
		a.store.Close()
	}
}

// newScheduleCommand drives pipeline passes for several accounts at once.
// Each account has its own config file and datastore; an account leaves the
// rotation when its queue drains.
func newScheduleCommand() *cobra.Command {
	var logLevel string
	var logFormat string

	cmd := &cobra.Command{
		Use:         "schedule <config.toml>...",
		Short:       "Run the pipeline on an interval for one or more accounts",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{
				Level:  logLevel,
				Format: logFormat,
			})
			if err != nil {
				return err
			}

			accounts := make([]*scheduledAccount, 0, len(args))
			defer func() {
				for _, account := range accounts {
					account.close()
				}
			}()

			sched := scheduler.New(logger)
			for _, path := range args {
				cfg, err := config.Load(path)
				if err != nil {
					return fmt.Errorf("load %s: %w", path, err)
				}
				if err := cfg.EnsureDirectories(); err != nil {
					return fmt.Errorf("prepare %s: %w", cfg.Account.Name, err)
				}

				store, err := queue.Open(cfg.QueueDBPath())
				if err != nil {
					return fmt.Errorf("open queue for %s: %w", cfg.Account.Name, err)
				}
				account := &scheduledAccount{cfg: cfg, store: store}
				accounts = append(accounts, account)

				accountLogger := logger.With(logging.String(logging.FieldAccount, cfg.Account.Name))
				orch, err := buildOrchestrator(cfg, store, accountLogger)
				if err != nil {
					return err
				}
				account.orch = orch

				runner := &notifyingRunner{
					orch:     orch,
					notifier: notifications.NewService(cfg),
					account:  cfg.Account.Name,
				}
				interval := time.Duration(cfg.Scheduler.PostInterval) * time.Minute
				if err := sched.Add(cfg.Account.Name, runner, interval); err != nil {
					return err
				}
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := sched.Start(runCtx); err != nil {
				return err
			}
			done := make(chan struct{})
			go func() {
				sched.Wait()
				close(done)
			}()
			select {
			case <-runCtx.Done():
				sched.Stop()
			case <-done:
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All account queues drained or scheduler stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level for the scheduler process")
	cmd.Flags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")
	return cmd
}
