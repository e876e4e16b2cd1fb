package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelpipe/internal/config"
	"reelpipe/internal/notifications"
	"reelpipe/internal/pipeline"
	"reelpipe/internal/queue"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process one queue item end to end",
		Long: "Selects the highest-priority unposted item, downloads it, renders it " +
			"under its preset, publishes it, and marks it posted. Exits 0 on success, " +
			"99 when the queue is empty, and 1 on any stage failure.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				orch, err := buildOrchestrator(cfg, store, logger)
				if err != nil {
					return err
				}

				notifier := notifications.NewService(cfg)
				outcome := orch.RunOnce(cmd.Context())
				switch outcome.Kind {
				case pipeline.Processed:
					_ = notifier.NotifyPublished(cmd.Context(), cfg.Account.Name, outcome.ItemID, outcome.MediaID)
					fmt.Fprintf(cmd.OutOrStdout(), "Published item %d (media id %s)\n", outcome.ItemID, outcome.MediaID)
					return nil
				case pipeline.EmptyQueue:
					_ = notifier.NotifyQueueDrained(cmd.Context(), cfg.Account.Name)
					return &exitCodeError{
						code:    pipeline.ExitEmptyQueue,
						message: "queue is empty",
					}
				default:
					_ = notifier.NotifyPublishFailed(cmd.Context(), cfg.Account.Name, outcome.Stage, outcome.ItemID, outcome.Err)
					return &exitCodeError{
						code:    pipeline.ExitFailure,
						message: fmt.Sprintf("pipeline failed at %s stage: %v", outcome.Stage, outcome.Err),
					}
				}
			})
		},
	}
}
