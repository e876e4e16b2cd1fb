package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelpipe/internal/config"
	"reelpipe/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the media queue",
	}

	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueImportCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearPostedCommand(ctx))
	queueCmd.AddCommand(newQueueSetLogoCommand(ctx))

	return queueCmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var (
		captionStrategy string
		captionCustom   string
		formatPreset    string
		noLogo          bool
	)

	cmd := &cobra.Command{
		Use:   "add <source> <url>",
		Short: "Add one video to the queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				item := queue.NewItem{
					Source:          queue.Source(args[0]),
					URL:             args[1],
					CaptionStrategy: queue.CaptionStrategy(captionStrategy),
					CaptionCustom:   captionCustom,
					FormatPreset:    queue.FormatPreset(formatPreset),
				}
				if noLogo {
					logo := false
					item.Logo = &logo
				}
				id, err := store.Insert(cmd.Context(), item)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added item %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&captionStrategy, "caption-strategy", "", "Caption strategy: default, custom, or from_source")
	cmd.Flags().StringVar(&captionCustom, "caption", "", "Custom caption text (with --caption-strategy custom)")
	cmd.Flags().StringVar(&formatPreset, "preset", "", "Format preset: raw, logo_only, or caption_top (defaults per source)")
	cmd.Flags().BoolVar(&noLogo, "no-logo", false, "Skip the brand overlay for this item")
	return cmd
}

// newQueueImportCommand reads a CSV of source,url[,caption_strategy[,caption
// [,preset]]] rows and inserts them atomically: one bad row rejects the file.
func newQueueImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk-import queue items from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer file.Close()

				items, err := parseImportCSV(file)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					return errors.New("import file contains no rows")
				}

				ids, err := store.InsertMany(cmd.Context(), items)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items (ids %d-%d)\n", len(ids), ids[0], ids[len(ids)-1])
				return nil
			})
		},
	}
}

func parseImportCSV(r io.Reader) ([]queue.NewItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var items []queue.NewItem
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read import file: %w", err)
		}
		line++
		if line == 1 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "source") {
			continue // header row
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected at least source,url", line)
		}
		item := queue.NewItem{
			Source: queue.Source(strings.TrimSpace(record[0])),
			URL:    strings.TrimSpace(record[1]),
		}
		if len(record) > 2 {
			item.CaptionStrategy = queue.CaptionStrategy(strings.TrimSpace(record[2]))
		}
		if len(record) > 3 {
			item.CaptionCustom = strings.TrimSpace(record[3])
		}
		if len(record) > 4 {
			item.FormatPreset = queue.FormatPreset(strings.TrimSpace(record[4]))
		}
		items = append(items, item)
	}
	return items, nil
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				items, err := store.List(cmd.Context(), pendingOnly)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						string(item.Source),
						truncate(item.URL, 48),
						string(item.FormatPreset),
						yesNo(item.Downloaded),
						yesNo(item.Posted),
						item.CreatedAt.Local().Format(time.DateTime),
					})
				}
				table := renderTable(
					[]string{"ID", "Source", "URL", "Preset", "Downloaded", "Posted", "Created"},
					rows, 0,
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Show only unposted items")
	return cmd
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				stats, err := store.Summary(cmd.Context())
				if err != nil {
					return err
				}
				rows := [][]string{
					{"Total", strconv.Itoa(stats.Total)},
					{"Pending", strconv.Itoa(stats.Pending)},
					{"Downloaded (unposted)", strconv.Itoa(stats.Downloaded)},
					{"Posted", strconv.Itoa(stats.Posted)},
				}
				table := renderTable([]string{"Counter", "Count"}, rows, 1)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove queue items by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				var removed int64
				for _, arg := range args {
					id, err := strconv.ParseInt(arg, 10, 64)
					if err != nil {
						return fmt.Errorf("invalid id %q", arg)
					}
					n, err := store.Remove(cmd.Context(), id)
					if err != nil {
						return err
					}
					removed += n
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d items\n", removed)
				return nil
			})
		},
	}
}

func newQueueClearPostedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-posted",
		Short: "Delete items that have already been posted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				removed, err := store.ClearPosted(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d posted items\n", removed)
				return nil
			})
		},
	}
}

func newQueueSetLogoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-logo <id> <on|off>",
		Short: "Toggle the brand overlay for an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid id %q", args[0])
				}
				var logo bool
				switch strings.ToLower(args[1]) {
				case "on", "true", "1":
					logo = true
				case "off", "false", "0":
					logo = false
				default:
					return fmt.Errorf("invalid logo value %q (use on or off)", args[1])
				}
				if err := store.SetLogo(cmd.Context(), id, logo); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d logo set to %s\n", id, args[1])
				return nil
			})
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
