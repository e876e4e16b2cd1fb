package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/flock"

	"reelpipe/internal/captions"
	"reelpipe/internal/download"
	"reelpipe/internal/logging"
	"reelpipe/internal/queue"
	"reelpipe/internal/transcode"
)

// ErrRunActive reports that another run already holds the account's lock.
var ErrRunActive = errors.New("another pipeline run is active for this account")

// Store is the queue surface the orchestrator needs.
type Store interface {
	NextUnposted(ctx context.Context) (*queue.Item, error)
	MarkDownloaded(ctx context.Context, id int64, filename string) error
	MarkPosted(ctx context.Context, id int64) error
}

// Fetcher downloads an item's source video.
type Fetcher interface {
	Fetch(ctx context.Context, source queue.Source, url, baseName string) (download.File, error)
}

// Transcoder renders a fetched video under a preset.
type Transcoder interface {
	Transcode(ctx context.Context, req transcode.Request) (string, error)
}

// Publisher confirms a rendered artifact with the remote platform.
type Publisher interface {
	Publish(ctx context.Context, filename, caption string) (string, error)
}

// Options carries the per-account settings one run operates under.
type Options struct {
	AccountName string
	// LogoPath is the brand asset handed to the logo preset.
	LogoPath string
	// FallbackCaption is used when an item resolves no caption of its own.
	FallbackCaption string
	// LockPath guards against concurrent runs for the same account.
	LockPath string
}

// Orchestrator runs one item through the full stage sequence.
type Orchestrator struct {
	store      Store
	fetcher    Fetcher
	transcoder Transcoder
	publisher  Publisher
	opts       Options
	logger     *slog.Logger
}

// NewOrchestrator wires the stage collaborators together.
func NewOrchestrator(store Store, fetcher Fetcher, transcoder Transcoder, publisher Publisher, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		store:      store,
		fetcher:    fetcher,
		transcoder: transcoder,
		publisher:  publisher,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// baseFilename builds the per-account, per-item file stem so concurrent
// accounts sharing a download directory never collide.
func baseFilename(account string, itemID int64) string {
	safe := unsafeNameChars.ReplaceAllString(account, "_")
	if safe == "" {
		safe = "unknown"
	}
	return fmt.Sprintf("%s_media_%d", safe, itemID)
}

// RunOnce processes the highest-priority unposted item to completion. It
// returns EmptyQueue when nothing is pending, and a Failed outcome naming
// the stage otherwise.
func (o *Orchestrator) RunOnce(ctx context.Context) Outcome {
	if o.opts.LockPath != "" {
		lock := flock.New(o.opts.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return failed("claim", 0, fmt.Errorf("acquire run lock %s: %w", o.opts.LockPath, err))
		}
		if !locked {
			return failed("claim", 0, fmt.Errorf("%w (lock %s)", ErrRunActive, o.opts.LockPath))
		}
		defer lock.Unlock()
	}

	item, err := o.store.NextUnposted(ctx)
	if err != nil {
		return failed("select", 0, err)
	}
	if item == nil {
		o.logger.Info("queue empty", logging.String(logging.FieldAccount, o.opts.AccountName))
		return emptyQueue()
	}

	o.logger.Info("processing item",
		logging.String(logging.FieldAccount, o.opts.AccountName),
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("source", string(item.Source)),
		logging.String("preset", string(item.FormatPreset)),
		logging.Bool("already_downloaded", item.Downloaded),
	)

	base := baseFilename(o.opts.AccountName, item.ID)
	file, err := o.fetcher.Fetch(ctx, item.Source, item.URL, base)
	if err != nil {
		return failed("fetch", item.ID, err)
	}
	if _, statErr := os.Stat(file.Path); statErr != nil {
		return failed("fetch", item.ID, fmt.Errorf("downloaded file missing at %s: %w", file.Path, statErr))
	}
	if err := o.store.MarkDownloaded(ctx, item.ID, filepath.Base(file.Path)); err != nil {
		return failed("fetch", item.ID, err)
	}
	o.logger.Info("item downloaded",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("filename", filepath.Base(file.Path)),
	)

	caption := captions.Resolve(item.CaptionStrategy, item.CaptionCustom, file.SourceCaption, o.opts.FallbackCaption)

	transcodedPath := filepath.Join(filepath.Dir(file.Path), "transcoded_"+filepath.Base(file.Path))
	outputPath, err := o.transcoder.Transcode(ctx, transcode.Request{
		InputPath:  file.Path,
		OutputPath: transcodedPath,
		Preset:     item.FormatPreset,
		LogoPath:   o.opts.LogoPath,
		WithLogo:   item.Logo,
		Caption:    caption,
	})
	if err != nil {
		return failed("transcode", item.ID, err)
	}

	mediaID, err := o.publisher.Publish(ctx, filepath.Base(outputPath), caption)
	if err != nil {
		return failed("publish", item.ID, err)
	}
	if err := o.store.MarkPosted(ctx, item.ID); err != nil {
		return failed("publish", item.ID, err)
	}

	o.cleanup(item.ID, file.Path, outputPath)
	o.logger.Info("item published",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("media_id", mediaID),
	)
	return processed(item.ID, mediaID)
}

// cleanup removes local artifacts after a confirmed publish. Failures are
// logged, never fatal.
func (o *Orchestrator) cleanup(itemID int64, paths ...string) {
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			o.logger.Warn("could not delete local artifact",
				logging.Int64(logging.FieldItemID, itemID),
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}
}
