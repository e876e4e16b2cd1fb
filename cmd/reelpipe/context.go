package main

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"reelpipe/internal/config"
	"reelpipe/internal/download"
	"reelpipe/internal/logging"
	"reelpipe/internal/pipeline"
	"reelpipe/internal/publish"
	"reelpipe/internal/queue"
	"reelpipe/internal/transcode"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			OutputPaths: []string{
				"stdout",
				filepath.Join(cfg.Paths.LogDir, "reelpipe.log"),
			},
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger.With(logging.String(logging.FieldAccount, cfg.Account.Name))
	})
	return c.logger, c.loggerErr
}

// withStore opens the queue store for the configured account and closes it
// when fn returns.
func (c *commandContext) withStore(fn func(cfg *config.Config, store *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg.QueueDBPath())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

// buildOrchestrator assembles the full stage chain from a loaded config.
func buildOrchestrator(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	httpClient := &http.Client{Timeout: time.Duration(cfg.Downloaders.RequestTimeout) * time.Second}
	dispatcher := download.NewDispatcher(map[queue.Source]download.Downloader{
		queue.SourceTikTok: &download.TikTok{
			ResolverURL: cfg.Downloaders.TikTokResolverURL,
			Dir:         cfg.Paths.DownloadDir,
			Client:      httpClient,
			Logger:      logger,
		},
		queue.SourceTwitter: &download.Twitter{
			Bin:    cfg.Downloaders.YtDlpBin,
			Dir:    cfg.Paths.DownloadDir,
			Logger: logger,
		},
	})

	engine := transcode.NewEngine(
		&transcode.ExecRunner{Bin: cfg.Transcode.FFmpegBin, Logger: logger},
		&transcode.ExecProber{Bin: cfg.Transcode.FFprobeBin, Logger: logger},
		transcode.Options{
			FontFamily:  cfg.Transcode.FontFamily,
			FontSize:    cfg.Transcode.FontSize,
			TopStrip:    cfg.Transcode.TopStrip,
			CaptionGap:  cfg.Transcode.CaptionGap,
			MaxDuration: cfg.Transcode.MaxDuration,
		},
		logger,
	)

	publisher, err := publish.NewClient(publish.Options{
		BaseURL:       cfg.Publish.GraphBaseURL,
		AccessToken:   cfg.Publish.AccessToken,
		UserID:        cfg.Publish.UserID,
		PublicBaseURL: cfg.Publish.PublicBaseURL,
		PollAttempts:  cfg.Publish.PollAttempts,
		PollInterval:  time.Duration(cfg.Publish.PollInterval) * time.Second,
		GraceDelay:    time.Duration(cfg.Publish.GraceDelay) * time.Second,
	}, nil, logger)
	if err != nil {
		return nil, err
	}

	return pipeline.NewOrchestrator(store, dispatcher, engine, publisher, pipeline.Options{
		AccountName:     cfg.Account.Name,
		LogoPath:        cfg.Account.LogoPath,
		FallbackCaption: cfg.Account.Caption,
		LockPath:        cfg.LockPath(),
	}, logger), nil
}
