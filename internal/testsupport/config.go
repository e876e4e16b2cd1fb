package testsupport

import (
	"path/filepath"
	"testing"

	"reelpipe/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories and test
// credentials so Validate passes without touching the environment.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ServeBind = "127.0.0.1:0"
	cfg.Account.Name = "testaccount"
	cfg.Publish.AccessToken = "test-token"
	cfg.Publish.UserID = "test-user"
	cfg.Publish.PublicBaseURL = "https://cdn.test.invalid"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAccount overrides the account name on the test config.
func WithAccount(name string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Account.Name = name
	}
}

// WithFallbackCaption sets the account's fallback caption.
func WithFallbackCaption(caption string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Account.Caption = caption
	}
}

// WithLogo points the account at a logo asset.
func WithLogo(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Account.LogoPath = path
	}
}
