package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	DownloadDir string `toml:"download_dir"`
	LogDir      string `toml:"log_dir"`
	ServeBind   string `toml:"serve_bind"`
}

// Account identifies the publishing account this config drives.
type Account struct {
	Name     string `toml:"name"`
	LogoPath string `toml:"logo_path"`
	Caption  string `toml:"caption"`
}

// Publish contains remote publishing API settings. AccessToken and UserID may
// be provided through the environment instead of the config file.
type Publish struct {
	AccessToken   string `toml:"access_token" env:"RP_ACCESS_TOKEN"`
	UserID        string `toml:"user_id" env:"RP_USER_ID"`
	PublicBaseURL string `toml:"public_base_url" env:"RP_PUBLIC_BASE_URL"`
	GraphBaseURL  string `toml:"graph_base_url"`
	PollAttempts  int    `toml:"poll_attempts"`
	PollInterval  int    `toml:"poll_interval"`
	GraceDelay    int    `toml:"grace_delay"`
}

// Transcode contains canvas styling knobs shared by all presets.
type Transcode struct {
	FontFamily  string `toml:"font_family"`
	FontSize    int    `toml:"font_size"`
	TopStrip    int    `toml:"top_strip"`
	CaptionGap  int    `toml:"caption_gap"`
	FFmpegBin   string `toml:"ffmpeg_bin"`
	FFprobeBin  string `toml:"ffprobe_bin"`
	MaxDuration int    `toml:"max_duration"`
}

// Downloaders contains fetch settings for the source platforms. TikTok goes
// through a resolver endpoint that turns a share URL into a direct media URL;
// Twitter goes through the yt-dlp binary.
type Downloaders struct {
	TikTokResolverURL string `toml:"tiktok_resolver_url"`
	YtDlpBin          string `toml:"ytdlp_bin"`
	RequestTimeout    int    `toml:"request_timeout"`
}

// Notifications contains ntfy delivery settings. An empty topic disables
// notifications entirely.
type Notifications struct {
	NtfyTopic          string `toml:"ntfy_topic"`
	NtfyRequestTimeout int    `toml:"ntfy_request_timeout"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Scheduler contains multi-account scheduling settings.
type Scheduler struct {
	PostInterval int `toml:"post_interval"`
}

// Config is the root configuration shared across commands.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Account       Account       `toml:"account"`
	Publish       Publish       `toml:"publish"`
	Transcode     Transcode     `toml:"transcode"`
	Downloaders   Downloaders   `toml:"downloaders"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Scheduler     Scheduler     `toml:"scheduler"`
}

// DefaultConfigPath returns the conventional config location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "reelpipe", "config.toml"), nil
}

// Load reads the config file at path (or the default location when path is
// empty), applies defaults, environment overrides, normalization, and
// validation.
func Load(path string) (*Config, error) {
	resolved := path
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		resolved = defaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == "":
		// Missing default config is acceptable; env vars may carry the rest.
	default:
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	}

	if err := env.Parse(&cfg.Publish); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteSample writes the embedded sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.DownloadDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// QueueDBPath returns the SQLite database location for this account.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.DataDir, "queue.db")
}

// LockPath returns the per-account run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "run.lock")
}
