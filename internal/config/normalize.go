package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Account.Name = strings.TrimSpace(c.Account.Name)
	if c.Account.LogoPath != "" {
		expanded, err := expandPath(c.Account.LogoPath)
		if err != nil {
			return fmt.Errorf("account.logo_path: %w", err)
		}
		c.Account.LogoPath = expanded
	}

	c.Publish.AccessToken = strings.TrimSpace(c.Publish.AccessToken)
	c.Publish.UserID = strings.TrimSpace(c.Publish.UserID)
	c.Publish.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Publish.PublicBaseURL), "/")
	c.Publish.GraphBaseURL = strings.TrimRight(strings.TrimSpace(c.Publish.GraphBaseURL), "/")
	if c.Publish.GraphBaseURL == "" {
		c.Publish.GraphBaseURL = defaultGraphBaseURL
	}

	if strings.TrimSpace(c.Transcode.FontFamily) == "" {
		c.Transcode.FontFamily = defaultFontFamily
	}
	if strings.TrimSpace(c.Transcode.FFmpegBin) == "" {
		c.Transcode.FFmpegBin = defaultFFmpegBin
	}
	if strings.TrimSpace(c.Transcode.FFprobeBin) == "" {
		c.Transcode.FFprobeBin = defaultFFprobeBin
	}

	c.Downloaders.TikTokResolverURL = strings.TrimSpace(c.Downloaders.TikTokResolverURL)
	if c.Downloaders.TikTokResolverURL == "" {
		c.Downloaders.TikTokResolverURL = defaultTikTokAPI
	}
	if strings.TrimSpace(c.Downloaders.YtDlpBin) == "" {
		c.Downloaders.YtDlpBin = defaultYtDlpBin
	}
	if c.Downloaders.RequestTimeout <= 0 {
		c.Downloaders.RequestTimeout = defaultHTTPTimeout
	}

	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = filepath.Join(c.Paths.DataDir, "downloads")
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.ServeBind = strings.TrimSpace(c.Paths.ServeBind)
	if c.Paths.ServeBind == "" {
		c.Paths.ServeBind = defaultServeBind
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}
