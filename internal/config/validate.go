package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAccount(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateTranscode(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAccount() error {
	if c.Account.Name == "" {
		return errors.New("account.name must be set")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.AccessToken == "" {
		return errors.New("publish.access_token is required. Set RP_ACCESS_TOKEN or edit the config file (create with 'reelpipe config init')")
	}
	if c.Publish.UserID == "" {
		return errors.New("publish.user_id is required. Set RP_USER_ID or edit the config file")
	}
	if c.Publish.PublicBaseURL == "" {
		return errors.New("publish.public_base_url is required so the remote API can fetch rendered artifacts")
	}
	if _, err := url.ParseRequestURI(c.Publish.PublicBaseURL); err != nil {
		return fmt.Errorf("publish.public_base_url: %w", err)
	}
	if c.Publish.PollAttempts <= 0 {
		return errors.New("publish.poll_attempts must be positive")
	}
	if c.Publish.PollInterval <= 0 {
		return errors.New("publish.poll_interval must be positive (seconds)")
	}
	if c.Publish.GraceDelay < 0 {
		return errors.New("publish.grace_delay must not be negative")
	}
	return nil
}

func (c *Config) validateTranscode() error {
	if c.Transcode.FontSize <= 0 {
		return errors.New("transcode.font_size must be positive")
	}
	if c.Transcode.TopStrip < 0 {
		return errors.New("transcode.top_strip must not be negative")
	}
	if c.Transcode.MaxDuration <= 0 {
		return errors.New("transcode.max_duration must be positive (seconds)")
	}
	if strings.TrimSpace(c.Transcode.FFmpegBin) == "" {
		return errors.New("transcode.ffmpeg_bin must be set")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.PostInterval <= 0 {
		return errors.New("scheduler.post_interval must be positive (minutes)")
	}
	return nil
}
