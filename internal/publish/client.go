package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelpipe/internal/logging"
	"reelpipe/internal/services"
)

const userAgent = "reelpipe/0.1.0"

// Container status codes reported by the remote API.
const (
	statusFinished = "FINISHED"
	statusError    = "ERROR"
)

// Options configures one publishing client.
type Options struct {
	// BaseURL is the API root, e.g. https://graph.facebook.com/v19.0.
	BaseURL     string
	AccessToken string
	UserID      string
	// PublicBaseURL is where rendered artifacts are served from; the remote
	// side fetches them by URL during container creation.
	PublicBaseURL string
	PollAttempts  int
	PollInterval  time.Duration
	GraceDelay    time.Duration
}

// Client drives the create/poll/publish sequence against the remote API.
type Client struct {
	opts   Options
	client *http.Client
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// NewClient validates credentials and builds a Client. httpClient may be nil.
func NewClient(opts Options, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(opts.AccessToken) == "" || strings.TrimSpace(opts.UserID) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "build client",
			"access token and user id are required", nil)
	}
	if strings.TrimSpace(opts.PublicBaseURL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "build client",
			"public base URL for rendered artifacts is required", nil)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://graph.facebook.com/v19.0"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = 10
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.GraceDelay < 0 {
		opts.GraceDelay = 0
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		opts:   opts,
		client: httpClient,
		sleep:  sleepContext,
		logger: logging.NewComponentLogger(logger, "publish"),
	}, nil
}

// ArtifactURL returns the public URL the remote API fetches filename from.
func (c *Client) ArtifactURL(filename string) string {
	return c.opts.PublicBaseURL + "/downloads/" + url.PathEscape(filename)
}

// Publish runs the full sequence for one rendered artifact and returns the
// remote media id.
func (c *Client) Publish(ctx context.Context, filename, caption string) (string, error) {
	containerID, err := c.CreateContainer(ctx, filename, caption)
	if err != nil {
		return "", err
	}
	if err := c.WaitReady(ctx, containerID); err != nil {
		return "", err
	}
	return c.Confirm(ctx, containerID)
}

// CreateContainer registers the artifact and caption with the remote API and
// returns the container id.
func (c *Client) CreateContainer(ctx context.Context, filename, caption string) (string, error) {
	videoURL := c.ArtifactURL(filename)
	c.logger.Info("creating media container",
		logging.String("video_url", videoURL),
		logging.Int("caption_length", len(caption)),
	)

	var result struct {
		ID string `json:"id"`
	}
	err := c.postJSON(ctx, c.opts.BaseURL+"/"+c.opts.UserID+"/media", map[string]string{
		"media_type":   "REELS",
		"video_url":    videoURL,
		"caption":      caption,
		"access_token": c.opts.AccessToken,
	}, &result)
	if err != nil {
		return "", services.Wrap(services.ErrPublish, "publish", "create container", "", err)
	}
	if result.ID == "" {
		return "", services.Wrap(services.ErrPublish, "publish", "create container",
			"remote API returned no container id", nil)
	}
	c.logger.Info("media container created", logging.String("container_id", result.ID))
	return result.ID, nil
}

// WaitReady blocks until the container reports finished. It waits the grace
// delay first, then polls status at the configured interval. An error status
// is a publish failure; running out of attempts is a timeout.
func (c *Client) WaitReady(ctx context.Context, containerID string) error {
	if c.opts.GraceDelay > 0 {
		c.logger.Info("waiting for remote processing to begin",
			logging.Duration("grace_delay", c.opts.GraceDelay))
		if err := c.sleep(ctx, c.opts.GraceDelay); err != nil {
			return services.Wrap(services.ErrPublish, "publish", "wait ready", "", err)
		}
	}

	for attempt := 1; attempt <= c.opts.PollAttempts; attempt++ {
		status, err := c.containerStatus(ctx, containerID)
		if err != nil {
			return services.Wrap(services.ErrPublish, "publish", "poll status", "", err)
		}
		switch status {
		case statusFinished:
			c.logger.Info("media processing finished",
				logging.String("container_id", containerID),
				logging.Int("attempts", attempt),
			)
			return nil
		case statusError:
			return services.Wrap(services.ErrPublish, "publish", "poll status",
				fmt.Sprintf("remote processing failed for container %s", containerID), nil)
		}
		c.logger.Info("media not ready",
			logging.String("status", status),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", c.opts.PollAttempts),
		)
		if attempt < c.opts.PollAttempts {
			if err := c.sleep(ctx, c.opts.PollInterval); err != nil {
				return services.Wrap(services.ErrPublish, "publish", "wait ready", "", err)
			}
		}
	}
	return services.Wrap(services.ErrTimeout, "publish", "wait ready",
		fmt.Sprintf("container %s not ready after %d attempts", containerID, c.opts.PollAttempts), nil)
}

// Confirm publishes a ready container and returns the remote media id.
func (c *Client) Confirm(ctx context.Context, containerID string) (string, error) {
	var result struct {
		ID string `json:"id"`
	}
	err := c.postJSON(ctx, c.opts.BaseURL+"/"+c.opts.UserID+"/media_publish", map[string]string{
		"creation_id":  containerID,
		"access_token": c.opts.AccessToken,
	}, &result)
	if err != nil {
		return "", services.Wrap(services.ErrPublish, "publish", "confirm", "", err)
	}
	c.logger.Info("media published", logging.String("media_id", result.ID))
	return result.ID, nil
}

func (c *Client) containerStatus(ctx context.Context, containerID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s",
		c.opts.BaseURL, containerID, url.QueryEscape(c.opts.AccessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("query container status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", remoteError(resp)
	}

	var result struct {
		StatusCode string `json:"status_code"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&result); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}
	return result.StatusCode, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return remoteError(resp)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func remoteError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("remote API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
