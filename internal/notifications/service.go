package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelpipe/internal/config"
)

const userAgent = "reelpipe/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyPublished(ctx context.Context, account string, itemID int64, mediaID string) error
	NotifyPublishFailed(ctx context.Context, account, stage string, itemID int64, err error) error
	NotifyQueueDrained(ctx context.Context, account string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.NtfyRequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyPublished(ctx context.Context, account string, itemID int64, mediaID string) error {
	data := payload{
		title:   "Reelpipe - Published",
		message: fmt.Sprintf("Published item %d for %s (media %s)", itemID, strings.TrimSpace(account), mediaID),
		tags:    []string{"reelpipe", "publish", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishFailed(ctx context.Context, account, stage string, itemID int64, err error) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Item %d failed at %s stage for %s", itemID, stage, strings.TrimSpace(account))
	if err != nil {
		builder.WriteString(": ")
		builder.WriteString(strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:    "Reelpipe - Failure",
		message:  builder.String(),
		tags:     []string{"reelpipe", "pipeline", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueDrained(ctx context.Context, account string) error {
	data := payload{
		title:   "Reelpipe - Queue Empty",
		message: fmt.Sprintf("Queue for %s is empty; account leaves the rotation", strings.TrimSpace(account)),
		tags:    []string{"reelpipe", "queue", "drained"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Reelpipe - Test",
		message:  "Notification system test",
		tags:     []string{"reelpipe", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyPublished(context.Context, string, int64, string) error { return nil }
func (noopService) NotifyPublishFailed(context.Context, string, string, int64, error) error {
	return nil
}
func (noopService) NotifyQueueDrained(context.Context, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
