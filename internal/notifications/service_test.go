package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelpipe/internal/config"
	"reelpipe/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPublished(context.Background(), "acct", 1, "media-1"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceSendsHeadersAndBody(t *testing.T) {
	type captured struct {
		title    string
		tags     string
		priority string
		body     string
	}
	var got captured

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyPublishFailed(context.Background(), "acct", "publish", 7, errors.New("remote down")); err != nil {
		t.Fatalf("NotifyPublishFailed: %v", err)
	}
	if got.title != "Reelpipe - Failure" {
		t.Fatalf("unexpected title %q", got.title)
	}
	if got.tags != "reelpipe,pipeline,failed" {
		t.Fatalf("unexpected tags %q", got.tags)
	}
	if got.priority != "high" {
		t.Fatalf("failures should be high priority, got %q", got.priority)
	}
	if got.body != "Item 7 failed at publish stage for acct: remote down" {
		t.Fatalf("unexpected body %q", got.body)
	}

	if err := svc.NotifyPublished(context.Background(), "acct", 7, "media-9"); err != nil {
		t.Fatalf("NotifyPublished: %v", err)
	}
	if got.priority != "" {
		t.Fatalf("success must use default priority, got %q", got.priority)
	}
	if got.body != "Published item 7 for acct (media media-9)" {
		t.Fatalf("unexpected body %q", got.body)
	}
}

func TestNtfyServiceSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}
