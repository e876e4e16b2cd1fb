package publish

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reelpipe/internal/services"
)

type fakeGraph struct {
	statuses      []string
	statusCalls   int
	containerReqs []map[string]string
	publishReqs   []map[string]string
}

func newFakeGraph(statuses ...string) *fakeGraph {
	return &fakeGraph{statuses: statuses}
}

func (f *fakeGraph) handler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/media"):
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode container request: %v", err)
			}
			f.containerReqs = append(f.containerReqs, body)
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/media_publish"):
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode publish request: %v", err)
			}
			f.publishReqs = append(f.publishReqs, body)
			json.NewEncoder(w).Encode(map[string]string{"id": "media-9"})
		case r.Method == http.MethodGet && r.URL.Query().Get("fields") == "status_code":
			status := f.statuses[len(f.statuses)-1]
			if f.statusCalls < len(f.statuses) {
				status = f.statuses[f.statusCalls]
			}
			f.statusCalls++
			json.NewEncoder(w).Encode(map[string]string{"status_code": status})
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestClient(t *testing.T, baseURL string, attempts int) *Client {
	t.Helper()
	client, err := NewClient(Options{
		BaseURL:       baseURL,
		AccessToken:   "token-abc",
		UserID:        "user-7",
		PublicBaseURL: "https://cdn.example.com",
		PollAttempts:  attempts,
		PollInterval:  time.Millisecond,
		GraceDelay:    time.Millisecond,
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.sleep = func(context.Context, time.Duration) error { return nil }
	return client
}

func TestPublishFullSequence(t *testing.T) {
	graph := newFakeGraph("IN_PROGRESS", "IN_PROGRESS", "FINISHED")
	srv := httptest.NewServer(graph.handler(t))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 10)
	mediaID, err := client.Publish(context.Background(), "reel_20.mp4", "a caption")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if mediaID != "media-9" {
		t.Fatalf("expected media id media-9, got %q", mediaID)
	}

	if len(graph.containerReqs) != 1 {
		t.Fatalf("expected one container creation, got %d", len(graph.containerReqs))
	}
	created := graph.containerReqs[0]
	if created["media_type"] != "REELS" {
		t.Fatalf("expected REELS media type, got %q", created["media_type"])
	}
	if created["video_url"] != "https://cdn.example.com/downloads/reel_20.mp4" {
		t.Fatalf("unexpected video url %q", created["video_url"])
	}
	if created["caption"] != "a caption" || created["access_token"] != "token-abc" {
		t.Fatalf("container request missing fields: %v", created)
	}

	if graph.statusCalls != 3 {
		t.Fatalf("expected 3 status polls, got %d", graph.statusCalls)
	}
	if len(graph.publishReqs) != 1 || graph.publishReqs[0]["creation_id"] != "container-1" {
		t.Fatalf("publish must confirm the created container: %v", graph.publishReqs)
	}
}

func TestWaitReadyErrorStatusStopsPolling(t *testing.T) {
	graph := newFakeGraph("IN_PROGRESS", "ERROR", "FINISHED")
	srv := httptest.NewServer(graph.handler(t))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 10)
	err := client.WaitReady(context.Background(), "container-1")
	if !errors.Is(err, services.ErrPublish) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if errors.Is(err, services.ErrTimeout) {
		t.Fatal("error status must not be reported as a timeout")
	}
	if graph.statusCalls != 2 {
		t.Fatalf("polling must stop at the error status, got %d calls", graph.statusCalls)
	}
}

func TestWaitReadyExhaustedAttemptsIsTimeout(t *testing.T) {
	graph := newFakeGraph("IN_PROGRESS")
	srv := httptest.NewServer(graph.handler(t))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	err := client.WaitReady(context.Background(), "container-1")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if graph.statusCalls != 3 {
		t.Fatalf("expected exactly 3 polls, got %d", graph.statusCalls)
	}
}

func TestCreateContainerSurfacesRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid video_url"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 3)
	_, err := client.CreateContainer(context.Background(), "reel.mp4", "caption")
	if !errors.Is(err, services.ErrPublish) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid video_url") {
		t.Fatalf("remote error body must be surfaced: %v", err)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Options{PublicBaseURL: "https://cdn.example.com"}, nil, nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	_, err = NewClient(Options{AccessToken: "token", UserID: "user"}, nil, nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing public base URL, got %v", err)
	}
}

func TestArtifactURLEscapesFilename(t *testing.T) {
	client := newTestClient(t, "https://graph.example.com", 1)
	if got := client.ArtifactURL("my video.mp4"); got != "https://cdn.example.com/downloads/my%20video.mp4" {
		t.Fatalf("unexpected artifact url %q", got)
	}
}
