package download

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"reelpipe/internal/logging"
	"reelpipe/internal/services"
)

// TikTok fetches videos through a resolver API that exchanges a share URL
// for a direct, watermark-free media URL.
type TikTok struct {
	ResolverURL string
	Dir         string
	Client      *http.Client
	Logger      *slog.Logger
}

type tiktokResolverResponse struct {
	Data struct {
		Play  string `json:"play"`
		Title string `json:"title"`
	} `json:"data"`
}

func (t *TikTok) Fetch(ctx context.Context, videoURL, baseName string) (File, error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := t.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	mediaURL, title, err := t.resolve(ctx, client, videoURL)
	if err != nil {
		return File{}, services.Wrap(services.ErrFetch, "download", "resolve tiktok url", "", err)
	}

	dest := filepath.Join(t.Dir, baseName+".mp4")
	logger.Info("downloading tiktok video",
		logging.String("url", videoURL),
		logging.String("dest", filepath.Base(dest)),
	)
	if err := streamToFile(ctx, client, mediaURL, dest); err != nil {
		return File{}, services.Wrap(services.ErrFetch, "download", "download tiktok media", "", err)
	}
	return File{Path: dest, SourceCaption: strings.TrimSpace(title)}, nil
}

func (t *TikTok) resolve(ctx context.Context, client *http.Client, videoURL string) (string, string, error) {
	endpoint := fmt.Sprintf("%s?url=%s&no_watermark=true",
		strings.TrimRight(t.ResolverURL, "?"), url.QueryEscape(videoURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", fmt.Errorf("build resolver request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("query resolver: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", "", fmt.Errorf("resolver returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed tiktokResolverResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("decode resolver response: %w", err)
	}
	if parsed.Data.Play == "" {
		return "", "", fmt.Errorf("resolver response carries no media URL")
	}
	return parsed.Data.Play, parsed.Data.Title, nil
}

func streamToFile(ctx context.Context, client *http.Client, mediaURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("build media request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("media host returned %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("write media file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("close media file: %w", err)
	}
	return nil
}
