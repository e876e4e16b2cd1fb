package download

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"reelpipe/internal/logging"
	"reelpipe/internal/services"
)

// Twitter fetches videos with yt-dlp. The tweet text arrives as the media
// title in the metadata pass and becomes the source caption.
type Twitter struct {
	Bin    string
	Dir    string
	Logger *slog.Logger
}

func (t *Twitter) Fetch(ctx context.Context, tweetURL, baseName string) (File, error) {
	bin := t.Bin
	if bin == "" {
		bin = "yt-dlp"
	}
	logger := t.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return File{}, services.Wrap(services.ErrFetch, "download", "prepare download directory", "", err)
	}

	caption, err := t.tweetText(ctx, bin, tweetURL)
	if err != nil {
		return File{}, services.Wrap(services.ErrFetch, "download", "read tweet metadata", "", err)
	}

	logger.Info("downloading twitter video",
		logging.String("url", tweetURL),
		logging.String("base", baseName),
	)
	template := filepath.Join(t.Dir, baseName+".%(ext)s")
	cmd := exec.CommandContext(ctx, bin,
		"-f", "mp4/best",
		"-o", template,
		"--no-playlist",
		"--no-warnings",
		tweetURL,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return File{}, services.Wrap(services.ErrFetch, "download", "run yt-dlp",
			strings.TrimSpace(stderr.String()), err)
	}

	path, err := resolveDownloaded(t.Dir, baseName)
	if err != nil {
		return File{}, services.Wrap(services.ErrFetch, "download", "locate downloaded file", "", err)
	}
	return File{Path: path, SourceCaption: caption}, nil
}

func (t *Twitter) tweetText(ctx context.Context, bin, tweetURL string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, "-J", tweetURL)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("fetch metadata: %w", err)
	}
	var meta struct {
		Title string `json:"title"`
	}
	// Some URLs emit non-JSON noise before the document; an unparsable
	// metadata pass just means no source caption.
	if err := json.Unmarshal(output, &meta); err != nil {
		return "", nil
	}
	return strings.TrimSpace(meta.Title), nil
}

// resolveDownloaded finds the file yt-dlp wrote for baseName, preferring mp4
// when several extensions match.
func resolveDownloaded(dir, baseName string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read download directory: %w", err)
	}
	var fallback string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), baseName+".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mp4") {
			return path, nil
		}
		if fallback == "" {
			fallback = path
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("no downloaded file matches %s.*", baseName)
	}
	return fallback, nil
}
