package transcode

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"reelpipe/internal/logging"
)

// Runner executes the external transcoding engine.
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// Prober reads source video dimensions.
type Prober interface {
	Dimensions(ctx context.Context, path string) (width, height int, err error)
}

// ExecRunner drives the ffmpeg binary directly.
type ExecRunner struct {
	Bin    string
	Logger *slog.Logger
}

func (r *ExecRunner) Run(ctx context.Context, args []string) error {
	bin := r.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Debug("invoking transcoding engine",
		logging.String("bin", bin),
		logging.String("args", strings.Join(args, " ")),
	)

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", bin, err, tail(stderr.String(), 2048))
	}
	return nil
}

// ExecProber reads dimensions with ffprobe. Probe failures return zero
// dimensions without error; layout falls back to canvas size, matching the
// lenient behavior sources with odd containers need.
type ExecProber struct {
	Bin    string
	Logger *slog.Logger
}

func (p *ExecProber) Dimensions(ctx context.Context, path string) (int, int, error) {
	bin := p.Bin
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0:s=x",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		if p.Logger != nil {
			p.Logger.Warn("probe failed; assuming canvas-sized source",
				logging.String("input", path),
				logging.Error(err),
			)
		}
		return 0, 0, nil
	}

	parts := strings.SplitN(strings.TrimSpace(string(output)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, nil
	}
	width, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	height, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil {
		return 0, 0, nil
	}
	return width, height, nil
}

func tail(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
