package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"reelpipe/internal/captions"
	"reelpipe/internal/layout"
	"reelpipe/internal/logging"
	"reelpipe/internal/queue"
	"reelpipe/internal/services"
)

// Options carries the styling knobs shared by all presets.
type Options struct {
	FontFamily  string
	FontSize    int
	TopStrip    int
	CaptionGap  int
	MaxDuration int
}

// Request describes one transcode invocation.
type Request struct {
	InputPath  string
	OutputPath string
	Preset     queue.FormatPreset
	// LogoPath and WithLogo are consulted only by the logo preset, which
	// refuses to run without a readable logo file.
	LogoPath string
	WithLogo bool
	// Caption is the resolved overlay text for the caption preset.
	Caption string
}

// Engine orchestrates preset dispatch and drives the external engine.
type Engine struct {
	runner Runner
	prober Prober
	opts   Options
	logger *slog.Logger
}

// NewEngine builds an Engine. A nil runner or prober panics early rather than
// failing mid-pipeline.
func NewEngine(runner Runner, prober Prober, opts Options, logger *slog.Logger) *Engine {
	if runner == nil || prober == nil {
		panic("transcode: runner and prober are required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{runner: runner, prober: prober, opts: opts, logger: logging.NewComponentLogger(logger, "transcode")}
}

// Transcode renders req.InputPath into req.OutputPath under the requested
// preset and returns the output path. Validation failures are configuration
// errors raised before the external engine runs.
func (e *Engine) Transcode(ctx context.Context, req Request) (string, error) {
	preset := req.Preset
	switch preset {
	case queue.PresetRaw, queue.PresetCaptionTop, queue.PresetLogoOnly:
	default:
		return "", services.Wrap(services.ErrConfiguration, "transcode", "select preset",
			fmt.Sprintf("unknown preset %q (allowed: raw, logo_only, caption_top)", req.Preset), nil)
	}

	if preset == queue.PresetLogoOnly {
		if !req.WithLogo || req.LogoPath == "" {
			return "", services.Wrap(services.ErrConfiguration, "transcode", "resolve logo",
				"logo preset requires a resolved logo path", nil)
		}
		if _, err := os.Stat(req.LogoPath); err != nil {
			return "", services.Wrap(services.ErrConfiguration, "transcode", "resolve logo",
				fmt.Sprintf("logo file %s is not readable", req.LogoPath), err)
		}
	}

	srcW, srcH, err := e.prober.Dimensions(ctx, req.InputPath)
	if err != nil {
		return "", services.Wrap(services.ErrTranscode, "transcode", "probe input", "", err)
	}
	lay := layout.Compute(srcW, srcH, e.opts.TopStrip)

	e.logger.Info("rendering item",
		logging.String("preset", string(preset)),
		logging.String("input", filepath.Base(req.InputPath)),
		logging.Int("source_width", srcW),
		logging.Int("source_height", srcH),
		logging.Int("video_x", lay.X),
		logging.Int("video_y", lay.Y),
	)

	args := []string{"-i", req.InputPath}
	var captionPath string
	switch preset {
	case queue.PresetRaw:
		args = append(args, rawFilterArgs(lay)...)
	case queue.PresetCaptionTop:
		spec := captions.Build(req.Caption, lay, e.opts.FontFamily, e.opts.FontSize, e.opts.CaptionGap)
		captionPath, err = spec.WriteFile(filepath.Dir(req.OutputPath))
		if err != nil {
			return "", services.Wrap(services.ErrTranscode, "transcode", "write caption overlay", "", err)
		}
		defer os.Remove(captionPath)
		args = append(args, captionTopFilterArgs(lay, captionPath)...)
	case queue.PresetLogoOnly:
		args = append(args[:0], "-i", req.InputPath, "-i", req.LogoPath)
		args = append(args, logoOnlyFilterArgs()...)
	}
	args = append(args, encodingArgs(e.opts.MaxDuration)...)
	args = append(args, "-y", req.OutputPath)

	if err := e.runner.Run(ctx, args); err != nil {
		// Partial writes are useless downstream; drop them.
		_ = os.Remove(req.OutputPath)
		return "", services.Wrap(services.ErrTranscode, "transcode", "run engine", "", err)
	}

	return req.OutputPath, nil
}
