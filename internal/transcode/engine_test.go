package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelpipe/internal/queue"
	"reelpipe/internal/services"
)

type stubRunner struct {
	args [][]string
	err  error
}

func (r *stubRunner) Run(_ context.Context, args []string) error {
	captured := make([]string, len(args))
	copy(captured, args)
	r.args = append(r.args, captured)
	return r.err
}

type stubProber struct {
	w, h int
	err  error
}

func (p *stubProber) Dimensions(context.Context, string) (int, int, error) {
	return p.w, p.h, p.err
}

func testOptions() Options {
	return Options{
		FontFamily:  "DejaVu Sans",
		FontSize:    48,
		TopStrip:    240,
		CaptionGap:  12,
		MaxDuration: 89,
	}
}

func newTestEngine(runner *stubRunner, prober *stubProber) *Engine {
	return NewEngine(runner, prober, testOptions(), nil)
}

func argsContain(args []string, want string) bool {
	for _, arg := range args {
		if strings.Contains(arg, want) {
			return true
		}
	}
	return false
}

func argsHavePair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestTranscodeRawBuildsPaddedCanvas(t *testing.T) {
	runner := &stubRunner{}
	engine := newTestEngine(runner, &stubProber{w: 1920, h: 1080})
	out := filepath.Join(t.TempDir(), "out.mp4")

	got, err := engine.Transcode(context.Background(), Request{
		InputPath:  "in.mp4",
		OutputPath: out,
		Preset:     queue.PresetRaw,
	})
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if got != out {
		t.Fatalf("expected output path %q, got %q", out, got)
	}
	if len(runner.args) != 1 {
		t.Fatalf("expected one engine invocation, got %d", len(runner.args))
	}
	args := runner.args[0]
	if !argsContain(args, "pad=1080:1920") {
		t.Fatalf("raw preset must pad to canvas: %v", args)
	}
	if !argsContain(args, "setpts=PTS/1.05") || !argsHavePair(args, "-af", "atempo=1.05") {
		t.Fatalf("speed-up missing: %v", args)
	}
}

func TestTranscodeOutputContractFixedForAllPresets(t *testing.T) {
	logoPath := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(logoPath, []byte("png"), 0o644); err != nil {
		t.Fatalf("write logo: %v", err)
	}

	requests := []Request{
		{Preset: queue.PresetRaw},
		{Preset: queue.PresetCaptionTop, Caption: "hello"},
		{Preset: queue.PresetLogoOnly, WithLogo: true, LogoPath: logoPath},
	}
	for _, req := range requests {
		runner := &stubRunner{}
		engine := newTestEngine(runner, &stubProber{w: 720, h: 1280})
		req.InputPath = "in.mp4"
		req.OutputPath = filepath.Join(t.TempDir(), "out.mp4")

		if _, err := engine.Transcode(context.Background(), req); err != nil {
			t.Fatalf("%s: Transcode failed: %v", req.Preset, err)
		}
		args := runner.args[0]
		for _, pair := range [][2]string{
			{"-c:v", "libx264"},
			{"-pix_fmt", "yuv420p"},
			{"-g", "48"},
			{"-b:v", "2M"},
			{"-c:a", "aac"},
			{"-ar", "44100"},
			{"-ac", "2"},
			{"-t", "89"},
		} {
			if !argsHavePair(args, pair[0], pair[1]) {
				t.Fatalf("%s: missing %s %s in %v", req.Preset, pair[0], pair[1], args)
			}
		}
	}
}

func TestTranscodeCaptionTopWritesOverlay(t *testing.T) {
	runner := &stubRunner{}
	engine := newTestEngine(runner, &stubProber{w: 1080, h: 1920})
	dir := t.TempDir()

	_, err := engine.Transcode(context.Background(), Request{
		InputPath:  "in.mp4",
		OutputPath: filepath.Join(dir, "out.mp4"),
		Preset:     queue.PresetCaptionTop,
		Caption:    "two\nlines",
	})
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	args := runner.args[0]
	if !argsContain(args, "subtitles=") {
		t.Fatalf("caption preset must burn subtitles: %v", args)
	}
	// 1080x1920 source scales to 945x1680 under the strip: x=68, y=240.
	if !argsContain(args, "overlay=68:240") {
		t.Fatalf("expected video flush under strip for 9:16 source: %v", args)
	}
	// Overlay file is cleaned up after the run.
	leftovers, err := filepath.Glob(filepath.Join(dir, "caption_*.ass"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("caption overlay not cleaned up: %v", leftovers)
	}
}

func TestTranscodeLogoPresetRequiresLogo(t *testing.T) {
	runner := &stubRunner{}
	engine := newTestEngine(runner, &stubProber{w: 720, h: 1280})

	_, err := engine.Transcode(context.Background(), Request{
		InputPath:  "in.mp4",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		Preset:     queue.PresetLogoOnly,
		WithLogo:   true,
		LogoPath:   "",
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	_, err = engine.Transcode(context.Background(), Request{
		InputPath:  "in.mp4",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		Preset:     queue.PresetLogoOnly,
		WithLogo:   true,
		LogoPath:   filepath.Join(t.TempDir(), "missing.png"),
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing file, got %v", err)
	}
	if len(runner.args) != 0 {
		t.Fatal("engine must not be invoked on configuration errors")
	}
}

func TestTranscodeUnknownPresetRejected(t *testing.T) {
	runner := &stubRunner{}
	engine := newTestEngine(runner, &stubProber{w: 720, h: 1280})

	_, err := engine.Transcode(context.Background(), Request{
		InputPath:  "in.mp4",
		OutputPath: "out.mp4",
		Preset:     queue.FormatPreset("vignette"),
	})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(runner.args) != 0 {
		t.Fatal("engine must not be invoked for unknown presets")
	}
}

func TestTranscodeEngineFailureRemovesOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mp4")
	if err := os.WriteFile(out, []byte("partial"), 0o644); err != nil {
		t.Fatalf("seed partial output: %v", err)
	}

	runner := &stubRunner{err: errors.New("exit status 1")}
	engine := newTestEngine(runner, &stubProber{w: 720, h: 1280})

	_, err := engine.Transcode(context.Background(), Request{
		InputPath:  "in.mp4",
		OutputPath: out,
		Preset:     queue.PresetRaw,
	})
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected transcode error, got %v", err)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("partial output must be removed on engine failure")
	}
}

func TestLogoFilterGraphShape(t *testing.T) {
	args := logoOnlyFilterArgs()
	graph := args[1]
	for _, fragment := range []string{
		"scale=700:-1",
		"y=120",
		"scale=820:-2",
		"(main_h-overlay_h)/2+80",
	} {
		if !strings.Contains(graph, fragment) {
			t.Fatalf("logo graph missing %q: %s", fragment, graph)
		}
	}
}

func TestFilterSafePath(t *testing.T) {
	if got := filterSafePath(`C:\tmp\it's.ass`); got != `C:/tmp/it\'s.ass` {
		t.Fatalf("unexpected escaping: %q", got)
	}
}
