package transcode

import (
	"fmt"
	"strings"

	"reelpipe/internal/layout"
)

// Fixed filter constants shared with the original styling: every preset
// speeds playback up slightly to normalize duration statistics across
// sources, and the logo preset uses fixed logo/video widths.
const (
	speedFactor    = "1.05"
	logoWidth      = 700
	logoY          = 120
	logoVideoWidth = 820
	logoVideoShift = 80
	backgroundFill = "white"
)

func videoScaleFilter(lay layout.Result) string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", lay.Width, lay.Height)
}

// rawFilterArgs scales onto a padded canvas with no overlay.
func rawFilterArgs(lay layout.Result) []string {
	filter := fmt.Sprintf("%s,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=%s,setpts=PTS/%s",
		videoScaleFilter(lay), layout.CanvasW, layout.CanvasH, backgroundFill, speedFactor)
	return []string{"-vf", filter, "-map", "0:v", "-map", "0:a?"}
}

// captionTopFilterArgs burns the subtitle file into a full-canvas background
// layer, then composites the scaled video at the layout offset on top.
func captionTopFilterArgs(lay layout.Result, captionPath string) []string {
	graph := strings.Join([]string{
		fmt.Sprintf("color=%s:s=%dx%d:d=1[bg]", backgroundFill, layout.CanvasW, layout.CanvasH),
		fmt.Sprintf("[bg]subtitles=%s[bgcap]", filterSafePath(captionPath)),
		fmt.Sprintf("[0:v]%s,setpts=PTS/%s[vid]", videoScaleFilter(lay), speedFactor),
		fmt.Sprintf("[bgcap][vid]overlay=%d:%d[final]", lay.X, lay.Y),
	}, ";")
	return []string{"-filter_complex", graph, "-map", "[final]", "-map", "0:a?"}
}

// logoOnlyFilterArgs centers the brand image near the top and places the
// video below it at a fixed offset. The logo file is the second input.
func logoOnlyFilterArgs() []string {
	graph := strings.Join([]string{
		fmt.Sprintf("color=%s:s=%dx%d:d=1[bg]", backgroundFill, layout.CanvasW, layout.CanvasH),
		fmt.Sprintf("[1:v]scale=%d:-1[logo]", logoWidth),
		fmt.Sprintf("[bg][logo]overlay=x=(main_w-overlay_w)/2:y=%d[bgLogo]", logoY),
		fmt.Sprintf("[0:v]scale=%d:-2[resized]", logoVideoWidth),
		fmt.Sprintf("[resized]setpts=PTS/%s[sped]", speedFactor),
		fmt.Sprintf("[bgLogo][sped]overlay=(main_w-overlay_w)/2:(main_h-overlay_h)/2+%d[final]", logoVideoShift),
	}, ";")
	return []string{"-filter_complex", graph, "-map", "[final]", "-map", "0:a?"}
}

// encodingArgs is the shared output contract: fixed resolution comes from the
// filter graph, everything else is pinned here so downstream publishing never
// needs per-item branching.
func encodingArgs(maxDuration int) []string {
	return []string{
		"-af", "atempo=" + speedFactor,
		"-c:v", "libx264",
		"-profile:v", "high",
		"-level", "4.0",
		"-pix_fmt", "yuv420p",
		"-preset", "fast",
		"-movflags", "+faststart",
		"-g", "48",
		"-keyint_min", "48",
		"-sc_threshold", "0",
		"-b:v", "2M",
		"-maxrate", "2M",
		"-bufsize", "4M",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ar", "44100",
		"-ac", "2",
		"-t", fmt.Sprintf("%d", maxDuration),
	}
}

// filterSafePath escapes a path for use inside an ffmpeg filter expression.
func filterSafePath(p string) string {
	p = strings.ReplaceAll(p, `\`, `/`)
	p = strings.ReplaceAll(p, `'`, `\'`)
	return p
}
