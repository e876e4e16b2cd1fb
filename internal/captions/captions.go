package captions

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"reelpipe/internal/layout"
	"reelpipe/internal/queue"
)

// Spec describes a rendered caption overlay.
type Spec struct {
	Text       string
	FontFamily string
	FontSize   int
	// MarginV is the distance from the canvas bottom to the caption
	// baseline; derived so the block ends just above the placed video.
	MarginV int
	// MarginLR keeps the caption column inside the video's horizontal
	// letterboxing.
	MarginLR int
}

// Resolve picks the caption text for an item. Custom and from-source
// strategies fall back to the account default when their text is empty.
func Resolve(strategy queue.CaptionStrategy, custom, sourceText, fallback string) string {
	fallback = strings.TrimSpace(fallback)
	switch strategy {
	case queue.CaptionCustom:
		if trimmed := strings.TrimSpace(custom); trimmed != "" {
			return trimmed
		}
		return fallback
	case queue.CaptionFromSource:
		if trimmed := strings.TrimSpace(sourceText); trimmed != "" {
			return trimmed
		}
		return fallback
	default:
		return fallback
	}
}

var blankLines = regexp.MustCompile(`\n{2,}`)

// Build computes overlay metrics from the video layout. gap is the space
// left between the caption block and the top edge of the video.
func Build(text string, lay layout.Result, fontFamily string, fontSize, gap int) Spec {
	marginV := layout.CanvasH - (lay.Y - gap)
	if marginV < 0 {
		marginV = 0
	}
	marginLR := int(math.Round(lay.SideMargin()))
	if marginLR < 0 {
		marginLR = 0
	}
	return Spec{
		Text:       normalizeText(text),
		FontFamily: fontFamily,
		FontSize:   fontSize,
		MarginV:    marginV,
		MarginLR:   marginLR,
	}
}

func normalizeText(text string) string {
	normalized := norm.NFC.String(text)
	normalized = strings.ReplaceAll(normalized, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "")
	normalized = blankLines.ReplaceAllString(normalized, "\n")
	return strings.TrimSpace(normalized)
}

// Document renders the spec as an ASS subtitle file displayed for the whole
// clip, anchored to the bottom of the caption region.
func (s Spec) Document() string {
	text := strings.ReplaceAll(s.Text, "\n", `\N`)

	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", layout.CanvasW)
	fmt.Fprintf(&b, "PlayResY: %d\n", layout.CanvasH)
	b.WriteString("ScaledBorderAndShadow: yes\n\n")

	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&b, "Style: Caption,%s,%d,&H00000000,&H00000000,&H00000000,&H00FFFFFF,0,0,0,0,100,100,0,0,1,0,0,2,%d,%d,%d,0\n\n",
		s.FontFamily, s.FontSize, s.MarginLR, s.MarginLR, s.MarginV)

	b.WriteString("[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	fmt.Fprintf(&b, "Dialogue: 0,0:00:00.00,9:59:59.00,Caption,,0,0,0,,%s\n", text)

	return b.String()
}

// WriteFile writes the ASS document to a uniquely named file in dir and
// returns its path. The caller removes the file after the transcode.
func (s Spec) WriteFile(dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("caption_%s.ass", uuid.NewString()))
	if err := os.WriteFile(path, []byte(s.Document()), 0o644); err != nil {
		return "", fmt.Errorf("write caption file: %w", err)
	}
	return path, nil
}
