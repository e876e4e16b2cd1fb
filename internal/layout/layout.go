package layout

import "math"

// Canvas dimensions every preset renders into.
const (
	CanvasW = 1080
	CanvasH = 1920
)

// aspectTolerance is how close to 9:16 a source must be to count as already
// vertical.
const aspectTolerance = 0.01

// Result describes the scaled video's size and offset within the canvas.
type Result struct {
	Width  int
	Height int
	X      int
	Y      int
}

// IsVertical reports whether a source is within ~1% of the 9:16 canvas
// aspect ratio.
func IsVertical(srcW, srcH int) bool {
	if srcW <= 0 || srcH <= 0 {
		return false
	}
	target := 9.0 / 16.0
	return math.Abs(float64(srcW)/float64(srcH)-target) < aspectTolerance
}

// Compute scales a source of srcW x srcH into the canvas area below a
// reserved top strip, preserving aspect ("fit", never "fill"). The scaled
// video is centered horizontally. An already-vertical source sits flush under
// the top strip; anything else is offset downward by one-third of the
// remaining vertical slack, a deliberate above-center placement kept
// identical across presets.
func Compute(srcW, srcH, topStrip int) Result {
	if srcW <= 0 {
		srcW = CanvasW
	}
	if srcH <= 0 {
		srcH = CanvasH
	}

	availW := CanvasW
	availH := CanvasH - topStrip

	scale := math.Min(float64(availW)/float64(srcW), float64(availH)/float64(srcH))
	outW := int(math.Round(float64(srcW) * scale))
	outH := int(math.Round(float64(srcH) * scale))

	x := int(math.Round(float64(CanvasW-outW) / 2))
	y := topStrip
	if !IsVertical(srcW, srcH) {
		y = topStrip + int(math.Round(float64(availH-outH)/3))
	}

	return Result{Width: outW, Height: outH, X: x, Y: y}
}

// SideMargin returns the horizontal letterboxing implied by a layout: the
// pixels between the canvas edge and the placed video on each side.
func (r Result) SideMargin() float64 {
	return float64(CanvasW-r.Width) / 2
}
