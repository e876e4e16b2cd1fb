// Package layout computes where a source video is placed on the fixed
// 1080x1920 output canvas.
package layout
