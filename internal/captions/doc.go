// Package captions resolves publish caption text and builds the timed
// subtitle overlay used by the caption-top preset.
//
// Resolve picks the final caption from the item's strategy with fallback
// handling; Build derives overlay margins from the computed video layout so
// the caption column never overlaps the placed video, then renders an
// Advanced SubStation (ASS) document the external transcoding engine burns
// into the background layer.
package captions
