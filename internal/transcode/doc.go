// Package transcode renders source videos onto the fixed vertical canvas.
//
// The Engine dispatches over the closed preset set (raw, caption_top,
// logo_only), builds an ffmpeg filter graph from the computed layout, and
// drives the external engine through the Runner interface. All presets
// converge on one output contract: 1080x1920 H.264 with a capped duration
// and fixed audio format, so downstream publishing never branches per item.
// Preset and asset problems are rejected as configuration errors before the
// engine is invoked; engine failures mean the output file is absent
// regardless of partial writes.
package transcode
