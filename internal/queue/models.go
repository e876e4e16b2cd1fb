package queue

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies the platform a queue item originates from.
type Source string

const (
	SourceTikTok  Source = "tiktok"
	SourceTwitter Source = "twitter"
)

// CaptionStrategy selects how the published caption is resolved.
type CaptionStrategy string

const (
	CaptionDefault    CaptionStrategy = "default"
	CaptionCustom     CaptionStrategy = "custom"
	CaptionFromSource CaptionStrategy = "from_source"
)

// FormatPreset names the overlay/layout strategy applied during rendering.
type FormatPreset string

const (
	PresetRaw        FormatPreset = "raw"
	PresetLogoOnly   FormatPreset = "logo_only"
	PresetCaptionTop FormatPreset = "caption_top"
)

// Item represents one queue row persisted in SQLite.
type Item struct {
	ID              int64
	Source          Source
	URL             string
	CaptionStrategy CaptionStrategy
	CaptionCustom   string
	Filename        string
	Downloaded      bool
	Posted          bool
	Logo            bool
	FormatPreset    FormatPreset
	CreatedAt       time.Time
}

// NewItem describes a row to be inserted. Zero-valued optional fields pick up
// store defaults at insert time.
type NewItem struct {
	Source          Source
	URL             string
	CaptionStrategy CaptionStrategy
	CaptionCustom   string
	Logo            *bool
	FormatPreset    FormatPreset
}

// ParseSource converts a string into a known Source.
func ParseSource(value string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(value))) {
	case SourceTikTok:
		return SourceTikTok, nil
	case SourceTwitter:
		return SourceTwitter, nil
	default:
		return "", fmt.Errorf("unknown source %q (allowed: tiktok, twitter)", value)
	}
}

// ParseCaptionStrategy converts a string into a known CaptionStrategy.
// An empty value maps to the default strategy.
func ParseCaptionStrategy(value string) (CaptionStrategy, error) {
	switch CaptionStrategy(strings.ToLower(strings.TrimSpace(value))) {
	case CaptionDefault, "":
		return CaptionDefault, nil
	case CaptionCustom:
		return CaptionCustom, nil
	case CaptionFromSource:
		return CaptionFromSource, nil
	default:
		return "", fmt.Errorf("unknown caption strategy %q (allowed: default, custom, from_source)", value)
	}
}

// ParseFormatPreset converts a string into a known FormatPreset. An empty
// value resolves to the per-source default.
func ParseFormatPreset(value string, source Source) (FormatPreset, error) {
	switch FormatPreset(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return DefaultPreset(source), nil
	case PresetRaw:
		return PresetRaw, nil
	case PresetLogoOnly:
		return PresetLogoOnly, nil
	case PresetCaptionTop:
		return PresetCaptionTop, nil
	default:
		return "", fmt.Errorf("unknown format preset %q (allowed: raw, logo_only, caption_top)", value)
	}
}

// DefaultPreset returns the preset applied when an item is created without
// one: TikTok sources carry the brand overlay, Twitter sources render their
// text as a top caption.
func DefaultPreset(source Source) FormatPreset {
	if source == SourceTikTok {
		return PresetLogoOnly
	}
	return PresetCaptionTop
}

// Validate checks a NewItem before insertion, normalizing its enum fields.
func (n *NewItem) Validate() error {
	source, err := ParseSource(string(n.Source))
	if err != nil {
		return err
	}
	n.Source = source

	if strings.TrimSpace(n.URL) == "" {
		return fmt.Errorf("url must not be empty")
	}

	strategy, err := ParseCaptionStrategy(string(n.CaptionStrategy))
	if err != nil {
		return err
	}
	n.CaptionStrategy = strategy

	preset, err := ParseFormatPreset(string(n.FormatPreset), source)
	if err != nil {
		return err
	}
	n.FormatPreset = preset
	return nil
}
