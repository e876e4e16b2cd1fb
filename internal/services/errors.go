package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks missing assets, credentials, or unknown presets.
	// Always fatal; retrying without operator intervention cannot succeed.
	ErrConfiguration = errors.New("configuration error")
	// ErrFetch marks source download failures (unavailable media, malformed
	// resolver responses).
	ErrFetch = errors.New("fetch error")
	// ErrTranscode marks external engine failures; the output file is
	// considered absent regardless of partial writes.
	ErrTranscode = errors.New("transcode error")
	// ErrPublish marks remote publishing failures, including rejected
	// container creation and error poll states.
	ErrPublish = errors.New("publish error")
	// ErrStore marks referential inconsistencies in the queue database,
	// e.g. an update targeting a missing id. Signals a logic bug.
	ErrStore = errors.New("store error")
	// ErrTimeout marks polling budgets exhausted without a terminal state.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrPublish
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatalConfig reports whether the error chain carries the configuration
// marker. Used by callers that want to distinguish operator mistakes from
// transient stage failures.
func IsFatalConfig(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
