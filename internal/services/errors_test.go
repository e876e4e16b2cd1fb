package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelpipe/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTranscode, "transcode", "run engine", "exit status 1", base)
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected transcode marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped cause to survive")
	}
	for _, fragment := range []string{"transcode", "run engine", "exit status 1", "boom"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrConfiguration, "transcode", "resolve logo", "logo path missing", nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Fatalf("malformed wrap output: %q", err.Error())
	}
}

func TestWrapDefaultsDetail(t *testing.T) {
	err := services.Wrap(services.ErrPublish, "", "", "", nil)
	if got := err.Error(); !strings.Contains(got, "service failure") {
		t.Fatalf("expected default detail, got %q", got)
	}
}

func TestIsFatalConfig(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", services.Wrap(services.ErrConfiguration, "publish", "credentials", "token missing", nil))
	if !services.IsFatalConfig(wrapped) {
		t.Fatal("expected configuration classification through wrapping")
	}
	if services.IsFatalConfig(services.Wrap(services.ErrFetch, "fetch", "", "", nil)) {
		t.Fatal("fetch errors are not configuration errors")
	}
}
