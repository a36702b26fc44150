package services_test

import (
	"errors"
	"strings"
	"testing"

	"dubforge/internal/services"
)

func TestWrapTagsMarkerAndKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := services.Wrap(services.ErrTransient, "translate", "request", "segment 4", cause)

	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "translate: request: segment 4") {
		t.Fatalf("expected stage detail in message, got %q", err.Error())
	}
}

func TestRateLimitedIsAlsoTransient(t *testing.T) {
	err := services.Wrap(services.ErrRateLimited, "synthesize", "request", "", nil)
	if !services.IsRateLimited(err) {
		t.Fatalf("expected rate-limited classification for %v", err)
	}
	if !services.IsTransient(err) {
		t.Fatalf("expected rate-limited errors to remain retryable, got %v", err)
	}
}

func TestModelErrorsAreNotTransient(t *testing.T) {
	err := services.Wrap(services.ErrModel, "transcribe", "inference", "load failed", nil)
	if services.IsTransient(err) {
		t.Fatalf("model errors must not be retried: %v", err)
	}
}

func TestWrapWithoutMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", errors.New("boom"))
	if !services.IsTransient(err) {
		t.Fatalf("expected default transient marker, got %v", err)
	}
}
