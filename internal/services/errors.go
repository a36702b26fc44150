package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModel marks transcription backend failures. Fatal, surfaced verbatim.
	ErrModel = errors.New("model error")
	// ErrTransient marks network or service failures that are safe to retry.
	ErrTransient = errors.New("transient failure")
	// ErrRateLimited marks a transient failure caused by upstream throttling.
	ErrRateLimited = fmt.Errorf("%w: rate limited", ErrTransient)
	// ErrProcess marks a subprocess that exited non-zero.
	ErrProcess = errors.New("process error")
	// ErrValidation marks invalid caller input.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTransient reports whether the error is safe to retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsRateLimited reports whether the error was caused by upstream throttling.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
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
