package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestOpError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewOpError(ErrCodeNavigation, "failed to load page", inner)

	if got := err.Error(); got != "NAVIGATION_FAILED: failed to load page: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("wrapped error not reachable via errors.Is")
	}

	bare := NewOpError(ErrCodeStorage, "schema setup failed", nil)
	if got := bare.Error(); got != "STORAGE: schema setup failed" {
		t.Errorf("Error() = %q", got)
	}
	if bare.Unwrap() != nil {
		t.Error("Unwrap of bare error not nil")
	}
}

func TestOpErrorAs(t *testing.T) {
	err := fmt.Errorf("search: %w", NewOpError(ErrCodeInvalidInput, "-address is required", nil))

	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatal("errors.As failed through wrapping")
	}
	if opErr.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %q", opErr.Code)
	}
}
