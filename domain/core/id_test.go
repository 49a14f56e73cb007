package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseID tests identifier parsing
func TestParseID(t *testing.T) {
	valid := NewID()
	tests := []struct {
		input    string
		expected ID
		hasError bool
	}{
		{valid.String(), valid, false},
		{"  " + valid.String() + " ", valid, false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, test := range tests {
		result, err := ParseID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestErrorHelpers checks sentinel wrapping
func TestErrorHelpers(t *testing.T) {
	err := NewNotFoundError(ErrColumnNotFound, "weight")
	if !IsNotFoundError(err) {
		t.Errorf("Expected %v to be a not-found error", err)
	}
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("Expected %v to wrap ErrColumnNotFound", err)
	}

	dataErr := NewInsufficientDataError("A", 1, 2)
	if !IsDataError(dataErr) {
		t.Errorf("Expected %v to be a data error", dataErr)
	}
	if IsDataError(ErrSameGroup) {
		t.Error("ErrSameGroup is a caller error, not a data error")
	}
}

// TestHashShort checks the display form of a hash
func TestHashShort(t *testing.T) {
	h := NewHash([]byte("sheet"))
	if len(h.String()) != 64 {
		t.Fatalf("Expected 64 hex characters, got %d", len(h.String()))
	}
	if h.Short() != h.String()[:12] {
		t.Errorf("Expected short form to be the 12-char prefix, got %s", h.Short())
	}
}
