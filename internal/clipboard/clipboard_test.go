package clipboard

import (
	"errors"
	"testing"
)

func TestWriteAll_Empty(t *testing.T) {
	if err := WriteAll(""); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestWriteAll_RoundTrip(t *testing.T) {
	if !Supported() {
		t.Skip("no clipboard utility available")
	}
	const text = "ALICE (00:00:00):\nHello there.\n"
	if err := WriteAll(text); err != nil {
		t.Skipf("clipboard not usable here: %v", err)
	}
	if !Equals(text) {
		t.Error("clipboard does not hold the copied text")
	}
}

func TestCopy(t *testing.T) {
	if err := Copy(""); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	if !Supported() {
		t.Skip("no clipboard utility available")
	}
	const text = "BOB (00:00:01):\nHi.\n"
	err := Copy(text)
	if err != nil && !errors.Is(err, ErrUnverified) {
		t.Skipf("clipboard not usable here: %v", err)
	}
	if err == nil && !Equals(text) {
		t.Error("Copy reported success but clipboard differs")
	}
}
