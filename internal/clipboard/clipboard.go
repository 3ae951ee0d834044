// Package clipboard copies rendered documents to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

var (
	// ErrEmpty is returned when there is nothing to copy.
	ErrEmpty = errors.New("nothing to copy")
	// ErrUnverified is returned by Copy when the clipboard does not read
	// back what was written.
	ErrUnverified = errors.New("clipboard content could not be verified")
)

// Supported reports whether a clipboard utility is available.
func Supported() bool {
	return !clipboard.Unsupported
}

// WriteAll places text on the clipboard.
func WriteAll(text string) error {
	if text == "" {
		return ErrEmpty
	}
	if !Supported() {
		return errors.New("clipboard is not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// Equals reports whether the clipboard currently holds exactly text. Read
// failures count as a mismatch.
func Equals(text string) bool {
	current, err := clipboard.ReadAll()
	if err != nil {
		return false
	}
	return current == text
}

// Copy writes text to the clipboard and reads it back. The text may still
// have been copied when ErrUnverified is returned.
func Copy(text string) error {
	if err := WriteAll(text); err != nil {
		return err
	}
	if !Equals(text) {
		return ErrUnverified
	}
	return nil
}
