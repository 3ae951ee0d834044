package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedWord is matched by every ValidationError.
var ErrMalformedWord = errors.New("malformed word")

// ValidationError describes the first invalid word found in a stream.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("word %d: %s: %s", e.Index, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMalformedWord
}

// ValidateWords checks the word-level invariants segmentation relies on.
func ValidateWords(words []Word) error {
	for i, w := range words {
		if w.Text == "" {
			return &ValidationError{Index: i, Field: "text", Reason: "empty"}
		}
		if w.Speaker == "" {
			return &ValidationError{Index: i, Field: "speaker", Reason: "empty"}
		}
		if w.Start < 0 {
			return &ValidationError{Index: i, Field: "start", Reason: "negative"}
		}
		if w.End < w.Start {
			return &ValidationError{Index: i, Field: "end", Reason: fmt.Sprintf("%d before start %d", w.End, w.Start)}
		}
	}
	return nil
}

// rawWord mirrors Word with pointer timestamps so absent keys can be told
// apart from zero values.
type rawWord struct {
	Text       string  `json:"text"`
	Start      *int64  `json:"start"`
	End        *int64  `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    *string `json:"speaker"`
}

type rawTranscript struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	Words        []rawWord `json:"words"`
	Status       string    `json:"status"`
	AudioURL     string    `json:"audio_url"`
	LanguageCode string    `json:"language_code"`
}

// DecodeTranscript reads a transcript JSON document and validates its words.
func DecodeTranscript(r io.Reader) (*Transcript, error) {
	var raw rawTranscript
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}

	t := &Transcript{
		ID:           raw.ID,
		Text:         raw.Text,
		Status:       raw.Status,
		AudioURL:     raw.AudioURL,
		LanguageCode: raw.LanguageCode,
		Words:        make([]Word, 0, len(raw.Words)),
	}

	for i, rw := range raw.Words {
		if rw.Start == nil {
			return nil, &ValidationError{Index: i, Field: "start", Reason: "missing"}
		}
		if rw.End == nil {
			return nil, &ValidationError{Index: i, Field: "end", Reason: "missing"}
		}
		if rw.Speaker == nil {
			return nil, &ValidationError{Index: i, Field: "speaker", Reason: "missing"}
		}
		t.Words = append(t.Words, Word{
			Text:       rw.Text,
			Start:      *rw.Start,
			End:        *rw.End,
			Confidence: rw.Confidence,
			Speaker:    *rw.Speaker,
		})
	}

	if err := ValidateWords(t.Words); err != nil {
		return nil, err
	}
	return t, nil
}
