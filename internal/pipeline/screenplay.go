package pipeline

import (
	"strings"

	"transit/internal/config"
)

// TurnSegmenter groups words into speaker turns for the screenplay document.
// A turn that has run longer than MaxTurnMs is closed at the next word that
// ends a sentence. Without such a word the turn keeps growing.
type TurnSegmenter struct {
	MaxTurnMs int64
}

// NewTurnSegmenter creates a turn segmenter from screenplay settings. A zero
// limit splits at every sentence end; nil or negative uses the default.
func NewTurnSegmenter(settings *config.ScreenplaySettings) *TurnSegmenter {
	t := &TurnSegmenter{MaxTurnMs: config.Default().Screenplay.MaxTurnMs}
	if settings != nil && settings.MaxTurnMs >= 0 {
		t.MaxTurnMs = settings.MaxTurnMs
	}
	return t
}

// Segment splits words into speaker turns in chronological order.
func (t *TurnSegmenter) Segment(words []Word) []Turn {
	if len(words) == 0 {
		return nil
	}

	var turns []Turn
	speaker := words[0].Speaker
	start := words[0].Start
	var texts []string

	emit := func() {
		if len(texts) == 0 {
			return
		}
		turns = append(turns, Turn{
			Speaker: speaker,
			Start:   start,
			Text:    strings.Join(texts, " "),
		})
	}

	for _, word := range words {
		if word.Speaker != speaker {
			emit()
			speaker = word.Speaker
			start = word.Start
			texts = []string{word.Text}
			continue
		}

		texts = append(texts, word.Text)

		// Monologue split: only past the limit and only at a sentence end.
		if word.End-start > t.MaxTurnMs && isSentenceBoundary(strings.Join(texts, " ")) {
			emit()
			texts = nil
			start = word.End
		}
	}
	emit()

	return turns
}

// SegmentForScreenplay splits words into speaker turns with the default
// 45 second monologue limit.
func SegmentForScreenplay(words []Word) []Turn {
	return NewTurnSegmenter(nil).Segment(words)
}
