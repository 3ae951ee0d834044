package pipeline

import "transit/internal/config"

// SubtitleSegmenter groups words into short caption blocks.
type SubtitleSegmenter struct {
	MaxGapMs int64
	MaxWords int
}

// NewSubtitleSegmenter creates a segmenter from subtitle settings. A nil
// settings pointer, a negative gap or a word limit below one falls back to
// the defaults; a zero gap breaks on any silence.
func NewSubtitleSegmenter(settings *config.SubtitleSettings) *SubtitleSegmenter {
	defaults := config.Default().Subtitles
	s := &SubtitleSegmenter{
		MaxGapMs: defaults.MaxGapMs,
		MaxWords: defaults.MaxWordsPerSegment,
	}
	if settings != nil {
		if settings.MaxGapMs >= 0 {
			s.MaxGapMs = settings.MaxGapMs
		}
		if settings.MaxWordsPerSegment > 0 {
			s.MaxWords = settings.MaxWordsPerSegment
		}
	}
	return s
}

// shouldBreak decides whether word must open a new segment after current.
func (s *SubtitleSegmenter) shouldBreak(current *Segment, word Word) bool {
	if word.Speaker != current.Speaker {
		return true
	}
	if word.Start-current.End > s.MaxGapMs {
		return true
	}
	return len(current.Words) >= s.MaxWords
}

// Segment splits words into subtitle segments. Words must already be sorted
// by start time.
func (s *SubtitleSegmenter) Segment(words []Word) []Segment {
	if len(words) == 0 {
		return nil
	}

	var segments []Segment
	current := newSegment(words[0])

	for _, word := range words[1:] {
		if s.shouldBreak(&current, word) {
			segments = append(segments, closeSegment(current))
			current = newSegment(word)
			continue
		}
		current.Words = append(current.Words, word)
		current.End = word.End
	}

	return append(segments, closeSegment(current))
}

// SegmentForSubtitles segments words with the given limits.
func SegmentForSubtitles(words []Word, maxGapMs int64, maxWords int) []Segment {
	return NewSubtitleSegmenter(&config.SubtitleSettings{
		MaxGapMs:           maxGapMs,
		MaxWordsPerSegment: maxWords,
	}).Segment(words)
}

func newSegment(first Word) Segment {
	return Segment{
		Words:   []Word{first},
		Speaker: first.Speaker,
		Start:   first.Start,
		End:     first.End,
	}
}

func closeSegment(seg Segment) Segment {
	seg.Text = joinTexts(seg.Words)
	return seg
}
