package pipeline

import (
	"fmt"
	"strings"

	"transit/internal/config"
)

const (
	defaultSampleCount    = 3
	defaultWordsPerSample = 20
	exampleMinWords       = 6
)

// SpeakerStats summarizes how much one speaker talks.
type SpeakerStats struct {
	WordCount int
	FirstMs   int64
	LastMs    int64
}

// DurationMs is the span between the speaker's first and last word.
func (s SpeakerStats) DurationMs() int64 {
	return s.LastMs - s.FirstMs
}

// SpeakerProfile is everything a human needs to put a name on a speaker id.
type SpeakerProfile struct {
	ID      string
	Stats   SpeakerStats
	Samples []string
	// Example is a representative subtitle segment, see SpeakerExamples.
	Example Segment
}

// CollectSpeakerStats computes per-speaker statistics.
func CollectSpeakerStats(words []Word) map[string]SpeakerStats {
	stats := make(map[string]SpeakerStats)
	for _, w := range words {
		s, ok := stats[w.Speaker]
		if !ok {
			s.FirstMs = w.Start
		}
		s.WordCount++
		s.LastMs = w.End
		stats[w.Speaker] = s
	}
	return stats
}

// SpeakerSamples returns up to numSamples evenly spaced excerpts of a
// speaker's words. A speaker with no more than wordsPerSample words gets a
// single excerpt holding everything they said.
func SpeakerSamples(words []Word, speaker string, numSamples, wordsPerSample int) []string {
	if numSamples <= 0 {
		numSamples = defaultSampleCount
	}
	if wordsPerSample <= 0 {
		wordsPerSample = defaultWordsPerSample
	}

	var spoken []Word
	for _, w := range words {
		if w.Speaker == speaker {
			spoken = append(spoken, w)
		}
	}
	if len(spoken) == 0 {
		return nil
	}
	if len(spoken) <= wordsPerSample {
		return []string{joinTexts(spoken)}
	}

	step := 0
	if numSamples > 1 {
		step = (len(spoken) - wordsPerSample) / (numSamples - 1)
	} else {
		numSamples = 1
	}

	samples := make([]string, 0, numSamples)
	for i := 0; i < numSamples; i++ {
		pos := i * step
		end := min(pos+wordsPerSample, len(spoken))
		window := spoken[pos:end]
		samples = append(samples, fmt.Sprintf("[%s] %s...", MillisecondsToHMS(window[0].Start), joinTexts(window)))
	}
	return samples
}

// SpeakerExamples picks one representative subtitle segment per speaker: the
// first with at least six words, otherwise the speaker's first segment.
func SpeakerExamples(segments []Segment) map[string]Segment {
	first := make(map[string]Segment)
	long := make(map[string]Segment)
	for _, seg := range segments {
		if _, ok := first[seg.Speaker]; !ok {
			first[seg.Speaker] = seg
		}
		if _, ok := long[seg.Speaker]; !ok && len(strings.Fields(seg.Text)) >= exampleMinWords {
			long[seg.Speaker] = seg
		}
	}
	for id, seg := range long {
		first[id] = seg
	}
	return first
}

// SpeakerProfiles builds a profile for every speaker, sorted by id. Example
// segments are cut with the given subtitle settings; nil uses the defaults.
func SpeakerProfiles(words []Word, settings *config.SubtitleSettings) []SpeakerProfile {
	stats := CollectSpeakerStats(words)
	examples := SpeakerExamples(NewSubtitleSegmenter(settings).Segment(words))
	ids := Speakers(words)
	profiles := make([]SpeakerProfile, 0, len(ids))
	for _, id := range ids {
		profiles = append(profiles, SpeakerProfile{
			ID:      id,
			Stats:   stats[id],
			Samples: SpeakerSamples(words, id, defaultSampleCount, defaultWordsPerSample),
			Example: examples[id],
		})
	}
	return profiles
}

func joinTexts(words []Word) string {
	texts := make([]string, len(words))
	for i, w := range words {
		texts[i] = w.Text
	}
	return strings.Join(texts, " ")
}
