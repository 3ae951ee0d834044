package pipeline

import (
	"fmt"
	"strings"

	"transit/internal/config"
)

// Result holds both rendered artifacts for one word stream.
type Result struct {
	SRT        string
	Screenplay string
	Segments   int
	Turns      int
	Speakers   int
}

// Process segments words for subtitles and for the screenplay and renders
// both documents. Words are read, never modified.
func Process(words []Word, cfg *config.Config) *Result {
	if cfg == nil {
		cfg = config.Default()
	}

	segments := NewSubtitleSegmenter(&cfg.Subtitles).Segment(words)
	turns := NewTurnSegmenter(&cfg.Screenplay).Segment(words)

	return &Result{
		SRT:        RenderSRT(segments, cfg.Subtitles.LineWidth),
		Screenplay: RenderScreenplay(turns),
		Segments:   len(segments),
		Turns:      len(turns),
		Speakers:   len(Speakers(words)),
	}
}

// RenderSRT writes one numbered block per segment, counters starting at 1.
func RenderSRT(segments []Segment, lineWidth int) string {
	var sb strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n[%s]\n",
			i+1,
			MillisecondsToSRTTime(seg.Start),
			MillisecondsToSRTTime(seg.End),
			speakerLabel(seg.Speaker))
		for _, line := range wrapText(seg.Text, lineWidth) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// RenderScreenplay writes one "SPEAKER (HH:MM:SS):" paragraph per turn.
func RenderScreenplay(turns []Turn) string {
	var sb strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&sb, "%s (%s):\n%s\n\n", speakerLabel(turn.Speaker), MillisecondsToHMS(turn.Start), turn.Text)
	}
	return sb.String()
}
