package pipeline

import (
	"strings"
	"testing"

	"transit/internal/config"
)

func sampleWords() []Word {
	return []Word{
		w("Hi", 0, 500, "A"),
		w("there", 500, 1000, "A"),
		w("Hello", 5000, 5400, "B"),
	}
}

func TestProcess_Empty(t *testing.T) {
	result := Process(nil, config.Default())
	if result.SRT != "" {
		t.Errorf("expected empty SRT, got %q", result.SRT)
	}
	if result.Screenplay != "" {
		t.Errorf("expected empty screenplay, got %q", result.Screenplay)
	}
	if result.Segments != 0 || result.Turns != 0 || result.Speakers != 0 {
		t.Errorf("expected zero counts, got %+v", result)
	}
}

func TestProcess_NilConfigUsesDefaults(t *testing.T) {
	result := Process(sampleWords(), nil)
	if result.Segments != 2 {
		t.Errorf("Segments = %d, want 2", result.Segments)
	}
	if result.Speakers != 2 {
		t.Errorf("Speakers = %d, want 2", result.Speakers)
	}
}

func TestProcess_DoesNotModifyWords(t *testing.T) {
	words := sampleWords()
	before := append([]Word(nil), words...)

	Process(words, config.Default())

	for i := range words {
		if words[i] != before[i] {
			t.Errorf("word %d changed: %+v -> %+v", i, before[i], words[i])
		}
	}
}

func TestRenderSRT(t *testing.T) {
	segs := SegmentForSubtitles(sampleWords(), 2000, 15)
	got := RenderSRT(segs, 65)

	want := "1\n00:00:00,000 --> 00:00:01,000\n[A]\nHi there\n\n" +
		"2\n00:00:05,000 --> 00:00:05,400\n[B]\nHello\n\n"
	if got != want {
		t.Errorf("RenderSRT mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderSRT_UppercasesTrimmedSpeaker(t *testing.T) {
	segs := []Segment{{Speaker: " alice ", Start: 0, End: 10, Text: "hey"}}
	got := RenderSRT(segs, 65)
	if !strings.Contains(got, "\n[ALICE]\n") {
		t.Errorf("expected [ALICE] header, got %q", got)
	}
}

func TestRenderSRT_WrapsLongText(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("subtitle ", 12))
	segs := []Segment{{Speaker: "A", Start: 0, End: 1000, Text: text}}

	got := RenderSRT(segs, 65)
	lines := strings.Split(strings.TrimSuffix(got, "\n\n"), "\n")
	// counter, timing, speaker, then two wrapped lines.
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), lines)
	}
	for _, line := range lines[3:] {
		if len(line) > 65 {
			t.Errorf("line too long (%d): %q", len(line), line)
		}
	}
}

func TestRenderSRT_Empty(t *testing.T) {
	if got := RenderSRT(nil, 65); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestRenderScreenplay(t *testing.T) {
	turns := []Turn{
		{Speaker: "alice", Start: 0, Text: "Hi there."},
		{Speaker: "B", Start: 3661000, Text: "Hello"},
	}

	got := RenderScreenplay(turns)
	want := "ALICE (00:00:00):\nHi there.\n\nB (01:01:01):\nHello\n\n"
	if got != want {
		t.Errorf("RenderScreenplay mismatch:\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestProcess_RespectsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Subtitles.MaxWordsPerSegment = 1

	result := Process(sampleWords(), cfg)
	if result.Segments != 3 {
		t.Errorf("Segments = %d, want 3", result.Segments)
	}
	if !strings.HasPrefix(result.SRT, "1\n") || !strings.Contains(result.SRT, "\n3\n") {
		t.Errorf("expected counters 1..3, got:\n%s", result.SRT)
	}
	if result.Turns != 2 {
		t.Errorf("Turns = %d, want 2", result.Turns)
	}
}

func TestProcess_ZeroLimits(t *testing.T) {
	cfg := config.Default()
	cfg.Subtitles.MaxGapMs = 0
	cfg.Screenplay.MaxTurnMs = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero limits rejected: %v", err)
	}

	words := []Word{
		{Text: "Hi.", Start: 0, End: 100, Speaker: "A"},
		{Text: "Yes.", Start: 200, End: 300, Speaker: "A"},
	}
	result := Process(words, cfg)
	if result.Segments != 2 {
		t.Errorf("Segments = %d, want 2", result.Segments)
	}
	if result.Turns != 2 {
		t.Errorf("Turns = %d, want 2", result.Turns)
	}
}
