package prompt

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"transit/internal/pipeline"
)

func words() []pipeline.Word {
	return []pipeline.Word{
		{Text: "Hello", Start: 0, End: 400, Speaker: "B"},
		{Text: "there.", Start: 400, End: 900, Speaker: "B"},
		{Text: "Hi", Start: 1000, End: 1300, Speaker: "A"},
		{Text: "Okay", Start: 1400, End: 1700, Speaker: "C"},
	}
}

type recordingResolver struct {
	asked []string
	names map[string]string
	fail  string
}

func (r *recordingResolver) ResolveName(_ context.Context, p pipeline.SpeakerProfile) (string, error) {
	r.asked = append(r.asked, p.ID)
	if p.ID == r.fail {
		return "", errors.New("boom")
	}
	return r.names[p.ID], nil
}

func TestBuildMapping(t *testing.T) {
	r := &recordingResolver{names: map[string]string{"A": " Alice ", "B": "Bob"}}
	got, err := BuildMapping(context.Background(), r, words(), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"A": "Alice", "B": "Bob", "C": "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mapping = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(r.asked, []string{"A", "B", "C"}) {
		t.Errorf("asked in order %v, want sorted ids", r.asked)
	}
}

func TestBuildMapping_ErrorLeavesWordsUntouched(t *testing.T) {
	ws := words()
	r := &recordingResolver{names: map[string]string{"A": "Alice"}, fail: "B"}
	if _, err := BuildMapping(context.Background(), r, ws, nil); err == nil {
		t.Fatal("expected error")
	}
	if ws[2].Speaker != "A" {
		t.Errorf("words were modified: %+v", ws[2])
	}
}

func TestBuildMapping_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildMapping(ctx, Static{}, words(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseAssignments(t *testing.T) {
	s, err := ParseAssignments([]string{"A=Alice", " B = Bob Smith "})
	if err != nil {
		t.Fatal(err)
	}
	if s["A"] != "Alice" || s["B"] != "Bob Smith" {
		t.Errorf("parsed %v", s)
	}
	for _, bad := range []string{"Alice", "=Alice"} {
		if _, err := ParseAssignments([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestTerminal_ResolveName(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("Alice\n\n"), &out)

	mapping, err := BuildMapping(context.Background(), term, words()[:3], nil)
	if err != nil {
		t.Fatal(err)
	}
	if mapping["A"] != "Alice" || mapping["B"] != "B" {
		t.Errorf("mapping = %v", mapping)
	}

	printed := out.String()
	for _, want := range []string{
		"--- Speaker A ---",
		"Words spoken: 2",
		"Example [00:00:00]: Hello there.",
		"Example [00:00:01]: Hi",
		"or Enter to keep 'B'",
	} {
		if !strings.Contains(printed, want) {
			t.Errorf("output missing %q:\n%s", want, printed)
		}
	}
}

func TestTerminal_ResolveNameAtEOF(t *testing.T) {
	term := NewTerminal(strings.NewReader(""), &bytes.Buffer{})
	name, err := term.ResolveName(context.Background(), pipeline.SpeakerProfile{ID: "A"})
	if err != nil || name != "" {
		t.Errorf("ResolveName at EOF = %q, %v", name, err)
	}
}

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		term := NewTerminal(strings.NewReader(tt.input), &bytes.Buffer{})
		got, err := term.Confirm("Reprocess?")
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTerminal_Secret(t *testing.T) {
	term := NewTerminal(strings.NewReader("  abc123  \n"), &bytes.Buffer{})
	got, err := term.Secret("AssemblyAI API key")
	if err != nil || got != "abc123" {
		t.Errorf("Secret = %q, %v", got, err)
	}

	term = NewTerminal(strings.NewReader("\n"), &bytes.Buffer{})
	if _, err := term.Secret("AssemblyAI API key"); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}
