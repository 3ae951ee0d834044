// Package prompt asks a human (or a fixed table) for speaker names and
// other interactive input.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"transit/internal/config"
	"transit/internal/pipeline"
)

// ErrEmptyInput is returned by Secret when the user enters nothing.
var ErrEmptyInput = errors.New("input is required")

// NameResolver chooses a display name for one speaker. Returning an empty
// string keeps the original id.
type NameResolver interface {
	ResolveName(ctx context.Context, profile pipeline.SpeakerProfile) (string, error)
}

// BuildMapping asks resolver once per unique speaker in sorted id order and
// returns the complete id to name mapping. Nothing is rewritten here, so a
// failure part way leaves the words untouched. settings control how example
// segments are cut and may be nil.
func BuildMapping(ctx context.Context, resolver NameResolver, words []pipeline.Word, settings *config.SubtitleSettings) (map[string]string, error) {
	profiles := pipeline.SpeakerProfiles(words, settings)
	mapping := make(map[string]string, len(profiles))
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := resolver.ResolveName(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("resolve speaker %s: %w", p.ID, err)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = p.ID
		}
		mapping[p.ID] = name
	}
	return mapping, nil
}

// Static resolves names from a fixed table. Unknown ids keep their label.
type Static map[string]string

func (s Static) ResolveName(_ context.Context, p pipeline.SpeakerProfile) (string, error) {
	return s[p.ID], nil
}

// ParseAssignments turns "A=Alice" pairs into a Static resolver.
func ParseAssignments(pairs []string) (Static, error) {
	s := make(Static, len(pairs))
	for _, pair := range pairs {
		id, name, ok := strings.Cut(pair, "=")
		id, name = strings.TrimSpace(id), strings.TrimSpace(name)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid speaker assignment %q, want ID=Name", pair)
		}
		s[id] = name
	}
	return s, nil
}

// Terminal is a line-oriented interactive prompt.
type Terminal struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewTerminal reads answers from in and writes prompts to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{reader: bufio.NewReader(in), out: out}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ResolveName shows the speaker's statistics, example segment and sample
// excerpts, then reads one line.
func (t *Terminal) ResolveName(ctx context.Context, p pipeline.SpeakerProfile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprintf(t.out, "\n--- Speaker %s ---\n", p.ID)
	fmt.Fprintf(t.out, "  Words spoken: %d\n", p.Stats.WordCount)
	fmt.Fprintf(t.out, "  Speaking duration: %s\n", pipeline.MillisecondsToHMS(p.Stats.DurationMs()))
	fmt.Fprintf(t.out, "  First appears: %s\n", pipeline.MillisecondsToHMS(p.Stats.FirstMs))
	if p.Example.Text != "" {
		fmt.Fprintf(t.out, "  Example [%s]: %s\n", pipeline.MillisecondsToHMS(p.Example.Start), p.Example.Text)
	}
	for _, s := range p.Samples {
		fmt.Fprintf(t.out, "  %s\n", s)
	}
	fmt.Fprintf(t.out, "\nNew name for Speaker %s (or Enter to keep '%s'): ", p.ID, p.ID)

	name, err := t.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", err
	}
	return name, nil
}

// Confirm asks a yes/no question. Only "y" or "yes" count as yes.
func (t *Terminal) Confirm(question string) (bool, error) {
	fmt.Fprintf(t.out, "%s (y/N): ", question)
	answer, err := t.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Secret asks for a value that must not be empty, such as an API key.
func (t *Terminal) Secret(label string) (string, error) {
	fmt.Fprintf(t.out, "Please enter your %s: ", label)
	value, err := t.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if value == "" {
		return "", fmt.Errorf("%s: %w", label, ErrEmptyInput)
	}
	return value, nil
}
