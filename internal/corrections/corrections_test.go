package corrections

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApply(t *testing.T) {
	c, err := New([]Rule{
		{Pattern: `\bRebecca Reef\b`, Replace: "Rebecca Reif"},
		{Pattern: `\b(Wire Bank|Veer Bank)\b`, Replace: "Bank WIR", IgnoreCase: true},
		{Pattern: `\b(äh|ähm)\b`, Replace: "", IgnoreCase: true},
		{Pattern: `\bGA 4\b`, Replace: "GA4"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"Rebecca Reef said hi", "Rebecca Reif said hi"},
		{"at veer bank today", "at Bank WIR today"},
		{"we use GA 4 now", "we use GA4 now"},
		{"no change here", "no change here"},
	}
	for _, tt := range tests {
		if got := c.Apply(tt.in); got != tt.want {
			t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestApply_Cleanup(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	got := c.Apply("so  this , is it ? yes .")
	want := "so this, is it? yes."
	if got != want {
		t.Errorf("Apply = %q, want %q", got, want)
	}
}

func TestApply_CaptureGroups(t *testing.T) {
	c, err := New([]Rule{{Pattern: `(\w+) Konto\b`, Replace: "${1}konto"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Apply("Spar Konto"); got != "Sparkonto" {
		t.Errorf("got %q, want Sparkonto", got)
	}
}

func TestNew_InvalidRules(t *testing.T) {
	if _, err := New([]Rule{{Pattern: ""}}); err == nil {
		t.Error("expected error for empty pattern")
	}
	if _, err := New([]Rule{{Pattern: "("}}); err == nil {
		t.Error("expected error for invalid regexp")
	}
}

func TestLoadAndApplyFile(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "corrections.yaml")
	yaml := "rules:\n  - pattern: '\\bTypo 3\\b'\n    replace: TYPO3\n"
	if err := os.WriteFile(rules, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(rules)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}

	md := filepath.Join(dir, "talk screenplay_aai.md")
	if err := os.WriteFile(md, []byte("A (00:00:00):\nWe run Typo 3 .\n\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := c.ApplyFile(md)
	if err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	if out != filepath.Join(dir, "talk screenplay_aai_corrected.md") {
		t.Errorf("output path = %q", out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "A (00:00:00):\nWe run TYPO3.\n\n" {
		t.Errorf("corrected content = %q", data)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
