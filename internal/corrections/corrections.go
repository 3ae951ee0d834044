// Package corrections applies user-maintained terminology fixes to rendered
// transcripts: names the recognizer keeps getting wrong, product spellings,
// filler words.
package corrections

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one regular-expression replacement as written in the rules file.
type Rule struct {
	Pattern    string `yaml:"pattern"`
	Replace    string `yaml:"replace"`
	IgnoreCase bool   `yaml:"ignore_case"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

type compiledRule struct {
	re      *regexp.Regexp
	replace string
}

// Corrector applies an ordered list of compiled rules.
type Corrector struct {
	rules []compiledRule
}

// cleanup runs after the user rules to tidy whitespace left by removals.
var cleanup = []compiledRule{
	{re: regexp.MustCompile(`  +`), replace: " "},
	{re: regexp.MustCompile(` ,`), replace: ","},
	{re: regexp.MustCompile(` \.`), replace: "."},
	{re: regexp.MustCompile(` \?`), replace: "?"},
}

// New compiles rules in order. Replacement strings may use $1-style
// references to capture groups.
func New(rules []Rule) (*Corrector, error) {
	c := &Corrector{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("rule %d: empty pattern", i+1)
		}
		pattern := r.Pattern
		if r.IgnoreCase {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		c.rules = append(c.rules, compiledRule{re: re, replace: r.Replace})
	}
	return c, nil
}

// Load reads a YAML rules file of the form:
//
//	rules:
//	  - pattern: '\bVeer Bank\b'
//	    replace: Bank WIR
//	    ignore_case: true
func Load(path string) (*Corrector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corrections %s: %w", path, err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corrections %s: %w", path, err)
	}
	c, err := New(f.Rules)
	if err != nil {
		return nil, fmt.Errorf("corrections %s: %w", path, err)
	}
	return c, nil
}

// Len is the number of user rules.
func (c *Corrector) Len() int {
	return len(c.rules)
}

// Apply runs every rule over text, then the whitespace cleanup.
func (c *Corrector) Apply(text string) string {
	for _, r := range c.rules {
		text = r.re.ReplaceAllString(text, r.replace)
	}
	for _, r := range cleanup {
		text = r.re.ReplaceAllString(text, r.replace)
	}
	return text
}

// CorrectedPath returns the output path for a corrected copy of path:
// "talk screenplay_aai.md" -> "talk screenplay_aai_corrected.md".
func CorrectedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_corrected" + ext
}

// ApplyFile writes a corrected copy of path next to it and returns the new
// path.
func (c *Corrector) ApplyFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	out := CorrectedPath(path)
	if err := os.WriteFile(out, []byte(c.Apply(string(data))), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}
