package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when no --config
// flag is given. A missing default file is not an error.
const DefaultConfigFile = "transit.yaml"

// APIKeyEnv names the environment variable holding the AssemblyAI key.
const APIKeyEnv = "ASSEMBLYAI_API_KEY"

// SubtitleSettings holds the caption segmentation parameters.
type SubtitleSettings struct {
	MaxGapMs           int64 `yaml:"max_gap_ms"`
	MaxWordsPerSegment int   `yaml:"max_words_per_segment"`
	LineWidth          int   `yaml:"line_width"`
}

// ScreenplaySettings holds the speaker-turn segmentation parameters.
type ScreenplaySettings struct {
	MaxTurnMs int64 `yaml:"max_turn_ms"`
}

// AssemblyAISettings configures the transcription service.
type AssemblyAISettings struct {
	BaseURL           string        `yaml:"base_url"`
	SpeechModel       string        `yaml:"speech_model"`
	LanguageDetection bool          `yaml:"language_detection"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	APIKey            string        `yaml:"-"`
}

// Config holds the full application configuration.
type Config struct {
	Subtitles  SubtitleSettings   `yaml:"subtitles"`
	Screenplay ScreenplaySettings `yaml:"screenplay"`
	AssemblyAI AssemblyAISettings `yaml:"assemblyai"`

	WorkbenchDir       string `yaml:"workbench_dir"`
	CorrectionsFile    string `yaml:"corrections_file"`
	MaxConcurrentFiles int    `yaml:"max_concurrent_files"`
	APIRateLimitPerMin int    `yaml:"api_rate_limit_per_min"`
	MaxUploadMB        int64  `yaml:"max_upload_mb"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Subtitles: SubtitleSettings{
			MaxGapMs:           2000,
			MaxWordsPerSegment: 15,
			LineWidth:          65,
		},
		Screenplay: ScreenplaySettings{
			MaxTurnMs: 45000,
		},
		AssemblyAI: AssemblyAISettings{
			BaseURL:           "https://api.assemblyai.com",
			SpeechModel:       "best",
			LanguageDetection: true,
			PollInterval:      3 * time.Second,
		},
		WorkbenchDir:       "workbench",
		MaxConcurrentFiles: 2,
		APIRateLimitPerMin: 30,
		MaxUploadMB:        490,
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path means DefaultConfigFile, which may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Subtitles.MaxGapMs < 0:
		return fmt.Errorf("subtitles.max_gap_ms must not be negative")
	case c.Subtitles.MaxWordsPerSegment < 1:
		return fmt.Errorf("subtitles.max_words_per_segment must be at least 1")
	case c.Subtitles.LineWidth < 1:
		return fmt.Errorf("subtitles.line_width must be at least 1")
	case c.Screenplay.MaxTurnMs < 0:
		return fmt.Errorf("screenplay.max_turn_ms must not be negative")
	case c.MaxConcurrentFiles < 1:
		return fmt.Errorf("max_concurrent_files must be at least 1")
	case c.APIRateLimitPerMin < 1:
		return fmt.Errorf("api_rate_limit_per_min must be at least 1")
	case c.AssemblyAI.PollInterval <= 0:
		return fmt.Errorf("assemblyai.poll_interval must be positive")
	}
	return nil
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are skipped.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load env %s: %w", p, err)
		}
	}
	return nil
}

// APIKeyFromEnv returns the trimmed AssemblyAI key, or "" when unset.
func APIKeyFromEnv() string {
	return strings.TrimSpace(os.Getenv(APIKeyEnv))
}
