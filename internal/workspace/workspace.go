// Package workspace locates media and transcript files on disk and keeps
// each recording's artifacts together in one folder.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"transit/internal/ffmpeg"
)

const (
	InputDirName  = "input"
	OutputDirName = "output"

	relabeledSuffix  = " new_transcript_aai.json"
	subtitleSuffix   = " subtitle_aai.srt"
	screenplaySuffix = " screenplay_aai.md"
)

// ErrNoTranscript is returned when no raw transcript JSON can be found.
var ErrNoTranscript = errors.New("no transcript found")

// Paths are the artifact locations for one recording.
type Paths struct {
	Dir        string
	Base       string
	JSON       string // raw transcript as returned by the service
	Relabeled  string // transcript after speaker relabeling
	SRT        string
	Screenplay string
}

// BaseName returns the file name of path without directory or extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// PathsFor builds the artifact paths for base inside dir.
func PathsFor(dir, base string) Paths {
	return Paths{
		Dir:        dir,
		Base:       base,
		JSON:       filepath.Join(dir, base+".json"),
		Relabeled:  filepath.Join(dir, base+relabeledSuffix),
		SRT:        filepath.Join(dir, base+subtitleSuffix),
		Screenplay: filepath.Join(dir, base+screenplaySuffix),
	}
}

// PathsForTranscript derives sibling artifact paths from a raw or
// relabeled transcript path.
func PathsForTranscript(jsonPath string) Paths {
	name := filepath.Base(jsonPath)
	base, ok := strings.CutSuffix(name, relabeledSuffix)
	if !ok {
		base = BaseName(name)
	}
	return PathsFor(filepath.Dir(jsonPath), base)
}

// IsRelabeled reports whether path names a relabeled transcript.
func IsRelabeled(path string) bool {
	return strings.HasSuffix(filepath.Base(path), strings.TrimSpace(relabeledSuffix))
}

// Layout describes where inputs live and where organized outputs go.
// With a workbench, media is read from Root/input and each recording gets
// Root/output/<base>. Without one, Root serves as input and folders are
// created directly beneath it.
type Layout struct {
	Root      string
	Workbench bool
}

// Detect returns a workbench layout when root contains an input directory.
func Detect(root string) Layout {
	info, err := os.Stat(filepath.Join(root, InputDirName))
	return Layout{Root: root, Workbench: err == nil && info.IsDir()}
}

// InputDir is the directory scanned for new media.
func (l Layout) InputDir() string {
	if l.Workbench {
		return filepath.Join(l.Root, InputDirName)
	}
	return l.Root
}

// OutputRoot is the directory holding per-recording folders.
func (l Layout) OutputRoot() string {
	if l.Workbench {
		return filepath.Join(l.Root, OutputDirName)
	}
	return l.Root
}

// OutputDir is the organized folder for a recording.
func (l Layout) OutputDir(base string) string {
	return filepath.Join(l.OutputRoot(), base)
}

// IsProcessed reports whether a raw transcript already exists for base,
// either organized or still beside the input.
func (l Layout) IsProcessed(base string) bool {
	for _, p := range []string{
		PathsFor(l.OutputDir(base), base).JSON,
		PathsFor(l.InputDir(), base).JSON,
	} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// FindUnprocessed lists media files at the top level of the input directory
// that have no transcript yet, sorted by name. When a video and its
// extracted audio share a base name only the audio is returned.
func (l Layout) FindUnprocessed() ([]string, error) {
	entries, err := os.ReadDir(l.InputDir())
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	byBase := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !ffmpeg.IsMediaExtension(ext) {
			continue
		}
		base := BaseName(e.Name())
		if l.IsProcessed(base) {
			slog.Debug("skipping processed file", "file", e.Name())
			continue
		}
		path := filepath.Join(l.InputDir(), e.Name())
		if prev, ok := byBase[base]; ok && ffmpeg.IsAudioExtension(filepath.Ext(prev)) {
			continue
		}
		byBase[base] = path
	}

	files := make([]string, 0, len(byBase))
	for _, p := range byBase {
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}

// FindLatestTranscript returns the most recently modified raw transcript.
// Relabeled copies are never returned.
func (l Layout) FindLatestTranscript() (string, error) {
	patterns := []string{filepath.Join(l.OutputRoot(), "*", "*.json")}
	if !l.Workbench {
		patterns = append(patterns, filepath.Join(l.Root, "*.json"))
	}

	var (
		latest  string
		latestT int64
	)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return "", err
		}
		for _, m := range matches {
			if IsRelabeled(m) {
				continue
			}
			info, err := os.Stat(m)
			if err != nil {
				continue
			}
			if t := info.ModTime().UnixNano(); latest == "" || t > latestT {
				latest, latestT = m, t
			}
		}
	}

	if latest == "" {
		return "", ErrNoTranscript
	}
	return latest, nil
}

// Organize moves every artifact of base found in srcDir into the
// recording's output folder. Files already present at the destination are
// left in place and never overwritten. It returns the destination paths
// of the files that were moved.
func (l Layout) Organize(srcDir, base string) ([]string, error) {
	related, err := relatedFiles(srcDir, base)
	if err != nil {
		return nil, err
	}
	if len(related) == 0 {
		slog.Warn("no related files found", "base", base)
		return nil, nil
	}

	dest := l.OutputDir(base)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("create output folder: %w", err)
	}

	var moved []string
	for _, src := range related {
		target := filepath.Join(dest, filepath.Base(src))
		if filepath.Clean(src) == filepath.Clean(target) {
			continue
		}
		if _, err := os.Stat(target); err == nil {
			slog.Warn("file already exists in folder", "file", filepath.Base(src))
			continue
		}
		if err := os.Rename(src, target); err != nil {
			return moved, fmt.Errorf("move %s: %w", filepath.Base(src), err)
		}
		slog.Debug("moved", "file", filepath.Base(src), "folder", dest)
		moved = append(moved, target)
	}

	slog.Info("organized files", "base", base, "moved", len(moved), "folder", dest)
	return moved, nil
}

// relatedFiles lists media and artifacts named after base in dir.
func relatedFiles(dir, base string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	p := PathsFor(dir, base)
	artifacts := map[string]bool{
		filepath.Base(p.JSON):       true,
		filepath.Base(p.Relabeled):  true,
		filepath.Base(p.SRT):        true,
		filepath.Base(p.Screenplay): true,
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if artifacts[name] || (BaseName(name) == base && ffmpeg.IsMediaExtension(filepath.Ext(name))) {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

// OrganizeAll organizes every media file at the top level of the input
// directory. It returns the number of recordings that had files to move.
func (l Layout) OrganizeAll() (int, error) {
	entries, err := os.ReadDir(l.InputDir())
	if err != nil {
		return 0, fmt.Errorf("read input dir: %w", err)
	}

	seen := make(map[string]bool)
	count := 0
	for _, e := range entries {
		if e.IsDir() || !ffmpeg.IsMediaExtension(filepath.Ext(e.Name())) {
			continue
		}
		base := BaseName(e.Name())
		if seen[base] {
			continue
		}
		seen[base] = true

		moved, err := l.Organize(l.InputDir(), base)
		if err != nil {
			return count, err
		}
		if len(moved) > 0 {
			count++
		}
	}
	return count, nil
}
