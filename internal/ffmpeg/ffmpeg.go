package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoAudio is returned by ProbeMedia when a file has no audio stream.
var ErrNoAudio = errors.New("no audio stream")

// MediaInfo describes a recording as reported by ffprobe.
type MediaInfo struct {
	DurationMs int64
	AudioCodec string
	HasVideo   bool
}

// Available returns true if ffmpeg is on the PATH.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
	} `json:"streams"`
}

// ProbeMedia runs ffprobe on path. A file without an audio stream yields
// the info gathered so far together with ErrNoAudio.
func ProbeMedia(ctx context.Context, path string) (*MediaInfo, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-show_entries", "stream=codec_type,codec_name:format=duration",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(out)
}

func parseProbe(data []byte) (*MediaInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("ffprobe JSON parse error: %w", err)
	}

	info := &MediaInfo{}
	if secs, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.DurationMs = int64(math.Round(secs * 1000))
	}
	for _, st := range probe.Streams {
		switch st.CodecType {
		case "audio":
			if info.AudioCodec == "" {
				info.AudioCodec = st.CodecName
			}
		case "video":
			info.HasVideo = true
		}
	}
	if info.AudioCodec == "" {
		return info, ErrNoAudio
	}
	return info, nil
}

// ExtractAudio re-encodes the audio track of a video file to a 192 kbit/s,
// 44.1 kHz MP3 at outputPath, overwriting any existing file.
func ExtractAudio(ctx context.Context, videoPath, outputPath string) error {
	slog.Info("extracting audio", "input", filepath.Base(videoPath), "output", filepath.Base(outputPath))

	cmd := exec.CommandContext(ctx,
		"ffmpeg", "-i", videoPath,
		"-vn",
		"-acodec", "mp3",
		"-ab", "192k",
		"-ar", "44100",
		"-y",
		outputPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract audio failed: %w\n%s", err, string(out))
	}
	return nil
}

// AudioPathFor returns the MP3 path used when extracting audio from
// videoPath: same directory, same base name.
func AudioPathFor(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp3"
}

// IsVideoExtension returns true for common video file extensions.
func IsVideoExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp4", ".mkv", ".mov", ".avi", ".flv", ".webm", ".wmv", ".m4v":
		return true
	}
	return false
}

// IsAudioExtension returns true for audio formats the service accepts directly.
func IsAudioExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp3", ".wav", ".m4a", ".aac", ".flac", ".ogg":
		return true
	}
	return false
}

// IsMediaExtension reports whether ext is a supported audio or video extension.
func IsMediaExtension(ext string) bool {
	return IsAudioExtension(ext) || IsVideoExtension(ext)
}

// NeedsExtraction reports whether a file must be converted to audio before
// upload: videos always are, other files only when larger than maxBytes.
// A maxBytes of zero disables the size check.
func NeedsExtraction(path string, size, maxBytes int64) bool {
	if IsVideoExtension(filepath.Ext(path)) {
		return true
	}
	return maxBytes > 0 && size > maxBytes && !strings.EqualFold(filepath.Ext(path), ".mp3")
}

// LogMediaInfo logs size, duration and codec of path. Probe failures
// other than ErrNoAudio are logged at debug level and yield nil.
func LogMediaInfo(ctx context.Context, path string) (*MediaInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	attrs := []any{
		"file", filepath.Base(path),
		"size_mb", fmt.Sprintf("%.2f", float64(stat.Size())/(1024*1024)),
	}

	info, err := ProbeMedia(ctx, path)
	if errors.Is(err, ErrNoAudio) {
		return info, err
	}
	if err != nil {
		slog.Debug("media probe skipped", "file", filepath.Base(path), "err", err)
		slog.Info("media file", attrs...)
		return nil, nil
	}

	secs := info.DurationMs / 1000
	attrs = append(attrs,
		"duration", fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60),
		"codec", info.AudioCodec)
	slog.Info("media file", attrs...)
	return info, nil
}
