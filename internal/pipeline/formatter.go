package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultLineWidth is the subtitle hard-wrap width in characters.
const DefaultLineWidth = 65

// MillisecondsToHMS formats a millisecond offset as HH:MM:SS. Hours are not
// wrapped at 24.
func MillisecondsToHMS(ms int64) string {
	totalSec := ms / 1000
	hours := totalSec / 3600
	minutes := (totalSec % 3600) / 60
	secs := totalSec % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// MillisecondsToSRTTime formats a millisecond offset as HH:MM:SS,mmm.
func MillisecondsToSRTTime(ms int64) string {
	return fmt.Sprintf("%s,%03d", MillisecondsToHMS(ms), ms%1000)
}

// wrapText greedily packs whitespace-separated words into lines of at most
// width runes. A word longer than width gets a line of its own.
func wrapText(text string, width int) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	if width <= 0 {
		width = DefaultLineWidth
	}

	var lines []string
	var b strings.Builder
	lineLen := 0

	for _, f := range fields {
		n := utf8.RuneCountInString(f)
		if lineLen > 0 && lineLen+1+n > width {
			lines = append(lines, b.String())
			b.Reset()
			lineLen = 0
		}
		if lineLen > 0 {
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(f)
		lineLen += n
	}
	if b.Len() > 0 {
		lines = append(lines, b.String())
	}
	return lines
}

// speakerLabel normalizes a speaker id for output headers.
func speakerLabel(speaker string) string {
	return strings.ToUpper(strings.TrimSpace(speaker))
}
