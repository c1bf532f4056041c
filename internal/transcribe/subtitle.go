package transcribe

import (
	"fmt"
	"math"
	"strings"
)

// Segment is one timed chunk of recognized speech. Times are seconds from
// the start of the audio.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm),
// rounded to the nearest millisecond with carry across unit boundaries.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// RenderSRT renders segments as numbered SRT cues: a 1-based index line, a
// "start --> end" timing line, the trimmed text, and a blank separator.
func RenderSRT(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimestamp(seg.Start), FormatTimestamp(seg.End))
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(seg.Text))
	}
	return b.String()
}

// JoinSegments flattens segment texts into a single plain-text transcript,
// each piece trimmed and joined by single spaces.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
