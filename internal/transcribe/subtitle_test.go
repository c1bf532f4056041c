package transcribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{
			name:    "zero",
			seconds: 0,
			want:    "00:00:00,000",
		},
		{
			name:    "fractional seconds",
			seconds: 125.4,
			want:    "00:02:05,400",
		},
		{
			name:    "millisecond precision across hour boundary",
			seconds: 3661.999,
			want:    "01:01:01,999",
		},
		{
			name:    "rounds up into the next second",
			seconds: 1.9996,
			want:    "00:00:02,000",
		},
		{
			name:    "whole hour",
			seconds: 3600,
			want:    "01:00:00,000",
		},
		{
			name:    "negative clamps to zero",
			seconds: -4.2,
			want:    "00:00:00,000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.seconds))
		})
	}
}

func TestRenderSRT(t *testing.T) {
	t.Run("numbered cues with blank separators", func(t *testing.T) {
		segments := []Segment{
			{Start: 0, End: 2.5, Text: " Hello there. "},
			{Start: 2.5, End: 5, Text: " Welcome back."},
		}

		want := "1\n" +
			"00:00:00,000 --> 00:00:02,500\n" +
			"Hello there.\n" +
			"\n" +
			"2\n" +
			"00:00:02,500 --> 00:00:05,000\n" +
			"Welcome back.\n" +
			"\n"

		assert.Equal(t, want, RenderSRT(segments))
	})

	t.Run("no segments renders empty document", func(t *testing.T) {
		assert.Equal(t, "", RenderSRT(nil))
	})
}

func TestJoinSegments(t *testing.T) {
	segments := []Segment{
		{Text: "  First sentence. "},
		{Text: "   "},
		{Text: "Second sentence."},
	}

	assert.Equal(t, "First sentence. Second sentence.", JoinSegments(segments))
	assert.Equal(t, "", JoinSegments(nil))
}
