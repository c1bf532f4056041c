package jobs

import (
	"errors"
	"unicode/utf8"
)

// ErrJobNotFound is returned when a job row does not exist, or no longer
// exists by the time a worker picks up its task.
var ErrJobNotFound = errors.New("job not found")

// ErrTranscriptNotFound is returned when a job has no transcript row.
var ErrTranscriptNotFound = errors.New("transcript not found")

// ErrSuggestionNotFound is returned when an LLM suggestion does not exist.
var ErrSuggestionNotFound = errors.New("suggestion not found")

// MaxErrorMessageLen bounds the error_message column so diagnostic text from
// external tools cannot grow job rows without limit.
const MaxErrorMessageLen = 500

// TruncateError clips msg to MaxErrorMessageLen, backing off a partial
// trailing rune if the cut lands inside one.
func TruncateError(msg string) string {
	if len(msg) <= MaxErrorMessageLen {
		return msg
	}
	cut := msg[:MaxErrorMessageLen]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
