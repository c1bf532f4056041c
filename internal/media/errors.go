package media

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoInputFiles is returned when a merge is requested with no inputs.
	ErrNoInputFiles = errors.New("input files list cannot be empty")

	// ErrInputNotFound is returned when a referenced input file is missing.
	// The wrapped message names the offending path.
	ErrInputNotFound = errors.New("input file not found")
)

// stderrTailLen bounds captured diagnostics. ffmpeg reports the actual
// failure at the end of its output, so the tail is kept.
const stderrTailLen = 2000

// ToolError reports a failed external tool invocation with enough context
// for an operator to reproduce it.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = e.Err.Error()
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, detail)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// NewToolError builds a ToolError from a finished RunResult, keeping only
// the stderr tail.
func NewToolError(tool string, args []string, res RunResult, err error) *ToolError {
	return &ToolError{
		Tool:     tool,
		Args:     args,
		ExitCode: res.ExitCode,
		Stderr:   tail(res.Stderr, stderrTailLen),
		Err:      err,
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
