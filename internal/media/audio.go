package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// loudnormFilter is the broadcast-style loudness target applied to every
// processed episode. The values are fixed; uploads of wildly different
// levels must come out comparable.
const loudnormFilter = "loudnorm=I=-16:LRA=11:TP=-1.5"

const (
	mp3Codec   = "libmp3lame"
	mp3Bitrate = "192k"
)

// AudioProcessor merges uploaded tracks and normalizes loudness with ffmpeg.
type AudioProcessor struct {
	ffmpegPath string
	runner     Runner
	logger     *slog.Logger
}

// NewAudioProcessor creates an AudioProcessor using the given ffmpeg binary.
func NewAudioProcessor(ffmpegPath string, runner Runner, logger *slog.Logger) *AudioProcessor {
	return &AudioProcessor{
		ffmpegPath: ffmpegPath,
		runner:     runner,
		logger:     logger,
	}
}

// MergeAndNormalize concatenates inputs in list order, applies loudness
// normalization and encodes an MP3 at outputPath. All paths are absolute.
// Every input must exist before ffmpeg is invoked; on tool failure any
// partially written output is removed before the error is returned.
func (p *AudioProcessor) MergeAndNormalize(ctx context.Context, inputs []string, outputPath string) error {
	if len(inputs) == 0 {
		return ErrNoInputFiles
	}

	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("%w: %s", ErrInputNotFound, in)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := buildMergeArgs(inputs, outputPath)
	p.logger.Debug("Running ffmpeg merge",
		slog.Int("inputs", len(inputs)),
		slog.String("output", outputPath),
	)

	res, err := p.runner.Run(ctx, p.ffmpegPath, args...)
	if err != nil {
		p.removePartialOutput(outputPath)
		toolErr := NewToolError(p.ffmpegPath, args, res, err)
		p.logger.Error("ffmpeg merge failed",
			slog.Int("exit_code", toolErr.ExitCode),
			slog.String("output", outputPath),
		)
		return toolErr
	}

	return nil
}

// removePartialOutput deletes a half-written artifact. Cleanup failures are
// logged, never allowed to displace the tool error.
func (p *AudioProcessor) removePartialOutput(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("Failed to remove partial output",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

// buildMergeArgs builds the ffmpeg invocation. A single input skips the
// concat filter and normalizes directly; multiple inputs are concatenated
// audio-only, in order, before normalization.
func buildMergeArgs(inputs []string, outputPath string) []string {
	args := []string{"-hide_banner", "-nostdin", "-y"}
	for _, in := range inputs {
		args = append(args, "-i", in)
	}

	if len(inputs) == 1 {
		return append(args,
			"-af", loudnormFilter,
			"-c:a", mp3Codec,
			"-b:a", mp3Bitrate,
			outputPath,
		)
	}

	var filter strings.Builder
	for i := range inputs {
		fmt.Fprintf(&filter, "[%d:a]", i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=0:a=1[merged];[merged]%s[out]", len(inputs), loudnormFilter)

	return append(args,
		"-filter_complex", filter.String(),
		"-map", "[out]",
		"-c:a", mp3Codec,
		"-b:a", mp3Bitrate,
		outputPath,
	)
}
