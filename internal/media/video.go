package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Waveform rendering defaults.
const (
	DefaultResolution = "1280x720"
	DefaultForeground = "white"
	DefaultBackground = "black"
)

// WaveformSpec describes one waveform video render. AudioPath and OutputPath
// are absolute; BackgroundImagePath is optional and replaces the solid
// BackgroundColor canvas when set.
type WaveformSpec struct {
	AudioPath           string
	OutputPath          string
	Resolution          string
	ForegroundColor     string
	BackgroundColor     string
	BackgroundImagePath string
}

func (s WaveformSpec) withDefaults() WaveformSpec {
	if s.Resolution == "" {
		s.Resolution = DefaultResolution
	}
	if s.ForegroundColor == "" {
		s.ForegroundColor = DefaultForeground
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = DefaultBackground
	}
	return s
}

// VideoGenerator renders waveform videos for processed audio with ffmpeg.
type VideoGenerator struct {
	ffmpegPath string
	runner     Runner
	logger     *slog.Logger
}

// NewVideoGenerator creates a VideoGenerator using the given ffmpeg binary.
func NewVideoGenerator(ffmpegPath string, runner Runner, logger *slog.Logger) *VideoGenerator {
	return &VideoGenerator{
		ffmpegPath: ffmpegPath,
		runner:     runner,
		logger:     logger,
	}
}

// RenderWaveform draws the audio's waveform over the background, encodes
// H.264/yuv420p and muxes the source audio in unchanged (stream copy). The
// output duration is bounded by the audio track.
func (g *VideoGenerator) RenderWaveform(ctx context.Context, spec WaveformSpec) error {
	if _, err := os.Stat(spec.AudioPath); err != nil {
		return fmt.Errorf("%w: %s", ErrInputNotFound, spec.AudioPath)
	}
	if spec.BackgroundImagePath != "" {
		if _, err := os.Stat(spec.BackgroundImagePath); err != nil {
			return fmt.Errorf("%w: %s", ErrInputNotFound, spec.BackgroundImagePath)
		}
	}

	spec = spec.withDefaults()

	if err := os.MkdirAll(filepath.Dir(spec.OutputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := buildWaveformArgs(spec)
	g.logger.Debug("Running ffmpeg waveform render",
		slog.String("audio", spec.AudioPath),
		slog.String("resolution", spec.Resolution),
		slog.String("output", spec.OutputPath),
	)

	res, err := g.runner.Run(ctx, g.ffmpegPath, args...)
	if err != nil {
		g.removePartialOutput(spec.OutputPath)
		toolErr := NewToolError(g.ffmpegPath, args, res, err)
		g.logger.Error("ffmpeg waveform render failed",
			slog.Int("exit_code", toolErr.ExitCode),
			slog.String("output", spec.OutputPath),
		)
		return toolErr
	}

	return nil
}

func (g *VideoGenerator) removePartialOutput(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		g.logger.Warn("Failed to remove partial output",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

// buildWaveformArgs builds the ffmpeg invocation: waveform image from the
// audio, overlaid on a looped background image or a lavfi color canvas.
func buildWaveformArgs(spec WaveformSpec) []string {
	args := []string{"-hide_banner", "-nostdin", "-y", "-i", spec.AudioPath}

	if spec.BackgroundImagePath != "" {
		args = append(args, "-loop", "1", "-i", spec.BackgroundImagePath)
	} else {
		args = append(args,
			"-f", "lavfi",
			"-i", fmt.Sprintf("color=c=%s:s=%s", spec.BackgroundColor, spec.Resolution),
		)
	}

	filter := fmt.Sprintf(
		"[0:a]showwavespic=s=%s:colors=%s[wave];[1:v][wave]overlay[video]",
		spec.Resolution, spec.ForegroundColor,
	)

	return append(args,
		"-filter_complex", filter,
		"-map", "[video]",
		"-map", "0:a",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "copy",
		"-shortest",
		spec.OutputPath,
	)
}
