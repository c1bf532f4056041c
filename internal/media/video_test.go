package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWaveform(t *testing.T) {
	t.Run("missing audio fails before ffmpeg runs", func(t *testing.T) {
		dir := t.TempDir()
		missing := filepath.Join(dir, "episode.mp3")
		runner := &fakeRunner{}
		g := NewVideoGenerator("ffmpeg", runner, discardLogger())

		err := g.RenderWaveform(context.Background(), WaveformSpec{
			AudioPath:  missing,
			OutputPath: filepath.Join(dir, "episode.mp4"),
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInputNotFound)
		assert.Contains(t, err.Error(), missing)
		assert.Empty(t, runner.calls)
	})

	t.Run("solid color background with defaults", func(t *testing.T) {
		dir := t.TempDir()
		audio := writeTestFile(t, dir, "episode.mp3")
		out := filepath.Join(dir, "episode.mp4")
		runner := &fakeRunner{}
		g := NewVideoGenerator("ffmpeg", runner, discardLogger())

		err := g.RenderWaveform(context.Background(), WaveformSpec{
			AudioPath:  audio,
			OutputPath: out,
		})

		require.NoError(t, err)
		require.Len(t, runner.calls, 1)

		args := runner.calls[0].args
		joined := strings.Join(args, " ")
		assert.Contains(t, joined, "-f lavfi -i color=c=black:s=1280x720")

		filter := argAfter(t, args, "-filter_complex")
		assert.Contains(t, filter, "showwavespic=s=1280x720:colors=white")
		assert.Contains(t, filter, "overlay")

		assert.Contains(t, joined, "-c:v libx264")
		assert.Contains(t, joined, "-pix_fmt yuv420p")
		assert.Contains(t, joined, "-c:a copy")
		assert.Contains(t, joined, "-shortest")
		assert.Equal(t, out, args[len(args)-1])
	})

	t.Run("custom resolution and colors", func(t *testing.T) {
		dir := t.TempDir()
		audio := writeTestFile(t, dir, "episode.mp3")
		runner := &fakeRunner{}
		g := NewVideoGenerator("ffmpeg", runner, discardLogger())

		err := g.RenderWaveform(context.Background(), WaveformSpec{
			AudioPath:       audio,
			OutputPath:      filepath.Join(dir, "episode.mp4"),
			Resolution:      "640x360",
			ForegroundColor: "cyan",
			BackgroundColor: "navy",
		})

		require.NoError(t, err)
		require.Len(t, runner.calls, 1)

		joined := strings.Join(runner.calls[0].args, " ")
		assert.Contains(t, joined, "color=c=navy:s=640x360")
		assert.Contains(t, joined, "showwavespic=s=640x360:colors=cyan")
	})

	t.Run("background image replaces color canvas", func(t *testing.T) {
		dir := t.TempDir()
		audio := writeTestFile(t, dir, "episode.mp3")
		cover := writeTestFile(t, dir, "cover.png")
		runner := &fakeRunner{}
		g := NewVideoGenerator("ffmpeg", runner, discardLogger())

		err := g.RenderWaveform(context.Background(), WaveformSpec{
			AudioPath:           audio,
			OutputPath:          filepath.Join(dir, "episode.mp4"),
			BackgroundImagePath: cover,
		})

		require.NoError(t, err)
		require.Len(t, runner.calls, 1)

		args := runner.calls[0].args
		joined := strings.Join(args, " ")
		assert.Contains(t, joined, "-loop 1 -i "+cover)
		assert.NotContains(t, joined, "lavfi")
		assert.Equal(t, []string{audio, cover}, inputArgs(args))
	})

	t.Run("missing background image fails before ffmpeg runs", func(t *testing.T) {
		dir := t.TempDir()
		audio := writeTestFile(t, dir, "episode.mp3")
		missing := filepath.Join(dir, "cover.png")
		runner := &fakeRunner{}
		g := NewVideoGenerator("ffmpeg", runner, discardLogger())

		err := g.RenderWaveform(context.Background(), WaveformSpec{
			AudioPath:           audio,
			OutputPath:          filepath.Join(dir, "episode.mp4"),
			BackgroundImagePath: missing,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInputNotFound)
		assert.Contains(t, err.Error(), missing)
		assert.Empty(t, runner.calls)
	})

	t.Run("tool failure removes partial output", func(t *testing.T) {
		dir := t.TempDir()
		audio := writeTestFile(t, dir, "episode.mp3")
		out := filepath.Join(dir, "episode.mp4")
		runner := &fakeRunner{
			result: RunResult{Stderr: "Error initializing filter 'showwavespic'", ExitCode: 1},
			err:    errors.New("exit status 1"),
			onRun: func(string, []string) {
				require.NoError(t, os.WriteFile(out, []byte("partial"), 0o644))
			},
		}
		g := NewVideoGenerator("ffmpeg", runner, discardLogger())

		err := g.RenderWaveform(context.Background(), WaveformSpec{
			AudioPath:  audio,
			OutputPath: out,
		})

		require.Error(t, err)
		var toolErr *ToolError
		require.ErrorAs(t, err, &toolErr)
		assert.Equal(t, 1, toolErr.ExitCode)
		assert.NoFileExists(t, out)
	})
}
