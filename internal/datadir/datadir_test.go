package datadir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	t.Run("ensure dirs creates the full tree", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "data")
		l := New(root)

		require.NoError(t, l.EnsureDirs())

		assert.DirExists(t, l.UploadsDir())
		assert.DirExists(t, l.ProcessedDir())
		assert.DirExists(t, l.TranscriptsDir())
		assert.DirExists(t, l.OutputsDir())
	})

	t.Run("resolve stays inside the root", func(t *testing.T) {
		l := New("/data")

		abs, err := l.Resolve("processed/7_processed.mp3")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/data", "processed", "7_processed.mp3"), abs)
	})

	t.Run("resolve rejects traversal", func(t *testing.T) {
		l := New("/data")

		_, err := l.Resolve("../etc/passwd")
		require.Error(t, err)

		_, err = l.Resolve("uploads/../../etc/passwd")
		require.Error(t, err)
	})

	t.Run("rel round trips", func(t *testing.T) {
		l := New("/data")

		rel, err := l.Rel("/data/uploads/sess/main.mp3")
		require.NoError(t, err)
		assert.Equal(t, "uploads/sess/main.mp3", rel)

		_, err = l.Rel("/elsewhere/file.mp3")
		require.Error(t, err)
	})
}

func TestWriteTranscriptFiles(t *testing.T) {
	root := t.TempDir()
	l := New(root)

	txtRel, srtRel, err := l.WriteTranscriptFiles("12_transcript", "plain text", "1\n00:00:00,000 --> 00:00:01,000\nhi\n\n")
	require.NoError(t, err)

	assert.Equal(t, "transcripts/12_transcript.txt", txtRel)
	assert.Equal(t, "transcripts/12_transcript.srt", srtRel)

	text, err := os.ReadFile(filepath.Join(root, "transcripts", "12_transcript.txt"))
	require.NoError(t, err)
	assert.Equal(t, "plain text", string(text))

	srt, err := os.ReadFile(filepath.Join(root, "transcripts", "12_transcript.srt"))
	require.NoError(t, err)
	assert.Contains(t, string(srt), "00:00:00,000 --> 00:00:01,000")
}

func TestArtifactNames(t *testing.T) {
	assert.Equal(t, "7_processed.mp3", ProcessedAudioName(7))
	assert.Equal(t, "7_waveform.mp4", WaveformVideoName(7))
	assert.Equal(t, "7_transcript", TranscriptBasename(7))
	assert.Equal(t, "processed/7_processed.mp3", ProcessedRel(ProcessedAudioName(7)))
	assert.Equal(t, "uploads/sess/main.mp3", UploadRel("sess", "main.mp3"))
}
