// Package transcribe runs speech recognition through a whisper.cpp binary
// and renders the recognized segments as plain text and SRT subtitles.
package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ArtemisAI/thePodcaster/internal/media"
)

// ErrEngineUnavailable is returned when the recognition engine cannot be
// initialized (missing binary or model). Initialization failure is cached;
// every later call fails fast with the same error.
var ErrEngineUnavailable = errors.New("transcription engine unavailable")

// Config selects the whisper binary and model plus the ffmpeg binary used
// to downmix inputs to the 16 kHz mono WAV the engine expects.
type Config struct {
	BinaryPath string
	ModelPath  string
	FFmpegPath string
	Language   string
	Threads    int
}

// Result is one finished transcription.
type Result struct {
	Text     string
	SRT      string
	Language string
	Segments []Segment
}

// Engine is a process-wide handle on the recognition model. Construct one in
// the worker's wiring and share it; the binary and model are resolved on
// first use behind a single-flight guard so concurrent tasks never race the
// initialization.
type Engine struct {
	cfg    Config
	runner media.Runner
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
	binary   string

	lookPath  func(file string) (string, error)
	stat      func(name string) (os.FileInfo, error)
	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(path string) error
	readFile  func(name string) ([]byte, error)
}

// NewEngine creates an Engine with OS-backed dependencies. No binaries are
// touched until the first Transcribe call.
func NewEngine(cfg Config, runner media.Runner, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		runner:    runner,
		logger:    logger,
		lookPath:  exec.LookPath,
		stat:      os.Stat,
		mkdirTemp: os.MkdirTemp,
		removeAll: os.RemoveAll,
		readFile:  os.ReadFile,
	}
}

func (e *Engine) init() error {
	e.initOnce.Do(func() {
		bin := e.cfg.BinaryPath
		if bin == "" {
			bin = "whisper-cli"
		}

		resolved, err := e.lookPath(bin)
		if err != nil {
			e.initErr = fmt.Errorf("%w: binary %q not found: %v", ErrEngineUnavailable, bin, err)
			return
		}

		if e.cfg.ModelPath == "" {
			e.initErr = fmt.Errorf("%w: model path not configured", ErrEngineUnavailable)
			return
		}
		if _, err := e.stat(e.cfg.ModelPath); err != nil {
			e.initErr = fmt.Errorf("%w: model %s: %v", ErrEngineUnavailable, e.cfg.ModelPath, err)
			return
		}

		e.binary = resolved
		e.logger.Info("Transcription engine initialized",
			slog.String("binary", resolved),
			slog.String("model", e.cfg.ModelPath),
		)
	})
	return e.initErr
}

// Transcribe recognizes speech in the audio file at the absolute audioPath.
// The input is first downmixed to 16 kHz mono WAV in a temporary workspace.
func (e *Engine) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := e.stat(audioPath); err != nil {
		return nil, fmt.Errorf("%w: %s", media.ErrInputNotFound, audioPath)
	}

	if err := e.init(); err != nil {
		return nil, err
	}

	tempDir, err := e.mkdirTemp("", "podcaster-transcribe-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp workspace: %w", err)
	}
	defer func() {
		if err := e.removeAll(tempDir); err != nil {
			e.logger.Warn("Failed to remove temp workspace",
				slog.String("path", tempDir),
				slog.String("error", err.Error()),
			)
		}
	}()

	ffmpeg := e.cfg.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	wavPath := filepath.Join(tempDir, "audio-16k-mono.wav")
	preArgs := buildPreprocessArgs(audioPath, wavPath)
	if res, runErr := e.runner.Run(ctx, ffmpeg, preArgs...); runErr != nil {
		return nil, media.NewToolError(ffmpeg, preArgs, res, runErr)
	}

	outBase := filepath.Join(tempDir, "transcript")
	whisperArgs := buildWhisperArgs(e.cfg, e.cfg.ModelPath, wavPath, outBase)
	if res, runErr := e.runner.Run(ctx, e.binary, whisperArgs...); runErr != nil {
		return nil, media.NewToolError(e.binary, whisperArgs, res, runErr)
	}

	data, err := e.readFile(outBase + ".json")
	if err != nil {
		return nil, fmt.Errorf("whisper finished but JSON output is missing: %w", err)
	}

	language, segments, err := parseWhisperOutput(data)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Transcription finished",
		slog.String("audio", audioPath),
		slog.String("language", language),
		slog.Int("segments", len(segments)),
	)

	return &Result{
		Text:     JoinSegments(segments),
		SRT:      RenderSRT(segments),
		Language: language,
		Segments: segments,
	}, nil
}

// buildPreprocessArgs downmixes any input container to 16 kHz mono PCM WAV.
func buildPreprocessArgs(inputPath, wavPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		wavPath,
	}
}

// buildWhisperArgs asks whisper.cpp for JSON segment output.
func buildWhisperArgs(cfg Config, modelPath, wavPath, outBase string) []string {
	args := []string{
		"-m", modelPath,
		"-f", wavPath,
		"-of", outBase,
		"-oj",
	}

	if lang := normalizeLanguage(cfg.Language); lang != "" {
		args = append(args, "-l", lang)
	}
	if cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(cfg.Threads))
	}

	return args
}

// normalizeLanguage maps "auto" and empty to no CLI override so the engine
// detects the language itself.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}

// whisperOutput mirrors the fields of whisper.cpp's -oj JSON we consume.
// Offsets are milliseconds.
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperOutput(data []byte) (string, []Segment, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return "", nil, fmt.Errorf("failed to parse whisper output: %w", err)
	}

	segments := make([]Segment, 0, len(out.Transcription))
	for _, t := range out.Transcription {
		segments = append(segments, Segment{
			Start: float64(t.Offsets.From) / 1000,
			End:   float64(t.Offsets.To) / 1000,
			Text:  t.Text,
		})
	}

	return out.Result.Language, segments, nil
}
