package jobs

import (
	"errors"
	"fmt"
)

// TaskMessage is the queue payload the API service publishes and workers
// consume. Exactly one args field, matching JobType, is set. All paths are
// relative to the shared data root.
type TaskMessage struct {
	JobID   int64 `json:"job_id"`
	JobType Type  `json:"job_type"`

	AudioProcessing *AudioProcessingArgs `json:"audio_processing,omitempty"`
	VideoGeneration *VideoGenerationArgs `json:"video_generation,omitempty"`
	Transcription   *TranscriptionArgs   `json:"transcription,omitempty"`
}

// AudioProcessingArgs describes a merge-and-normalize task. InputPaths keeps
// submission order; the merged audio is concatenated in that order.
type AudioProcessingArgs struct {
	InputPaths     []string `json:"input_paths"`
	OutputFilename string   `json:"output_filename"`
}

// VideoGenerationArgs describes a waveform video task. BackgroundImagePath
// is optional; when empty a solid BackgroundColor canvas is used.
type VideoGenerationArgs struct {
	SourcePath          string `json:"source_path"`
	OutputFilename      string `json:"output_filename"`
	Resolution          string `json:"resolution"`
	ForegroundColor     string `json:"fg_color"`
	BackgroundColor     string `json:"bg_color"`
	BackgroundImagePath string `json:"background_image_path,omitempty"`
}

// TranscriptionArgs describes a speech-to-text task. OutputBasename names the
// transcript files written next to each other as <basename>.txt/<basename>.srt.
type TranscriptionArgs struct {
	SourcePath     string `json:"source_path"`
	OutputBasename string `json:"output_basename"`
}

// Validate rejects structurally broken messages: a missing job id, or a
// processable job type without its matching args. Semantic problems inside
// the args (missing files, empty input lists) are left to the executor so
// they surface as FAILED job rows instead of silently dropped deliveries.
func (m *TaskMessage) Validate() error {
	if m.JobID <= 0 {
		return errors.New("job_id must be a positive integer")
	}

	switch m.JobType {
	case TypeAudioProcessing:
		if m.AudioProcessing == nil {
			return fmt.Errorf("job %d: missing audio_processing args", m.JobID)
		}
		if m.AudioProcessing.OutputFilename == "" {
			return fmt.Errorf("job %d: missing output_filename", m.JobID)
		}
	case TypeVideoGeneration:
		if m.VideoGeneration == nil {
			return fmt.Errorf("job %d: missing video_generation args", m.JobID)
		}
		if m.VideoGeneration.OutputFilename == "" {
			return fmt.Errorf("job %d: missing output_filename", m.JobID)
		}
	case TypeTranscription:
		if m.Transcription == nil {
			return fmt.Errorf("job %d: missing transcription args", m.JobID)
		}
		if m.Transcription.OutputBasename == "" {
			return fmt.Errorf("job %d: missing output_basename", m.JobID)
		}
	}

	return nil
}
