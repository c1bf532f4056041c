package dto

type UploadAudioResponse struct {
	UploadSessionID string            `json:"upload_session_id"`
	SavedFiles      map[string]string `json:"saved_files"`
}

type ProcessVideoRequest struct {
	Resolution          string `json:"resolution"`
	FgColor             string `json:"fg_color"`
	BgColor             string `json:"bg_color"`
	BackgroundImagePath string `json:"background_image_path"`
}

type TranscriptResponse struct {
	JobID     int64  `json:"job_id"`
	Language  string `json:"language"`
	Text      string `json:"text"`
	SRT       string `json:"srt"`
	CreatedAt string `json:"created_at"`
}
