package dto

type ListJobsRequest struct {
	Status   string `form:"status"`
	JobType  string `form:"job_type"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	ID             int64   `json:"id"`
	JobType        string  `json:"job_type"`
	Status         string  `json:"status"`
	OutputFilePath *string `json:"output_file_path"`
	ErrorMessage   *string `json:"error_message"`
	CreatedAt      string  `json:"created_at"`
}

type LibraryItem struct {
	JobID          int64  `json:"job_id"`
	JobType        string `json:"job_type"`
	OutputFilePath string `json:"output_file_path"`
	DownloadURL    string `json:"download_url"`
}
