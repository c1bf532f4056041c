package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArtemisAI/thePodcaster/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "podcaster-api",
		})
	})

	h := handler.NewHandler(deps)

	api := r.Group("/api")
	{
		audio := api.Group("/audio")
		{
			// POST /api/audio/upload - Upload episode tracks
			audio.POST("/upload", h.UploadAudio)

			// POST /api/audio/process/:session_id - Merge and normalize a session
			audio.POST("/process/:session_id", h.ProcessAudio)

			// GET /api/audio/status/:job_id - Poll job progress
			audio.GET("/status/:job_id", h.AudioStatus)

			// GET /api/audio/download/:job_id - Fetch the processed audio
			audio.GET("/download/:job_id", h.DownloadAudio)
		}

		video := api.Group("/video")
		{
			// POST /api/video/process/:audio_job_id - Render a waveform video
			video.POST("/process/:audio_job_id", h.ProcessVideo)

			// GET /api/video/download/:job_id - Fetch the rendered video
			video.GET("/download/:job_id", h.DownloadVideo)
		}

		transcription := api.Group("/transcription")
		{
			// POST /api/transcription/process/:audio_job_id - Transcribe processed audio
			transcription.POST("/process/:audio_job_id", h.ProcessTranscription)

			// GET /api/transcription/:job_id - Fetch the stored transcript
			transcription.GET("/:job_id", h.GetTranscript)
		}

		jobs := api.Group("/jobs")
		{
			// GET /api/jobs - List jobs with filtering and pagination
			jobs.GET("", h.ListJobs)

			// GET /api/jobs/:job_id - Get job details
			jobs.GET("/:job_id", h.GetJob)

			// GET /api/jobs/:job_id/suggestions - List LLM suggestions for a job
			jobs.GET("/:job_id/suggestions", h.ListSuggestionsByJob)
		}

		library := api.Group("/library")
		{
			// GET /api/library - List completed jobs with artifacts
			library.GET("", h.ListLibrary)

			// DELETE /api/library/:job_id - Delete an artifact from disk
			library.DELETE("/:job_id", h.DeleteLibraryItem)
		}

		outputs := api.Group("/outputs")
		{
			// GET /api/outputs - List exported files
			outputs.GET("", h.ListOutputs)

			// GET /api/outputs/:filename - Download an exported file
			outputs.GET("/:filename", h.DownloadOutput)

			// DELETE /api/outputs/:filename - Delete an exported file
			outputs.DELETE("/:filename", h.DeleteOutput)
		}

		llm := api.Group("/llm")
		{
			// POST /api/llm/suggest/from_job/:job_id - Suggest metadata from a transcript job
			llm.POST("/suggest/from_job/:job_id", h.SuggestFromJob)

			// POST /api/llm/suggest/from_text - Suggest metadata from raw text
			llm.POST("/suggest/from_text", h.SuggestFromText)

			// GET /api/llm/suggestions/:suggestion_id - Get a stored suggestion
			llm.GET("/suggestions/:suggestion_id", h.GetSuggestion)
		}

		// POST /api/publish/episode/:job_id - Trigger the n8n publish workflow
		api.POST("/publish/episode/:job_id", h.PublishEpisode)
	}

	return r
}
