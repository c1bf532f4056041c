package publish

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtemisAI/thePodcaster/internal/datadir"
	"github.com/ArtemisAI/thePodcaster/internal/jobs"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	jobs        map[int64]*jobs.Job
	suggestions map[int64]*jobs.Suggestion
}

func (f *fakeStore) GetJob(_ context.Context, jobID int64) (*jobs.Job, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, jobs.ErrJobNotFound
	}
	return job, nil
}

func (f *fakeStore) LatestSuggestionByJob(_ context.Context, jobID int64) (*jobs.Suggestion, error) {
	suggestion, ok := f.suggestions[jobID]
	if !ok {
		return nil, jobs.ErrSuggestionNotFound
	}
	return suggestion, nil
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func titlesJSON(t *testing.T, titles ...string) string {
	t.Helper()
	encoded, err := json.Marshal(titles)
	require.NoError(t, err)
	return string(encoded)
}

func newTestPublisher(t *testing.T, webhookURL, apiKey string, store *fakeStore) (*Publisher, datadir.Layout) {
	t.Helper()
	layout := datadir.New(t.TempDir())
	cfg := &Config{WebhookURL: webhookURL, APIKey: apiKey, Timeout: 5 * time.Second}
	return NewPublisher(cfg, store, layout, discardLogger()), layout
}

func TestPublishEpisode(t *testing.T) {
	t.Run("posts the full payload for a transcription job", func(t *testing.T) {
		var gotAPIKey string
		var gotPayload map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAPIKey = r.Header.Get("X-N8N-API-KEY")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			io.WriteString(w, `{"workflow": "started"}`)
		}))
		defer server.Close()

		job := &jobs.Job{
			ID:             7,
			JobType:        jobs.TypeTranscription,
			Status:         jobs.StatusCompleted,
			OutputFilePath: strPtr("transcripts/7_transcript.srt"),
			CreatedAt:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}
		store := &fakeStore{
			jobs: map[int64]*jobs.Job{7: job},
			suggestions: map[int64]*jobs.Suggestion{7: {
				ID:               1,
				JobID:            int64Ptr(7),
				Titles:           titlesJSON(t, "Great Episode", "Alternative Title"),
				SuggestedSummary: "A chat about audio pipelines.",
			}},
		}
		publisher, layout := newTestPublisher(t, server.URL, "sekret", store)

		result, err := publisher.PublishEpisode(context.Background(), job)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "n8n workflow triggered successfully.", result.Message)
		assert.JSONEq(t, `{"workflow": "started"}`, string(result.Response))

		assert.Equal(t, "sekret", gotAPIKey)
		assert.EqualValues(t, 7, gotPayload["job_id"])
		assert.Equal(t, "transcription", gotPayload["job_type"])
		assert.Equal(t, "unknown", gotPayload["media_type"])
		assert.Equal(t, "Great Episode", gotPayload["title"])
		assert.Equal(t, "A chat about audio pipelines.", gotPayload["summary"])
		assert.Equal(t, "2024-05-01T10:00:00Z", gotPayload["created_at"])

		wantSRT, err := layout.Resolve("transcripts/7_transcript.srt")
		require.NoError(t, err)
		wantTXT, err := layout.Resolve("transcripts/7_transcript.txt")
		require.NoError(t, err)
		assert.Equal(t, wantSRT, gotPayload["media_file_path"])
		assert.Equal(t, wantSRT, gotPayload["transcript_srt_path"])
		assert.Equal(t, wantTXT, gotPayload["transcript_txt_path"])
	})

	t.Run("audio job takes transcript paths from the suggestion's source job", func(t *testing.T) {
		var gotPayload map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			io.WriteString(w, `{}`)
		}))
		defer server.Close()

		audioJob := &jobs.Job{
			ID:             3,
			JobType:        jobs.TypeAudioProcessing,
			Status:         jobs.StatusCompleted,
			OutputFilePath: strPtr("processed/3_processed.mp3"),
			CreatedAt:      time.Now(),
		}
		transcriptionJob := &jobs.Job{
			ID:             2,
			JobType:        jobs.TypeTranscription,
			Status:         jobs.StatusCompleted,
			OutputFilePath: strPtr("transcripts/2_transcript.srt"),
			CreatedAt:      time.Now(),
		}
		store := &fakeStore{
			jobs: map[int64]*jobs.Job{3: audioJob, 2: transcriptionJob},
			suggestions: map[int64]*jobs.Suggestion{3: {
				ID:               4,
				JobID:            int64Ptr(2),
				Titles:           titlesJSON(t, "Episode Nine"),
				SuggestedSummary: "Summary.",
			}},
		}
		publisher, layout := newTestPublisher(t, server.URL, "", store)

		result, err := publisher.PublishEpisode(context.Background(), audioJob)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "audio", gotPayload["media_type"])

		wantMedia, err := layout.Resolve("processed/3_processed.mp3")
		require.NoError(t, err)
		wantSRT, err := layout.Resolve("transcripts/2_transcript.srt")
		require.NoError(t, err)
		assert.Equal(t, wantMedia, gotPayload["media_file_path"])
		assert.Equal(t, wantSRT, gotPayload["transcript_srt_path"])
	})

	t.Run("job without suggestions sends null metadata", func(t *testing.T) {
		var gotPayload map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			io.WriteString(w, `{}`)
		}))
		defer server.Close()

		job := &jobs.Job{
			ID:             5,
			JobType:        jobs.TypeVideoGeneration,
			Status:         jobs.StatusCompleted,
			OutputFilePath: strPtr("processed/5_waveform.mp4"),
			CreatedAt:      time.Now(),
		}
		store := &fakeStore{jobs: map[int64]*jobs.Job{5: job}}
		publisher, _ := newTestPublisher(t, server.URL, "", store)

		result, err := publisher.PublishEpisode(context.Background(), job)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "video", gotPayload["media_type"])
		assert.Nil(t, gotPayload["title"])
		assert.Nil(t, gotPayload["summary"])
		assert.Nil(t, gotPayload["transcript_srt_path"])
		assert.Nil(t, gotPayload["transcript_txt_path"])
	})

	t.Run("webhook error status becomes a failed result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "workflow exploded", http.StatusInternalServerError)
		}))
		defer server.Close()

		job := &jobs.Job{ID: 9, JobType: jobs.TypeAudioProcessing, Status: jobs.StatusCompleted, CreatedAt: time.Now()}
		publisher, _ := newTestPublisher(t, server.URL, "", &fakeStore{jobs: map[int64]*jobs.Job{9: job}})

		result, err := publisher.PublishEpisode(context.Background(), job)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "HTTP error from n8n: 500", result.Message)
		assert.Contains(t, result.Details, "workflow exploded")
	})

	t.Run("unreachable webhook becomes a failed result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		job := &jobs.Job{ID: 9, JobType: jobs.TypeAudioProcessing, Status: jobs.StatusCompleted, CreatedAt: time.Now()}
		publisher, _ := newTestPublisher(t, url, "", &fakeStore{jobs: map[int64]*jobs.Job{9: job}})

		result, err := publisher.PublishEpisode(context.Background(), job)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "Request to n8n failed.", result.Message)
		assert.NotEmpty(t, result.Details)
	})

	t.Run("missing webhook URL", func(t *testing.T) {
		publisher, _ := newTestPublisher(t, "", "", &fakeStore{})

		result, err := publisher.PublishEpisode(context.Background(), &jobs.Job{ID: 1, CreatedAt: time.Now()})

		require.ErrorIs(t, err, ErrNotConfigured)
		assert.Nil(t, result)
	})
}
