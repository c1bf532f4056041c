package storage

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 10, 30, 0, 123456789, time.UTC)
	original := &JobCursor{CreatedAt: createdAt, ID: 42}

	decoded, err := DecodeJobCursor(EncodeJobCursor(original))
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.CreatedAt.UnixNano(), decoded.CreatedAt.UnixNano())
}

func TestDecodeJobCursor(t *testing.T) {
	t.Run("empty string means first page", func(t *testing.T) {
		cursor, err := DecodeJobCursor("")
		require.NoError(t, err)
		assert.Nil(t, cursor)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		_, err := DecodeJobCursor("not-base64!!!")
		assert.Error(t, err)
	})

	t.Run("rejects wrong part count", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("12345"))
		_, err := DecodeJobCursor(encoded)
		assert.Error(t, err)
	})

	t.Run("rejects non-numeric job id", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("12345|abc"))
		_, err := DecodeJobCursor(encoded)
		assert.Error(t, err)
	})
}
