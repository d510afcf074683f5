package queue

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-curator/internal/domain"
)

func TestDecodeJobRoundTrip(t *testing.T) {
	job := domain.CurationJob{
		ID:          "job-1",
		UserID:      42,
		RequestedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Cause:       domain.CurationCauseScheduled,
	}
	payload, err := json.Marshal(job.Retry())
	require.NoError(t, err)

	got, err := decodeJob(payload)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempt)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.UserID, got.UserID)
	assert.True(t, job.RequestedAt.Equal(got.RequestedAt))
}

func TestDecodeJobInvalid(t *testing.T) {
	_, err := decodeJob([]byte("{not json"))
	require.Error(t, err)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, _, err := Open("kafka", nil, "", "jobs")
	require.Error(t, err)
	_, _, err = Open(BackendRedis, nil, "", "jobs")
	require.Error(t, err)
}
