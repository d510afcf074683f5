package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-curator/internal/domain"
)

type fakeQueue struct {
	jobs []domain.CurationJob
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, job domain.CurationJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) Receive(context.Context) (domain.CurationJob, domain.AckFunc, error) {
	return domain.CurationJob{}, nil, errors.New("not implemented")
}

func newTestServer(q *fakeQueue) *Server {
	srv := NewServer(zerolog.Nop())
	h := NewRunsHandler(q, zerolog.Nop())
	h.newID = func() string { return "job-fixed" }
	h.Mount(srv)
	return srv
}

func TestCreateRunEnqueuesManualJob(t *testing.T) {
	q := &fakeQueue{}
	srv := newTestServer(q)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/curation/runs", strings.NewReader(`{"user_id": 42}`))
	srv.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-fixed", resp.JobID)
	assert.Equal(t, int64(42), resp.UserID)

	require.Len(t, q.jobs, 1)
	assert.Equal(t, domain.CurationCauseManual, q.jobs[0].Cause)
	assert.Equal(t, int64(42), q.jobs[0].UserID)
	assert.False(t, q.jobs[0].RequestedAt.IsZero())
}

func TestCreateRunRejectsInvalidBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed", `{"user_id":`},
		{"missing user", `{}`},
		{"negative user", `{"user_id": -1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := &fakeQueue{}
			srv := newTestServer(q)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/curation/runs", strings.NewReader(tc.body))
			srv.Router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, q.jobs)
		})
	}
}

func TestCreateRunQueueFailure(t *testing.T) {
	srv := newTestServer(&fakeQueue{err: errors.New("down")})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/curation/runs", strings.NewReader(`{"user_id": 1}`))
	srv.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeQueue{})
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
