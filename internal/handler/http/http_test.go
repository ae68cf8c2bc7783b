package httphandler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jgivc/pageindex/internal/common"
	"github.com/jgivc/pageindex/internal/entity"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	res *entity.BuildResult
	err error
}

func (s *stubIndex) Build(context.Context) (*entity.BuildResult, error) {
	return s.res, s.err
}

type stubState struct {
	state *entity.VersionState
	err   error
}

func (s *stubState) Load(context.Context) (*entity.VersionState, error) {
	return s.state, s.err
}

func TestRebuildHandler(t *testing.T) {
	testCases := []struct {
		name       string
		srv        *stubIndex
		statusCode int
		body       map[string]any
	}{
		{
			name: "ok",
			srv: &stubIndex{res: &entity.BuildResult{
				BuildID:    "b1",
				OutputFile: "index.html",
				Version:    entity.Version{Major: 3, Minor: 2},
				EntryCount: 3,
			}},
			statusCode: http.StatusOK,
			body: map[string]any{
				"build_id":    "b1",
				"output_file": "index.html",
				"version":     "3.2",
				"entry_count": 3.0,
			},
		},
		{
			name:       "in progress",
			srv:        &stubIndex{err: fmt.Errorf("wrapped: %w", common.ErrBuildInProgress)},
			statusCode: http.StatusConflict,
		},
		{
			name:       "failure",
			srv:        &stubIndex{err: fmt.Errorf("disk full")},
			statusCode: http.StatusInternalServerError,
		},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewRebuildHandler(tc.srv, log)(rec, httptest.NewRequest(http.MethodPost, "/rebuild/", nil))

			require.Equal(t, tc.statusCode, rec.Code)
			if tc.body == nil {
				return
			}

			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.body, body)
		})
	}
}

func TestVersionHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	rec := httptest.NewRecorder()
	NewVersionHandler(&stubState{state: &entity.VersionState{LastMinor: 7, Version: "4.7"}}, log)(rec, httptest.NewRequest(http.MethodGet, "/version/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var state entity.VersionState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, 7, state.LastMinor)
	require.Equal(t, "4.7", state.Version)

	rec = httptest.NewRecorder()
	NewVersionHandler(&stubState{err: common.ErrStateNotFound}, log)(rec, httptest.NewRequest(http.MethodGet, "/version/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	NewVersionHandler(&stubState{err: fmt.Errorf("redis down")}, log)(rec, httptest.NewRequest(http.MethodGet, "/version/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
