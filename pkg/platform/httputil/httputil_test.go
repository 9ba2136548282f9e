package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "credverify/pkg/domain-errors"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		code       dErrors.Code
		wantStatus int
		wantCode   string
	}{
		{dErrors.CodeBadRequest, http.StatusBadRequest, "bad_request"},
		{dErrors.CodeValidation, http.StatusBadRequest, "validation_error"},
		{dErrors.CodeForbidden, http.StatusForbidden, "forbidden"},
		{dErrors.CodeNotFound, http.StatusNotFound, "not_found"},
		{dErrors.CodePreconditionFailed, http.StatusPreconditionFailed, "precondition_failed"},
		{dErrors.CodeAlreadyCompleted, http.StatusConflict, "already_completed"},
		{dErrors.CodeAlreadyBound, http.StatusConflict, "already_bound"},
		{dErrors.CodeConflict, http.StatusConflict, "conflict"},
		{dErrors.CodeScoringUnavailable, http.StatusServiceUnavailable, "scoring_unavailable"},
		{dErrors.CodeStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(tt.code, "reason"))

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.wantCode, body["error"])
			assert.Equal(t, "reason", body["error_description"])
		})
	}
}

func TestWriteError_RetryAfterOnlyForUnavailable(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, dErrors.New(dErrors.CodeScoringUnavailable, "oracle timeout"))
	assert.Equal(t, "30", w.Header().Get("Retry-After"))

	w = httptest.NewRecorder()
	WriteError(w, dErrors.New(dErrors.CodeNotFound, "missing"))
	assert.Empty(t, w.Header().Get("Retry-After"))
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, w.Body.String(), "pq:")
}

type skillRequest struct {
	Skill string `json:"skill"`
}

func (r *skillRequest) Normalize() { r.Skill = strings.TrimSpace(r.Skill) }

func (r *skillRequest) Validate() error {
	if r.Skill == "" {
		return errors.New("skill is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("normalizes before validating", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/tests", bytes.NewBufferString(`{"skill":"  Go  "}`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[skillRequest](w, r, logger, context.Background(), "req-1")
		require.True(t, ok)
		assert.Equal(t, "Go", req.Skill)
	})

	t.Run("whitespace-only skill fails validation", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/tests", bytes.NewBufferString(`{"skill":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[skillRequest](w, r, logger, context.Background(), "req-2")
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", decodeBody(t, w)["error"])
	})

	t.Run("malformed body is bad request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/tests", bytes.NewBufferString(`{"skill":`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[skillRequest](w, r, logger, context.Background(), "req-3")
		require.False(t, ok)
		assert.Equal(t, "bad_request", decodeBody(t, w)["error"])
	})

	t.Run("empty body is reported as missing", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/tests", http.NoBody)
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[skillRequest](w, r, logger, context.Background(), "req-4")
		require.False(t, ok)
		assert.Equal(t, "request body is required", decodeBody(t, w)["error_description"])
	})

	t.Run("trailing values are rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/tests", bytes.NewBufferString(`{"skill":"Go"}{"skill":"Rust"}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[skillRequest](w, r, logger, context.Background(), "req-5")
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized body names the limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/tests", strings.NewReader(`{"skill":"`+strings.Repeat("a", 64)+`"}`))
		r.Body = http.MaxBytesReader(w, r.Body, 16)

		_, ok := DecodeAndPrepare[skillRequest](w, r, logger, context.Background(), "req-6")
		require.False(t, ok)
		assert.Equal(t, "request body exceeds 16 bytes", decodeBody(t, w)["error_description"])
	})
}
