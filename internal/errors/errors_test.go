package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sales-dashboard/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requestWithID(id string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	return r.WithContext(observability.WithRequestID(r.Context(), id))
}

func TestWrap_StatusCodes(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{Validation("bad filter"), http.StatusBadRequest},
		{BadRequestWrap(io.EOF, "bad signals"), http.StatusBadRequest},
		{NotFound("no chart"), http.StatusNotFound},
		{RateLimit("slow down"), http.StatusTooManyRequests},
		{UpstreamWrap(io.EOF, "fetch failed"), http.StatusBadGateway},
		{Internal("boom"), http.StatusInternalServerError},
		{New("SOMETHING_ELSE", "unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if tt.err.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", tt.err.StatusCode, tt.status)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := UpstreamWrap(io.ErrUnexpectedEOF, "fetch failed")
	if !stderrors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected wrapped cause to be reachable")
	}
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("report: %w", NotFound("no chart"))
	if got := As(wrapped); got.Code != CodeNotFound {
		t.Errorf("code = %s, want %s", got.Code, CodeNotFound)
	}

	if got := As(io.EOF); got.Code != CodeInternal || !stderrors.Is(got, io.EOF) {
		t.Errorf("plain error converted to %+v", got)
	}
}

func TestWriteError_WrappedAppError(t *testing.T) {
	w := httptest.NewRecorder()

	err := fmt.Errorf("report: %w", Validation("unknown region"))
	WriteError(w, requestWithID("req-1"), discardLogger(), err)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp struct {
		Success bool
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		}
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Error.Code != string(CodeValidation) || resp.Error.RequestID != "req-1" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestWriteError_DoesNotMutateSharedError(t *testing.T) {
	shared := NotFound("no chart")
	WriteError(httptest.NewRecorder(), requestWithID("req-2"), discardLogger(), shared)

	if shared.RequestID != "" {
		t.Errorf("request id leaked into shared error: %q", shared.RequestID)
	}
}

func TestWriteError_PlainError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, requestWithID(""), discardLogger(), io.EOF)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestWriteCached(t *testing.T) {
	w := httptest.NewRecorder()
	WriteCached(w, []int{1, 2}, 5*time.Minute)

	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("cache-control = %q", cc)
	}

	var resp struct {
		Data    []int `json:"data"`
		Success bool  `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || len(resp.Data) != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
}
