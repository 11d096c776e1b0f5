package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRecorder_ErrorCode(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		code    string
	}{
		{
			name: "api error keeps its code",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusUnprocessableEntity, "duplicate_participant", errors.New("p1 placed twice"))
			},
			status: http.StatusUnprocessableEntity,
			code:   "duplicate_participant",
		},
		{
			name:    "plain error falls back to status text",
			handler: http.NotFound,
			status:  http.StatusNotFound,
			code:    "not_found",
		},
		{
			name: "success has no error code",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, map[string]int{"ok": 1})
			},
			status: http.StatusOK,
			code:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
			tt.handler(rec, httptest.NewRequest(http.MethodPost, "/events/e/results", http.NoBody))

			if rec.status != tt.status {
				t.Errorf("status = %d, want %d", rec.status, tt.status)
			}
			if got := rec.errorCode(); got != tt.code {
				t.Errorf("errorCode() = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestMetricsMiddleware_PassesResponseThrough(t *testing.T) {
	h := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusConflict, "already_completed", nil)
	}, "results")

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/events/e/results", http.NoBody))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
}
