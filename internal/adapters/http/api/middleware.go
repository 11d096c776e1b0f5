package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/housecup/pkg/metrics"
)

// MetricsMiddleware records request count, latency and error codes for one
// route. endpoint is the route label, e.g. "results" for
// POST /events/{id}/results.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsedMs := float64(time.Since(start).Microseconds()) / 1000
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, elapsedMs)

		if rec.status >= http.StatusBadRequest {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, rec.errorCode())
		}
	}
}

// statusRecorder keeps the status and the API error code a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// errorCode is the code from writeError, so a rejected commit is counted as
// e.g. "duplicate_participant" rather than a bare 422. Responses that did
// not go through writeError (mux 404s, promhttp) fall back to the status text.
func (rec *statusRecorder) errorCode() string {
	if rec.code != "" {
		return rec.code
	}
	return strings.ReplaceAll(strings.ToLower(http.StatusText(rec.status)), " ", "_")
}

// noteErrorCode tags w with code when it is wrapped by MetricsMiddleware.
func noteErrorCode(w http.ResponseWriter, code string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.code = code
	}
}
