package server

import (
	"encoding/json"
	"net/http"
	"time"

	"sportbuddy/backend/internal/telemetry"
	telemetrydomain "sportbuddy/backend/internal/telemetry/domain"
	"sportbuddy/backend/internal/telemetry/producer"
)

// cors handles preflight requests and sets the CORS headers. An empty origin
// list or "*" allows any origin.
func cors(allowed []string, next http.Handler) http.Handler {
	allowAny := len(allowed) == 0
	allowedSet := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAny = true
		}
		allowedSet[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAny || allowedSet[origin]) {
			if allowAny {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// httpRequestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
}

// statusRecorder captures the response status for the telemetry event.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestTelemetry emits one telemetry event per request.
// Best-effort: failures are logged and do not fail the request. If p is nil, the middleware no-ops.
// Health probes are skipped.
func requestTelemetry(p producer.Producer, next http.Handler) http.Handler {
	if p == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		meta := httpRequestMetadata{
			Method:     r.Method,
			Path:       r.URL.Path,
			StatusCode: rec.status,
			DurationMs: time.Since(start).Milliseconds(),
		}
		metaJSON, _ := json.Marshal(meta)
		telemetry.EmitAsync(p, r.Context(), &telemetrydomain.Event{
			EventType: "http_request",
			Source:    "server",
			Metadata:  metaJSON,
			CreatedAt: time.Now().UTC(),
		})
	})
}
