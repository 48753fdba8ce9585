// Package server assembles the HTTP API: login handshake routes, profile
// routes, health endpoints, and the middleware stack around them.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	accounthandler "sportbuddy/backend/internal/account/handler"
	loginhandler "sportbuddy/backend/internal/login/handler"
	"sportbuddy/backend/internal/telemetry/producer"
)

// Deps holds the handler dependencies. Nil fields disable the matching routes.
type Deps struct {
	// Login serves token issuance and status polling. Required.
	Login loginhandler.LoginStarter
	// Profiles serves profile reads and edits. If nil, /user routes return 404.
	Profiles accounthandler.Profiles
	// Avatars presigns avatar uploads. If nil, the upload route returns 501.
	Avatars accounthandler.AvatarPresigner
	// DB is pinged by /test-db. If nil, /test-db reports the database as not configured.
	DB *sql.DB
	// Telemetry receives one event per request. If nil, no events are emitted.
	Telemetry producer.Producer
	// AllowedOrigins configures CORS; "*" allows any origin.
	AllowedOrigins []string
}

// New builds the full handler chain: mux → CORS → request telemetry → otelhttp.
func New(deps Deps) http.Handler {
	mux := http.NewServeMux()

	loginhandler.NewLoginHandler(deps.Login).Register(mux)
	if deps.Profiles != nil {
		accounthandler.NewAccountHandler(deps.Profiles, deps.Avatars).Register(mux)
	}
	mux.HandleFunc("GET /health", health)
	mux.HandleFunc("GET /test-db", testDB(deps.DB))

	var h http.Handler = mux
	h = requestTelemetry(deps.Telemetry, h)
	h = cors(deps.AllowedOrigins, h)
	return otelhttp.NewHandler(h, "http.server")
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// testDB pings the database so deploys can verify connectivity.
func testDB(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			writeJSON(w, http.StatusOK, map[string]string{"database": "not configured"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Printf("server: db ping failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"database": "unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"database": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}
