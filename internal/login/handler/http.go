// Package handler exposes the login handshake over HTTP for polling clients.
package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"sportbuddy/backend/internal/login/domain"
	loginservice "sportbuddy/backend/internal/login/service"
)

// LoginStarter is the slice of the login service the HTTP layer needs.
type LoginStarter interface {
	Start(ctx context.Context) (*loginservice.StartResult, error)
	Status(ctx context.Context, token string) (*loginservice.StatusResult, error)
}

// LoginHandler serves token issuance and status polling.
type LoginHandler struct {
	login LoginStarter
}

func NewLoginHandler(login LoginStarter) *LoginHandler {
	return &LoginHandler{login: login}
}

// Register mounts the login routes on the mux.
func (h *LoginHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/telegram/start", h.start)
	mux.HandleFunc("GET /auth/telegram/status/{token}", h.status)
}

type startResponse struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

type statusResponse struct {
	Status           domain.Status `json:"status"`
	TelegramID       int64         `json:"telegram_id,omitempty"`
	TelegramUsername string        `json:"telegram_username,omitempty"`
}

func (h *LoginHandler) start(w http.ResponseWriter, r *http.Request) {
	res, err := h.login.Start(r.Context())
	if err != nil {
		log.Printf("login: start failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not start login")
		return
	}
	writeJSON(w, http.StatusOK, startResponse{URL: res.URL, Token: res.Token})
}

func (h *LoginHandler) status(w http.ResponseWriter, r *http.Request) {
	res, err := h.login.Status(r.Context(), r.PathValue("token"))
	if err != nil {
		log.Printf("login: status failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not read login status")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:           res.Status,
		TelegramID:       res.TelegramID,
		TelegramUsername: res.TelegramUsername,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("login: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
