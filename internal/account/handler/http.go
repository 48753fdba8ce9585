// Package handler exposes profile reads and edits over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"sportbuddy/backend/internal/account/domain"
	"sportbuddy/backend/internal/account/service"
	"sportbuddy/backend/internal/storage"
)

// Profiles is the slice of the account service the HTTP layer needs.
type Profiles interface {
	GetProfile(ctx context.Context, telegramID int64) (*domain.Account, error)
	UpdateProfile(ctx context.Context, telegramID int64, upd *domain.ProfileUpdate) (*domain.Account, error)
}

// AvatarPresigner issues presigned upload slots; nil disables the endpoint.
type AvatarPresigner interface {
	PresignAvatarUpload(ctx context.Context, telegramID int64) (*storage.PresignedUpload, error)
}

// AccountHandler serves the profile routes.
type AccountHandler struct {
	profiles Profiles
	avatars  AvatarPresigner
}

func NewAccountHandler(profiles Profiles, avatars AvatarPresigner) *AccountHandler {
	return &AccountHandler{profiles: profiles, avatars: avatars}
}

// Register mounts the profile routes on the mux.
func (h *AccountHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /user/{telegram_id}", h.get)
	mux.HandleFunc("POST /user/{telegram_id}", h.update)
	mux.HandleFunc("POST /user/{telegram_id}/avatar-upload", h.avatarUpload)
}

type profileResponse struct {
	TelegramID       int64    `json:"telegram_id"`
	TelegramUsername string   `json:"telegram_username"`
	Name             string   `json:"name"`
	AvatarURL        string   `json:"avatar_url"`
	Bio              string   `json:"bio"`
	Work             string   `json:"work"`
	Study            string   `json:"study"`
	Pet              string   `json:"pet"`
	Sports           []string `json:"sports"`
	Interests        []string `json:"interests"`
	Location         string   `json:"location"`
}

type profileUpdateRequest struct {
	Name      *string   `json:"name"`
	AvatarURL *string   `json:"avatar_url"`
	Bio       *string   `json:"bio"`
	Work      *string   `json:"work"`
	Study     *string   `json:"study"`
	Pet       *string   `json:"pet"`
	Sports    *[]string `json:"sports"`
	Interests *[]string `json:"interests"`
	Location  *string   `json:"location"`
}

func (h *AccountHandler) get(w http.ResponseWriter, r *http.Request) {
	telegramID, ok := parseTelegramID(w, r)
	if !ok {
		return
	}
	a, err := h.profiles.GetProfile(r.Context(), telegramID)
	if err != nil {
		respondProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(a))
}

func (h *AccountHandler) update(w http.ResponseWriter, r *http.Request) {
	telegramID, ok := parseTelegramID(w, r)
	if !ok {
		return
	}
	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.profiles.UpdateProfile(r.Context(), telegramID, &domain.ProfileUpdate{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
		Work:      req.Work,
		Study:     req.Study,
		Pet:       req.Pet,
		Sports:    req.Sports,
		Interests: req.Interests,
		Location:  req.Location,
	})
	if err != nil {
		respondProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(a))
}

func (h *AccountHandler) avatarUpload(w http.ResponseWriter, r *http.Request) {
	if h.avatars == nil {
		writeError(w, http.StatusNotImplemented, "avatar uploads are not configured")
		return
	}
	telegramID, ok := parseTelegramID(w, r)
	if !ok {
		return
	}
	if _, err := h.profiles.GetProfile(r.Context(), telegramID); err != nil {
		respondProfileError(w, err)
		return
	}

	up, err := h.avatars.PresignAvatarUpload(r.Context(), telegramID)
	if err != nil {
		log.Printf("account: presign avatar for %d failed: %v", telegramID, err)
		writeError(w, http.StatusInternalServerError, "could not presign upload")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": up.Key, "upload_url": up.URL})
}

func parseTelegramID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("telegram_id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid telegram_id")
		return 0, false
	}
	return id, true
}

func respondProfileError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	log.Printf("account: request failed: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func toProfileResponse(a *domain.Account) profileResponse {
	sports := a.Sports
	if sports == nil {
		sports = []string{}
	}
	interests := a.Interests
	if interests == nil {
		interests = []string{}
	}
	return profileResponse{
		TelegramID:       a.TelegramID,
		TelegramUsername: a.TelegramUsername,
		Name:             a.Name,
		AvatarURL:        a.AvatarURL,
		Bio:              a.Bio,
		Work:             a.Work,
		Study:            a.Study,
		Pet:              a.Pet,
		Sports:           sports,
		Interests:        interests,
		Location:         a.Location,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("account: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
