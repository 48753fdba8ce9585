package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"sportbuddy/backend/internal/account/domain"
	"sportbuddy/backend/internal/account/service"
	"sportbuddy/backend/internal/storage"
)

type fakeRepo struct {
	mu         sync.Mutex
	byTelegram map[int64]*domain.Account
}

func (f *fakeRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byTelegram[telegramID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) Create(ctx context.Context, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.byTelegram[a.TelegramID] = &cp
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, a *domain.Account) error {
	return f.Create(ctx, a)
}

type fakeAvatars struct{}

func (fakeAvatars) PresignAvatarUpload(ctx context.Context, telegramID int64) (*storage.PresignedUpload, error) {
	return &storage.PresignedUpload{Key: "avatars/42/key", URL: "https://s3.local/upload"}, nil
}

func newTestServer(t *testing.T, avatars AvatarPresigner) (*httptest.Server, *service.AccountService) {
	t.Helper()
	repo := &fakeRepo{byTelegram: make(map[int64]*domain.Account)}
	svc := service.NewAccountService(repo)
	mux := http.NewServeMux()
	NewAccountHandler(svc, avatars).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, svc
}

func TestGetProfile(t *testing.T) {
	server, svc := newTestServer(t, nil)

	if _, err := svc.EnsureAccount(context.Background(), 42, "alice"); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	resp, err := http.Get(server.URL + "/user/42")
	if err != nil {
		t.Fatalf("GET /user/42: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body["telegram_id"] != float64(42) {
		t.Errorf("telegram_id = %v, want 42", body["telegram_id"])
	}
	if body["name"] != "alice" {
		t.Errorf("name = %v, want alice", body["name"])
	}
	if _, ok := body["sports"].([]interface{}); !ok {
		t.Errorf("sports = %v, want a JSON array", body["sports"])
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	server, _ := newTestServer(t, nil)

	resp, err := http.Get(server.URL + "/user/404")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetProfile_BadID(t *testing.T) {
	server, _ := newTestServer(t, nil)

	for _, id := range []string{"abc", "-5", "0"} {
		resp, err := http.Get(server.URL + "/user/" + id)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status for %q = %d, want 400", id, resp.StatusCode)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	server, svc := newTestServer(t, nil)
	ctx := context.Background()

	if _, err := svc.EnsureAccount(ctx, 42, "alice"); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	payload := `{"bio":"climber","sports":["bouldering"]}`
	resp, err := http.Post(server.URL+"/user/42", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST /user/42: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body["bio"] != "climber" {
		t.Errorf("bio = %v, want climber", body["bio"])
	}
	if body["name"] != "alice" {
		t.Errorf("name = %v, want alice (untouched field preserved)", body["name"])
	}

	got, err := svc.GetProfile(ctx, 42)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(got.Sports) != 1 || got.Sports[0] != "bouldering" {
		t.Errorf("Sports = %v, want [bouldering]", got.Sports)
	}
}

func TestUpdateProfile_BadBody(t *testing.T) {
	server, svc := newTestServer(t, nil)

	if _, err := svc.EnsureAccount(context.Background(), 42, "alice"); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	resp, err := http.Post(server.URL+"/user/42", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAvatarUpload(t *testing.T) {
	server, svc := newTestServer(t, fakeAvatars{})

	if _, err := svc.EnsureAccount(context.Background(), 42, "alice"); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	resp, err := http.Post(server.URL+"/user/42/avatar-upload", "application/json", nil)
	if err != nil {
		t.Fatalf("POST avatar-upload: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body["upload_url"] == "" || body["key"] == "" {
		t.Errorf("body = %v, want key and upload_url", body)
	}
}

func TestAvatarUpload_Disabled(t *testing.T) {
	server, svc := newTestServer(t, nil)

	if _, err := svc.EnsureAccount(context.Background(), 42, "alice"); err != nil {
		t.Fatalf("EnsureAccount: %v", err)
	}

	resp, err := http.Post(server.URL+"/user/42/avatar-upload", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", resp.StatusCode)
	}
}

func TestAvatarUpload_UnknownAccount(t *testing.T) {
	server, _ := newTestServer(t, fakeAvatars{})

	resp, err := http.Post(server.URL+"/user/404/avatar-upload", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
