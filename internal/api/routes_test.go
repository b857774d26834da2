package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/handlers"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/api/ws"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/config"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/metrics"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/models"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/repositories"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/services"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB("sqlite", filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	userRepo := repositories.NewUserRepository(db)
	meetupRepo := repositories.NewMeetupRepository(db)
	participants := services.NewParticipantService(meetupRepo, userRepo, utils.NewMembershipCache(), m)
	messages := services.NewMessageService(repositories.NewMessageRepository(db), userRepo, participants, m)

	h := &handlers.Handlers{
		Users:        services.NewUserService(userRepo),
		Meetups:      services.NewMeetupService(meetupRepo, userRepo, participants, time.Hour),
		Participants: participants,
		Messages:     messages,
		Relay:        ws.NewRelay(ws.NewHub(m), messages, participants, m, ws.RelayConfig{}),
		Tokens:       utils.NewTokenManager("test-secret", time.Hour),
		Started:      time.Now(),
	}
	return NewRouter(h, RouterConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		AuthCache:      utils.NewAuthCache(),
		Gatherer:       reg,
	})
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d: %s", w.Code, want, w.Body.String())
	}
}

type registered struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func register(t *testing.T, r http.Handler, name string) registered {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/users", "", map[string]string{"username": name, "email": name + "@example.com"})
	expectStatus(t, w, http.StatusCreated)
	return decodeBody[registered](t, w)
}

type meetupBody struct {
	Meetup models.Meetup `json:"meetup"`
}

type errorBody struct {
	Error string `json:"error"`
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/health", "", nil)
	expectStatus(t, w, http.StatusOK)
	if decodeBody[map[string]string](t, w)["status"] != "ok" {
		t.Fatalf("health body = %s", w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "meetup_ws_connections") {
		t.Fatal("metrics output is missing meetup_ws_connections")
	}

	w = do(t, r, http.MethodPost, "/api/users", "", map[string]string{"username": "x", "email": "nope"})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestAuthRequired(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Token abc"},
		{"garbage bearer", "Bearer abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			expectStatus(t, w, http.StatusUnauthorized)
		})
	}

	ana := register(t, r, "ana")
	w := do(t, r, http.MethodGet, "/api/users/me?token="+ana.Token, "", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decodeBody[map[string]models.User](t, w)["user"]; got.ID != ana.User.ID {
		t.Fatalf("me = %+v", got)
	}
}

func TestMeetupMembershipFlow(t *testing.T) {
	r := newTestRouter(t)
	ana, ben, carl := register(t, r, "ana"), register(t, r, "ben"), register(t, r, "carl")

	w := do(t, r, http.MethodPost, "/api/meetups", ana.Token, map[string]any{
		"title":       "chess",
		"type":        "one_on_one",
		"scheduledAt": time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	})
	expectStatus(t, w, http.StatusCreated)
	meetup := decodeBody[meetupBody](t, w).Meetup
	if meetup.CurrentParticipants != 1 || meetup.MaxParticipants != 2 {
		t.Fatalf("created %+v", meetup)
	}
	base := "/api/meetups/" + strconv.FormatUint(uint64(meetup.ID), 10)

	w = do(t, r, http.MethodPost, base+"/join", ben.Token, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decodeBody[meetupBody](t, w).Meetup; got.CurrentParticipants != 2 || got.Status != models.MeetupFull {
		t.Fatalf("after ben joined: %+v", got)
	}

	expectStatus(t, do(t, r, http.MethodPost, base+"/join", carl.Token, nil), http.StatusConflict)
	expectStatus(t, do(t, r, http.MethodPost, base+"/join", ben.Token, nil), http.StatusConflict)
	expectStatus(t, do(t, r, http.MethodPost, base+"/leave", carl.Token, nil), http.StatusForbidden)

	t.Run("messages are members only", func(t *testing.T) {
		expectStatus(t, do(t, r, http.MethodGet, base+"/messages", carl.Token, nil), http.StatusForbidden)
		expectStatus(t, do(t, r, http.MethodPost, base+"/messages", carl.Token, map[string]string{"message": "hi"}), http.StatusForbidden)

		w := do(t, r, http.MethodPost, base+"/messages", ben.Token, map[string]string{"message": "e4?"})
		expectStatus(t, w, http.StatusCreated)

		w = do(t, r, http.MethodGet, base+"/messages?limit=10", ana.Token, nil)
		expectStatus(t, w, http.StatusOK)
		msgs := decodeBody[map[string][]models.ChatMessage](t, w)["messages"]
		if len(msgs) != 1 || msgs[0].Message != "e4?" || msgs[0].Username != "ben" {
			t.Fatalf("history = %+v", msgs)
		}

		expectStatus(t, do(t, r, http.MethodGet, base+"/messages?limit=-1", ana.Token, nil), http.StatusBadRequest)
		expectStatus(t, do(t, r, http.MethodPost, base+"/messages", ana.Token, map[string]string{"message": " "}), http.StatusBadRequest)
	})

	w = do(t, r, http.MethodPost, base+"/leave", ben.Token, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decodeBody[meetupBody](t, w).Meetup; got.CurrentParticipants != 1 || got.Status != models.MeetupOpen {
		t.Fatalf("after ben left: %+v", got)
	}
	expectStatus(t, do(t, r, http.MethodPost, base+"/join", carl.Token, nil), http.StatusOK)

	w = do(t, r, http.MethodGet, base+"/participants", ana.Token, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decodeBody[map[string][]models.ParticipantWithUser](t, w)["participants"]; len(got) != 2 {
		t.Fatalf("participants = %+v", got)
	}
}

func TestErrorMapping(t *testing.T) {
	r := newTestRouter(t)
	ana := register(t, r, "ana")

	w := do(t, r, http.MethodGet, "/api/meetups/999", ana.Token, nil)
	expectStatus(t, w, http.StatusNotFound)
	if got := decodeBody[errorBody](t, w).Error; got != "not found" {
		t.Fatalf("error = %q", got)
	}

	expectStatus(t, do(t, r, http.MethodPost, "/api/meetups/abc/join", ana.Token, nil), http.StatusBadRequest)
	expectStatus(t, do(t, r, http.MethodPost, "/api/meetups/999/join", ana.Token, nil), http.StatusNotFound)
	expectStatus(t, do(t, r, http.MethodGet, "/api/meetups/999/messages", ana.Token, nil), http.StatusNotFound)
	expectStatus(t, do(t, r, http.MethodGet, "/api/meetups?type=huge", ana.Token, nil), http.StatusBadRequest)

	w = do(t, r, http.MethodPost, "/api/meetups", ana.Token, map[string]any{
		"title":       "party",
		"type":        "huge",
		"scheduledAt": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	expectStatus(t, w, http.StatusBadRequest)
}
