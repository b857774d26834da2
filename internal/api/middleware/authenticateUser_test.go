package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

func newAuthRouter(tokens *utils.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(tokens, utils.NewAuthCache()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": UserID(c), "username": Username(c)})
	})
	return r
}

func get(r http.Handler, path, header string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuth(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	r := newAuthRouter(tokens)
	token, err := tokens.Generate(7, "ana")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"bearer header", "/me", "Bearer " + token, http.StatusOK},
		{"query token", "/me?token=" + token, "", http.StatusOK},
		{"missing", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Token " + token, http.StatusUnauthorized},
		{"bad token", "/me", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := get(r, tc.path, tc.header); got != tc.want {
				t.Fatalf("status = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestAuthCacheHonoursTokenExpiry(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Second)
	r := newAuthRouter(tokens)
	token, err := tokens.Generate(7, "ana")
	if err != nil {
		t.Fatal(err)
	}

	if got := get(r, "/me", "Bearer "+token); got != http.StatusOK {
		t.Fatalf("fresh token: status = %d", got)
	}
	time.Sleep(2100 * time.Millisecond)
	if got := get(r, "/me", "Bearer "+token); got != http.StatusUnauthorized {
		t.Fatalf("expired token: status = %d, want 401", got)
	}
}
