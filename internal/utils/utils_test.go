package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, err := tm.Generate(7, "ana")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "ana" {
		t.Fatalf("claims = %+v", claims)
	}

	t.Run("wrong secret", func(t *testing.T) {
		if _, err := NewTokenManager("other", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("got %v, want ErrInvalidToken", err)
		}
	})
	t.Run("expired", func(t *testing.T) {
		expired, err := NewTokenManager("secret", -time.Minute).Generate(7, "ana")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if _, err := tm.Validate(expired); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("got %v, want ErrInvalidToken", err)
		}
	})
	t.Run("zero user", func(t *testing.T) {
		anon, _ := tm.Generate(0, "ghost")
		if _, err := tm.Validate(anon); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("got %v, want ErrInvalidToken", err)
		}
	})
	t.Run("garbage", func(t *testing.T) {
		if _, err := tm.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("got %v, want ErrInvalidToken", err)
		}
	})
}

func TestNormalizeChatMessage(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"hi", "hi", false},
		{"  hi there \n", "hi there", false},
		{"", "", true},
		{" \t ", "", true},
		{strings.Repeat("ü", MaxChatMessageLength), strings.Repeat("ü", MaxChatMessageLength), false},
		{strings.Repeat("a", MaxChatMessageLength+1), "", true},
	}
	for _, tc := range tests {
		got, err := NormalizeChatMessage(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("NormalizeChatMessage(%.10q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeChatMessage(%.10q) = %.10q, want %.10q", tc.in, got, tc.want)
		}
	}
}

func TestValidateUsernameAndEmail(t *testing.T) {
	for _, ok := range []string{"ana", "ana.b_2", strings.Repeat("x", 32)} {
		if err := ValidateUsername(ok); err != nil {
			t.Errorf("ValidateUsername(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "ab", "has space", "semi;colon", strings.Repeat("x", 33)} {
		if err := ValidateUsername(bad); err == nil {
			t.Errorf("ValidateUsername(%q) accepted", bad)
		}
	}
	if err := ValidateEmail("ana@example.com"); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	for _, bad := range []string{"", "ana", "ana@", "ana@example", "a b@example.com"} {
		if err := ValidateEmail(bad); err == nil {
			t.Errorf("ValidateEmail(%q) accepted", bad)
		}
	}
}

func TestAuthCacheTTL(t *testing.T) {
	if got := AuthCacheTTL(&Claims{}); got != authCacheTTL {
		t.Fatalf("no expiry: ttl = %v, want %v", got, authCacheTTL)
	}

	soon := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Second))}}
	if got := AuthCacheTTL(soon); got > 30*time.Second || got < 28*time.Second {
		t.Fatalf("expiring token: ttl = %v, want about 30s", got)
	}

	late := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	if got := AuthCacheTTL(late); got != authCacheTTL {
		t.Fatalf("long-lived token: ttl = %v, want %v", got, authCacheTTL)
	}

	gone := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Second))}}
	if got := AuthCacheTTL(gone); got > 0 {
		t.Fatalf("expired token: ttl = %v, want <= 0", got)
	}
}

func TestMembershipKey(t *testing.T) {
	if got := MembershipKey(7, 42); got != "membership:7:42" {
		t.Fatalf("MembershipKey = %q", got)
	}
}
