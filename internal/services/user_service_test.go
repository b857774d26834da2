package services

import (
	"context"
	"errors"
	"testing"
)

func TestUserProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.user(t, "alice")
	env.user(t, "bob")

	t.Run("missing email", func(t *testing.T) {
		name := "carol"
		if _, err := env.users.Create(ctx, ProfileInput{Username: &name}); !errors.Is(err, ErrValidation) {
			t.Fatalf("got %v, want ErrValidation", err)
		}
	})
	t.Run("bad username", func(t *testing.T) {
		name, email := "a b", "ab@example.com"
		if _, err := env.users.Create(ctx, ProfileInput{Username: &name, Email: &email}); !errors.Is(err, ErrValidation) {
			t.Fatalf("got %v, want ErrValidation", err)
		}
	})
	t.Run("taken username", func(t *testing.T) {
		taken := "bob"
		if _, err := env.users.UpdateProfile(ctx, a.ID, ProfileInput{Username: &taken}); !errors.Is(err, ErrValidation) {
			t.Fatalf("got %v, want ErrValidation", err)
		}
	})
	t.Run("update fields", func(t *testing.T) {
		bio := "coffee and climbing"
		interests := []string{"coffee", "climbing"}
		u, err := env.users.UpdateProfile(ctx, a.ID, ProfileInput{Bio: &bio, Interests: &interests})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := env.users.Get(ctx, u.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Bio != bio || len(got.Interests) != 2 || got.Username != "alice" {
			t.Fatalf("profile = %+v", got)
		}
	})
	t.Run("unknown user", func(t *testing.T) {
		if _, err := env.users.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
	})
}
