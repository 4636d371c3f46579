package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	resolver := NewResolver(codec)
	now := time.Now()

	token, err := codec.Issue("monk", 42, false, now)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	t.Run("valid bearer token", func(t *testing.T) {
		identity, err := resolver.Resolve("Bearer "+token, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.UserID != 42 || identity.Username != "monk" {
			t.Fatalf("unexpected identity: %+v", identity)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		if _, err := resolver.Resolve("", now); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		if _, err := resolver.Resolve("Token "+token, now); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("expired collapses to unauthenticated", func(t *testing.T) {
		if _, err := resolver.Resolve("Bearer "+token, now.Add(2*time.Hour)); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("garbage collapses to unauthenticated", func(t *testing.T) {
		if _, err := resolver.Resolve("Bearer garbage", now); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})
}

func TestRequireIdentity(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	resolver := NewResolver(codec)

	var seen Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			t.Fatal("identity missing from context")
		}
		seen = identity
		w.WriteHeader(http.StatusOK)
	})

	t.Run("rejects missing token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rec := httptest.NewRecorder()
		resolver.RequireIdentity(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("passes identity to handler", func(t *testing.T) {
		token, err := codec.Issue("monk", 42, false, time.Now())
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		resolver.RequireIdentity(next).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if seen.UserID != 42 || seen.Username != "monk" {
			t.Fatalf("unexpected identity: %+v", seen)
		}
	})
}
