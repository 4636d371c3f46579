package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"antigravity/focus/internal/utils"
)

// ErrUnauthenticated covers every way a request can fail to present a valid
// credential. Callers never learn whether the token was missing, malformed,
// expired, or forged.
var ErrUnauthenticated = errors.New("not authenticated")

type contextKey struct{}

var identityKey contextKey

// Resolver bridges the Authorization header to an Identity. It holds no
// per-request state and is safe for concurrent use.
type Resolver struct {
	codec *Codec
}

func NewResolver(codec *Codec) *Resolver {
	return &Resolver{codec: codec}
}

// Resolve extracts and verifies the bearer token from a raw Authorization
// header value. Every verification failure collapses to ErrUnauthenticated;
// the underlying cause stays wrapped for diagnostics only.
func (rs *Resolver) Resolve(authorization string, now time.Time) (Identity, error) {
	if authorization == "" || !strings.HasPrefix(authorization, "Bearer ") {
		return Identity{}, ErrUnauthenticated
	}
	tokenStr := strings.TrimPrefix(authorization, "Bearer ")

	identity, err := rs.codec.Verify(tokenStr, now)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return identity, nil
}

// RequireIdentity is middleware that resolves the caller's identity and puts
// it in the request context, rejecting unauthenticated requests with 401.
// Each request re-verifies its own token; nothing is cached between requests.
func (rs *Resolver) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := rs.Resolve(r.Header.Get("Authorization"), time.Now())
		if err != nil {
			utils.JSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the identity stored in the context by RequireIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
