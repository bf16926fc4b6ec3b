package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fitroom/internal/domain"
	"fitroom/internal/identity"
)

type userKey string

const identityKey userKey = "identity"

// Auth resolves the bearer credential through the identity provider and
// stores the result in the request context. Requests without a resolvable
// identity are rejected before reaching any handler.
func Auth(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				unauthorized(w, "missing authorization")
				return
			}
			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				// Only a credential the provider rejected is 401; a provider
				// outage is our failure, not a dead session.
				if errors.Is(err, domain.ErrUnauthenticated) {
					unauthorized(w, "invalid token")
					return
				}
				internalError(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// IdentityFromContext returns the resolved caller, if any.
func IdentityFromContext(ctx context.Context) *identity.Identity {
	if v, ok := ctx.Value(identityKey).(*identity.Identity); ok {
		return v
	}
	return nil
}

// ContextWithIdentity injects a resolved identity, used by Auth and by tests.
func ContextWithIdentity(ctx context.Context, id *identity.Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey, id)
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":"unauthenticated","details":"` + detail + `"}`))
}

func internalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"success":false,"error":"internal"}`))
}
