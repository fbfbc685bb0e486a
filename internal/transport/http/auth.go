package http

import (
	"context"
	"net/http"
	"strings"

	"livequiz-service/internal/domain"
)

// TokenVerifier resolves an admin bearer token to the owning account. Real
// authentication lives outside this service; the static map implementation
// stands in for it.
type TokenVerifier interface {
	Owner(token string) (string, error)
}

// StaticTokenVerifier maps configured tokens to owner accounts.
type StaticTokenVerifier map[string]string

func (v StaticTokenVerifier) Owner(token string) (string, error) {
	owner, ok := v[token]
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return owner, nil
}

type contextKey string

const ownerContextKey contextKey = "owner"

// requireAdmin authenticates the Authorization bearer token and stores the
// resolved owner in the request context.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			h.writeError(w, r, domain.ErrUnauthorized)
			return
		}
		owner, err := h.verifier.Owner(token)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ownerContextKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFrom(r *http.Request) string {
	owner, _ := r.Context().Value(ownerContextKey).(string)
	return owner
}
