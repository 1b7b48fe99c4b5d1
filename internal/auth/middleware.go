package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/service"
)

// TokenResolver resolves a token key to its active owner.
type TokenResolver interface {
	ResolveToken(ctx context.Context, key string) (*domain.User, error)
}

type contextKey string

// principalKey is the context key under which the authenticated user is
// stored.
const principalKey contextKey = "principal"

// Middleware authenticates requests via the Authorization header and puts
// the resolved user into the request context. Requests without a valid
// token are rejected with 401 before reaching the handler.
func Middleware(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := ParseTokenHeader(r.Header.Get("Authorization"))
			if err != nil {
				writeAuthError(w, err)
				return
			}

			user, err := resolver.ResolveToken(r.Context(), key)
			if err != nil {
				// Only a rejected token is an authentication failure; a
				// store error is the server's problem, not the client's.
				if errors.Is(err, service.ErrInvalidToken) {
					writeAuthError(w, ErrMalformedToken)
					return
				}
				log.Error().Err(err).Str("path", r.URL.Path).Msg("token resolution failed")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated user, or nil when the
// request was not authenticated.
func PrincipalFromContext(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(principalKey).(*domain.User); ok {
		return user
	}
	return nil
}

// writeAuthError writes the error envelope with a 401 status.
func writeAuthError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusUnauthorized, err.Error())
}

func writeError(w http.ResponseWriter, httpStatus int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": -1,
		"errors": msg,
	})
}
