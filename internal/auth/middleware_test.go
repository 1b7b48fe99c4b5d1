package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/service"
)

type stubResolver struct {
	users      map[string]*domain.User
	resolveErr error
}

func (s *stubResolver) ResolveToken(ctx context.Context, key string) (*domain.User, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	if u, ok := s.users[key]; ok {
		return u, nil
	}
	return nil, service.ErrInvalidToken
}

func TestMiddleware(t *testing.T) {
	resolver := &stubResolver{
		users: map[string]*domain.User{
			"cafebabe": {ID: 7, Username: "akira", IsActive: true},
		},
	}

	var gotPrincipal *domain.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(resolver)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantErrors string
	}{
		{
			name:       "valid token",
			header:     "Token cafebabe",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
			wantErrors: "Please provide token",
		},
		{
			name:       "malformed header",
			header:     "Bearer cafebabe",
			wantStatus: http.StatusUnauthorized,
			wantErrors: "Please provide valid token",
		},
		{
			name:       "unknown token",
			header:     "Token deadbeef",
			wantStatus: http.StatusUnauthorized,
			wantErrors: "Please provide valid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPrincipal = nil

			req := httptest.NewRequest(http.MethodGet, "/movies/list/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, gotPrincipal)
				require.Equal(t, int64(7), gotPrincipal.ID)
				return
			}

			var body struct {
				Status int    `json:"status"`
				Errors string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, -1, body.Status)
			require.Equal(t, tt.wantErrors, body.Errors)
		})
	}
}

func TestMiddleware_ResolverFailure(t *testing.T) {
	// A store failure during token resolution is not an authentication
	// failure; the client keeps a valid token and gets a 500.
	resolver := &stubResolver{resolveErr: fmt.Errorf("%w: connection refused", service.ErrInternalError)}
	handler := Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/movies/list/", nil)
	req.Header.Set("Authorization", "Token cafebabe")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Status int    `json:"status"`
		Errors string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, -1, body.Status)
	require.Equal(t, "internal server error", body.Errors)
}
