package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
)

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		setup    func(*MockUserRepository)
		wantErr  error
	}{
		{
			name:     "success",
			username: "akira",
			password: "secret",
		},
		{
			name:     "unknown user",
			username: "ghost",
			password: "secret",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			username: "akira",
			password: "wrong",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "inactive user",
			username: "akira",
			password: "secret",
			setup: func(m *MockUserRepository) {
				m.users[1].IsActive = false
			},
			wantErr: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := NewMockUserRepository()
			users.Add(newTestUser(1, "akira", false))
			if tt.setup != nil {
				tt.setup(users)
			}
			tokens := NewMockTokenRepository()
			svc := NewAuthService(users, tokens, zerolog.Nop())

			token, user, err := svc.Login(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.username, user.Username)
			require.Len(t, token.Key, 40)
			require.Equal(t, user.ID, token.UserID)
		})
	}
}

func TestAuthService_Login_Idempotent(t *testing.T) {
	users := NewMockUserRepository()
	users.Add(newTestUser(1, "akira", false))
	tokens := NewMockTokenRepository()
	svc := NewAuthService(users, tokens, zerolog.Nop())

	first, _, err := svc.Login(context.Background(), "akira", "secret")
	require.NoError(t, err)

	second, _, err := svc.Login(context.Background(), "akira", "secret")
	require.NoError(t, err)
	require.Equal(t, first.Key, second.Key, "repeated logins must return the same token")
	require.Len(t, tokens.tokens, 1)
}

func TestAuthService_Login_CreateRace(t *testing.T) {
	users := NewMockUserRepository()
	users.Add(newTestUser(1, "akira", false))
	tokens := NewMockTokenRepository()
	svc := NewAuthService(users, tokens, zerolog.Nop())

	// A concurrent login wins the insert between our lookup and create; the
	// conflict must resolve to the winner's token, not an error.
	tokens.raceWinner = domain.NewAuthToken(1, "cafebabe")

	token, _, err := svc.Login(context.Background(), "akira", "secret")
	require.NoError(t, err)
	require.Equal(t, "cafebabe", token.Key)
	require.Len(t, tokens.tokens, 1)
}

func TestAuthService_Logout(t *testing.T) {
	users := NewMockUserRepository()
	users.Add(newTestUser(1, "akira", false))
	tokens := NewMockTokenRepository()
	token := domain.NewAuthToken(1, "cafebabe")
	tokens.tokens[token.Key] = token
	svc := NewAuthService(users, tokens, zerolog.Nop())

	require.NoError(t, svc.Logout(context.Background(), "cafebabe"))
	require.Empty(t, tokens.tokens)

	// Logging out twice is not an error.
	require.NoError(t, svc.Logout(context.Background(), "cafebabe"))
	require.NoError(t, svc.Logout(context.Background(), "never-existed"))
}

func TestAuthService_ResolveToken(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		setup   func(*MockUserRepository, *MockTokenRepository)
		wantErr error
	}{
		{
			name: "success",
			key:  "cafebabe",
		},
		{
			name:    "unknown token",
			key:     "deadbeef",
			wantErr: ErrInvalidToken,
		},
		{
			name: "inactive owner",
			key:  "cafebabe",
			setup: func(u *MockUserRepository, _ *MockTokenRepository) {
				u.users[1].IsActive = false
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "deleted owner",
			key:  "cafebabe",
			setup: func(u *MockUserRepository, _ *MockTokenRepository) {
				delete(u.users, 1)
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := NewMockUserRepository()
			users.Add(newTestUser(1, "akira", false))
			tokens := NewMockTokenRepository()
			tokens.tokens["cafebabe"] = domain.NewAuthToken(1, "cafebabe")
			if tt.setup != nil {
				tt.setup(users, tokens)
			}
			svc := NewAuthService(users, tokens, zerolog.Nop())

			user, err := svc.ResolveToken(context.Background(), tt.key)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, int64(1), user.ID)
		})
	}
}
