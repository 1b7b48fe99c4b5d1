package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/kurosawa-movies/internal/auth"
	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/service"
)

// UserHandler handles account and session endpoints.
type UserHandler struct {
	users  *service.UserService
	auths  *service.AuthService
	logger zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, auths *service.AuthService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		auths:  auths,
		logger: logger.With().Str("handler", "user").Logger(),
	}
}

// RegisterPublicRoutes registers the routes that must work without a token:
// signup, login and logout. Logout checks the Authorization header itself so
// that a missing token yields its documented message rather than a 401.
func (h *UserHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/user/", h.handleSignup)
	r.Post("/user/login_token/", h.handleLogin)
	r.Delete("/user/login_token/", h.handleLogout)
}

// RegisterProtectedRoutes registers the routes that require authentication.
func (h *UserHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Put("/user/{id}/", h.handleUpdate)
	r.Delete("/user/{id}/", h.handleDelete)
}

type signupRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsStaff      bool   `json:"is_staff"`
	IsActive     bool   `json:"is_active"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func (h *UserHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.Signup(r.Context(), service.SignupInput{
		Username:     req.Username,
		Password:     req.Password,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsStaff:      req.IsStaff,
		IsActive:     req.IsActive,
		IsSubscribed: req.IsSubscribed,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, map[string]any{"user": user})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, user, err := h.auths.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeJSON(w, http.StatusOK, map[string]any{
				"status": statusFailure,
				"error": map[string]any{
					"non_field_errors": []string{"Unable to log in with provided credentials."},
				},
			})
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}

	writeSuccess(w, map[string]any{
		"token":      token.Key,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"username":   user.Username,
	})
}

func (h *UserHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	key, err := auth.ParseTokenHeader(r.Header.Get("Authorization"))
	if err != nil {
		writeFailure(w, http.StatusOK, err.Error())
		return
	}

	// Unknown tokens count as already logged out.
	if err := h.auths.Logout(r.Context(), key); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, map[string]any{"token": nil})
}

type updateUserRequest struct {
	Username     *string `json:"username"`
	Password     *string `json:"password"`
	Email        *string `json:"email"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	IsStaff      *bool   `json:"is_staff"`
	IsActive     *bool   `json:"is_active"`
	IsSubscribed *bool   `json:"is_subscribed"`
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), auth.PrincipalFromContext(r.Context()), id, service.UpdateUserInput{
		Username:     req.Username,
		Password:     req.Password,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsStaff:      req.IsStaff,
		IsActive:     req.IsActive,
		IsSubscribed: req.IsSubscribed,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, map[string]any{"user": user})
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeSuccess(w, nil)
}

// parseID reads the {id} URL parameter. Non-numeric ids are reported as not
// found, matching what a route with a numeric converter would do.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeFailure(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}
