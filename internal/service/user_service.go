package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/repository"
)

const (
	maxUsernameLength = 100
	maxPasswordLength = 100
	maxEmailLength    = 100
	maxNameLength     = 30
)

// UserService manages user accounts.
type UserService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger.With().Str("service", "user").Logger(),
	}
}

// SignupInput holds the fields accepted when registering a user. The role
// and activation flags default to false when omitted.
type SignupInput struct {
	Username     string
	Password     string
	Email        string
	FirstName    string
	LastName     string
	IsStaff      bool
	IsActive     bool
	IsSubscribed bool
}

// Signup registers a new account.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	verr := NewValidationError()
	validateUsername(verr, input.Username)
	validatePassword(verr, input.Password)
	validateEmail(verr, input.Email)
	validateName(verr, "first_name", input.FirstName)
	validateName(verr, "last_name", input.LastName)

	if verr.Empty() {
		if err := s.checkUsernameFree(ctx, verr, input.Username); err != nil {
			return nil, err
		}
		if err := s.checkEmailFree(ctx, verr, input.Email); err != nil {
			return nil, err
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user := domain.NewUser(input.Username, input.Email, string(hash))
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.IsStaff = input.IsStaff
	user.IsActive = input.IsActive
	user.IsSubscribed = input.IsSubscribed

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			// Lost a race with a concurrent signup; re-check both unique
			// columns so the error names the one the insert collided on.
			if err := s.checkUsernameFree(ctx, verr, input.Username); err != nil {
				return nil, err
			}
			if err := s.checkEmailFree(ctx, verr, input.Email); err != nil {
				return nil, err
			}
			if verr.Empty() {
				verr.Add("username", "a user with that username already exists")
			}
			return nil, verr
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// GetByID returns the user with the given id.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// UpdateUserInput holds the optional fields of a partial user update. Nil
// pointers leave the current value untouched.
type UpdateUserInput struct {
	Username     *string
	Password     *string
	Email        *string
	FirstName    *string
	LastName     *string
	IsStaff      *bool
	IsActive     *bool
	IsSubscribed *bool
}

// Update applies a partial update to the user identified by id. The
// principal must be staff or the user themselves.
func (s *UserService) Update(ctx context.Context, principal *domain.User, id int64, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !IsAdminOrOwner(principal, user.ID) {
		return nil, ErrPermissionDenied
	}

	verr := NewValidationError()
	if input.Username != nil && *input.Username != user.Username {
		validateUsername(verr, *input.Username)
		if verr.Empty() {
			if err := s.checkUsernameFree(ctx, verr, *input.Username); err != nil {
				return nil, err
			}
		}
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != user.Email {
		validateEmail(verr, *input.Email)
		if verr.Empty() {
			if err := s.checkEmailFree(ctx, verr, *input.Email); err != nil {
				return nil, err
			}
		}
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		validateName(verr, "first_name", *input.FirstName)
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		validateName(verr, "last_name", *input.LastName)
		user.LastName = *input.LastName
	}
	// An empty password on update means "leave it unchanged".
	if input.Password != nil && *input.Password != "" {
		validatePassword(verr, *input.Password)
		if verr.Empty() {
			hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
			if err != nil {
				s.logger.Error().Err(err).Msg("failed to hash password")
				return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
			}
			user.PasswordHash = string(hash)
		}
	}
	if input.IsStaff != nil {
		user.IsStaff = *input.IsStaff
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.IsSubscribed != nil {
		user.IsSubscribed = *input.IsSubscribed
	}
	if !verr.Empty() {
		return nil, verr
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			verr.Add("username", "a user with that username already exists")
			return nil, verr
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user updated")
	return user, nil
}

// Delete removes the user identified by id. The principal must be staff or
// the user themselves. Deleting a user also removes their token through the
// foreign key cascade.
func (s *UserService) Delete(ctx context.Context, principal *domain.User, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !IsAdminOrOwner(principal, user.ID) {
		return ErrPermissionDenied
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) checkUsernameFree(ctx context.Context, verr *ValidationError, username string) error {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check username uniqueness")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if taken {
		verr.Add("username", "a user with that username already exists")
	}
	return nil
}

func (s *UserService) checkEmailFree(ctx context.Context, verr *ValidationError, email string) error {
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check email uniqueness")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if taken {
		verr.Add("email", "a user with that email already exists")
	}
	return nil
}

func validateUsername(verr *ValidationError, username string) {
	if username == "" {
		verr.Add("username", "this field may not be blank")
	} else if len(username) > maxUsernameLength {
		verr.Add("username", fmt.Sprintf("ensure this field has no more than %d characters", maxUsernameLength))
	}
}

func validatePassword(verr *ValidationError, password string) {
	if password == "" {
		verr.Add("password", "this field may not be blank")
	} else if len(password) > maxPasswordLength {
		verr.Add("password", fmt.Sprintf("ensure this field has no more than %d characters", maxPasswordLength))
	}
}

func validateEmail(verr *ValidationError, email string) {
	if email == "" {
		verr.Add("email", "this field may not be blank")
		return
	}
	if len(email) > maxEmailLength {
		verr.Add("email", fmt.Sprintf("ensure this field has no more than %d characters", maxEmailLength))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "enter a valid email address")
	}
}

func validateName(verr *ValidationError, field, value string) {
	if len(value) > maxNameLength {
		verr.Add(field, fmt.Sprintf("ensure this field has no more than %d characters", maxNameLength))
	}
}
