package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/entities"
	"finanzas-be/internal/logging"
	"finanzas-be/internal/repository"
)

// UserService defines the user directory: accounts, credentials and
// activation. Session issuance lives in AuthService.
type UserService interface {
	Register(ctx context.Context, username, email, password, fullName string) (*entities.User, error)
	Authenticate(ctx context.Context, usernameOrEmail, password string) (*entities.User, error)
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateProfile(ctx context.Context, id string, email, fullName *string) (*entities.User, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

const (
	maxUsernameLength = 50
	maxFullNameLength = 100
	// bcrypt ignores input past 72 bytes; longer passwords are rejected
	// instead of silently truncated.
	maxPasswordBytes = 72
)

type userService struct {
	users          repository.UserRepository
	minPasswordLen int
	cost           int
	now            func() time.Time
	logger         *logging.Logger
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, minPasswordLen int, logger *logging.Logger) UserService {
	return &userService{
		users:          users,
		minPasswordLen: minPasswordLen,
		cost:           bcrypt.DefaultCost,
		now:            time.Now,
		logger:         logger.WithComponent(logging.ComponentUser),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

func (s *userService) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < s.minPasswordLen {
		return apperrors.Validation("password must be at least %d characters", s.minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return apperrors.Validation("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func (s *userService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register creates a new user account
func (s *userService) Register(ctx context.Context, username, email, password, fullName string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)

	if username == "" {
		return nil, apperrors.Validation("username is required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return nil, apperrors.Validation("username must be at most %d characters", maxUsernameLength)
	}
	if !validEmail(email) {
		return nil, apperrors.Validation("email is not valid")
	}
	if utf8.RuneCountInString(fullName) > maxFullNameLength {
		return nil, apperrors.Validation("full name must be at most %d characters", maxFullNameLength)
	}
	if err := s.validatePassword(password); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.Validation("username already exists")
	}
	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.Validation("email already exists")
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, username, email, hashed, fullName)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", logging.FieldUserID, user.ID, logging.FieldOperation, logging.OpRegister)
	return user, nil
}

// Authenticate checks credentials. Unknown users, inactive accounts and
// wrong passwords all produce the same error.
func (s *userService) Authenticate(ctx context.Context, usernameOrEmail, password string) (*entities.User, error) {
	invalid := apperrors.Authentication("incorrect credentials")

	login := strings.TrimSpace(usernameOrEmail)
	if login == "" || password == "" {
		return nil, invalid
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, login)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}
	if !user.Active {
		return nil, invalid
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return s.users.FindByUsername(ctx, strings.TrimSpace(username))
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return s.users.FindByEmail(ctx, normalizeEmail(email))
}

// UpdateProfile overwrites the email and full name when provided
func (s *userService) UpdateProfile(ctx context.Context, id string, email, fullName *string) (*entities.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newEmail := user.Email
	if email != nil {
		newEmail = normalizeEmail(*email)
		if !validEmail(newEmail) {
			return nil, apperrors.Validation("email is not valid")
		}
		if newEmail != user.Email {
			other, err := s.users.FindByEmail(ctx, newEmail)
			switch {
			case err == nil && other.ID != user.ID:
				return nil, apperrors.Validation("email already exists")
			case err != nil && !errors.Is(err, apperrors.ErrNotFound):
				return nil, err
			}
		}
	}

	newName := user.FullName
	if fullName != nil {
		newName = strings.TrimSpace(*fullName)
		if utf8.RuneCountInString(newName) > maxFullNameLength {
			return nil, apperrors.Validation("full name must be at most %d characters", maxFullNameLength)
		}
	}

	return s.users.UpdateProfile(ctx, id, newEmail, newName)
}

// ChangePassword replaces the password after verifying the current one
func (s *userService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperrors.Validation("current password is incorrect")
	}
	if err := s.validatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, hashed)
}

func (s *userService) Activate(ctx context.Context, id string) error {
	if err := s.users.SetActive(ctx, id, true); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user activated", logging.FieldUserID, id)
	return nil
}

func (s *userService) Deactivate(ctx context.Context, id string) error {
	if err := s.users.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "user deactivated", logging.FieldUserID, id)
	return nil
}

func (s *userService) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.users.ExistsByUsername(ctx, strings.TrimSpace(username))
}

func (s *userService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.users.ExistsByEmail(ctx, normalizeEmail(email))
}
