package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/database"
	"finanzas-be/internal/entities"
)

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash, fullName string) (*entities.User, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByUsernameOrEmail(ctx context.Context, login string) (*entities.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id, email, fullName string) (*entities.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type userRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password_hash, full_name, active, created_at, updated_at, last_login_at`

func scanUser(row rowScanner) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// duplicateUserError names the column a unique violation hit.
func duplicateUserError(err error) error {
	if strings.Contains(constraintName(err), "email") {
		return apperrors.Conflict("email already exists")
	}
	return apperrors.Conflict("username already exists")
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, username, email, passwordHash, fullName string) (*entities.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username, email, passwordHash, fullName))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg any) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// FindByID finds a user by ID (UUID)
func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// FindByUsername finds a user by exact username
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, `username = $1`, username)
}

// FindByEmail finds a user by email, ignoring case
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, `LOWER(email) = LOWER($1)`, email)
}

// FindByUsernameOrEmail resolves a login that may be either identifier.
// An exact username match wins over an email match.
func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, login string) (*entities.User, error) {
	return r.findOne(ctx, `username = $1 OR LOWER(email) = LOWER($1)
		ORDER BY (username = $1) DESC
		LIMIT 1`, login)
}

func (r *userRepository) exists(ctx context.Context, where string, arg any) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE `+where+`)`, arg).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

// ExistsByUsername reports whether the username is taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `username = $1`, username)
}

// ExistsByEmail reports whether the email is taken, ignoring case
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `LOWER(email) = LOWER($1)`, email)
}

// UpdateProfile overwrites email and full name
func (r *userRepository) UpdateProfile(ctx context.Context, id, email, fullName string) (*entities.User, error) {
	query := `
		UPDATE users
		SET email = $2, full_name = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, email, fullName))
	if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (r *userRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if isMalformedID(err) {
		return apperrors.NotFound("user not found")
	}
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NotFound("user not found")
	}

	return nil
}

// UpdatePassword stores a new password hash
func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.execOne(ctx, "update password",
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
}

// SetActive activates or deactivates an account
func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.execOne(ctx, "update user status",
		`UPDATE users SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
}

// TouchLastLogin records a successful authentication
func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, "update last login",
		`UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at.UTC())
}
