package service

import (
	"context"
	"errors"
	"fmt"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/entities"
	"finanzas-be/internal/jwt"
	"finanzas-be/internal/logging"
	"finanzas-be/internal/models"
	"finanzas-be/internal/session"
)

// Principal is the authenticated caller behind a token
type Principal struct {
	UserID  string
	Session *session.Session
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Authorize(ctx context.Context, token string) (*Principal, error)
	Session(ctx context.Context, p *Principal) (*models.SessionResponse, error)
}

type authService struct {
	users      UserService
	sessions   session.Store
	jwtService *jwt.JWTService
	logger     *logging.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserService, sessions session.Store, jwtService *jwt.JWTService, logger *logging.Logger) AuthService {
	return &authService{
		users:      users,
		sessions:   sessions,
		jwtService: jwtService,
		logger:     logger.WithComponent(logging.ComponentAuth),
	}
}

// issue opens a session for user and signs a token for it
func (s *authService) issue(ctx context.Context, user *entities.User) (*models.AuthResponse, error) {
	sess, err := s.sessions.Create(ctx, user.ID, s.jwtService.TTL())
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID, sess.ID)
	if err != nil {
		_ = s.sessions.Revoke(ctx, sess.ID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      models.NewUserResponse(user),
	}, nil
}

// Register creates a new user account and logs it in
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	user, err := s.users.Register(ctx, req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}

	auth, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &models.RegisterResponse{
		Message: "User registered successfully",
		Auth:    *auth,
	}, nil
}

// Login authenticates a user and returns user info with JWT token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.Authenticate(ctx, req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuthentication) {
			s.logger.InfoContext(ctx, "login rejected", logging.FieldOperation, logging.OpLogin)
		}
		return nil, err
	}

	auth, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", logging.FieldUserID, user.ID, logging.FieldOperation, logging.OpLogin)
	return auth, nil
}

// Logout revokes the session so its token stops working immediately
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "session revoked", logging.FieldOperation, logging.OpLogout)
	return nil
}

// Authorize resolves a bearer token to the caller. The token must verify
// and its session must still be live and belong to the same user.
func (s *authService) Authorize(ctx context.Context, token string) (*Principal, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Authentication("invalid or expired token")
	}

	sess, err := s.sessions.Lookup(ctx, claims.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, apperrors.Authentication("session expired or revoked")
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.UserID {
		return nil, apperrors.Authentication("invalid or expired token")
	}

	// Every outstanding token dies with the account.
	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Authentication("invalid or expired token")
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		if err := s.sessions.Revoke(ctx, sess.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to revoke session of inactive user",
				logging.FieldUserID, user.ID, logging.FieldError, err)
		}
		return nil, apperrors.Authentication("incorrect credentials")
	}

	return &Principal{UserID: claims.UserID, Session: sess}, nil
}

// Session describes the caller's current session
func (s *authService) Session(ctx context.Context, p *Principal) (*models.SessionResponse, error) {
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return &models.SessionResponse{
		SessionID: p.Session.ID,
		ExpiresAt: p.Session.ExpiresAt,
		User:      models.NewUserResponse(user),
	}, nil
}
