package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const authMethodCustom = "custom"

// authService implements AuthService.
type authService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	tokens     *auth.TokenManager
	bcryptCost int
	now        func() time.Time
	logger     zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *auth.TokenManager,
	bcryptCost int,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// Signup creates an account, opens a session and returns a signed token.
func (s *authService) Signup(ctx context.Context, req *model.SignupRequest) (*model.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, model.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	method := req.AuthMethod
	if method == "" {
		method = authMethodCustom
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		AuthMethod:   method,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index catches concurrent signups that passed the check above.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user signed up")

	return s.openSession(ctx, user)
}

// Login verifies credentials, opens a session and returns a signed token.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Debug().Str("user_id", user.ID.String()).Msg("password mismatch")
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")

	return s.openSession(ctx, user)
}

// Logout closes the caller's session.
func (s *authService) Logout(ctx context.Context, userID, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, userID, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	s.logger.Info().Str("user_id", userID.String()).Str("session_id", sessionID.String()).Msg("user logged out")
	return nil
}

// CheckSession verifies that a token's session is still open.
func (s *authService) CheckSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.UserID != userID || session.Expired(s.now()) {
		return model.ErrSessionExpired
	}
	return nil
}

// ExchangeSession issues a fresh token for an unexpired session.
func (s *authService) ExchangeSession(ctx context.Context, sessionID uuid.UUID) (*model.AuthResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, model.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		return nil, model.ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	token, err := s.tokens.Issue(user.ID, session.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &model.AuthResponse{Token: token, User: user}, nil
}

// Profile returns the caller's account.
func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// Sessions lists the caller's login sessions, newest first.
func (s *authService) Sessions(ctx context.Context, userID uuid.UUID) ([]model.Session, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *authService) openSession(ctx context.Context, user *model.User) (*model.AuthResponse, error) {
	now := s.now().UTC()
	session := &model.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokens.TTL()),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, session.ID, user.Email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &model.AuthResponse{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
