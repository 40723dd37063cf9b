package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/skillswap/internal/apperror"
	"github.com/sakif/skillswap/internal/auth"
	"github.com/sakif/skillswap/internal/model"
)

// SessionService logs users in and out and issues session stamps.
//
// It sits between the surfaces and the IdentityStore:
//
//	SessionHandler (HTTP) → SessionService → IdentityStore (current user)
//	CLI login command    ↗               ↘ TokenService (JWT)
//
// There is no password. Logging in names who you are, and the stamp only
// lets later requests prove they belong to the same session.
type SessionService struct {
	identity *IdentityStore
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewSessionService creates a SessionService with all required dependencies.
func NewSessionService(identity *IdentityStore, tokens *auth.TokenService, logger *slog.Logger) *SessionService {
	return &SessionService{
		identity: identity,
		tokens:   tokens,
		logger:   logger,
	}
}

// LoginInput names the user to log in as.
//
// With UserID set, the existing directory entry is used. Without it a fresh
// profile is built from Name, Email and Location.
type LoginInput struct {
	UserID   string
	Name     string
	Email    string
	Location string
}

// SessionResult bundles the logged-in user and the issued stamp so the
// caller can set the cookie (or print the token) in one step.
type SessionResult struct {
	User  *model.User
	Token string
}

// Login resolves or builds the user, makes it current and issues a stamp.
//
// Returns apperror.ErrNotFound if UserID names nobody in the directory and
// apperror.ErrValidation if a new profile has no name.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*SessionResult, error) {
	var user model.User

	if id := strings.TrimSpace(in.UserID); id != "" {
		existing, err := s.identity.GetUser(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("service/session: looking up %s: %w", id, err)
		}
		user = *existing
	} else {
		if strings.TrimSpace(in.Name) == "" {
			return nil, apperror.ValidationFailed("name", "name is required")
		}
		user = s.identity.NewProfile(in.Name, in.Email, in.Location)
	}

	if err := s.identity.Login(ctx, user); err != nil {
		return nil, fmt.Errorf("service/session: logging in %s: %w", user.ID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/session: generating token for %s: %w", user.ID, err)
	}

	s.logger.Info("session started", slog.String("userID", user.ID))
	return &SessionResult{User: &user, Token: token}, nil
}

// Logout clears the current user.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.identity.Logout(ctx); err != nil {
		return fmt.Errorf("service/session: %w", err)
	}
	return nil
}

// Actor returns the current user, provided it is the one the stamp names.
//
// The current-user slot is shared by every client of one store. When
// somebody else has logged in since this stamp was issued, the stamp is
// stale and the call fails with apperror.ErrForbidden rather than acting on
// the other person's profile.
func (s *SessionService) Actor(ctx context.Context, userID string) (*model.User, error) {
	current, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil || current.ID != userID {
		return nil, apperror.Forbidden("session is no longer the current user")
	}
	return current, nil
}

// ValidateToken validates a JWT string and returns the userID it encodes.
func (s *SessionService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/session: %w", err)
	}
	return userID, nil
}
