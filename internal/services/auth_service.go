package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"omnibudget/internal/auth"
	"omnibudget/internal/core"
	"omnibudget/internal/profile"
	"omnibudget/internal/storage"
)

// AuthService implements registration, login, and profile switching.
type AuthService struct {
	storage *storage.SQLiteRepository
}

func NewAuthService(storage *storage.SQLiteRepository) *AuthService {
	return &AuthService{storage: storage}
}

// Register creates a new account. Username uniqueness is checked before
// email, so a registration colliding on both reports the username error.
// An empty profile key defaults to explorer.
func (s *AuthService) Register(ctx context.Context, username, email, password string, prof core.ProfileKey) (core.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return core.User{}, core.ErrEmptyUsername
	}
	if email == "" {
		return core.User{}, core.ErrEmptyEmail
	}
	if password == "" {
		return core.User{}, core.ErrEmptyPassword
	}
	if prof == "" {
		prof = core.Explorer
	}
	if _, err := profile.Lookup(prof); err != nil {
		return core.User{}, err
	}

	if _, err := s.storage.GetUserByUsername(ctx, username); err == nil {
		return core.User{}, core.ErrUsernameTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("check username: %w", err)
	}

	if _, err := s.storage.GetUserByEmail(ctx, email); err == nil {
		return core.User{}, core.ErrEmailTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, username, email, hash, prof)
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "username", username, "profile", prof)

	return user, nil
}

// Login authenticates by username and password. Unknown usernames and
// wrong passwords fail with the same error so the response does not leak
// which accounts exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (core.User, error) {
	user, err := s.storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return core.User{}, core.ErrInvalidCredentials
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID, "username", user.Username)

	return user, nil
}

// CurrentUser resolves a user by the id carried in the session.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (core.User, error) {
	return s.storage.GetUserByID(ctx, userID)
}

// Ping reports whether the backing store is reachable.
func (s *AuthService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

// SwitchProfile validates the key against the registry before persisting.
// An unknown key is a typed error, never a silent no-op.
func (s *AuthService) SwitchProfile(ctx context.Context, user core.User, prof core.ProfileKey) error {
	if _, err := profile.Lookup(prof); err != nil {
		return err
	}
	if err := s.storage.UpdateUserProfile(ctx, user.ID, prof); err != nil {
		return fmt.Errorf("switch profile: %w", err)
	}

	slog.InfoContext(ctx, "Profile switched", "user_id", user.ID, "profile", prof)

	return nil
}
