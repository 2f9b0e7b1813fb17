package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"finledger/internal/core"
	"finledger/internal/storage"
)

const bcryptCost = 12

const minPasswordLength = 8

// AuthService handles registration and login. Passwords are stored as
// salted bcrypt digests; verification is constant-time.
type AuthService struct {
	storage *storage.Repository
}

func NewAuthService(storage *storage.Repository) *AuthService {
	return &AuthService{storage: storage}
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if err := core.ValidateUsername(username); err != nil {
		return err
	}
	if len([]rune(password)) < minPasswordLength {
		return core.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.storage.CreateUser(ctx, username, string(hash)); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return core.ErrDuplicateUser
		}
		return err
	}

	slog.InfoContext(ctx, "User registered", "username", username)
	return nil
}

// Login returns a session bound to the username. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*core.Session, error) {
	username = strings.TrimSpace(username)

	user, err := s.storage.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, core.ErrInvalidCredentials
	}

	slog.InfoContext(ctx, "User logged in", "username", username)
	return &core.Session{Username: user.Username, LoggedInAt: time.Now().UTC()}, nil
}
