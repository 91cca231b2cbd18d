package auth

import (
	"context"
	"errors"
	"fmt"

	"sakinah/backend/internal/logging"
	"sakinah/backend/internal/store"
)

var (
	ErrEmailTaken         = errors.New("Email already registered")
	ErrUsernameTaken      = errors.New("Username already taken")
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrUserNotFound       = errors.New("User not found")
)

type Service struct {
	store      *store.Store
	tokens     *TokenManager
	bcryptCost int
}

func NewService(s *store.Store, tokens *TokenManager) *Service {
	return &Service{store: s, tokens: tokens}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

func (s *Service) Register(ctx context.Context, username, email, password string) (*store.User, error) {
	l := logging.Ctx(ctx)

	taken, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}
	taken, err = s.store.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &store.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailExists):
			return nil, ErrEmailTaken
		case errors.Is(err, store.ErrUsernameExists):
			return nil, ErrUsernameTaken
		}
		l.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("create user: %w", err)
	}

	l.Info().Str(logging.FieldUserID, user.ID).Msg("user registered")
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (Token, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return Token{}, ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, fmt.Errorf("load user: %w", err)
	}

	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		l := logging.Ctx(ctx)
		l.Warn().Err(err).Str(logging.FieldUserID, user.ID).Msg("stored password hash is unreadable")
		return Token{}, ErrInvalidCredentials
	}
	if !ok {
		return Token{}, ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID, user.Username)
}

// ResolveUser maps a bearer token to its user. Token failures are returned
// as ErrInvalidToken or ErrExpiredToken.
func (s *Service) ResolveUser(ctx context.Context, token string) (*store.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.UserByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
