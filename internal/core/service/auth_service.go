package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/martijn/homedash/internal/core/domain"
	"github.com/martijn/homedash/internal/core/repository"
)

// AccessToken is the result of a successful login.
type AccessToken struct {
	Token     string
	ExpiresIn time.Duration
}

type AuthService struct {
	userRepo    repository.UserRepository
	credentials *CredentialStore
	tokens      *TokenService
}

func NewAuthService(
	userRepo repository.UserRepository,
	credentials *CredentialStore,
	tokens *TokenService,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		credentials: credentials,
		tokens:      tokens,
	}
}

// Register creates a user. Duplicate usernames are reported before duplicate
// emails.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, domain.NewValidationError("Username must not be empty")
	}
	if email == "" {
		return nil, domain.NewValidationError("Email must not be empty")
	}
	if password == "" {
		return nil, domain.NewValidationError("Password must not be empty")
	}

	hash, err := s.credentials.Hash(password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	user := domain.NewUser(username, email, hash)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, internal("create user", err)
	}

	return user, nil
}

// Login checks credentials and issues a bearer token. Unknown users and wrong
// passwords fail the same way and take the same time. The username is trimmed
// like in Register.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AccessToken, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrUserNotFound) {
		s.credentials.VerifyMissing(password)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, internal("find user", err)
	}

	if !s.credentials.Verify(password, user.HashedPassword) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueDefault(user.Username)
	if err != nil {
		return nil, internal("issue token", err)
	}

	return &AccessToken{Token: token, ExpiresIn: s.tokens.TTL()}, nil
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	username, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnknownSubject
	}
	if err != nil {
		return nil, internal("find user", err)
	}

	return user, nil
}
