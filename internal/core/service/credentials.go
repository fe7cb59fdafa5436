package service

import (
	"errors"
	"fmt"

	"github.com/martijn/homedash/internal/core/domain"
	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 10

// CredentialStore hashes and verifies user passwords with bcrypt.
type CredentialStore struct {
	cost      int
	dummyHash []byte
	compare   func(hash, password []byte) error
}

// NewCredentialStore returns a store using cost, or DefaultBcryptCost when cost
// is outside bcrypt's accepted range.
func NewCredentialStore(cost int) *CredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	// hashed at the store's cost so a miss costs the same as a wrong password
	dummy, err := bcrypt.GenerateFromPassword([]byte("homedash-no-such-user"), cost)
	if err != nil {
		panic(fmt.Sprintf("failed to build dummy password hash: %v", err))
	}

	return &CredentialStore{
		cost:      cost,
		dummyHash: dummy,
		compare:   bcrypt.CompareHashAndPassword,
	}
}

// Hash hashes a password using bcrypt
func (s *CredentialStore) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.NewValidationError("Password must be at most 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify verifies a password against a hash
func (s *CredentialStore) Verify(password, hash string) bool {
	return s.compare([]byte(hash), []byte(password)) == nil
}

// VerifyMissing does the work of Verify for a user that does not exist and
// always fails.
func (s *CredentialStore) VerifyMissing(password string) bool {
	_ = s.compare(s.dummyHash, []byte(password))
	return false
}
