package services

import (
	"context"
	"errors"

	"github.com/REGINA562/new-project/internal/store"
	"github.com/REGINA562/new-project/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is the uniform failure for login attempts. It
// never distinguishes an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// dummyHash keeps the unknown-email path doing the same bcrypt work as
// the wrong-password path.
var dummyHash = mustHash("not-a-real-password")

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}

// AuthService verifies submitted credentials against stored password
// hashes. It is read-only.
type AuthService struct {
	repo UserRepository
}

func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

// Authenticate looks up the user by email and compares the password
// against the stored bcrypt hash. Both failure modes return
// ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
