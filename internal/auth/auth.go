package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// TokenStore issues and validates short-lived admin session tokens.
// Tokens live in memory only; a restart invalidates all sessions.
type TokenStore struct {
	mu      sync.Mutex
	expiry  map[string]time.Time
	ttl     time.Duration
	nowFunc func() time.Time
}

func NewTokenStore(ttl time.Duration) *TokenStore {
	return &TokenStore{
		expiry:  make(map[string]time.Time),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Issue creates a new opaque token.
func (s *TokenStore) Issue() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.expiry[token] = s.nowFunc().Add(s.ttl)
	return token
}

// Valid reports whether the token exists and has not expired. Expired
// tokens are removed as they are seen.
func (s *TokenStore) Valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expiry[token]
	if !ok {
		return false
	}
	if s.nowFunc().After(exp) {
		delete(s.expiry, token)
		return false
	}
	return true
}
