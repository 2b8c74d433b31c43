package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bara-directory/seeder/internal/auth"
)

// AdminRole is granted to the configured operator account.
const AdminRole = "admin"

var (
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginDisabled is returned when no admin password hash is configured.
	ErrLoginDisabled = errors.New("admin login is not configured")
)

// AuthService checks the operator account from configuration and issues tokens.
type AuthService struct {
	email        string
	passwordHash []byte
	jwt          *auth.JWTManager
}

// NewAuthService constructs a new AuthService for a single admin account.
func NewAuthService(email, passwordHash string, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		jwt:          jwtManager,
	}
}

// Login validates credentials and returns an operator token.
func (s *AuthService) Login(ctx context.Context, email, password string) (auth.Token, error) {
	if email == "" || password == "" {
		return auth.Token{}, errors.New("email and password must not be empty")
	}
	if len(s.passwordHash) == 0 {
		return auth.Token{}, ErrLoginDisabled
	}

	email = strings.ToLower(strings.TrimSpace(email))
	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(s.email)) == 1
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil || !emailMatch {
		return auth.Token{}, ErrInvalidCredentials
	}

	return s.jwt.Issue(s.email, AdminRole)
}
