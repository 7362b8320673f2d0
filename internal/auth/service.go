// Package auth issues and validates API access tokens.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pixrepo/service/internal/config"
)

const tokenTTL = 24 * time.Hour

// ErrInvalidAPIKey is returned when the presented API key does not match.
var ErrInvalidAPIKey = errors.New("invalid API key")

// Service contains the business logic for API-key based authentication.
type Service struct {
	cfg *config.Config
}

// NewService creates a new auth Service.
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// Login exchanges the admin API key for a short-lived JWT.
// Login is disabled entirely when no ADMIN_API_KEY is configured.
func (s *Service) Login(apiKey string) (string, error) {
	if s.cfg.AdminAPIKey == "" {
		return "", ErrInvalidAPIKey
	}
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.cfg.AdminAPIKey)) != 1 {
		return "", ErrInvalidAPIKey
	}

	token, err := s.issueToken("admin")
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// issueToken creates a signed JWT for the given subject.
func (s *Service) issueToken(subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
