package service

import (
	"errors"
	"fmt"

	"github.com/certlab/certprep-backend/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Common auth errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrNoIdentity   = errors.New("token carries no subject")
)

// Claims extends JWT standard claims with the profile fields the identity
// provider embeds. The subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// UserID returns the caller identity the token asserts.
func (c *Claims) UserID() string {
	return c.Subject
}

// AuthService validates caller tokens. Tokens are issued by an external
// identity provider sharing the HS256 secret; this service never issues or
// revokes them.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// ValidateToken parses and verifies a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithLeeway(s.cfg.JWTLeeway))
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, ErrNoIdentity
	}

	return claims, nil
}
