package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kestrelsec/bastion/internal/guard"
)

// ErrInvalidToken covers expired, malformed and badly signed session tokens.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are the JWT claims of one authenticated session. The bound
// fingerprint travels inside the token, so session state is scoped to the
// client that holds it.
type SessionClaims struct {
	Username    string            `json:"username"`
	Role        string            `json:"role"`
	Fingerprint guard.Fingerprint `json:"fp"`
	jwt.RegisteredClaims
}

// AuthService issues and parses session tokens.
type AuthService struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthService builds the service with the signing secret. A non-positive
// ttl selects 12 hours.
func NewAuthService(secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{secret: []byte(secret), ttl: ttl}
}

// IssueToken signs a session token carrying the user identity and the bound
// fingerprint.
func (s *AuthService) IssueToken(username, role string, fp guard.Fingerprint) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Username:    username,
		Role:        role,
		Fingerprint: fp,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken validates a session token and returns its claims.
func (s *AuthService) ParseToken(raw string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
