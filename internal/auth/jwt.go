package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

const sessionSubject = "webinar-admin"

// SessionService issues and validates short-lived admin session tokens.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService creates a session service signing with secret.
func NewSessionService(secret string, ttl time.Duration) *SessionService {
	return &SessionService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether sessions can be issued.
func (s *SessionService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Generate creates a new admin session token and returns it with its expiry.
func (s *SessionService) Generate() (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrInvalidToken
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   sessionSubject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.New().String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses and validates a session token.
func (s *SessionService) Validate(tokenString string) error {
	if !s.Enabled() {
		return ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithSubject(sessionSubject))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
