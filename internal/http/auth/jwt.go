package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/deallock/deallock/internal/account"
)

var ErrInvalidToken = errors.New("invalid session token")

// Manager issues and parses the bearer tokens backing sessions. The role
// travels in the token so it is resolved exactly once per request.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	key := []byte(secret)
	if len(key) == 0 {
		// Ephemeral key: sessions do not survive a restart.
		key = make([]byte, 32)
		rand.Read(key)
	}

	return &Manager{secret: key, ttl: ttl}
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (m *Manager) Issue(actor account.Actor) (string, error) {
	now := time.Now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func (m *Manager) Parse(tokenStr string) (account.Actor, error) {
	var c claims

	t, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return m.secret, nil
	})
	if err != nil || !t.Valid {
		return account.Actor{}, ErrInvalidToken
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return account.Actor{}, ErrInvalidToken
	}

	return account.Actor{ID: id, Role: account.Role(c.Role)}, nil
}
