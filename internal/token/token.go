package token

import (
	"errors"
	"time"
)

// Kind selects the token flavour and its issuance policy.
type Kind string

const (
	KindOTP           Kind = "otp"
	KindActivation    Kind = "activation"
	KindPasswordReset Kind = "password_reset"
)

// TTL returns how long a freshly issued token of this kind stays valid.
func (k Kind) TTL() time.Duration {
	if k == KindOTP {
		return 5 * time.Minute
	}

	return time.Hour
}

var (
	ErrNotFound    = errors.New("token not found")
	ErrExpired     = errors.New("token expired")
	ErrAlreadyUsed = errors.New("token already used")
	ErrMismatch    = errors.New("token mismatch")
)

// Token is one issuance of a time-bound secret. Rows are never deleted;
// re-issuing supersedes older rows because lookups take the highest id.
// Verified doubles as the consumed flag for activation and reset tokens.
type Token struct {
	ID        int64
	Kind      Kind
	Email     string
	Secret    string
	ExpiresAt time.Time
	Verified  bool
	CreatedAt time.Time
}

func (t *Token) expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
