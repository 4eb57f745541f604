package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role is the capability level attached to an account. It is resolved once
// per request into an Actor rather than re-compared as strings at call sites.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	ErrNotFound         = errors.New("account not found")
	ErrDuplicate        = errors.New("account already exists")
	ErrNotVerified      = errors.New("email not verified")
	ErrDisabled         = errors.New("account disabled")
	ErrBadCredentials   = errors.New("invalid credentials")
	ErrActivationFailed = errors.New("activation failed")
)

type Account struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	Username     string
	PasswordHash []byte
	Phone        string
	Address      string
	DateOfBirth  *time.Time
	Role         Role
	Enabled      bool
	CreatedAt    time.Time
}

// Actor identifies the caller of a mutating operation, resolved from the
// session by the auth middleware.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
