package token

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=token
type Repository interface {
	CreateToken(ctx context.Context, t *Token) error
	LatestByEmail(ctx context.Context, kind Kind, email string) (*Token, error)
	GetBySecret(ctx context.Context, kind Kind, secret string) (*Token, error)
	MarkVerified(ctx context.Context, id int64) error
}

type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Issue persists a fresh token for the email. Prior unconsumed tokens are
// left in place; OTP lookups only ever see the most recent row.
func (s *Store) Issue(ctx context.Context, kind Kind, email string) (*Token, error) {
	secret, err := newSecret(kind)
	if err != nil {
		return nil, fmt.Errorf("generating secret: %w", err)
	}

	t := &Token{
		Kind:      kind,
		Email:     email,
		Secret:    secret,
		ExpiresAt: time.Now().Add(kind.TTL()),
	}

	if err := s.repo.CreateToken(ctx, t); err != nil {
		return nil, fmt.Errorf("creating token: %w", err)
	}

	return t, nil
}

// VerifyOTP checks the presented code against the most recently issued OTP
// for the email. Success marks the row verified but does not consume it:
// signup re-reads the same row and requires the flag.
func (s *Store) VerifyOTP(ctx context.Context, email, code string) error {
	t, err := s.repo.LatestByEmail(ctx, KindOTP, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("looking up otp: %w", err)
	}

	if t.expired(time.Now()) {
		return ErrExpired
	}

	if t.Secret != code {
		return ErrMismatch
	}

	if err := s.repo.MarkVerified(ctx, t.ID); err != nil {
		return fmt.Errorf("marking otp verified: %w", err)
	}

	return nil
}

// OTPVerified reports whether the most recent OTP for the email has been
// verified. Expiry is deliberately not re-checked here; verification
// happened against a live token and signup trusts that result.
func (s *Store) OTPVerified(ctx context.Context, email string) (bool, error) {
	t, err := s.repo.LatestByEmail(ctx, KindOTP, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("looking up otp: %w", err)
	}

	return t.Verified, nil
}

// Consume resolves an activation or reset token by its secret and marks it
// used. A second Consume of the same secret fails with ErrAlreadyUsed.
func (s *Store) Consume(ctx context.Context, kind Kind, secret string) (*Token, error) {
	t, err := s.repo.GetBySecret(ctx, kind, secret)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("looking up token: %w", err)
	}

	if t.Verified {
		return nil, ErrAlreadyUsed
	}

	if t.expired(time.Now()) {
		return nil, ErrExpired
	}

	if err := s.repo.MarkVerified(ctx, t.ID); err != nil {
		return nil, fmt.Errorf("consuming token: %w", err)
	}

	t.Verified = true

	return t, nil
}

func newSecret(kind Kind) (string, error) {
	if kind != KindOTP {
		return uuid.NewString(), nil
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
