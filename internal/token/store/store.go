package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deallock/deallock/internal/token"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectTokenColumns = `id, kind, email, secret, expires_at, verified, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(s scanner) (*token.Token, error) {
	var t token.Token

	var kind string

	if err := s.Scan(&t.ID, &kind, &t.Email, &t.Secret, &t.ExpiresAt, &t.Verified, &t.CreatedAt); err != nil {
		return nil, err
	}

	t.Kind = token.Kind(kind)

	return &t, nil
}

func (s *Store) CreateToken(ctx context.Context, t *token.Token) error {
	query := `
		INSERT INTO verification_tokens (kind, email, secret, expires_at, verified, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		t.Kind,
		t.Email,
		t.Secret,
		t.ExpiresAt,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating token: %w", err)
	}

	return nil
}

func (s *Store) LatestByEmail(ctx context.Context, kind token.Kind, email string) (*token.Token, error) {
	query := `SELECT ` + selectTokenColumns + `
		FROM verification_tokens
		WHERE kind = $1 AND email = $2
		ORDER BY id DESC
		LIMIT 1`

	t, err := scanToken(s.db.QueryRowContext(ctx, query, kind, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, token.ErrNotFound
		}

		return nil, fmt.Errorf("getting latest token: %w", err)
	}

	return t, nil
}

func (s *Store) GetBySecret(ctx context.Context, kind token.Kind, secret string) (*token.Token, error) {
	query := `SELECT ` + selectTokenColumns + `
		FROM verification_tokens
		WHERE kind = $1 AND secret = $2`

	t, err := scanToken(s.db.QueryRowContext(ctx, query, kind, secret))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, token.ErrNotFound
		}

		return nil, fmt.Errorf("getting token by secret: %w", err)
	}

	return t, nil
}

func (s *Store) MarkVerified(ctx context.Context, id int64) error {
	query := `UPDATE verification_tokens SET verified = TRUE WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("marking token verified: %w", err)
	}

	return nil
}
