package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/deallock/deallock/internal/account"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectAccountColumns = `
	id, full_name, email, username, password_hash, phone, address,
	date_of_birth, role, enabled, created_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*account.Account, error) {
	var a account.Account

	var role string

	if err := s.Scan(
		&a.ID, &a.FullName, &a.Email, &a.Username, &a.PasswordHash, &a.Phone, &a.Address,
		&a.DateOfBirth, &role, &a.Enabled, &a.CreatedAt,
	); err != nil {
		return nil, err
	}

	a.Role = account.Role(role)

	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (full_name, email, username, password_hash, phone, address, date_of_birth, role, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		a.FullName,
		a.Email,
		a.Username,
		a.PasswordHash,
		a.Phone,
		a.Address,
		a.DateOfBirth,
		a.Role,
		a.Enabled,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account.ErrDuplicate
		}

		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return a, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE email = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account by email: %w", err)
	}

	return a, nil
}

func (s *Store) ListByRole(ctx context.Context, role account.Role) ([]*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM accounts WHERE role = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	return accounts, nil
}

func (s *Store) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	query := `UPDATE accounts SET enabled = $1 WHERE id = $2`

	_, err := s.db.ExecContext(ctx, query, enabled, id)
	if err != nil {
		return fmt.Errorf("updating enabled flag: %w", err)
	}

	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error {
	query := `UPDATE accounts SET password_hash = $1 WHERE id = $2`

	_, err := s.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	return nil
}
