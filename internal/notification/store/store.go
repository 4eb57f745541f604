package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/deallock/deallock/internal/notification"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateNotification(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (account_id, message, read, created_at)
		VALUES ($1, $2, FALSE, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, n.AccountID, n.Message).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

func (s *Store) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*notification.Notification, error) {
	query := `
		SELECT id, account_id, message, read, created_at
		FROM notifications
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notes []*notification.Notification

	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}

		notes = append(notes, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}

	return notes, nil
}

func (s *Store) CountUnread(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE account_id = $1 AND read = FALSE`,
		accountID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread: %w", err)
	}

	return count, nil
}

func (s *Store) MarkAllRead(ctx context.Context, accountID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE account_id = $1 AND read = FALSE`,
		accountID,
	)
	if err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}

	return nil
}
