package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/deallock/deallock/internal/account"
)

const (
	defaultListLimit = 6
	maxListLimit     = 20
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=notification
type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, accountID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, accountID uuid.UUID) error
}

// Directory resolves the current admin roster. Membership is evaluated on
// every NotifyAdmins call, never cached.
type Directory interface {
	ListByRole(ctx context.Context, role account.Role) ([]*account.Account, error)
}

// Service is the fan-out boundary. NotifyUser and NotifyAdmins swallow every
// failure: a notification that cannot be written must not abort the state
// transition that triggered it.
type Service struct {
	repo     Repository
	accounts Directory
}

func NewService(repo Repository, accounts Directory) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// NotifyUser records one unread notification for the account. No-op on a
// nil account or blank message.
func (s *Service) NotifyUser(ctx context.Context, acct *account.Account, message string) {
	if acct == nil || strings.TrimSpace(message) == "" {
		return
	}

	n := &Notification{
		AccountID: acct.ID,
		Message:   message,
	}

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		slog.Error("notify user failed", "account", acct.ID, "error", err)
	}
}

// NotifyAdmins fans the message out to every current admin account.
func (s *Service) NotifyAdmins(ctx context.Context, message string) {
	if strings.TrimSpace(message) == "" {
		return
	}

	admins, err := s.accounts.ListByRole(ctx, account.RoleAdmin)
	if err != nil {
		slog.Error("notify admins failed", "error", err)
		return
	}

	for _, admin := range admins {
		s.NotifyUser(ctx, admin, message)
	}
}

// ListRecent returns the newest notifications for the account. The limit is
// clamped to 1..20 and defaults to 6.
func (s *Service) ListRecent(ctx context.Context, accountID uuid.UUID, limit int) ([]*Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	notes, err := s.repo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}

	return notes, nil
}

func (s *Service) CountUnread(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, accountID)
}

func (s *Service) MarkAllRead(ctx context.Context, accountID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, accountID)
}
