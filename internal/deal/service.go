package deal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/deallock/deallock/internal/account"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=deal
type Repository interface {
	CreateDeal(ctx context.Context, d *Deal, photo []byte) error
	GetDeal(ctx context.Context, id uuid.UUID) (*Deal, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Deal, error)
	ListDeals(ctx context.Context, filter ListFilter) ([]*Deal, error)
	ListWithPaymentProof(ctx context.Context) ([]*Deal, error)
	GetPhoto(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	GetPaymentProof(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error
	UpdateSecured(ctx context.Context, id uuid.UUID, securedAt time.Time) error
	UpdatePaymentProof(ctx context.Context, d *Deal, proof []byte) error
	DeleteDeal(ctx context.Context, id uuid.UUID) error
}

// Notifier is the in-app fan-out boundary. Implementations swallow their
// own failures; calls here can never abort a lifecycle transition.
type Notifier interface {
	NotifyUser(ctx context.Context, acct *account.Account, message string)
	NotifyAdmins(ctx context.Context, message string)
}

type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	ListByRole(ctx context.Context, role account.Role) ([]*account.Account, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type Dispatcher interface {
	Go(name string, fn func(context.Context) error)
}

// Service drives the deal lifecycle state machine. Every mutating method
// commits the primary transition first and only then fans out
// notifications and outbound messages, detached from the request.
type Service struct {
	repo     Repository
	accounts Directory
	notifier Notifier
	mail     EmailSender
	sms      SMSSender
	dispatch Dispatcher
	baseURL  string
}

func NewService(repo Repository, accounts Directory, notifier Notifier, mail EmailSender, sms SMSSender, dispatch Dispatcher, baseURL string) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		notifier: notifier,
		mail:     mail,
		sms:      sms,
		dispatch: dispatch,
		baseURL:  baseURL,
	}
}

type CreateParams struct {
	Title            string
	ClientName       string
	Link             string
	Description      string
	Value            int64
	Photo            []byte
	PhotoContentType string
}

type ListFilter struct {
	Status *Status
	Start  *time.Time
	End    *time.Time
}

// Create records a new deal owned by the actor, in the initial
// (pending approval, not paid, unsecured) state.
func (s *Service) Create(ctx context.Context, actor account.Actor, params CreateParams) (*Deal, error) {
	if params.Title == "" || params.ClientName == "" {
		return nil, ErrValidation
	}

	d := &Deal{
		OwnerID:              actor.ID,
		Title:                params.Title,
		ClientName:           params.ClientName,
		Link:                 params.Link,
		Description:          params.Description,
		Value:                params.Value,
		Status:               StatusPendingApproval,
		PaymentStatus:        PaymentNotPaid,
		HasItemPhoto:         len(params.Photo) > 0,
		ItemPhotoContentType: params.PhotoContentType,
	}

	if err := s.repo.CreateDeal(ctx, d, params.Photo); err != nil {
		return nil, fmt.Errorf("creating deal: %w", err)
	}

	s.notifier.NotifyAdmins(ctx, "New deal created: "+d.Title)
	s.notifier.NotifyUser(ctx, s.owner(ctx, d), "Deal created. Awaiting admin approval.")
	s.dispatch.Go("deal-created-mail", func(ctx context.Context) error {
		return s.mailDealCreated(ctx, d)
	})

	return d, nil
}

func (s *Service) ListForOwner(ctx context.Context, actor account.Actor) ([]*Deal, error) {
	return s.repo.ListByOwner(ctx, actor.ID)
}

// ListAll returns every deal, optionally restricted to a created-at range.
// Admin only.
func (s *Service) ListAll(ctx context.Context, actor account.Actor, filter ListFilter) ([]*Deal, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	return s.repo.ListDeals(ctx, filter)
}

// ListPaymentProofs returns deals that have an uploaded proof, newest
// upload first. Admin only.
func (s *Service) ListPaymentProofs(ctx context.Context, actor account.Actor) ([]*Deal, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	return s.repo.ListWithPaymentProof(ctx)
}

func (s *Service) Get(ctx context.Context, actor account.Actor, id uuid.UUID) (*Deal, error) {
	d, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorize(actor, d); err != nil {
		return nil, err
	}

	return d, nil
}

// Photo returns the item photo bytes and content type.
func (s *Service) Photo(ctx context.Context, actor account.Actor, id uuid.UUID) ([]byte, string, error) {
	d, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}

	if !d.HasItemPhoto {
		return nil, "", ErrNotFound
	}

	return s.repo.GetPhoto(ctx, id)
}

// PaymentProof returns the uploaded proof bytes and content type.
func (s *Service) PaymentProof(ctx context.Context, actor account.Actor, id uuid.UUID) ([]byte, string, error) {
	d, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}

	if !d.HasPaymentProof {
		return nil, "", ErrNotFound
	}

	return s.repo.GetPaymentProof(ctx, id)
}

// Delete removes a deal unconditionally. Allowed for the owner or an admin,
// with no lifecycle-state guard.
func (s *Service) Delete(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	d, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		return err
	}

	if err := authorize(actor, d); err != nil {
		return err
	}

	if err := s.repo.DeleteDeal(ctx, id); err != nil {
		return fmt.Errorf("deleting deal: %w", err)
	}

	return nil
}

// MarkPaid moves an approved deal into paid-pending-confirmation.
func (s *Service) MarkPaid(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	d, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		return err
	}

	if err := authorize(actor, d); err != nil {
		return err
	}

	if d.Status != StatusApproved {
		return ErrInvalidState
	}

	if err := s.repo.UpdatePaymentStatus(ctx, id, PaymentPendingConfirmation); err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}

	return nil
}

// UploadPaymentProof stores the proof for an approved deal and derives the
// recorded amount as half the deal value at upload time.
func (s *Service) UploadPaymentProof(ctx context.Context, actor account.Actor, id uuid.UUID, proof []byte, contentType string) error {
	if len(proof) == 0 {
		return ErrValidation
	}

	d, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		return err
	}

	if err := authorize(actor, d); err != nil {
		return err
	}

	if d.Status != StatusApproved {
		return ErrInvalidState
	}

	now := time.Now()
	amount := d.Value / 2

	d.HasPaymentProof = true
	d.PaymentProofContentType = contentType
	d.PaymentProofAmount = &amount
	d.PaymentProofUploadedAt = &now
	d.PaymentStatus = PaymentPendingConfirmation

	if err := s.repo.UpdatePaymentProof(ctx, d, proof); err != nil {
		return fmt.Errorf("storing payment proof: %w", err)
	}

	return nil
}

// Approve sets the deal approved and fans out the full notification set:
// in-app to owner and admins, email to owner and the admin roster, SMS to
// the owner. Admin only.
func (s *Service) Approve(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	d, err := s.adminTransition(ctx, actor, id, StatusApproved)
	if err != nil {
		return err
	}

	owner := s.owner(ctx, d)
	s.notifier.NotifyUser(ctx, owner, "Your deal was approved.")
	s.notifier.NotifyAdmins(ctx, "Deal approved: "+d.Title)
	s.dispatch.Go("deal-approved-mail", func(ctx context.Context) error {
		return s.mailDealApproved(ctx, d, owner)
	})

	return nil
}

// Reject sets the deal rejected. Admin only.
func (s *Service) Reject(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	d, err := s.adminTransition(ctx, actor, id, StatusRejected)
	if err != nil {
		return err
	}

	s.notifier.NotifyUser(ctx, s.owner(ctx, d), "Your deal was rejected.")
	s.notifier.NotifyAdmins(ctx, "Deal rejected: "+d.Title)

	return nil
}

// ConfirmPayment marks the payment received. Admin only.
func (s *Service) ConfirmPayment(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	d, err := s.adminPaymentTransition(ctx, actor, id, PaymentConfirmed)
	if err != nil {
		return err
	}

	s.notifier.NotifyUser(ctx, s.owner(ctx, d), "Payment confirmed for your deal.")
	s.notifier.NotifyAdmins(ctx, "Payment confirmed: "+d.Title)

	return nil
}

// RejectPayment marks the payment as not received. Admin only.
func (s *Service) RejectPayment(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	d, err := s.adminPaymentTransition(ctx, actor, id, PaymentNotReceived)
	if err != nil {
		return err
	}

	s.notifier.NotifyUser(ctx, s.owner(ctx, d), "Payment not received for your deal.")
	s.notifier.NotifyAdmins(ctx, "Payment not received: "+d.Title)

	return nil
}

// Secure flags the exchange as complete. The flag is monotonic: no
// transition ever clears it. Admin only.
func (s *Service) Secure(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	d, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateSecured(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("securing deal: %w", err)
	}

	s.notifier.NotifyUser(ctx, s.owner(ctx, d), "Your deal has been secured.")
	s.notifier.NotifyAdmins(ctx, "Deal secured: "+d.Title)

	return nil
}

func (s *Service) adminTransition(ctx context.Context, actor account.Actor, id uuid.UUID, status Status) (*Deal, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	d, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}

	d.Status = status

	return d, nil
}

func (s *Service) adminPaymentTransition(ctx context.Context, actor account.Actor, id uuid.UUID, status PaymentStatus) (*Deal, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	d, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}

	if d.Status != StatusApproved {
		return nil, ErrInvalidState
	}

	if err := s.repo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("updating payment status: %w", err)
	}

	d.PaymentStatus = status

	return d, nil
}

// owner resolves the owning account for notification purposes. A lookup
// failure is logged and yields nil, which the notifier treats as a no-op.
func (s *Service) owner(ctx context.Context, d *Deal) *account.Account {
	owner, err := s.accounts.GetByID(ctx, d.OwnerID)
	if err != nil {
		slog.Error("resolving deal owner", "deal", d.ID, "error", err)
		return nil
	}

	return owner
}

func (s *Service) mailDealCreated(ctx context.Context, d *Deal) error {
	details := fmt.Sprintf(
		"Deal created.\n\nTitle: %s\nClient: %s\nValue: %s\nStatus: %s\nDetails: %s/dashboard/deal/%s\n",
		d.Title, d.ClientName, FormatValue(d.Value), d.Status, s.baseURL, d.ID,
	)

	admins, err := s.accounts.ListByRole(ctx, account.RoleAdmin)
	if err != nil {
		return fmt.Errorf("listing admins: %w", err)
	}

	for _, admin := range admins {
		if admin.Email == "" {
			continue
		}

		if err := s.mail.SendEmail(ctx, admin.Email, "New Deal Created", details); err != nil {
			slog.Error("mailing admin", "to", admin.Email, "error", err)
		}
	}

	if owner := s.owner(ctx, d); owner != nil && owner.Email != "" {
		return s.mail.SendEmail(ctx, owner.Email, "Your Deal Was Created", details+"\nAwaiting admin approval.")
	}

	return nil
}

func (s *Service) mailDealApproved(ctx context.Context, d *Deal, owner *account.Account) error {
	details := fmt.Sprintf(
		"Deal approved.\n\nTitle: %s\nClient: %s\nValue: %s\nStatus: %s",
		d.Title, d.ClientName, FormatValue(d.Value), d.Status,
	)

	if owner != nil {
		if owner.Email != "" {
			if err := s.mail.SendEmail(ctx, owner.Email, "Your Deal Was Approved", details); err != nil {
				slog.Error("mailing owner", "to", owner.Email, "error", err)
			}
		}

		if owner.Phone != "" {
			if err := s.sms.SendSMS(ctx, owner.Phone, "Your deal was approved. Please proceed to payment."); err != nil {
				slog.Error("texting owner", "to", owner.Phone, "error", err)
			}
		}
	}

	admins, err := s.accounts.ListByRole(ctx, account.RoleAdmin)
	if err != nil {
		return fmt.Errorf("listing admins: %w", err)
	}

	for _, admin := range admins {
		if admin.Email == "" {
			continue
		}

		if err := s.mail.SendEmail(ctx, admin.Email, "Deal Approved", details); err != nil {
			slog.Error("mailing admin", "to", admin.Email, "error", err)
		}
	}

	return nil
}

func authorize(actor account.Actor, d *Deal) error {
	if actor.IsAdmin() || actor.ID == d.OwnerID {
		return nil
	}

	return ErrForbidden
}
