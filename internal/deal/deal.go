package deal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the approval state of a deal. Approval and rejection are
// admin actions; re-invoking them overwrites the previous decision
// (last write wins, no flip-flop guard).
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// PaymentStatus tracks the payment leg. It is only meaningful once the
// deal has been approved; every transition into it is gated on that.
type PaymentStatus string

const (
	PaymentNotPaid             PaymentStatus = "not_paid"
	PaymentPendingConfirmation PaymentStatus = "paid_pending_confirmation"
	PaymentConfirmed           PaymentStatus = "paid_confirmed"
	PaymentNotReceived         PaymentStatus = "payment_not_received"
)

var (
	ErrNotFound     = errors.New("deal not found")
	ErrForbidden    = errors.New("not allowed")
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrValidation   = errors.New("invalid input")
)

// Deal is one brokered transaction. Value and PaymentProofAmount are in
// kobo. Binary attachments live in the store and are fetched separately;
// the struct only carries their metadata.
type Deal struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	ClientName  string
	Link        string
	Description string
	Value       int64
	Status      Status

	PaymentStatus           PaymentStatus
	Secured                 bool
	SecuredAt               *time.Time
	HasItemPhoto            bool
	ItemPhotoContentType    string
	HasPaymentProof         bool
	PaymentProofContentType string
	PaymentProofAmount      *int64
	PaymentProofUploadedAt  *time.Time
	CreatedAt               time.Time
}

// FormatValue renders a kobo amount as naira for notification texts.
func FormatValue(kobo int64) string {
	return fmt.Sprintf("NGN %.2f", float64(kobo)/100)
}
