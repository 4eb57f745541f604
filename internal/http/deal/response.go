package deal

import (
	"time"

	"github.com/google/uuid"

	"github.com/deallock/deallock/internal/deal"
)

type dealResponse struct {
	ID                     uuid.UUID          `json:"id"`
	OwnerID                uuid.UUID          `json:"owner_id"`
	Title                  string             `json:"title"`
	ClientName             string             `json:"client_name"`
	Link                   string             `json:"link,omitempty"`
	Description            string             `json:"description,omitempty"`
	Value                  int64              `json:"value"`
	DisplayValue           string             `json:"display_value"`
	Status                 deal.Status        `json:"status"`
	PaymentStatus          deal.PaymentStatus `json:"payment_status"`
	Secured                bool               `json:"secured"`
	SecuredAt              *time.Time         `json:"secured_at,omitempty"`
	HasItemPhoto           bool               `json:"has_item_photo"`
	HasPaymentProof        bool               `json:"has_payment_proof"`
	PaymentProofAmount     *int64             `json:"payment_proof_amount,omitempty"`
	PaymentProofUploadedAt *time.Time         `json:"payment_proof_uploaded_at,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
}

func toResponse(d *deal.Deal) dealResponse {
	return dealResponse{
		ID:                     d.ID,
		OwnerID:                d.OwnerID,
		Title:                  d.Title,
		ClientName:             d.ClientName,
		Link:                   d.Link,
		Description:            d.Description,
		Value:                  d.Value,
		DisplayValue:           deal.FormatValue(d.Value),
		Status:                 d.Status,
		PaymentStatus:          d.PaymentStatus,
		Secured:                d.Secured,
		SecuredAt:              d.SecuredAt,
		HasItemPhoto:           d.HasItemPhoto,
		HasPaymentProof:        d.HasPaymentProof,
		PaymentProofAmount:     d.PaymentProofAmount,
		PaymentProofUploadedAt: d.PaymentProofUploadedAt,
		CreatedAt:              d.CreatedAt,
	}
}

func toResponseList(deals []*deal.Deal) []dealResponse {
	resp := make([]dealResponse, len(deals))
	for i, d := range deals {
		resp[i] = toResponse(d)
	}

	return resp
}
