package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deallock/deallock/internal/deal"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// List queries never pull the blob columns; photos and proofs are fetched
// on their own endpoints.
const selectDealColumns = `
	id, owner_id, title, client_name, link, description, value,
	status, payment_status, secured, secured_at,
	item_photo IS NOT NULL, item_photo_content_type,
	payment_proof IS NOT NULL, payment_proof_content_type,
	payment_proof_amount, payment_proof_uploaded_at, created_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanDeal(s scanner) (*deal.Deal, error) {
	var d deal.Deal

	var statusStr, paymentStr string

	if err := s.Scan(
		&d.ID, &d.OwnerID, &d.Title, &d.ClientName, &d.Link, &d.Description, &d.Value,
		&statusStr, &paymentStr, &d.Secured, &d.SecuredAt,
		&d.HasItemPhoto, &d.ItemPhotoContentType,
		&d.HasPaymentProof, &d.PaymentProofContentType,
		&d.PaymentProofAmount, &d.PaymentProofUploadedAt, &d.CreatedAt,
	); err != nil {
		return nil, err
	}

	d.Status = deal.Status(statusStr)
	d.PaymentStatus = deal.PaymentStatus(paymentStr)

	return &d, nil
}

func (s *Store) CreateDeal(ctx context.Context, d *deal.Deal, photo []byte) error {
	query := `
		INSERT INTO deals (owner_id, title, client_name, link, description, value, status, payment_status, secured, item_photo, item_photo_content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9, $10, NOW())
		RETURNING id, created_at
	`

	var photoArg any
	if len(photo) > 0 {
		photoArg = photo
	}

	err := s.db.QueryRowContext(ctx, query,
		d.OwnerID,
		d.Title,
		d.ClientName,
		d.Link,
		d.Description,
		d.Value,
		d.Status,
		d.PaymentStatus,
		photoArg,
		d.ItemPhotoContentType,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating deal: %w", err)
	}

	return nil
}

func (s *Store) GetDeal(ctx context.Context, id uuid.UUID) (*deal.Deal, error) {
	query := `SELECT ` + selectDealColumns + ` FROM deals WHERE id = $1`

	d, err := scanDeal(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, deal.ErrNotFound
		}

		return nil, fmt.Errorf("getting deal: %w", err)
	}

	return d, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*deal.Deal, error) {
	query := `SELECT ` + selectDealColumns + `
		FROM deals
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	return s.queryDeals(ctx, query, ownerID)
}

func (s *Store) ListDeals(ctx context.Context, filter deal.ListFilter) ([]*deal.Deal, error) {
	query := `SELECT ` + selectDealColumns + ` FROM deals WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Start != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)

		args = append(args, *filter.Start)
		argIdx++
	}

	if filter.End != nil {
		query += fmt.Sprintf(" AND created_at < $%d", argIdx)

		args = append(args, *filter.End)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	return s.queryDeals(ctx, query, args...)
}

func (s *Store) ListWithPaymentProof(ctx context.Context) ([]*deal.Deal, error) {
	query := `SELECT ` + selectDealColumns + `
		FROM deals
		WHERE payment_proof IS NOT NULL
		ORDER BY payment_proof_uploaded_at DESC`

	return s.queryDeals(ctx, query)
}

func (s *Store) queryDeals(ctx context.Context, query string, args ...any) ([]*deal.Deal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}
	defer rows.Close()

	var deals []*deal.Deal

	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deal: %w", err)
		}

		deals = append(deals, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deals: %w", err)
	}

	return deals, nil
}

func (s *Store) GetPhoto(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	return s.getBlob(ctx, id, "item_photo", "item_photo_content_type")
}

func (s *Store) GetPaymentProof(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	return s.getBlob(ctx, id, "payment_proof", "payment_proof_content_type")
}

func (s *Store) getBlob(ctx context.Context, id uuid.UUID, dataCol, typeCol string) ([]byte, string, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM deals WHERE id = $1`, dataCol, typeCol)

	var data []byte

	var contentType string

	err := s.db.QueryRowContext(ctx, query, id).Scan(&data, &contentType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", deal.ErrNotFound
		}

		return nil, "", fmt.Errorf("getting %s: %w", dataCol, err)
	}

	if len(data) == 0 {
		return nil, "", deal.ErrNotFound
	}

	return data, contentType, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status deal.Status) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE deals SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return nil
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status deal.PaymentStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE deals SET payment_status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}

	return nil
}

func (s *Store) UpdateSecured(ctx context.Context, id uuid.UUID, securedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE deals SET secured = TRUE, secured_at = $1 WHERE id = $2`,
		securedAt, id,
	)
	if err != nil {
		return fmt.Errorf("securing deal: %w", err)
	}

	return nil
}

func (s *Store) UpdatePaymentProof(ctx context.Context, d *deal.Deal, proof []byte) error {
	query := `
		UPDATE deals
		SET payment_proof = $1, payment_proof_content_type = $2,
		    payment_proof_amount = $3, payment_proof_uploaded_at = $4,
		    payment_status = $5
		WHERE id = $6
	`

	_, err := s.db.ExecContext(ctx, query,
		proof,
		d.PaymentProofContentType,
		d.PaymentProofAmount,
		d.PaymentProofUploadedAt,
		d.PaymentStatus,
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating payment proof: %w", err)
	}

	return nil
}

func (s *Store) DeleteDeal(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting deal: %w", err)
	}

	return nil
}
