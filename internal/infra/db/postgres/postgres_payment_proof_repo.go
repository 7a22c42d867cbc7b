package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"driving-school-platform/internal/domain"
	"driving-school-platform/internal/domain/model"
	"driving-school-platform/internal/domain/ports/repository"
)

var _ repository.PaymentProofRepository = (*paymentProofRepo)(nil)

type paymentProofRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentProofRepo(pool *pgxpool.Pool) *paymentProofRepo {
	return &paymentProofRepo{pool: pool}
}

func (r *paymentProofRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentProof) error {
	const q = `
INSERT INTO payment_proofs (request_id, file_ref, transfer_reference, transfer_date, uploaded_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (request_id) DO UPDATE SET
  file_ref=$2, transfer_reference=$3, transfer_date=$4, uploaded_at=$5;`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.RequestID, p.FileRef, p.TransferReference, p.TransferDate, p.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("save payment proof: %w", err)
	}
	return nil
}

func (r *paymentProofRepo) FindByRequest(ctx context.Context, tx repository.Tx, requestID string) (*model.PaymentProof, error) {
	const q = `
SELECT request_id, file_ref, transfer_reference, transfer_date, uploaded_at
  FROM payment_proofs
 WHERE request_id = $1;`
	row, err := queryRowSQL(ctx, r.pool, tx, q, requestID)
	if err != nil {
		return nil, err
	}
	var p model.PaymentProof
	if err := row.Scan(&p.RequestID, &p.FileRef, &p.TransferReference, &p.TransferDate, &p.UploadedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan payment proof: %w", err)
	}
	return &p, nil
}
