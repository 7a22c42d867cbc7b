package repository

import (
	"context"

	"driving-school-platform/internal/domain/model"
)

type PaymentProofRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PaymentProof) error
	FindByRequest(ctx context.Context, tx Tx, requestID string) (*model.PaymentProof, error)
}
