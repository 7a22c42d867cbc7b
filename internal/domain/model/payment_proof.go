package model

import (
	"time"

	"driving-school-platform/internal/domain"
)

// PaymentProof is the evidence attached to a bank-transfer request.
// One-to-one with its request and immutable once uploaded. FileRef is an
// opaque handle into the external file store.
type PaymentProof struct {
	RequestID         string
	FileRef           string
	TransferReference string
	TransferDate      *time.Time
	UploadedAt        time.Time
}

func NewPaymentProof(requestID, fileRef, transferReference string, transferDate *time.Time) (*PaymentProof, error) {
	if requestID == "" || fileRef == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &PaymentProof{
		RequestID:         requestID,
		FileRef:           fileRef,
		TransferReference: transferReference,
		TransferDate:      transferDate,
		UploadedAt:        time.Now(),
	}, nil
}
