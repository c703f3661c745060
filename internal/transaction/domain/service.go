package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// CreateChargeRequest is the validated input for a one-off charge.
type CreateChargeRequest struct {
	Amount         float64 `json:"amount" binding:"required,gt=0"`
	Currency       string  `json:"currency" binding:"required"`
	Source         string  `json:"source" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	IPCountry      string  `json:"ipCountry" binding:"required"`
	BillingCountry string  `json:"billingCountry" binding:"required"`
}

type Service interface {
	// Charge scores the request, memoizes an explanation and appends the outcome
	// to the ledger. A blocked decision is a result, not an error.
	Charge(ctx context.Context, req CreateChargeRequest) (Transaction, error)
	List(ctx context.Context) ([]Transaction, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tx *Transaction) error
	List(ctx context.Context, db *gorm.DB) ([]Transaction, error)
	// CountByEmailSince counts ledger entries for an identity whose timestamp
	// falls within [since, until].
	CountByEmailSince(ctx context.Context, db *gorm.DB, email string, since, until time.Time) (int64, error)
}
