package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/donare/internal/transaction/domain"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, tx *domain.Transaction) error {
	return db.WithContext(ctx).Create(tx).Error
}

// List returns the ledger in insertion order. IDs are snowflakes assigned at
// append time, so ID order is the only ordering applied.
func (r *repository) List(ctx context.Context, db *gorm.DB) ([]domain.Transaction, error) {
	var items []domain.Transaction
	err := db.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *repository) CountByEmailSince(ctx context.Context, db *gorm.DB, email string, since, until time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("email = ? AND created_at >= ? AND created_at <= ?", email, since, until).
		Count(&count).Error
	return count, err
}
