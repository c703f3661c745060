package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/donare/internal/subscription/domain"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repository) FindByDonorID(ctx context.Context, db *gorm.DB, donorID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Where("donor_id = ?", donorID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB) ([]domain.Subscription, error) {
	var items []domain.Subscription
	err := db.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *repository) ListActive(ctx context.Context, db *gorm.DB) ([]domain.Subscription, error) {
	var items []domain.Subscription
	err := db.WithContext(ctx).
		Where("status = ?", domain.SubscriptionStatusActive).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListDue(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Subscription, error) {
	var items []domain.Subscription
	err := db.WithContext(ctx).
		Where("status = ? AND next_due_at <= ?", domain.SubscriptionStatusActive, now).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) MarkCancelled(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       domain.SubscriptionStatusCancelled,
			"cancelled_at": at,
		}).Error
}

func (r *repository) UpdateSchedule(ctx context.Context, db *gorm.DB, id snowflake.ID, lastBilled, nextDue time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_billed_at": lastBilled,
			"next_due_at":    nextDue,
		}).Error
}

func (r *repository) IncrementOutcome(ctx context.Context, db *gorm.DB, id snowflake.ID, success bool) error {
	column := "failure_count"
	if success {
		column = "success_count"
	}
	return db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(fmt.Sprintf("%s + 1", column))).Error
}

func (r *repository) Aggregate(ctx context.Context, db *gorm.DB) (domain.Stats, error) {
	var stats domain.Stats

	row := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS cancelled,
			COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS active_amount,
			COALESCE(SUM(success_count), 0) AS success_charges,
			COALESCE(SUM(failure_count), 0) AS failed_charges`,
			domain.SubscriptionStatusActive,
			domain.SubscriptionStatusCancelled,
			domain.SubscriptionStatusActive,
		).
		Row()
	if err := row.Scan(&stats.Total, &stats.Active, &stats.Cancelled, &stats.ActiveAmount, &stats.SuccessCharges, &stats.FailedCharges); err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}
