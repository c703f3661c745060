package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// CreateSubscriptionRequest is the validated input for subscription creation.
type CreateSubscriptionRequest struct {
	DonorID             string  `json:"donorId" binding:"required"`
	Amount              float64 `json:"amount" binding:"required,gt=0"`
	Currency            string  `json:"currency" binding:"required"`
	Source              string  `json:"source" binding:"required"`
	Email               string  `json:"email" binding:"required,email"`
	Interval            string  `json:"interval" binding:"required"`
	CampaignDescription string  `json:"campaignDescription"`
}

type Service interface {
	Create(ctx context.Context, req CreateSubscriptionRequest) (Subscription, error)
	Cancel(ctx context.Context, donorID string) (Subscription, error)
	GetByDonorID(ctx context.Context, donorID string) (Subscription, error)
	List(ctx context.Context) ([]Subscription, error)
	// ListDue returns active subscriptions with nextDue <= now.
	ListDue(ctx context.Context, now time.Time) ([]Subscription, error)
	// MarkBilled records a billing outcome: the matching counter is incremented
	// and lastBilled/nextDue advance regardless of success, so a transient
	// failure never wedges the schedule.
	MarkBilled(ctx context.Context, id snowflake.ID, success bool, now time.Time) error
	Stats(ctx context.Context) (Stats, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByDonorID(ctx context.Context, db *gorm.DB, donorID string) (*Subscription, error)
	List(ctx context.Context, db *gorm.DB) ([]Subscription, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]Subscription, error)
	ListDue(ctx context.Context, db *gorm.DB, now time.Time) ([]Subscription, error)
	MarkCancelled(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	// UpdateSchedule sets lastBilled/nextDue on an existing record in place.
	UpdateSchedule(ctx context.Context, db *gorm.DB, id snowflake.ID, lastBilled, nextDue time.Time) error
	IncrementOutcome(ctx context.Context, db *gorm.DB, id snowflake.ID, success bool) error
	Aggregate(ctx context.Context, db *gorm.DB) (Stats, error)
}
