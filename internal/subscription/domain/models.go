// Package domain contains the donor subscription models and lifecycle rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// BillingInterval is how often a subscription is re-billed.
type BillingInterval string

const (
	IntervalWeekly  BillingInterval = "weekly"
	IntervalMonthly BillingInterval = "monthly"
	IntervalYearly  BillingInterval = "yearly"
)

// Next returns the due instant one interval after from, using calendar
// arithmetic with no timezone normalization beyond time.AddDate.
func (i BillingInterval) Next(from time.Time) (time.Time, error) {
	switch i {
	case IntervalWeekly:
		return from.AddDate(0, 0, 7), nil
	case IntervalMonthly:
		return from.AddDate(0, 1, 0), nil
	case IntervalYearly:
		return from.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, ErrInvalidInterval
	}
}

// Subscription is a donor's recurring billing agreement. nextDue is always
// lastBilled (or createdAt) plus one interval; a cancelled subscription is
// never selected for billing.
type Subscription struct {
	ID                  snowflake.ID       `gorm:"primaryKey" json:"id"`
	DonorID             string             `gorm:"type:text;not null;uniqueIndex" json:"donor_id"`
	Amount              float64            `gorm:"not null" json:"amount"`
	Currency            string             `gorm:"type:text;not null" json:"currency"`
	Source              string             `gorm:"type:text;not null" json:"-"`
	Email               string             `gorm:"type:text;not null" json:"email"`
	Interval            BillingInterval    `gorm:"type:text;not null" json:"interval"`
	CampaignDescription string             `gorm:"type:text" json:"campaign_description"`
	CampaignTags        []string           `gorm:"serializer:json" json:"campaign_tags"`
	CampaignSummary     string             `gorm:"type:text" json:"campaign_summary"`
	Status              SubscriptionStatus `gorm:"type:text;not null;index" json:"status"`
	CreatedAt           time.Time          `gorm:"not null" json:"created_at"`
	CancelledAt         *time.Time         `json:"cancelled_at,omitempty"`
	LastBilledAt        *time.Time         `json:"last_billed_at,omitempty"`
	NextDueAt           time.Time          `gorm:"not null;index" json:"next_due_at"`
	SuccessCount        int64              `gorm:"not null;default:0" json:"success_count"`
	FailureCount        int64              `gorm:"not null;default:0" json:"failure_count"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// Stats aggregates the subscription population and billing outcomes.
type Stats struct {
	Total          int64   `json:"total"`
	Active         int64   `json:"active"`
	Cancelled      int64   `json:"cancelled"`
	ActiveAmount   float64 `json:"active_amount"`
	SuccessCharges int64   `json:"success_charges"`
	FailedCharges  int64   `json:"failed_charges"`
	SuccessRate    string  `json:"success_rate"`
}
