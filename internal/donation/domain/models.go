// Package domain contains the recurring billing outcome records.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type DonationStatus string

const (
	DonationStatusSuccess DonationStatus = "success"
	DonationStatusFailed  DonationStatus = "failed"
)

// ProviderUnknown marks records written when billing hit an internal fault
// before a provider could be chosen.
const ProviderUnknown = "unknown"

// DonationTransaction is one billing-cycle outcome. Campaign tags and summary
// are copied from the subscription at bill time; an immutable snapshot, not a
// live reference.
type DonationTransaction struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	DonorID         string         `gorm:"type:text;not null;index" json:"donor_id"`
	Amount          float64        `gorm:"not null" json:"amount"`
	Currency        string         `gorm:"type:text;not null" json:"currency"`
	Status          DonationStatus `gorm:"type:text;not null;index" json:"status"`
	Provider        string         `gorm:"type:text;not null" json:"provider"`
	ErrorMessage    *string        `gorm:"type:text" json:"error_message,omitempty"`
	CampaignTags    []string       `gorm:"serializer:json" json:"campaign_tags"`
	CampaignSummary string         `gorm:"type:text" json:"campaign_summary"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (DonationTransaction) TableName() string { return "donation_transactions" }

type Service interface {
	Append(ctx context.Context, donation *DonationTransaction) error
	List(ctx context.Context) ([]DonationTransaction, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, donation *DonationTransaction) error
	List(ctx context.Context, db *gorm.DB) ([]DonationTransaction, error)
}
