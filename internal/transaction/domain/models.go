// Package domain contains the append-only charge ledger models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TransactionStatus is the terminal outcome of a charge request.
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusBlocked TransactionStatus = "blocked"
)

// Transaction is one processed charge. Rows are immutable once inserted; the
// snowflake ID is assigned at append time, so ordering by ID is insertion order.
type Transaction struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Provider    *string           `gorm:"type:text" json:"provider"`
	Status      TransactionStatus `gorm:"type:text;not null;index" json:"status"`
	RiskScore   float64           `gorm:"not null" json:"risk_score"`
	Explanation string            `gorm:"type:text;not null" json:"explanation"`
	Amount      float64           `gorm:"not null" json:"amount"`
	Currency    string            `gorm:"type:text;not null" json:"currency"`
	Email       string            `gorm:"type:text;not null;index" json:"email"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }
