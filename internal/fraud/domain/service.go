package domain

import (
	"context"
	"time"
)

type Service interface {
	// Assess evaluates the rule set against the charge at the given instant.
	// The engine owns no state and never writes to the ledger.
	Assess(ctx context.Context, charge ChargeContext, now time.Time) (Assessment, error)
}
