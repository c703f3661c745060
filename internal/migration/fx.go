// Package migration creates the schema at startup. The store is
// process-lifetime, so gorm's AutoMigrate stands in for versioned migrations.
package migration

import (
	donationdomain "github.com/smallbiznis/donare/internal/donation/domain"
	subscriptiondomain "github.com/smallbiznis/donare/internal/subscription/domain"
	transactiondomain "github.com/smallbiznis/donare/internal/transaction/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		return AutoMigrate(conn)
	}),
)

func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&transactiondomain.Transaction{},
		&subscriptiondomain.Subscription{},
		&donationdomain.DonationTransaction{},
	)
}
