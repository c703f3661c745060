package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/donare/internal/clock"
	"github.com/smallbiznis/donare/internal/config"
	"github.com/smallbiznis/donare/internal/donation"
	"github.com/smallbiznis/donare/internal/explain"
	"github.com/smallbiznis/donare/internal/fraud"
	"github.com/smallbiznis/donare/internal/logger"
	"github.com/smallbiznis/donare/internal/migration"
	"github.com/smallbiznis/donare/internal/providers/textgen"
	"github.com/smallbiznis/donare/internal/scheduler"
	"github.com/smallbiznis/donare/internal/server"
	"github.com/smallbiznis/donare/internal/subscription"
	"github.com/smallbiznis/donare/internal/transaction"
	"github.com/smallbiznis/donare/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Collaborators
		textgen.Module,
		explain.Module,

		// Functional domains
		fraud.Module,
		transaction.Module,
		subscription.Module,
		donation.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
