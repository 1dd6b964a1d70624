package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/spendindex/spendindex/internal/config"
	"github.com/spendindex/spendindex/internal/logger"
	"github.com/spendindex/spendindex/internal/migration"
	"github.com/spendindex/spendindex/internal/server"
	"github.com/spendindex/spendindex/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
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
