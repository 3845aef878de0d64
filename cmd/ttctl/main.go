package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tasktreasure/tasktreasure/internal/calendar"
	"github.com/tasktreasure/tasktreasure/internal/cli"
	"github.com/tasktreasure/tasktreasure/internal/config"
	"github.com/tasktreasure/tasktreasure/internal/database"
	"github.com/tasktreasure/tasktreasure/internal/logging"
)

var CLI struct {
	DB string `help:"SQLite database path (defaults to TT_DB_PATH)." type:"path"`

	Migrate  cli.MigrateCmd  `cmd:"" help:"Apply database migrations."`
	Backfill cli.BackfillCmd `cmd:"" help:"Write defaults into documents missing them."`
	Children cli.ChildrenCmd `cmd:"" help:"List a parent's children."`
	Week     cli.WeekCmd     `cmd:"" help:"Show the weekly calendar."`
	Progress cli.ProgressCmd `cmd:"" help:"Show a child's progress toward the weekly goals."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("ttctl"),
		kong.Description("TaskTreasure administration"),
		kong.UsageOnError(),
	)

	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	dbPath := cfg.DBPath
	if CLI.DB != "" {
		dbPath = CLI.DB
	}
	db, err := database.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	appCtx := cli.NewContext(context.Background(), db, os.Stdout, logger, cfg.Location(), calendar.Options{
		Timeout: cfg.FanoutTimeout,
		Policy:  cfg.Policy(),
	})

	if err := kctx.Run(appCtx); err != nil {
		db.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
