package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/pagetree/internal/app"
	"github.com/yungbote/pagetree/internal/platform/shutdown"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server until SIGINT or SIGTERM",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := shutdown.NotifyContext(cmd.Context())
		defer stop()
		a, err := open(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Run(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		a.Log.Info("Schema is up to date")
		return nil
	},
}

func open(ctx context.Context) (*app.App, error) {
	cfg, log, err := bootstrap()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("Startup failed", "error", err)
		log.Sync()
		return nil, err
	}
	return a, nil
}
