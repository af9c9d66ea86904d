package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/pagetree/internal/config"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pagetree",
	Short: "Hierarchical page tree server",
	Long: `pagetree serves a tree of typed pages over HTTP.

Configuration comes from config/pagetree.yaml (or PAGETREE_CONFIG_PATH)
with environment overrides such as DB_DRIVER, REDIS_ADDR and JWT_SECRET_KEY.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, treeCmd, seedCmd, tokenCmd)
}

// bootstrap loads config and the logger every command shares.
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
