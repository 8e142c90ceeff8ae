package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deep-platform/deep-api/pkg/config"
	"github.com/deep-platform/deep-api/pkg/database"
	"github.com/deep-platform/deep-api/pkg/logger"
)

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type configLoader func() (*config.Config, error)

func newRootCmd(load configLoader) *cobra.Command {
	root := &cobra.Command{
		Use:           "deepctl",
		Short:         "Operator tooling for the Deep API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd(load))
	root.AddCommand(newSeedCmd(load))
	root.AddCommand(newSeedAdminCmd(load))
	root.AddCommand(newTokenCmd(load))
	return root
}

// env is what a database-backed subcommand needs.
type env struct {
	cfg    *config.Config
	db     *sqlx.DB
	logger *zap.Logger
}

func (e *env) Close() {
	if e.db != nil {
		_ = e.db.Close()
	}
	_ = e.logger.Sync()
}

func openEnv(load configLoader) (*env, error) {
	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: logr}, nil
}
