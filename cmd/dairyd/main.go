// Command dairyd serves the dairy farm API and runs its maintenance jobs.
//
// @title       Dairy Farm API
// @version     1.0
// @description Herd records, milk production and sales reconciliation for dairy farms.
// @BasePath    /api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mashamba/dairy-backend/internal/archive"
	"github.com/mashamba/dairy-backend/internal/config"
	"github.com/mashamba/dairy-backend/internal/repo"
	"github.com/mashamba/dairy-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

// app carries state shared by every subcommand once the root has run.
type app struct {
	envFile string
	cfg     config.Config
	log     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "dairyd",
		Short:         "Dairy farm records and milk reconciliation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "load environment variables from this file (default .env when present)")
	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newSnapshotCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("failed loading env file %s: %w", a.envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = sysutil.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName, sysutil.FirstNonEmpty(version, os.Getenv("APP_VERSION")))
	gin.SetMode(cfg.GinMode)
	return nil
}

func (a *app) openDB() (*gorm.DB, error) {
	db, err := repo.OpenDatabase(repo.Options{
		Driver:  a.cfg.DB.Driver,
		Path:    a.cfg.DB.Path,
		DSN:     a.cfg.DB.DSN,
		Tracing: a.cfg.OTEL.Enabled,
		Silent:  a.cfg.LogLevel != "debug",
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", a.cfg.DB.Driver, err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// openArchive connects to MongoDB when MONGODB_URI is set.
func (a *app) openArchive(ctx context.Context) (archive.SnapshotArchive, error) {
	sc := a.cfg.Snapshot
	if sc.MongoURI == "" {
		return archive.Nop{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, sc.Timeout)
	defer cancel()
	m, err := archive.NewMongo(ctx, sc.MongoURI, sc.MongoDatabase, sc.MongoCollection)
	if err != nil {
		return nil, err
	}
	a.log.Info().Str("database", sc.MongoDatabase).Str("collection", sc.MongoCollection).Msg("snapshot archive enabled")
	return m, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dairyd:", err)
		os.Exit(1)
	}
}
