// Package cli wires configuration, loading and the query pipeline into cobra commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"neo_explorer/internal/config"
	"neo_explorer/internal/database"
	"neo_explorer/internal/extract"
	"neo_explorer/internal/models"

	"github.com/spf13/cobra"
)

type app struct {
	cfg *config.Config
}

// NewRootCommand builds the command tree. Logs go to logOut.
func NewRootCommand(logOut io.Writer) *cobra.Command {
	a := &app{}
	var configPath string

	root := &cobra.Command{
		Use:           "neo-explorer",
		Short:         "Explore near-Earth objects and their close approaches",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				os.Setenv(config.ConfigPathEnv, configPath)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			a.cfg = cfg

			InitLogger(cfg, logOut)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")

	root.AddCommand(
		newInspectCommand(a),
		newQueryCommand(a),
		newImportCommand(a),
	)

	return root
}

// Execute runs the command tree and returns the process exit code
func Execute(ctx context.Context) int {
	if err := NewRootCommand(os.Stderr).ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		return 1
	}
	return 0
}

// InitLogger installs the default slog logger according to cfg
func InitLogger(cfg *config.Config, w io.Writer) {
	var logLevel slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// loadDatabase builds the linked database from the staging store when it holds
// data, and from the data files otherwise
func (a *app) loadDatabase(ctx context.Context) (*database.NEODatabase, error) {
	start := time.Now()

	neos, approaches, err := a.loadRecords(ctx)
	if err != nil {
		return nil, err
	}

	db := database.NewNEODatabase(neos, approaches)

	slog.Info("Linked database",
		"neos", db.NEOCount(),
		"approaches", db.ApproachCount(),
		"elapsed", time.Since(start),
	)

	return db, nil
}

func (a *app) loadRecords(ctx context.Context) ([]*models.NearEarthObject, []*models.CloseApproach, error) {
	if a.cfg.DBPath != "" {
		store, err := database.New(a.cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open staging store: %w", err)
		}
		defer store.Close()

		populated, err := store.IsPopulated()
		if err != nil {
			return nil, nil, err
		}
		if populated {
			slog.Info("Loading records from staging store", "db_path", a.cfg.DBPath)
			return store.LoadAll()
		}
		slog.Info("Staging store is empty, loading data files", "db_path", a.cfg.DBPath)
	}

	return extract.LoadFiles(ctx, a.cfg.NEOPath, a.cfg.CADPath)
}
