package cli

import (
	"errors"
	"fmt"
	"time"

	"neo_explorer/internal/database"
	"neo_explorer/internal/extract"
	"neo_explorer/internal/tasks"

	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Parse the data files and stage them in the SQLite store at db_path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DBPath == "" {
				return errors.New("db_path is not configured")
			}

			neos, approaches, err := extract.LoadFiles(cmd.Context(), a.cfg.NEOPath, a.cfg.CADPath)
			if err != nil {
				return err
			}

			store, err := database.New(a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open staging store: %w", err)
			}
			defer store.Close()

			populated, err := store.IsPopulated()
			if err != nil {
				return err
			}
			if populated {
				return fmt.Errorf("staging store %s already holds data", a.cfg.DBPath)
			}

			stats, err := tasks.Import(cmd.Context(), store, neos, approaches,
				a.cfg.BatchSize, time.Duration(a.cfg.BatchTimeout)*time.Second)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Staged %d NEOs and %d close approaches in %s\n",
				stats.NEOs, stats.Approaches, a.cfg.DBPath)
			return nil
		},
	}
}
