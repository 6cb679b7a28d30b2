package cli

import (
	"errors"
	"fmt"

	"neo_explorer/internal/models"

	"github.com/spf13/cobra"
)

// ErrNoMatchingNEO is returned by inspect when the lookup misses
var ErrNoMatchingNEO = errors.New("no matching NEOs exist in the database")

func newInspectCommand(a *app) *cobra.Command {
	var (
		designation string
		name        string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect an NEO by primary designation or by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.loadDatabase(cmd.Context())
			if err != nil {
				return err
			}

			var (
				neo *models.NearEarthObject
				ok  bool
			)
			if cmd.Flags().Changed("pdes") {
				neo, ok = db.GetByDesignation(designation)
			} else {
				neo, ok = db.GetByName(name)
			}
			if !ok {
				return ErrNoMatchingNEO
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, neo)
			if verbose {
				for _, ca := range neo.Approaches {
					fmt.Fprintf(out, "- %s\n", ca)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&designation, "pdes", "", "The primary designation of the NEO to inspect (e.g. '433')")
	cmd.Flags().StringVar(&name, "name", "", "The IAU name of the NEO to inspect (e.g. 'Halley')")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Additionally, print all known close approaches of this NEO")
	cmd.MarkFlagsMutuallyExclusive("pdes", "name")
	cmd.MarkFlagsOneRequired("pdes", "name")

	return cmd
}
