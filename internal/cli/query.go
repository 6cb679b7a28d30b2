package cli

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"neo_explorer/internal/filters"
	"neo_explorer/internal/models"
	"neo_explorer/internal/write"

	"github.com/spf13/cobra"
)

// defaultStdoutLimit caps results printed to the terminal when --limit is not given
const defaultStdoutLimit = 10

type queryFlags struct {
	date, startDate, endDate string
	distanceMin, distanceMax float64
	velocityMin, velocityMax float64
	diameterMin, diameterMax float64
	hazardous, notHazardous  bool
	limit                    int
	outfile                  string
}

func newQueryCommand(a *app) *cobra.Command {
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query close approaches that match a collection of criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := qf.options(cmd)
			if err != nil {
				return err
			}

			db, err := a.loadDatabase(cmd.Context())
			if err != nil {
				return err
			}

			fs := filters.Create(opts)
			for _, f := range fs {
				slog.Debug("Query filter", "filter", f.String())
			}

			limit := qf.limit
			if !cmd.Flags().Changed("limit") && qf.outfile == "" {
				limit = defaultStdoutLimit
			}

			results := filters.Limit(db.Query(fs), limit)

			n, err := emit(cmd.OutOrStdout(), qf.outfile, results)
			if err != nil {
				return err
			}
			slog.Info("Query complete", "results", n, "limit", limit, "outfile", qf.outfile)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&qf.date, "date", "d", "", "Only return close approaches on the given date, in YYYY-MM-DD format")
	f.StringVarP(&qf.startDate, "start-date", "s", "", "Only return close approaches on or after the given date, in YYYY-MM-DD format")
	f.StringVarP(&qf.endDate, "end-date", "e", "", "Only return close approaches on or before the given date, in YYYY-MM-DD format")
	f.Float64Var(&qf.distanceMin, "min-distance", 0, "The minimum approach distance, in au")
	f.Float64Var(&qf.distanceMax, "max-distance", 0, "The maximum approach distance, in au")
	f.Float64Var(&qf.velocityMin, "min-velocity", 0, "The minimum relative approach velocity, in km/s")
	f.Float64Var(&qf.velocityMax, "max-velocity", 0, "The maximum relative approach velocity, in km/s")
	f.Float64Var(&qf.diameterMin, "min-diameter", 0, "The minimum NEO diameter, in km")
	f.Float64Var(&qf.diameterMax, "max-diameter", 0, "The maximum NEO diameter, in km")
	f.BoolVar(&qf.hazardous, "hazardous", false, "Only return close approaches of potentially hazardous NEOs")
	f.BoolVar(&qf.notHazardous, "not-hazardous", false, "Only return close approaches of NEOs that are not potentially hazardous")
	f.IntVarP(&qf.limit, "limit", "l", 0, "The maximum number of matches to return, 0 for no limit (default 10 when printing)")
	f.StringVarP(&qf.outfile, "outfile", "o", "", "File in which to save structured results (.csv or .json); print to stdout if omitted")
	cmd.MarkFlagsMutuallyExclusive("hazardous", "not-hazardous")

	return cmd
}

// options converts the flags the user set into filter bounds; unset flags add no constraint
func (qf *queryFlags) options(cmd *cobra.Command) (filters.Options, error) {
	var opts filters.Options
	changed := cmd.Flags().Changed

	dates := []struct {
		flag  string
		value string
		dst   **time.Time
	}{
		{"date", qf.date, &opts.Date},
		{"start-date", qf.startDate, &opts.StartDate},
		{"end-date", qf.endDate, &opts.EndDate},
	}
	for _, d := range dates {
		if !changed(d.flag) {
			continue
		}
		t, err := time.ParseInLocation(time.DateOnly, d.value, time.UTC)
		if err != nil {
			return opts, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", d.flag, d.value)
		}
		*d.dst = &t
	}

	bounds := []struct {
		flag  string
		value float64
		dst   **float64
	}{
		{"min-distance", qf.distanceMin, &opts.DistanceMin},
		{"max-distance", qf.distanceMax, &opts.DistanceMax},
		{"min-velocity", qf.velocityMin, &opts.VelocityMin},
		{"max-velocity", qf.velocityMax, &opts.VelocityMax},
		{"min-diameter", qf.diameterMin, &opts.DiameterMin},
		{"max-diameter", qf.diameterMax, &opts.DiameterMax},
	}
	for _, b := range bounds {
		if !changed(b.flag) {
			continue
		}
		v := b.value
		*b.dst = &v
	}

	switch {
	case changed("hazardous"):
		v := qf.hazardous
		opts.Hazardous = &v
	case changed("not-hazardous"):
		v := !qf.notHazardous
		opts.Hazardous = &v
	}

	return opts, nil
}

// emit writes results to outfile, choosing the format by extension, or prints them to out
func emit(out io.Writer, outfile string, results iter.Seq[*models.CloseApproach]) (int, error) {
	if outfile == "" {
		n := 0
		for ca := range results {
			fmt.Fprintln(out, ca)
			n++
		}
		if n == 0 {
			fmt.Fprintln(out, "No matching close approaches.")
		}
		return n, nil
	}

	var writeFn func(io.Writer, iter.Seq[*models.CloseApproach]) (int, error)
	switch strings.ToLower(filepath.Ext(outfile)) {
	case ".csv":
		writeFn = write.CSV
	case ".json":
		writeFn = write.JSON
	default:
		return 0, fmt.Errorf("unsupported output file %q: use a .csv or .json extension", outfile)
	}

	file, err := os.Create(outfile)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", outfile, err)
	}

	buffered := bufio.NewWriter(file)
	n, err := writeFn(buffered, results)
	if ferr := buffered.Flush(); err == nil && ferr != nil {
		err = fmt.Errorf("failed to write %s: %w", outfile, ferr)
	}
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close %s: %w", outfile, cerr)
	}
	return n, err
}
