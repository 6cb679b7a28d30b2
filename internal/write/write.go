// Package write renders a stream of close approaches as CSV or JSON.
package write

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"strconv"

	"neo_explorer/internal/models"

	"github.com/bytedance/sonic"
)

// Header is the CSV header row
var Header = []string{
	"datetime_utc",
	"distance_au",
	"velocity_km_s",
	"designation",
	"name",
	"diameter_km",
	"potentially_hazardous",
}

// CSV writes a header row and one row per approach. It returns the number of approaches written.
func CSV(w io.Writer, results iter.Seq[*models.CloseApproach]) (int, error) {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	count := 0
	for ca := range results {
		if err := writer.Write(csvRow(ca)); err != nil {
			return count, fmt.Errorf("failed to write CSV row: %w", err)
		}
		count++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return count, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return count, nil
}

func csvRow(ca *models.CloseApproach) []string {
	row := []string{
		ca.TimeString(),
		formatFloat(ca.Distance),
		formatFloat(ca.Velocity),
		"", "", "", "",
	}
	if neo := ca.NEO; neo != nil {
		row[3] = neo.Designation
		row[4] = neo.Name
		row[5] = "nan"
		if neo.HasDiameter() {
			row[5] = formatFloat(neo.Diameter)
		}
		row[6] = strconv.FormatBool(neo.Hazardous)
	}
	return row
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type jsonNEO struct {
	Designation          string   `json:"designation"`
	Name                 string   `json:"name"`
	DiameterKm           *float64 `json:"diameter_km"`
	PotentiallyHazardous bool     `json:"potentially_hazardous"`
}

type jsonApproach struct {
	DatetimeUTC string   `json:"datetime_utc"`
	DistanceAU  float64  `json:"distance_au"`
	VelocityKmS float64  `json:"velocity_km_s"`
	NEO         *jsonNEO `json:"neo"`
}

func toJSON(ca *models.CloseApproach) jsonApproach {
	out := jsonApproach{
		DatetimeUTC: ca.TimeString(),
		DistanceAU:  ca.Distance,
		VelocityKmS: ca.Velocity,
	}
	if neo := ca.NEO; neo != nil {
		out.NEO = &jsonNEO{
			Designation:          neo.Designation,
			Name:                 neo.Name,
			PotentiallyHazardous: neo.Hazardous,
		}
		if neo.HasDiameter() {
			d := neo.Diameter
			out.NEO.DiameterKm = &d
		}
	}
	return out
}

// JSON streams the approaches as an indented JSON array, encoding each one as it
// is pulled from results. It returns the number of approaches written.
func JSON(w io.Writer, results iter.Seq[*models.CloseApproach]) (int, error) {
	if _, err := io.WriteString(w, "["); err != nil {
		return 0, fmt.Errorf("failed to write JSON: %w", err)
	}

	count := 0
	for ca := range results {
		elem, err := sonic.ConfigStd.MarshalIndent(toJSON(ca), "  ", "  ")
		if err != nil {
			return count, fmt.Errorf("failed to encode JSON: %w", err)
		}

		sep := ",\n  "
		if count == 0 {
			sep = "\n  "
		}
		if _, err := io.WriteString(w, sep); err != nil {
			return count, fmt.Errorf("failed to write JSON: %w", err)
		}
		if _, err := w.Write(elem); err != nil {
			return count, fmt.Errorf("failed to write JSON: %w", err)
		}
		count++
	}

	tail := "]\n"
	if count > 0 {
		tail = "\n]\n"
	}
	if _, err := io.WriteString(w, tail); err != nil {
		return count, fmt.Errorf("failed to write JSON: %w", err)
	}

	return count, nil
}
