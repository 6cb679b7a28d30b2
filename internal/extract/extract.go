// Package extract reads NEO and close-approach records from the CSV and JSON
// data files into unlinked models.
package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"neo_explorer/internal/models"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/errgroup"
)

// CSV columns read from the NEO file
const (
	colDesignation = "pdes"
	colName        = "name"
	colDiameter    = "diameter"
	colHazardous   = "pha"
)

// JSON fields read from the close-approach file, with their positions in the
// standard CAD API layout used when the file has no "fields" header
var approachFields = map[string]int{
	"des":   0,
	"cd":    3,
	"dist":  4,
	"v_rel": 7,
}

// LoadNEOs reads near-Earth objects from CSV with a header row.
// Rows without a primary designation are skipped.
func LoadNEOs(r io.Reader) ([]*models.NearEarthObject, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	headerMap := make(map[string]int, len(header))
	for i, h := range header {
		headerMap[strings.Trim(strings.TrimSpace(h), "'\"")] = i
	}
	if _, ok := headerMap[colDesignation]; !ok {
		return nil, fmt.Errorf("CSV header is missing the %q column", colDesignation)
	}

	var neos []*models.NearEarthObject
	skipped := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record on line %d: %w", line, err)
		}

		neo := models.NewNearEarthObject(
			getField(record, headerMap, colDesignation),
			getField(record, headerMap, colName),
			getField(record, headerMap, colDiameter),
			getField(record, headerMap, colHazardous),
		)
		if neo.Designation == "" {
			skipped++
			continue
		}
		neos = append(neos, neo)
	}

	if skipped > 0 {
		slog.Warn("Skipped NEO rows without a designation", "skipped", skipped)
	}

	return neos, nil
}

// getField safely retrieves a field from a CSV record by header name
func getField(record []string, headerMap map[string]int, fieldName string) string {
	if idx, ok := headerMap[fieldName]; ok && idx < len(record) {
		return strings.Trim(strings.TrimSpace(record[idx]), "'\"")
	}
	return ""
}

type cadDocument struct {
	Fields []string        `json:"fields"`
	Data   [][]interface{} `json:"data"`
}

// LoadApproaches reads close approaches from a CAD API style JSON document
func LoadApproaches(r io.Reader) ([]*models.CloseApproach, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read close-approach data: %w", err)
	}

	var doc cadDocument
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode close-approach data: %w", err)
	}

	columns, err := approachColumns(doc.Fields)
	if err != nil {
		return nil, err
	}

	approaches := make([]*models.CloseApproach, 0, len(doc.Data))
	for i, row := range doc.Data {
		ca, err := parseApproach(row, columns)
		if err != nil {
			return nil, fmt.Errorf("close-approach row %d: %w", i, err)
		}
		approaches = append(approaches, ca)
	}

	return approaches, nil
}

func approachColumns(fields []string) (map[string]int, error) {
	if len(fields) == 0 {
		return approachFields, nil
	}

	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f] = i
	}

	columns := make(map[string]int, len(approachFields))
	for name := range approachFields {
		idx, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("close-approach data is missing the %q field", name)
		}
		columns[name] = idx
	}
	return columns, nil
}

func parseApproach(row []interface{}, columns map[string]int) (*models.CloseApproach, error) {
	cell := func(name string) (string, error) {
		idx := columns[name]
		if idx >= len(row) {
			return "", fmt.Errorf("missing %q", name)
		}
		return cellString(row[idx]), nil
	}

	des, err := cell("des")
	if err != nil {
		return nil, err
	}
	cd, err := cell("cd")
	if err != nil {
		return nil, err
	}
	dist, err := cell("dist")
	if err != nil {
		return nil, err
	}
	vRel, err := cell("v_rel")
	if err != nil {
		return nil, err
	}

	ts, err := models.ParseApproachTime(cd)
	if err != nil {
		return nil, err
	}
	distance, err := parseMagnitude("distance", dist)
	if err != nil {
		return nil, err
	}
	velocity, err := parseMagnitude("velocity", vRel)
	if err != nil {
		return nil, err
	}

	return &models.CloseApproach{
		Designation: strings.TrimSpace(des),
		Time:        ts,
		Distance:    distance,
		Velocity:    velocity,
	}, nil
}

// parseMagnitude parses a distance or speed, which must be finite and non-negative
func parseMagnitude(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a finite non-negative number", field, raw)
	}
	return v, nil
}

// cellString renders a decoded JSON cell; the API sends numbers as strings but tolerate both
func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// LoadFiles reads the NEO CSV and the close-approach JSON concurrently
func LoadFiles(ctx context.Context, neoPath, cadPath string) ([]*models.NearEarthObject, []*models.CloseApproach, error) {
	var (
		neos       []*models.NearEarthObject
		approaches []*models.CloseApproach
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		neos, err = loadFile(ctx, neoPath, LoadNEOs)
		return err
	})
	g.Go(func() error {
		var err error
		approaches, err = loadFile(ctx, cadPath, LoadApproaches)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	slog.Info("Loaded data files",
		"neo_path", neoPath,
		"neos", len(neos),
		"cad_path", cadPath,
		"approaches", len(approaches),
	)

	return neos, approaches, nil
}

func loadFile[T any](ctx context.Context, path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	records, err := parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return records, nil
}
