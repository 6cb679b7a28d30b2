package database

import (
	"database/sql"
	"fmt"
	"math"

	"neo_explorer/internal/models"
)

type NEORepository interface {
	InsertBatch(neos []*models.NearEarthObject) error
	IsTablePopulated() (bool, error)
	LoadAll() ([]*models.NearEarthObject, error)
}

type neoRepository struct {
	db *sql.DB
}

func NewNEORepository(db *sql.DB) NEORepository {
	return &neoRepository{db: db}
}

// InsertBatch inserts one or more NEOs in a single transaction.
// A repeated designation replaces the earlier row, matching last-write-wins on load.
func (r *neoRepository) InsertBatch(neos []*models.NearEarthObject) error {
	if len(neos) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO neos (
		designation, name, diameter, hazardous
	) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, neo := range neos {
		diameter := sql.NullFloat64{Float64: neo.Diameter, Valid: neo.HasDiameter()}
		if _, err := stmt.Exec(neo.Designation, neo.Name, diameter, neo.Hazardous); err != nil {
			return fmt.Errorf("failed to insert neo %s: %w", neo.Designation, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *neoRepository) IsTablePopulated() (bool, error) {
	var ignored int
	err := r.db.QueryRow("SELECT 1 FROM neos LIMIT 1").Scan(&ignored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check neos table: %w", err)
	}
	return true, nil
}

// LoadAll reads every staged NEO in insertion order. Returned records are unlinked.
func (r *neoRepository) LoadAll() ([]*models.NearEarthObject, error) {
	rows, err := r.db.Query(`SELECT designation, name, diameter, hazardous FROM neos ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query neos: %w", err)
	}
	defer rows.Close()

	var neos []*models.NearEarthObject
	for rows.Next() {
		var (
			neo      models.NearEarthObject
			diameter sql.NullFloat64
		)
		if err := rows.Scan(&neo.Designation, &neo.Name, &diameter, &neo.Hazardous); err != nil {
			return nil, fmt.Errorf("failed to scan neo: %w", err)
		}
		neo.Diameter = math.NaN()
		if diameter.Valid {
			neo.Diameter = diameter.Float64
		}
		neos = append(neos, &neo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read neos: %w", err)
	}

	return neos, nil
}
