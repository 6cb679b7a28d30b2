package database

import (
	"database/sql"
	"fmt"
	"time"

	"neo_explorer/internal/models"
)

type ApproachRepository interface {
	InsertBatch(approaches []*models.CloseApproach) error
	IsTablePopulated() (bool, error)
	LoadAll() ([]*models.CloseApproach, error)
}

type approachRepository struct {
	db *sql.DB
}

func NewApproachRepository(db *sql.DB) ApproachRepository {
	return &approachRepository{db: db}
}

// InsertBatch inserts one or more close approaches in a single transaction
func (r *approachRepository) InsertBatch(approaches []*models.CloseApproach) error {
	if len(approaches) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO approaches (
		designation, time, distance, velocity
	) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, ca := range approaches {
		if _, err := stmt.Exec(
			ca.Designation,
			ca.Time.UTC(),
			ca.Distance,
			ca.Velocity,
		); err != nil {
			return fmt.Errorf("failed to insert approach: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *approachRepository) IsTablePopulated() (bool, error) {
	var ignored int
	err := r.db.QueryRow("SELECT 1 FROM approaches LIMIT 1").Scan(&ignored)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check approaches table: %w", err)
	}
	return true, nil
}

// LoadAll reads every staged approach in load order. Returned records are unlinked.
func (r *approachRepository) LoadAll() ([]*models.CloseApproach, error) {
	rows, err := r.db.Query(`SELECT designation, time, distance, velocity FROM approaches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query approaches: %w", err)
	}
	defer rows.Close()

	var approaches []*models.CloseApproach
	for rows.Next() {
		var (
			ca models.CloseApproach
			ts time.Time
		)
		if err := rows.Scan(&ca.Designation, &ts, &ca.Distance, &ca.Velocity); err != nil {
			return nil, fmt.Errorf("failed to scan approach: %w", err)
		}
		ca.Time = ts.UTC()
		approaches = append(approaches, &ca)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read approaches: %w", err)
	}

	return approaches, nil
}
