package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"neo_explorer/internal/database"
	"neo_explorer/internal/models"

	"golang.org/x/sync/errgroup"
)

// ImportStats reports how many records were staged
type ImportStats struct {
	NEOs       int
	Approaches int
}

// Import stages parsed records into the SQLite store, streaming each collection
// through its own batch collector.
//
// Leftovers of an interrupted import are cleared first. On failure every staged
// row is removed again, so the store is either complete or empty.
func Import(ctx context.Context, db *database.DB, neos []*models.NearEarthObject, approaches []*models.CloseApproach, batchSize int, flushInterval time.Duration) (ImportStats, error) {
	var stats ImportStats

	if err := db.Reset(); err != nil {
		return stats, fmt.Errorf("failed to clear staging store: %w", err)
	}

	if err := stage(ctx, db, neos, approaches, batchSize, flushInterval, &stats); err != nil {
		if resetErr := db.Reset(); resetErr != nil {
			slog.Error("Failed to roll back partial import", "error", resetErr)
			return stats, errors.Join(err, resetErr)
		}
		slog.Warn("Import failed, staged rows removed", "error", err)
		return stats, err
	}

	slog.Info("Import complete", "neos", stats.NEOs, "approaches", stats.Approaches)
	return stats, nil
}

// stage runs both collectors and writes the completion marker once they have drained
func stage(ctx context.Context, db *database.DB, neos []*models.NearEarthObject, approaches []*models.CloseApproach, batchSize int, flushInterval time.Duration, stats *ImportStats) error {
	g, gctx := errgroup.WithContext(ctx)

	neoChan := make(chan *models.NearEarthObject, batchSize)
	approachChan := make(chan *models.CloseApproach, batchSize)

	g.Go(func() error { return produce(gctx, neos, neoChan) })
	g.Go(func() error { return produce(gctx, approaches, approachChan) })

	g.Go(func() error {
		collector := NewBatchCollectorWithConfig[*models.NearEarthObject]("neos", db.NEORepository(), neoChan, batchSize, flushInterval)
		n, err := collector.Start(gctx)
		stats.NEOs = n
		return err
	})
	g.Go(func() error {
		collector := NewBatchCollectorWithConfig[*models.CloseApproach]("approaches", db.ApproachRepository(), approachChan, batchSize, flushInterval)
		n, err := collector.Start(gctx)
		stats.Approaches = n
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	return db.MarkComplete(stats.NEOs, stats.Approaches)
}

// produce sends every record on ch and closes it
func produce[T any](ctx context.Context, records []T, ch chan<- T) error {
	defer close(ch)
	for _, r := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- r:
		}
	}
	return nil
}
