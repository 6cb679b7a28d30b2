package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// BatchInserter stores a batch of records in one transaction
type BatchInserter[T any] interface {
	InsertBatch(records []T) error
}

// BatchCollector collects records from a channel and commits them to a repository in batches
type BatchCollector[T any] struct {
	name          string
	repo          BatchInserter[T]
	recordChan    <-chan T
	batchSize     int           // maximum number of records in a batch before committing to database
	flushInterval time.Duration // time to flush batch even if not full
}

// Default batch size is 100 records and flush interval is 1 second
func NewBatchCollector[T any](name string, repo BatchInserter[T], recordChan <-chan T) *BatchCollector[T] {
	return &BatchCollector[T]{
		name:          name,
		repo:          repo,
		recordChan:    recordChan,
		batchSize:     100,
		flushInterval: 1 * time.Second,
	}
}

// NewBatchCollectorWithConfig creates a collector with custom batch settings
func NewBatchCollectorWithConfig[T any](name string, repo BatchInserter[T], recordChan <-chan T, batchSize int, flushInterval time.Duration) *BatchCollector[T] {
	c := NewBatchCollector(name, repo, recordChan)
	if batchSize > 0 {
		c.batchSize = batchSize
	}
	if flushInterval > 0 {
		c.flushInterval = flushInterval
	}
	return c
}

// Start collects records until the channel is closed or the context is cancelled.
// Batches are flushed when they reach batchSize or flushInterval has passed since the last commit.
// The first failed insert stops the collector and is returned.
func (c *BatchCollector[T]) Start(ctx context.Context) (int, error) {
	batch := make([]T, 0, c.batchSize)
	lastFlushTime := time.Now()
	total := 0

	flushBatch := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.repo.InsertBatch(batch); err != nil {
			return fmt.Errorf("failed to insert %s batch of %d: %w", c.name, len(batch), err)
		}
		total += len(batch)
		lastFlushTime = time.Now()
		slog.Debug("Inserted batch", "collector", c.name, "batch_size", len(batch), "total", total)
		batch = batch[:0] // Reset slice but keep capacity
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case record, ok := <-c.recordChan:
			if !ok {
				if err := flushBatch(); err != nil {
					return total, err
				}
				return total, nil
			}

			batch = append(batch, record)

			if len(batch) >= c.batchSize || time.Since(lastFlushTime) >= c.flushInterval {
				if err := flushBatch(); err != nil {
					return total, err
				}
			}
		}
	}
}
