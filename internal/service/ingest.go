package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// TaskError accumulates the individual failures of a bulk ingestion run.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor loads large user and transaction datasets through the service
// with a bounded worker pool, so link inference runs on every record.
type BulkIngestor struct {
	service *Service
	workers int
}

// NewBulkIngestor creates a BulkIngestor with the given worker count.
func NewBulkIngestor(service *Service, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		service: service,
		workers: workers,
	}
}

// IngestUsers upserts the given users concurrently. Individual failures are
// collected into a TaskError; context cancellation aborts the run.
func (bi *BulkIngestor) IngestUsers(ctx context.Context, users []UserInput) error {
	return bi.run(ctx, len(users), func(idx int) error {
		if _, err := bi.service.UpsertUser(ctx, users[idx]); err != nil {
			return fmt.Errorf("user %s: %w", users[idx].ID, err)
		}
		return nil
	})
}

// IngestTransactions upserts the given transactions concurrently.
func (bi *BulkIngestor) IngestTransactions(ctx context.Context, txs []TransactionInput) error {
	return bi.run(ctx, len(txs), func(idx int) error {
		if _, err := bi.service.UpsertTransaction(ctx, txs[idx]); err != nil {
			return fmt.Errorf("transaction %s: %w", txs[idx].ID, err)
		}
		return nil
	})
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
