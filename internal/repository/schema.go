package repository

import (
	"context"
	"fmt"
	"time"
)

var schemaCyphers = []string{
	`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
	`CREATE CONSTRAINT transaction_id_unique IF NOT EXISTS FOR (t:Transaction) REQUIRE t.id IS UNIQUE`,
}

// EnsureSchema creates the uniqueness constraints the write paths rely on,
// retrying with exponential backoff up to the given number of attempts. The
// system cannot safely accept writes without these guarantees, so callers
// treat exhaustion as fatal to process startup.
func (r *Repository) EnsureSchema(ctx context.Context, attempts int, baseDelay time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = r.applySchema(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("ensure schema after %d attempts: %w", attempts, lastErr)
}

func (r *Repository) applySchema(ctx context.Context) error {
	for _, cypher := range schemaCyphers {
		if _, err := r.client.ExecuteWrite(ctx, cypher, nil); err != nil {
			return fmt.Errorf("apply constraint: %w", err)
		}
	}
	return nil
}
