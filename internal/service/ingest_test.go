package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
)

func TestBulkIngestorIngestsAllUsers(t *testing.T) {
	store := newStubStore()
	ingestor := NewBulkIngestor(newTestService(store), 3)

	users := make([]UserInput, 25)
	for i := range users {
		users[i] = UserInput{
			ID:   fmt.Sprintf("USR-%03d", i),
			Name: fmt.Sprintf("User %d", i),
		}
	}

	require.NoError(t, ingestor.IngestUsers(context.Background(), users))
	assert.Len(t, store.users, 25)
}

func TestBulkIngestorCollectsFailures(t *testing.T) {
	store := newStubStore()
	ingestor := NewBulkIngestor(newTestService(store), 2)

	users := []UserInput{
		{ID: "USR-001", Name: "Valid"},
		{ID: "USR-002"}, // missing name
		{ID: "USR-003", Name: "Also valid"},
	}

	err := ingestor.IngestUsers(context.Background(), users)
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Len(t, taskErr.Errors, 1)
	assert.Len(t, store.users, 2)
}

func TestBulkIngestorIngestsTransactions(t *testing.T) {
	store := newStubStore()
	store.users["USR-001"] = domain.User{ID: "USR-001"}
	store.users["USR-002"] = domain.User{ID: "USR-002"}
	ingestor := NewBulkIngestor(newTestService(store), 4)

	txs := make([]TransactionInput, 10)
	for i := range txs {
		txs[i] = TransactionInput{
			ID:         fmt.Sprintf("TX-%03d", i),
			FromUserID: "USR-001",
			ToUserID:   "USR-002",
			Amount:     float64(i + 1),
		}
	}

	require.NoError(t, ingestor.IngestTransactions(context.Background(), txs))
	assert.Len(t, store.transactions, 10)
	assert.Len(t, store.linkedTxs, 10)
}

func TestBulkIngestorEmptyInput(t *testing.T) {
	ingestor := NewBulkIngestor(newTestService(newStubStore()), 2)
	assert.NoError(t, ingestor.IngestUsers(context.Background(), nil))
}
