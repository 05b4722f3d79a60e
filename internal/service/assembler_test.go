package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
	"github.com/manas-yu/user-transaction-visualizer/internal/repository"
)

func TestGraphViewDeduplicatesUndirectedEdges(t *testing.T) {
	store := newStubStore()
	jane := domain.User{ID: "USR-001", Name: "Jane"}
	john := domain.User{ID: "USR-002", Name: "John"}
	store.users[jane.ID] = jane
	store.users[john.ID] = john

	// Both endpoints report the same shared-email relationship.
	store.userConnsFn = func(_ context.Context, userID string) (domain.UserConnections, error) {
		other := john
		if userID == john.ID {
			other = jane
		}
		return domain.UserConnections{
			User: store.users[userID],
			ConnectedUsers: []domain.ConnectedUser{
				{User: other, EdgeKind: domain.EdgeSharesEmail, Shared: "jane@example.com"},
			},
		}, nil
	}
	svc := newTestService(store)

	view, err := svc.GraphView(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, view.NodeCount)
	assert.Equal(t, 1, view.EdgeCount)
	assert.Equal(t, domain.EdgeSharesEmail, view.Edges[0].Kind)
	assert.Zero(t, view.DroppedEdges)
	assert.Zero(t, view.FailedFetches)
}

func TestGraphViewKeepsParallelTransfers(t *testing.T) {
	store := newStubStore()
	jane := domain.User{ID: "USR-001", Name: "Jane"}
	john := domain.User{ID: "USR-002", Name: "John"}
	store.users[jane.ID] = jane
	store.users[john.ID] = john

	store.userConnsFn = func(_ context.Context, userID string) (domain.UserConnections, error) {
		if userID != jane.ID {
			return domain.UserConnections{User: store.users[userID]}, nil
		}
		return domain.UserConnections{
			User: jane,
			DirectTransfers: []domain.DirectTransfer{
				{Counterparty: john, Direction: repository.DirectionOutgoing, TransactionID: "TX-1", Amount: 10, Currency: "USD"},
				{Counterparty: john, Direction: repository.DirectionOutgoing, TransactionID: "TX-2", Amount: 20, Currency: "USD"},
			},
		}, nil
	}
	svc := newTestService(store)

	view, err := svc.GraphView(context.Background())
	require.NoError(t, err)

	transfers := 0
	for _, edge := range view.Edges {
		if edge.Kind == domain.EdgeTransferredTo {
			transfers++
		}
	}
	assert.Equal(t, 2, transfers, "distinct transactions between the same pair stay distinct edges")
}

func TestGraphViewMergesParticipantEdgesFromBothSides(t *testing.T) {
	store := newStubStore()
	jane := domain.User{ID: "USR-001", Name: "Jane"}
	tx := domain.Transaction{ID: "TX-001", FromUserID: jane.ID, Amount: 50, Currency: "USD"}
	store.users[jane.ID] = jane
	store.transactions[tx.ID] = tx

	store.userConnsFn = func(context.Context, string) (domain.UserConnections, error) {
		return domain.UserConnections{
			User: jane,
			Transactions: []domain.InvolvedTransaction{
				{Transaction: tx, Role: repository.RoleSender},
			},
		}, nil
	}
	store.txConnsFn = func(context.Context, string) (domain.TransactionConnections, error) {
		return domain.TransactionConnections{
			Transaction: tx,
			InvolvedUsers: []domain.InvolvedUser{
				{User: jane, Role: repository.RoleSender},
			},
		}, nil
	}
	svc := newTestService(store)

	view, err := svc.GraphView(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, view.NodeCount)
	require.Equal(t, 1, view.EdgeCount)
	edge := view.Edges[0]
	assert.Equal(t, domain.EdgeSentMoney, edge.Kind)
	assert.Equal(t, jane.ID, edge.Source)
	assert.Equal(t, tx.ID, edge.Target)
}

func TestGraphViewToleratesFetchFailures(t *testing.T) {
	store := newStubStore()
	jane := domain.User{ID: "USR-001", Name: "Jane"}
	john := domain.User{ID: "USR-002", Name: "John"}
	store.users[jane.ID] = jane
	store.users[john.ID] = john

	store.userConnsFn = func(_ context.Context, userID string) (domain.UserConnections, error) {
		if userID == john.ID {
			return domain.UserConnections{}, errors.New("session expired")
		}
		return domain.UserConnections{User: store.users[userID]}, nil
	}
	svc := newTestService(store)

	view, err := svc.GraphView(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, view.NodeCount)
	assert.Equal(t, 1, view.FailedFetches)
}

func TestGraphViewDropsDanglingEdges(t *testing.T) {
	store := newStubStore()
	jane := domain.User{ID: "USR-001", Name: "Jane"}
	store.users[jane.ID] = jane

	// The neighbour comes back with no usable identity.
	store.userConnsFn = func(context.Context, string) (domain.UserConnections, error) {
		return domain.UserConnections{
			User: jane,
			ConnectedUsers: []domain.ConnectedUser{
				{User: domain.User{}, EdgeKind: domain.EdgeSharesPhone, Shared: "+15550000000"},
			},
		}, nil
	}
	svc := newTestService(store)

	view, err := svc.GraphView(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, view.NodeCount)
	assert.Zero(t, view.EdgeCount)
	assert.Equal(t, 1, view.DroppedEdges)
}

func TestUserGraphCentersOnUser(t *testing.T) {
	store := newStubStore()
	jane := domain.User{ID: "USR-001", Name: "Jane"}
	john := domain.User{ID: "USR-002", Name: "John"}
	tx := domain.Transaction{ID: "TX-001", Amount: 75, Currency: "EUR"}
	store.users[jane.ID] = jane

	store.userConnsFn = func(context.Context, string) (domain.UserConnections, error) {
		return domain.UserConnections{
			User: jane,
			ConnectedUsers: []domain.ConnectedUser{
				{User: john, EdgeKind: domain.EdgeSharesAddress, Shared: `{"city":"Austin"}`},
			},
			Transactions: []domain.InvolvedTransaction{
				{Transaction: tx, Role: repository.RoleReceiver},
			},
		}, nil
	}
	svc := newTestService(store)

	view, err := svc.UserGraph(context.Background(), jane.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.NodeCount)
	assert.Equal(t, 2, view.EdgeCount)

	kinds := map[string]bool{}
	for _, edge := range view.Edges {
		kinds[edge.Kind] = true
	}
	assert.True(t, kinds[domain.EdgeSharesAddress])
	assert.True(t, kinds[domain.EdgeReceivedBy])
}

func TestUserGraphUnknownUser(t *testing.T) {
	svc := newTestService(newStubStore())

	_, err := svc.UserGraph(context.Background(), "missing")
	require.Error(t, err)
}

func TestExportCountsMatch(t *testing.T) {
	store := newStubStore()
	jane := domain.User{ID: "USR-001", Name: "Jane"}
	john := domain.User{ID: "USR-002", Name: "John"}
	store.users[jane.ID] = jane
	store.users[john.ID] = john
	store.transactions["TX-001"] = domain.Transaction{ID: "TX-001", Amount: 5, Currency: "USD"}

	store.userConnsFn = func(_ context.Context, userID string) (domain.UserConnections, error) {
		if userID != jane.ID {
			return domain.UserConnections{User: store.users[userID]}, nil
		}
		return domain.UserConnections{
			User: jane,
			ConnectedUsers: []domain.ConnectedUser{
				{User: john, EdgeKind: domain.EdgeSharesEmail, Shared: "jane@example.com"},
			},
		}, nil
	}
	svc := newTestService(store)

	snapshot, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.UserCount)
	assert.Equal(t, 1, snapshot.TransactionCount)
	assert.Equal(t, len(snapshot.Relationships), snapshot.RelationshipCount)
	assert.Equal(t, 1, snapshot.RelationshipCount)
	assert.False(t, snapshot.ExportedAt.IsZero())
}
