package repository

import (
	"github.com/manas-yu/user-transaction-visualizer/internal/graph"
)

// ListUsersOptions defines filters for user listing.
type ListUsersOptions struct {
	Email string
	Phone string
	Limit int
}

// ListTransactionsOptions defines filters for transaction listing.
type ListTransactionsOptions struct {
	Status    string
	Currency  string
	MinAmount float64
	MaxAmount float64
	Limit     int
}

// Repository encapsulates graph persistence operations. All Cypher lives here;
// callers above it never see query text.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
