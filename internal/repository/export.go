package repository

import (
	"context"
	"fmt"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
)

// AllUsers returns every user node, for export and graph assembly.
func (r *Repository) AllUsers(ctx context.Context) ([]domain.User, error) {
	res, err := r.client.ExecuteRead(ctx, allUsersCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("load all users: %w", err)
	}
	users := make([]domain.User, 0, len(res.Records))
	for _, record := range res.Records {
		users = append(users, userFromProps(toPropsMap(record["user"])))
	}
	return users, nil
}

// AllTransactions returns every transaction node, newest first.
func (r *Repository) AllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	res, err := r.client.ExecuteRead(ctx, allTransactionsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("load all transactions: %w", err)
	}
	txs := make([]domain.Transaction, 0, len(res.Records))
	for _, record := range res.Records {
		txs = append(txs, transactionFromProps(toPropsMap(record["transaction"])))
	}
	return txs, nil
}

const allUsersCypher = `
MATCH (u:User)
RETURN u{.*} AS user
ORDER BY u.id
`

const allTransactionsCypher = `
MATCH (t:Transaction)
RETURN t{.*} AS transaction
ORDER BY t.timestamp DESC
`
