package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
)

// UpsertTransaction ensures a transaction node exists with the latest
// properties. Participant and metadata edges are derived separately by
// LinkTransaction.
func (r *Repository) UpsertTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if tx.ID == "" {
		return domain.Transaction{}, errors.New("transaction id is required")
	}

	params := map[string]any{
		"id":    tx.ID,
		"props": transactionProperties(tx),
		"now":   formatTime(tx.UpdatedAt),
	}

	res, err := r.client.ExecuteWrite(ctx, upsertTransactionCypher, params)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("upsert transaction %s: %w", tx.ID, err)
	}
	record, ok := res.First()
	if !ok {
		return tx, nil
	}
	return transactionFromProps(toPropsMap(record["transaction"])), nil
}

// GetTransaction fetches a single transaction node by id.
func (r *Repository) GetTransaction(ctx context.Context, id string) (domain.Transaction, bool, error) {
	res, err := r.client.ExecuteRead(ctx, getTransactionCypher, map[string]any{"id": id})
	if err != nil {
		return domain.Transaction{}, false, fmt.Errorf("get transaction %s: %w", id, err)
	}
	record, ok := res.First()
	if !ok {
		return domain.Transaction{}, false, nil
	}
	return transactionFromProps(toPropsMap(record["transaction"])), true, nil
}

// TransactionExists reports whether a transaction node with the given id is present.
func (r *Repository) TransactionExists(ctx context.Context, id string) (bool, error) {
	res, err := r.client.ExecuteRead(ctx, transactionExistsCypher, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("check transaction %s: %w", id, err)
	}
	return !res.Empty(), nil
}

// DeleteTransaction removes a transaction node and detaches its edges.
func (r *Repository) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	res, err := r.client.ExecuteWrite(ctx, deleteTransactionCypher, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("delete transaction %s: %w", id, err)
	}
	record, ok := res.First()
	if !ok {
		return false, nil
	}
	return toInt(record["deleted"]) > 0, nil
}

// ListTransactions returns transactions matching the provided filters,
// newest first.
func (r *Repository) ListTransactions(ctx context.Context, opts ListTransactionsOptions) ([]domain.Transaction, error) {
	params := map[string]any{
		"status":    opts.Status,
		"currency":  opts.Currency,
		"minAmount": opts.MinAmount,
		"maxAmount": opts.MaxAmount,
		"limit":     clampLimit(opts.Limit),
	}

	res, err := r.client.ExecuteRead(ctx, listTransactionsCypher, params)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(res.Records))
	for _, record := range res.Records {
		txs = append(txs, transactionFromProps(toPropsMap(record["transaction"])))
	}
	return txs, nil
}

func transactionProperties(tx domain.Transaction) map[string]any {
	props := map[string]any{
		"amount":    tx.Amount,
		"currency":  tx.Currency,
		"status":    tx.Status,
		"timestamp": formatTime(tx.Timestamp),
	}
	if !tx.CreatedAt.IsZero() {
		props["createdAt"] = formatTime(tx.CreatedAt)
	}
	if tx.FromUserID != "" {
		props["fromUserId"] = tx.FromUserID
	}
	if tx.ToUserID != "" {
		props["toUserId"] = tx.ToUserID
	}
	if tx.IPAddress != "" {
		props["ipAddress"] = tx.IPAddress
	}
	if tx.DeviceID != "" {
		props["deviceId"] = tx.DeviceID
	}
	if tx.Location != nil && !tx.Location.Empty() {
		props["location"] = tx.Location.Canonical()
	}
	if tx.Description != "" {
		props["description"] = tx.Description
	}
	return props
}

const upsertTransactionCypher = `
MERGE (t:Transaction {id: $id})
ON CREATE SET t.createdAt = $now
SET t += $props, t.updatedAt = $now
RETURN t{.*} AS transaction
`

const getTransactionCypher = `
MATCH (t:Transaction {id: $id})
RETURN t{.*} AS transaction
`

const transactionExistsCypher = `
MATCH (t:Transaction {id: $id})
RETURN t.id AS id
`

const deleteTransactionCypher = `
MATCH (t:Transaction {id: $id})
DETACH DELETE t
RETURN count(t) AS deleted
`

const listTransactionsCypher = `
MATCH (t:Transaction)
WHERE ($status = "" OR t.status = $status)
  AND ($currency = "" OR t.currency = $currency)
  AND ($minAmount <= 0 OR t.amount >= $minAmount)
  AND ($maxAmount <= 0 OR t.amount <= $maxAmount)
RETURN t{.*} AS transaction
ORDER BY t.timestamp DESC
LIMIT $limit
`
