package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
)

// Role and direction literals emitted by the connection queries.
const (
	RoleSender        = "sender"
	RoleReceiver      = "receiver"
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
)

// FetchUserConnections returns the consolidated relationship view for one
// user: peers linked through shared attributes, the transactions the user
// participates in, and direct transfers in either direction.
func (r *Repository) FetchUserConnections(ctx context.Context, userID string) (domain.UserConnections, error) {
	if userID == "" {
		return domain.UserConnections{}, errors.New("user id is required")
	}

	user, found, err := r.GetUser(ctx, userID)
	if err != nil {
		return domain.UserConnections{}, err
	}
	if !found {
		return domain.UserConnections{}, fmt.Errorf("user %s not found", userID)
	}

	conns := domain.UserConnections{User: user}

	res, err := r.client.ExecuteRead(ctx, connectedUsersCypher, map[string]any{"id": userID})
	if err != nil {
		return domain.UserConnections{}, fmt.Errorf("fetch connected users for %s: %w", userID, err)
	}
	for _, record := range res.Records {
		conns.ConnectedUsers = append(conns.ConnectedUsers, domain.ConnectedUser{
			User:     userFromProps(toPropsMap(record["user"])),
			EdgeKind: toString(record["edgeKind"]),
			Shared:   toString(record["shared"]),
		})
	}

	res, err = r.client.ExecuteRead(ctx, userTransactionsCypher, map[string]any{"id": userID})
	if err != nil {
		return domain.UserConnections{}, fmt.Errorf("fetch transactions for %s: %w", userID, err)
	}
	for _, record := range res.Records {
		conns.Transactions = append(conns.Transactions, domain.InvolvedTransaction{
			Transaction: transactionFromProps(toPropsMap(record["transaction"])),
			Role:        toString(record["role"]),
		})
	}

	res, err = r.client.ExecuteRead(ctx, directTransfersCypher, map[string]any{"id": userID})
	if err != nil {
		return domain.UserConnections{}, fmt.Errorf("fetch transfers for %s: %w", userID, err)
	}
	for _, record := range res.Records {
		transfer := domain.DirectTransfer{
			Counterparty:  userFromProps(toPropsMap(record["counterparty"])),
			Direction:     toString(record["direction"]),
			TransactionID: toString(record["transactionId"]),
			Amount:        toFloat64(record["amount"]),
			Currency:      toString(record["currency"]),
		}
		if ts := toTimePtr(record["timestamp"]); ts != nil {
			transfer.Timestamp = *ts
		}
		conns.DirectTransfers = append(conns.DirectTransfers, transfer)
	}

	return conns, nil
}

// FetchTransactionConnections returns the relationship view for one
// transaction: the participating users and the transactions linked through
// shared metadata.
func (r *Repository) FetchTransactionConnections(ctx context.Context, txID string) (domain.TransactionConnections, error) {
	if txID == "" {
		return domain.TransactionConnections{}, errors.New("transaction id is required")
	}

	tx, found, err := r.GetTransaction(ctx, txID)
	if err != nil {
		return domain.TransactionConnections{}, err
	}
	if !found {
		return domain.TransactionConnections{}, fmt.Errorf("transaction %s not found", txID)
	}

	conns := domain.TransactionConnections{Transaction: tx}

	res, err := r.client.ExecuteRead(ctx, involvedUsersCypher, map[string]any{"id": txID})
	if err != nil {
		return domain.TransactionConnections{}, fmt.Errorf("fetch involved users for %s: %w", txID, err)
	}
	for _, record := range res.Records {
		conns.InvolvedUsers = append(conns.InvolvedUsers, domain.InvolvedUser{
			User: userFromProps(toPropsMap(record["user"])),
			Role: toString(record["role"]),
		})
	}

	res, err = r.client.ExecuteRead(ctx, relatedTransactionsCypher, map[string]any{"id": txID})
	if err != nil {
		return domain.TransactionConnections{}, fmt.Errorf("fetch related transactions for %s: %w", txID, err)
	}
	for _, record := range res.Records {
		conns.RelatedTransactions = append(conns.RelatedTransactions, domain.RelatedTransaction{
			Transaction: transactionFromProps(toPropsMap(record["transaction"])),
			EdgeKind:    toString(record["edgeKind"]),
			Shared:      toString(record["shared"]),
		})
	}

	return conns, nil
}

const connectedUsersCypher = `
MATCH (u:User {id: $id})-[r:SHARES_EMAIL|SHARES_PHONE|SHARES_ADDRESS|SHARES_PAYMENT_METHOD]-(o:User)
RETURN DISTINCT o{.*} AS user, type(r) AS edgeKind, r.value AS shared
`

const userTransactionsCypher = `
MATCH (u:User {id: $id})-[:SENT_MONEY]->(t:Transaction)
RETURN t{.*} AS transaction, "sender" AS role
UNION
MATCH (t:Transaction)-[:RECEIVED_BY]->(u:User {id: $id})
RETURN t{.*} AS transaction, "receiver" AS role
`

const directTransfersCypher = `
MATCH (u:User {id: $id})-[r:TRANSFERRED_TO]->(o:User)
RETURN o{.*} AS counterparty, "outgoing" AS direction,
       r.transactionId AS transactionId, r.amount AS amount,
       r.currency AS currency, r.timestamp AS timestamp
UNION
MATCH (o:User)-[r:TRANSFERRED_TO]->(u:User {id: $id})
RETURN o{.*} AS counterparty, "incoming" AS direction,
       r.transactionId AS transactionId, r.amount AS amount,
       r.currency AS currency, r.timestamp AS timestamp
`

const involvedUsersCypher = `
MATCH (s:User)-[:SENT_MONEY]->(t:Transaction {id: $id})
RETURN s{.*} AS user, "sender" AS role
UNION
MATCH (t:Transaction {id: $id})-[:RECEIVED_BY]->(rcv:User)
RETURN rcv{.*} AS user, "receiver" AS role
`

const relatedTransactionsCypher = `
MATCH (t:Transaction {id: $id})-[r:SHARES_IP|SHARES_DEVICE|SHARES_LOCATION]-(o:Transaction)
RETURN DISTINCT o{.*} AS transaction, type(r) AS edgeKind, r.value AS shared
`
