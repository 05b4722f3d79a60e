package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
)

// LinkAttribute describes one populated attribute eligible for shared-value
// inference. EdgeKind and Property always come from the fixed tables below,
// never from request input, which is what makes the template interpolation
// safe.
type LinkAttribute struct {
	EdgeKind string
	Property string
	Value    string
	List     bool
}

// UserLinkAttributes builds the scan list for a user's populated identifying
// attributes. Absent attributes produce no entry, so nothing is ever inferred
// from "both unset".
func UserLinkAttributes(u domain.User) []LinkAttribute {
	var attrs []LinkAttribute
	if u.Email != "" {
		attrs = append(attrs, LinkAttribute{
			EdgeKind: domain.EdgeSharesEmail,
			Property: "email",
			Value:    u.Email,
		})
	}
	if u.Phone != "" {
		attrs = append(attrs, LinkAttribute{
			EdgeKind: domain.EdgeSharesPhone,
			Property: "phone",
			Value:    u.Phone,
		})
	}
	if u.Address != nil && !u.Address.Empty() {
		attrs = append(attrs, LinkAttribute{
			EdgeKind: domain.EdgeSharesAddress,
			Property: "address",
			Value:    u.Address.Canonical(),
		})
	}
	for _, pm := range u.PaymentMethods {
		if pm.Empty() {
			continue
		}
		attrs = append(attrs, LinkAttribute{
			EdgeKind: domain.EdgeSharesPaymentMethod,
			Property: "paymentMethods",
			Value:    pm.Canonical(),
			List:     true,
		})
	}
	return attrs
}

// TransactionLinkAttributes builds the scan list for a transaction's
// populated metadata fields.
func TransactionLinkAttributes(tx domain.Transaction) []LinkAttribute {
	var attrs []LinkAttribute
	if tx.IPAddress != "" {
		attrs = append(attrs, LinkAttribute{
			EdgeKind: domain.EdgeSharesIP,
			Property: "ipAddress",
			Value:    tx.IPAddress,
		})
	}
	if tx.DeviceID != "" {
		attrs = append(attrs, LinkAttribute{
			EdgeKind: domain.EdgeSharesDevice,
			Property: "deviceId",
			Value:    tx.DeviceID,
		})
	}
	if tx.Location != nil && !tx.Location.Empty() {
		attrs = append(attrs, LinkAttribute{
			EdgeKind: domain.EdgeSharesLocation,
			Property: "location",
			Value:    tx.Location.Canonical(),
		})
	}
	return attrs
}

// LinkUserAttributes creates one directed SHARES_* edge from the written user
// to every other user holding a byte-equal value, one scan per attribute.
// Edges are MERGEd, so re-running an identical upsert only refreshes
// updatedAt. The reverse edge appears only once the matched user is itself
// written.
func (r *Repository) LinkUserAttributes(ctx context.Context, userID string, attrs []LinkAttribute, updatedAt time.Time) error {
	if userID == "" {
		return errors.New("user id is required")
	}

	now := formatTime(updatedAt)
	for _, attr := range attrs {
		template := linkUserScalarCypherTemplate
		if attr.List {
			template = linkUserListCypherTemplate
		}
		cypher := fmt.Sprintf(template, attr.Property, attr.EdgeKind)
		params := map[string]any{
			"id":    userID,
			"value": attr.Value,
			"now":   now,
		}
		if _, err := r.client.ExecuteWrite(ctx, cypher, params); err != nil {
			return fmt.Errorf("link user %s via %s: %w", userID, attr.EdgeKind, err)
		}
	}
	return nil
}

// LinkTransaction derives every edge a transaction implies: participant edges
// for the given sender/receiver, a direct transfer edge when both are given,
// and one shared-metadata scan per populated field.
func (r *Repository) LinkTransaction(ctx context.Context, tx domain.Transaction) error {
	if tx.ID == "" {
		return errors.New("transaction id is required")
	}

	now := formatTime(tx.UpdatedAt)

	if tx.FromUserID != "" {
		params := map[string]any{
			"txId":     tx.ID,
			"fromId":   tx.FromUserID,
			"amount":   tx.Amount,
			"currency": tx.Currency,
			"now":      now,
		}
		if _, err := r.client.ExecuteWrite(ctx, sentMoneyCypher, params); err != nil {
			return fmt.Errorf("link transaction %s sender: %w", tx.ID, err)
		}
	}

	if tx.ToUserID != "" {
		params := map[string]any{
			"txId":     tx.ID,
			"toId":     tx.ToUserID,
			"amount":   tx.Amount,
			"currency": tx.Currency,
			"now":      now,
		}
		if _, err := r.client.ExecuteWrite(ctx, receivedByCypher, params); err != nil {
			return fmt.Errorf("link transaction %s receiver: %w", tx.ID, err)
		}
	}

	if tx.FromUserID != "" && tx.ToUserID != "" {
		// The full tuple participates in the MERGE key, so distinct
		// transactions between the same pair never collapse into one edge.
		params := map[string]any{
			"txId":      tx.ID,
			"fromId":    tx.FromUserID,
			"toId":      tx.ToUserID,
			"amount":    tx.Amount,
			"currency":  tx.Currency,
			"timestamp": formatTime(tx.Timestamp),
			"now":       now,
		}
		if _, err := r.client.ExecuteWrite(ctx, transferredToCypher, params); err != nil {
			return fmt.Errorf("link transaction %s transfer: %w", tx.ID, err)
		}
	}

	for _, attr := range TransactionLinkAttributes(tx) {
		cypher := fmt.Sprintf(linkTransactionCypherTemplate, attr.Property, attr.EdgeKind)
		params := map[string]any{
			"id":    tx.ID,
			"value": attr.Value,
			"now":   now,
		}
		if _, err := r.client.ExecuteWrite(ctx, cypher, params); err != nil {
			return fmt.Errorf("link transaction %s via %s: %w", tx.ID, attr.EdgeKind, err)
		}
	}

	return nil
}

const linkUserScalarCypherTemplate = `
MATCH (u:User {id: $id})
MATCH (o:User)
WHERE o.id <> $id AND o.%s = $value
MERGE (u)-[r:%s {value: $value}]->(o)
SET r.updatedAt = $now
`

const linkUserListCypherTemplate = `
MATCH (u:User {id: $id})
MATCH (o:User)
WHERE o.id <> $id AND $value IN o.%s
MERGE (u)-[r:%s {value: $value}]->(o)
SET r.updatedAt = $now
`

const linkTransactionCypherTemplate = `
MATCH (t:Transaction {id: $id})
MATCH (o:Transaction)
WHERE o.id <> $id AND o.%s = $value
MERGE (t)-[r:%s {value: $value}]->(o)
SET r.updatedAt = $now
`

const sentMoneyCypher = `
MATCH (s:User {id: $fromId})
MATCH (t:Transaction {id: $txId})
MERGE (s)-[r:SENT_MONEY]->(t)
SET r.amount = $amount, r.currency = $currency, r.updatedAt = $now
`

const receivedByCypher = `
MATCH (t:Transaction {id: $txId})
MATCH (u:User {id: $toId})
MERGE (t)-[r:RECEIVED_BY]->(u)
SET r.amount = $amount, r.currency = $currency, r.updatedAt = $now
`

const transferredToCypher = `
MATCH (s:User {id: $fromId})
MATCH (rcv:User {id: $toId})
MERGE (s)-[r:TRANSFERRED_TO {transactionId: $txId, amount: $amount, currency: $currency, timestamp: $timestamp}]->(rcv)
SET r.updatedAt = $now
`
