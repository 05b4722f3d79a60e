package repository

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
	"github.com/manas-yu/user-transaction-visualizer/internal/graph"
)

func TestRepository_UpsertUser(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := domain.User{
		ID:    "USR-001",
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: "+15551234567",
		Address: &domain.Address{
			Street:  "123 Market St",
			City:    "San Francisco",
			Country: "US",
		},
		PaymentMethods: []domain.PaymentMethod{
			{Type: "card", Last4: "1111", Provider: "visa"},
		},
		UpdatedAt: now,
	}

	if _, err := repo.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}

	call := calls[0]
	if call.Query != upsertUserCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", upsertUserCypher, call.Query)
	}
	if call.Params["id"] != user.ID {
		t.Errorf("expected id %s, got %v", user.ID, call.Params["id"])
	}
	if call.Params["now"] != now.Format(time.RFC3339Nano) {
		t.Errorf("expected now %s, got %v", now.Format(time.RFC3339Nano), call.Params["now"])
	}

	props, ok := call.Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", call.Params["props"])
	}
	if props["name"] != user.Name {
		t.Errorf("name mismatch: want %s got %v", user.Name, props["name"])
	}
	if props["email"] != user.Email {
		t.Errorf("email mismatch: want %s got %v", user.Email, props["email"])
	}
	addr, _ := props["address"].(string)
	if !strings.Contains(addr, "123 Market St") {
		t.Errorf("address not serialized: %v", props["address"])
	}
	methods, _ := props["paymentMethods"].([]string)
	if len(methods) != 1 || !strings.Contains(methods[0], "visa") {
		t.Errorf("paymentMethods not serialized: %v", props["paymentMethods"])
	}
}

func TestRepository_UpsertUserOmitsEmptyAttributes(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	user := domain.User{ID: "USR-002", Name: "Blank Bob", UpdatedAt: time.Now()}
	if _, err := repo.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	props := mem.WriteCalls()[0].Params["props"].(map[string]any)
	for _, key := range []string{"email", "phone", "address", "paymentMethods"} {
		if _, present := props[key]; present {
			t.Errorf("expected %s to be omitted for empty value", key)
		}
	}
}

func TestRepository_UpsertUserIdempotent(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := domain.User{
		ID:        "USR-001",
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		UpdatedAt: now,
	}
	attrs := UserLinkAttributes(user)

	for run := 0; run < 2; run++ {
		if _, err := repo.UpsertUser(context.Background(), user); err != nil {
			t.Fatalf("run %d: upsert failed: %v", run, err)
		}
		if err := repo.LinkUserAttributes(context.Background(), user.ID, attrs, now); err != nil {
			t.Fatalf("run %d: link failed: %v", run, err)
		}
	}

	calls := mem.WriteCalls()
	if len(calls) != 4 {
		t.Fatalf("expected 4 write queries, got %d", len(calls))
	}

	// The second run must issue byte-identical MERGE statements and params;
	// MERGE then guarantees the node and edge set is unchanged.
	for i := 0; i < 2; i++ {
		first, second := calls[i], calls[i+2]
		if first.Query != second.Query {
			t.Errorf("query %d differs between runs:\n%s\nvs\n%s", i, first.Query, second.Query)
		}
		if !reflect.DeepEqual(first.Params, second.Params) {
			t.Errorf("params %d differ between runs: %v vs %v", i, first.Params, second.Params)
		}
	}
	if !strings.Contains(calls[1].Query, "MERGE (u)-[r:SHARES_EMAIL") {
		t.Errorf("expected SHARES_EMAIL merge, got:\n%s", calls[1].Query)
	}
}

func TestRepository_UpsertUserRequiresID(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if _, err := repo.UpsertUser(context.Background(), domain.User{Name: "No ID"}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestRepository_GetUser(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"user": map[string]any{
			"id":    "USR-001",
			"name":  "Jane Doe",
			"email": "jane@example.com",
		}},
	}})
	repo := New(mem)

	user, found, err := repo.GetUser(context.Background(), "USR-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !found {
		t.Fatal("expected user to be found")
	}
	if user.Name != "Jane Doe" {
		t.Errorf("expected name Jane Doe, got %s", user.Name)
	}
}

func TestRepository_GetUserNotFound(t *testing.T) {
	repo := New(graph.NewMemoryClient())

	_, found, err := repo.GetUser(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found {
		t.Fatal("expected user to be absent")
	}
}

func TestRepository_DeleteUser(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"deleted": int64(1)}}})
	repo := New(mem)

	deleted, err := repo.DeleteUser(context.Background(), "USR-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !deleted {
		t.Fatal("expected node to be deleted")
	}
	if q := mem.WriteCalls()[0].Query; !strings.Contains(q, "DETACH DELETE") {
		t.Errorf("expected detach delete, got %s", q)
	}
}

func TestRepository_ListUsersClampsLimit(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	if _, err := repo.ListUsers(context.Background(), ListUsersOptions{Limit: 10000}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if limit := mem.ReadCalls()[0].Params["limit"]; limit != maxListLimit {
		t.Errorf("expected limit clamped to %d, got %v", maxListLimit, limit)
	}

	if _, err := repo.ListUsers(context.Background(), ListUsersOptions{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if limit := mem.ReadCalls()[1].Params["limit"]; limit != defaultListLimit {
		t.Errorf("expected default limit %d, got %v", defaultListLimit, limit)
	}
}

func TestRepository_LinkUserAttributes(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	user := domain.User{
		ID:    "USR-001",
		Name:  "Jane Doe",
		Email: "jane@example.com",
		PaymentMethods: []domain.PaymentMethod{
			{Type: "card", Last4: "1111", Provider: "visa"},
		},
	}

	attrs := UserLinkAttributes(user)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 link attributes, got %d", len(attrs))
	}

	now := time.Now().UTC()
	if err := repo.LinkUserAttributes(context.Background(), user.ID, attrs, now); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 write queries, got %d", len(calls))
	}

	emailQuery := calls[0].Query
	if !strings.Contains(emailQuery, "o.email = $value") {
		t.Errorf("expected email scan, got %s", emailQuery)
	}
	if !strings.Contains(emailQuery, "MERGE (u)-[r:SHARES_EMAIL {value: $value}]->(o)") {
		t.Errorf("expected directed SHARES_EMAIL merge from the written user, got %s", emailQuery)
	}
	if calls[0].Params["value"] != "jane@example.com" {
		t.Errorf("unexpected email value %v", calls[0].Params["value"])
	}

	pmQuery := calls[1].Query
	if !strings.Contains(pmQuery, "$value IN o.paymentMethods") {
		t.Errorf("expected list membership scan for payment methods, got %s", pmQuery)
	}
	if !strings.Contains(pmQuery, "SHARES_PAYMENT_METHOD") {
		t.Errorf("expected SHARES_PAYMENT_METHOD kind, got %s", pmQuery)
	}
}

func TestRepository_LinkUserAttributesSkipsAbsent(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	attrs := UserLinkAttributes(domain.User{ID: "USR-003", Name: "Minimal"})
	if len(attrs) != 0 {
		t.Fatalf("expected no link attributes, got %d", len(attrs))
	}

	if err := repo.LinkUserAttributes(context.Background(), "USR-003", attrs, time.Now()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls := mem.WriteCalls(); len(calls) != 0 {
		t.Fatalf("expected no write queries for absent attributes, got %d", len(calls))
	}
}

func TestRepository_TransactionExists(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{{"id": "TX-001"}}})
	repo := New(mem)

	exists, err := repo.TransactionExists(context.Background(), "TX-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !exists {
		t.Fatal("expected transaction to exist")
	}

	missing, err := repo.TransactionExists(context.Background(), "TX-404")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if missing {
		t.Fatal("expected transaction to be absent")
	}

	calls := mem.ReadCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 read queries, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Query, "MATCH (t:Transaction {id: $id})") {
		t.Errorf("unexpected query:\n%s", calls[0].Query)
	}
}

func TestRepository_LinkTransaction(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	tx := domain.Transaction{
		ID:         "TX-001",
		FromUserID: "USR-001",
		ToUserID:   "USR-002",
		Amount:     250,
		Currency:   "USD",
		Status:     "completed",
		Timestamp:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		IPAddress:  "10.0.0.1",
		DeviceID:   "device-42",
		UpdatedAt:  time.Date(2026, 3, 1, 10, 0, 1, 0, time.UTC),
	}

	if err := repo.LinkTransaction(context.Background(), tx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	// sender, receiver, transfer, then one scan per metadata attribute
	if len(calls) != 5 {
		t.Fatalf("expected 5 write queries, got %d", len(calls))
	}

	if calls[0].Query != sentMoneyCypher {
		t.Errorf("expected SENT_MONEY first, got %s", calls[0].Query)
	}
	if calls[1].Query != receivedByCypher {
		t.Errorf("expected RECEIVED_BY second, got %s", calls[1].Query)
	}
	transfer := calls[2]
	if !strings.Contains(transfer.Query, "TRANSFERRED_TO {transactionId: $txId, amount: $amount, currency: $currency, timestamp: $timestamp}") {
		t.Errorf("expected full tuple in transfer merge key, got %s", transfer.Query)
	}
	if transfer.Params["txId"] != tx.ID {
		t.Errorf("expected txId %s, got %v", tx.ID, transfer.Params["txId"])
	}
	if !strings.Contains(calls[3].Query, "o.ipAddress = $value") {
		t.Errorf("expected ipAddress scan, got %s", calls[3].Query)
	}
	if !strings.Contains(calls[4].Query, "o.deviceId = $value") {
		t.Errorf("expected deviceId scan, got %s", calls[4].Query)
	}
}

func TestRepository_LinkTransactionOneSidedSkipsTransfer(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	tx := domain.Transaction{
		ID:         "TX-002",
		FromUserID: "USR-001",
		Amount:     40,
		Currency:   "USD",
	}
	if err := repo.LinkTransaction(context.Background(), tx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, call := range mem.WriteCalls() {
		if strings.Contains(call.Query, "TRANSFERRED_TO") {
			t.Fatal("expected no transfer edge for a one-sided transaction")
		}
		if strings.Contains(call.Query, "RECEIVED_BY") {
			t.Fatal("expected no receiver edge without a receiver")
		}
	}
}

func TestRepository_ShortestPathSameUser(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	path, err := repo.ShortestPath(context.Background(), "USR-001", "USR-001", 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !path.Exists || path.Length != 0 || len(path.Steps) != 0 {
		t.Errorf("expected trivial existing path, got %+v", path)
	}
	if calls := mem.ReadCalls(); len(calls) != 0 {
		t.Fatalf("expected no query for identical endpoints, got %d", len(calls))
	}
}

func TestRepository_ShortestPath(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{{
		"nodes": []any{
			map[string]any{"id": "USR-001", "kind": "User"},
			map[string]any{"id": "USR-002", "kind": "User"},
		},
		"edges": []any{
			map[string]any{"kind": "SHARES_EMAIL", "props": map[string]any{"value": "jane@example.com"}},
		},
		"hops": int64(1),
	}}})
	repo := New(mem)

	path, err := repo.ShortestPath(context.Background(), "USR-001", "USR-002", 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !path.Exists {
		t.Fatal("expected path to exist")
	}
	if path.Length != 1 {
		t.Errorf("expected length 1, got %d", path.Length)
	}
	if len(path.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(path.Steps))
	}
	step := path.Steps[0]
	if step.From.ID != "USR-001" || step.To.ID != "USR-002" || step.Edge.Kind != "SHARES_EMAIL" {
		t.Errorf("unexpected step %+v", step)
	}

	query := mem.ReadCalls()[0].Query
	if !strings.Contains(query, "shortestPath((source)-[*..3]-(target))") {
		t.Errorf("expected bounded undirected pattern, got %s", query)
	}
}

func TestRepository_ShortestPathNotFound(t *testing.T) {
	repo := New(graph.NewMemoryClient())

	path, err := repo.ShortestPath(context.Background(), "USR-001", "USR-009", 4)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if path.Exists {
		t.Fatal("expected no path within the bound")
	}
}

func TestRepository_TransactionClusters(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"value": "10.0.0.1", "size": int64(3), "transactionIds": []any{"TX-1", "TX-2", "TX-3"}},
		{"value": "10.0.0.2", "size": int64(2), "transactionIds": []any{"TX-4", "TX-5"}},
	}})
	repo := New(mem)

	clusters, err := repo.TransactionClusters(context.Background(), "ipAddress", 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if clusters[0].Size != 3 || len(clusters[0].TransactionIDs) != 3 {
		t.Errorf("unexpected first cluster %+v", clusters[0])
	}

	query := mem.ReadCalls()[0].Query
	if !strings.Contains(query, "t.ipAddress IS NOT NULL") {
		t.Errorf("expected null guard on clustered property, got %s", query)
	}
	if mem.ReadCalls()[0].Params["minSize"] != 2 {
		t.Errorf("expected minSize 2, got %v", mem.ReadCalls()[0].Params["minSize"])
	}
}

func TestRepository_TransactionClustersRejectsUnknownAttribute(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if _, err := repo.TransactionClusters(context.Background(), "description", 2); err == nil {
		t.Fatal("expected rejection of non-whitelisted attribute")
	}
}

func TestRepository_EnsureSchema(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	if err := repo.EnsureSchema(context.Background(), 3, time.Millisecond); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != len(schemaCyphers) {
		t.Fatalf("expected %d schema statements, got %d", len(schemaCyphers), len(calls))
	}
	for _, call := range calls {
		if !strings.Contains(call.Query, "IF NOT EXISTS") {
			t.Errorf("expected idempotent constraint, got %s", call.Query)
		}
	}
}

func TestRepository_EnsureSchemaExhaustsRetries(t *testing.T) {
	mem := graph.NewMemoryClient().WithError(errors.New("refused"))
	repo := New(mem)

	err := repo.EnsureSchema(context.Background(), 2, time.Millisecond)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !strings.Contains(err.Error(), "2 attempts") {
		t.Errorf("expected attempt count in error, got %v", err)
	}
}

func TestRepository_FetchUserConnections(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.Stub("MATCH (u:User {id: $id})\nRETURN", graph.Result{Records: []graph.Record{
		{"user": map[string]any{"id": "USR-001", "name": "Jane Doe"}},
	}})
	mem.Stub("SHARES_EMAIL|SHARES_PHONE|SHARES_ADDRESS|SHARES_PAYMENT_METHOD", graph.Result{Records: []graph.Record{
		{"user": map[string]any{"id": "USR-002", "name": "John Smith"}, "edgeKind": "SHARES_EMAIL", "shared": "jane@example.com"},
	}})
	mem.Stub(`"sender" AS role`, graph.Result{Records: []graph.Record{
		{"transaction": map[string]any{"id": "TX-001", "amount": 250.0, "currency": "USD"}, "role": "sender"},
	}})
	mem.Stub("TRANSFERRED_TO", graph.Result{Records: []graph.Record{
		{"counterparty": map[string]any{"id": "USR-002", "name": "John Smith"},
			"direction": "outgoing", "transactionId": "TX-001", "amount": 250.0, "currency": "USD",
			"timestamp": "2026-03-01T10:00:00Z"},
	}})
	repo := New(mem)

	conns, err := repo.FetchUserConnections(context.Background(), "USR-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if conns.User.ID != "USR-001" {
		t.Errorf("expected root user USR-001, got %s", conns.User.ID)
	}
	if len(conns.ConnectedUsers) != 1 || conns.ConnectedUsers[0].EdgeKind != "SHARES_EMAIL" {
		t.Errorf("unexpected connected users %+v", conns.ConnectedUsers)
	}
	if len(conns.Transactions) != 1 || conns.Transactions[0].Role != RoleSender {
		t.Errorf("unexpected transactions %+v", conns.Transactions)
	}
	if len(conns.DirectTransfers) != 1 || conns.DirectTransfers[0].Direction != DirectionOutgoing {
		t.Errorf("unexpected transfers %+v", conns.DirectTransfers)
	}
}
