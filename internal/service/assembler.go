package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
	"github.com/manas-yu/user-transaction-visualizer/internal/repository"
)

// GraphView assembles the full visualization graph: every user and
// transaction as a node, every inferred or structural relationship as an
// edge, with duplicates collapsed and dangling edges dropped.
func (s *Service) GraphView(ctx context.Context) (domain.GraphView, error) {
	users, txs, err := s.loadEntities(ctx)
	if err != nil {
		return domain.GraphView{}, err
	}
	return s.assemble(ctx, users, txs), nil
}

type userFetch struct {
	conns domain.UserConnections
	err   error
}

type txFetch struct {
	conns domain.TransactionConnections
	err   error
}

// assemble fans out one relationship fetch per entity, bounded by the
// configured concurrency, then merges the results. A failed fetch drops that
// entity's relationships but never the whole view.
func (s *Service) assemble(ctx context.Context, users []domain.User, txs []domain.Transaction) domain.GraphView {
	userResults := make([]userFetch, len(users))
	txResults := make([]txFetch, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, u := range users {
		i, id := i, u.ID
		g.Go(func() error {
			conns, err := s.store.FetchUserConnections(gctx, id)
			userResults[i] = userFetch{conns: conns, err: err}
			return nil
		})
	}
	for i, t := range txs {
		i, id := i, t.ID
		g.Go(func() error {
			conns, err := s.store.FetchTransactionConnections(gctx, id)
			txResults[i] = txFetch{conns: conns, err: err}
			return nil
		})
	}
	// Goroutines only record results, so Wait cannot fail.
	_ = g.Wait()

	b := newGraphBuilder()
	for _, u := range users {
		b.addUserNode(u)
	}
	for _, t := range txs {
		b.addTransactionNode(t)
	}

	failed := 0
	for i, res := range userResults {
		if res.err != nil {
			failed++
			s.logger.Warn("user connection fetch failed",
				zap.String("userId", users[i].ID), zap.Error(res.err))
			continue
		}
		b.mergeUserConnections(users[i].ID, res.conns)
	}
	for i, res := range txResults {
		if res.err != nil {
			failed++
			s.logger.Warn("transaction connection fetch failed",
				zap.String("transactionId", txs[i].ID), zap.Error(res.err))
			continue
		}
		b.mergeTransactionConnections(txs[i].ID, res.conns)
	}

	view := b.view()
	view.FailedFetches = failed
	if view.DroppedEdges > 0 || failed > 0 {
		s.logger.Warn("graph assembled with gaps",
			zap.Int("droppedEdges", view.DroppedEdges),
			zap.Int("failedFetches", failed))
	}
	return view
}

// UserGraph assembles the fan-out neighborhood graph centered on one user:
// the user, everything one relationship away, and the edges between them.
func (s *Service) UserGraph(ctx context.Context, userID string) (domain.GraphView, error) {
	conns, err := s.UserConnections(ctx, userID)
	if err != nil {
		return domain.GraphView{}, err
	}

	b := newGraphBuilder()
	b.addUserNode(conns.User)
	b.mergeUserConnections(userID, conns)
	return b.view(), nil
}

// TransactionGraph assembles the neighborhood graph centered on one
// transaction.
func (s *Service) TransactionGraph(ctx context.Context, txID string) (domain.GraphView, error) {
	conns, err := s.TransactionConnections(ctx, txID)
	if err != nil {
		return domain.GraphView{}, err
	}

	b := newGraphBuilder()
	b.addTransactionNode(conns.Transaction)
	b.mergeTransactionConnections(txID, conns)
	return b.view(), nil
}

// graphBuilder accumulates nodes and edges with first-wins node identity and
// a composite dedup key per edge.
type graphBuilder struct {
	nodes   []domain.GraphNode
	nodeSet map[string]struct{}
	edges   []domain.GraphEdge
	edgeSet map[string]struct{}
	dropped int
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{
		nodeSet: make(map[string]struct{}),
		edgeSet: make(map[string]struct{}),
	}
}

func nodeKey(kind, id string) string { return kind + "|" + id }

func (b *graphBuilder) addUserNode(u domain.User) {
	if u.ID == "" {
		return
	}
	key := nodeKey(domain.NodeKindUser, u.ID)
	if _, ok := b.nodeSet[key]; ok {
		return
	}
	b.nodeSet[key] = struct{}{}
	label := u.Name
	if label == "" {
		label = u.ID
	}
	props := map[string]any{}
	if u.Email != "" {
		props["email"] = u.Email
	}
	if u.Phone != "" {
		props["phone"] = u.Phone
	}
	b.nodes = append(b.nodes, domain.GraphNode{
		ID:    u.ID,
		Kind:  domain.NodeKindUser,
		Label: label,
		Props: props,
	})
}

func (b *graphBuilder) addTransactionNode(t domain.Transaction) {
	if t.ID == "" {
		return
	}
	key := nodeKey(domain.NodeKindTransaction, t.ID)
	if _, ok := b.nodeSet[key]; ok {
		return
	}
	b.nodeSet[key] = struct{}{}
	label := t.Description
	if label == "" {
		label = fmt.Sprintf("%.2f %s", t.Amount, t.Currency)
	}
	b.nodes = append(b.nodes, domain.GraphNode{
		ID:    t.ID,
		Kind:  domain.NodeKindTransaction,
		Label: label,
		Props: map[string]any{
			"amount":   t.Amount,
			"currency": t.Currency,
			"status":   t.Status,
		},
	})
}

func (b *graphBuilder) hasNode(kind, id string) bool {
	_, ok := b.nodeSet[nodeKey(kind, id)]
	return ok
}

// addEdge records an edge once per (endpoints, kind, discriminator) tuple.
// Shared-attribute kinds are undirected, so their endpoint pair is sorted
// before keying; structural kinds keep their direction. Edges with a missing
// endpoint are counted and dropped rather than failing the view.
func (b *graphBuilder) addEdge(sourceKind, source, targetKind, target, kind, discriminator string, props map[string]any) {
	if source == "" || target == "" || !b.hasNode(sourceKind, source) || !b.hasNode(targetKind, target) {
		b.dropped++
		return
	}

	a, z := source, target
	if undirectedEdgeKind(kind) {
		pair := []string{source, target}
		sort.Strings(pair)
		a, z = pair[0], pair[1]
	}
	key := a + "|" + z + "|" + kind + "|" + discriminator
	if _, ok := b.edgeSet[key]; ok {
		return
	}
	b.edgeSet[key] = struct{}{}
	b.edges = append(b.edges, domain.GraphEdge{
		Source: source,
		Target: target,
		Kind:   kind,
		Props:  props,
	})
}

func undirectedEdgeKind(kind string) bool {
	switch kind {
	case domain.EdgeSharesEmail, domain.EdgeSharesPhone, domain.EdgeSharesAddress,
		domain.EdgeSharesPaymentMethod, domain.EdgeSharesIP, domain.EdgeSharesDevice,
		domain.EdgeSharesLocation:
		return true
	}
	return false
}

func (b *graphBuilder) mergeUserConnections(userID string, conns domain.UserConnections) {
	for _, cu := range conns.ConnectedUsers {
		b.addUserNode(cu.User)
		b.addEdge(domain.NodeKindUser, userID, domain.NodeKindUser, cu.User.ID,
			cu.EdgeKind, cu.Shared, map[string]any{"value": cu.Shared})
	}
	for _, it := range conns.Transactions {
		b.addTransactionNode(it.Transaction)
		switch it.Role {
		case repository.RoleSender:
			b.addEdge(domain.NodeKindUser, userID, domain.NodeKindTransaction, it.Transaction.ID,
				domain.EdgeSentMoney, it.Transaction.ID, nil)
		case repository.RoleReceiver:
			b.addEdge(domain.NodeKindTransaction, it.Transaction.ID, domain.NodeKindUser, userID,
				domain.EdgeReceivedBy, it.Transaction.ID, nil)
		}
	}
	for _, dt := range conns.DirectTransfers {
		b.addUserNode(dt.Counterparty)
		props := map[string]any{
			"transactionId": dt.TransactionID,
			"amount":        dt.Amount,
			"currency":      dt.Currency,
		}
		source, target := userID, dt.Counterparty.ID
		if dt.Direction == repository.DirectionIncoming {
			source, target = dt.Counterparty.ID, userID
		}
		b.addEdge(domain.NodeKindUser, source, domain.NodeKindUser, target,
			domain.EdgeTransferredTo, dt.TransactionID, props)
	}
}

func (b *graphBuilder) mergeTransactionConnections(txID string, conns domain.TransactionConnections) {
	for _, iu := range conns.InvolvedUsers {
		b.addUserNode(iu.User)
		switch iu.Role {
		case repository.RoleSender:
			b.addEdge(domain.NodeKindUser, iu.User.ID, domain.NodeKindTransaction, txID,
				domain.EdgeSentMoney, txID, nil)
		case repository.RoleReceiver:
			b.addEdge(domain.NodeKindTransaction, txID, domain.NodeKindUser, iu.User.ID,
				domain.EdgeReceivedBy, txID, nil)
		}
	}
	for _, rt := range conns.RelatedTransactions {
		b.addTransactionNode(rt.Transaction)
		b.addEdge(domain.NodeKindTransaction, txID, domain.NodeKindTransaction, rt.Transaction.ID,
			rt.EdgeKind, rt.Shared, map[string]any{"value": rt.Shared})
	}
}

func (b *graphBuilder) view() domain.GraphView {
	nodes := b.nodes
	if nodes == nil {
		nodes = []domain.GraphNode{}
	}
	edges := b.edges
	if edges == nil {
		edges = []domain.GraphEdge{}
	}
	return domain.GraphView{
		Nodes:        nodes,
		Edges:        edges,
		NodeCount:    len(nodes),
		EdgeCount:    len(edges),
		DroppedEdges: b.dropped,
	}
}
