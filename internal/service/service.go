package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manas-yu/user-transaction-visualizer/internal/apperr"
	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
	"github.com/manas-yu/user-transaction-visualizer/internal/repository"
)

// Defaults applied when a caller omits an optional parameter.
const (
	DefaultMaxDepth       = 5
	DefaultMinClusterSize = 2
	DefaultCurrency       = "USD"
	DefaultStatus         = "completed"
)

// Store is the persistence contract required by the service. It is satisfied
// by *repository.Repository and by in-memory stubs in tests.
type Store interface {
	UpsertUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUser(ctx context.Context, id string) (domain.User, bool, error)
	UserExists(ctx context.Context, id string) (bool, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	ListUsers(ctx context.Context, opts repository.ListUsersOptions) ([]domain.User, error)
	LinkUserAttributes(ctx context.Context, userID string, attrs []repository.LinkAttribute, updatedAt time.Time) error

	UpsertTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (domain.Transaction, bool, error)
	TransactionExists(ctx context.Context, id string) (bool, error)
	DeleteTransaction(ctx context.Context, id string) (bool, error)
	ListTransactions(ctx context.Context, opts repository.ListTransactionsOptions) ([]domain.Transaction, error)
	LinkTransaction(ctx context.Context, tx domain.Transaction) error

	FetchUserConnections(ctx context.Context, userID string) (domain.UserConnections, error)
	FetchTransactionConnections(ctx context.Context, txID string) (domain.TransactionConnections, error)
	ShortestPath(ctx context.Context, sourceID, targetID string, maxDepth int) (domain.ShortestPath, error)
	TransactionClusters(ctx context.Context, attribute string, minSize int) ([]domain.Cluster, error)
	AllUsers(ctx context.Context) ([]domain.User, error)
	AllTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// Service validates inbound payloads, applies defaults, and orchestrates
// persistence plus write-time link inference.
type Service struct {
	store  Store
	logger *zap.Logger
	nowFn  func() time.Time
	fanout int
}

// New constructs a Service. fanout bounds the assembler's concurrent
// relationship fetches and normally matches the store's connection pool size.
func New(store Store, logger *zap.Logger, fanout int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fanout <= 0 {
		fanout = 8
	}
	return &Service{
		store:  store,
		logger: logger,
		nowFn:  time.Now,
		fanout: fanout,
	}
}

// WithClock overrides the time provider, used in tests.
func (s *Service) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// UpsertUser persists a user and derives shared-attribute edges from the
// written user to every existing match. Inference is strictly additive: a
// later upsert never retracts previously inferred edges.
func (s *Service) UpsertUser(ctx context.Context, input UserInput) (domain.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.User{}, apperr.Validation("name is required")
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}

	now := s.nowFn().UTC()
	user := domain.User{
		ID:        id,
		Name:      name,
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Address:   input.Address,
		UpdatedAt: now,
	}
	for _, pm := range input.PaymentMethods {
		if pm.Empty() {
			continue
		}
		user.PaymentMethods = append(user.PaymentMethods, pm)
	}

	stored, err := s.store.UpsertUser(ctx, user)
	if err != nil {
		return domain.User{}, apperr.Store("upsert user", err)
	}

	if err := s.store.LinkUserAttributes(ctx, id, repository.UserLinkAttributes(user), now); err != nil {
		return domain.User{}, apperr.Store("infer user links", err)
	}

	s.logger.Debug("user upserted", zap.String("userId", id))
	return stored, nil
}

// GetUser fetches a user or reports NotFound.
func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, found, err := s.store.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, apperr.Store("get user", err)
	}
	if !found {
		return domain.User{}, apperr.NotFound("user", id)
	}
	return user, nil
}

// DeleteUser removes a user and all edges touching it.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return apperr.Store("delete user", err)
	}
	if !deleted {
		return apperr.NotFound("user", id)
	}
	s.logger.Info("user deleted", zap.String("userId", id))
	return nil
}

// ListUsers returns users matching the filter, most recently updated first.
func (s *Service) ListUsers(ctx context.Context, filter ListUsersFilter) ([]domain.User, error) {
	users, err := s.store.ListUsers(ctx, repository.ListUsersOptions{
		Email: strings.TrimSpace(filter.Email),
		Phone: strings.TrimSpace(filter.Phone),
		Limit: filter.Limit,
	})
	if err != nil {
		return nil, apperr.Store("list users", err)
	}
	return users, nil
}

// UpsertTransaction persists a transaction and derives its participant,
// transfer, and shared-metadata edges.
func (s *Service) UpsertTransaction(ctx context.Context, input TransactionInput) (domain.Transaction, error) {
	if input.Amount <= 0 {
		return domain.Transaction{}, apperr.Validation("amount must be positive")
	}
	from := strings.TrimSpace(input.FromUserID)
	to := strings.TrimSpace(input.ToUserID)
	if from == "" && to == "" {
		return domain.Transaction{}, apperr.Validation("at least one of fromUserId and toUserId is required")
	}

	for _, userID := range []string{from, to} {
		if userID == "" {
			continue
		}
		exists, err := s.store.UserExists(ctx, userID)
		if err != nil {
			return domain.Transaction{}, apperr.Store("check transaction participant", err)
		}
		if !exists {
			return domain.Transaction{}, apperr.NotFound("user", userID)
		}
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}

	now := s.nowFn().UTC()
	timestamp := now
	if input.Timestamp != nil && !input.Timestamp.IsZero() {
		timestamp = input.Timestamp.UTC()
	}

	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = DefaultStatus
	}

	tx := domain.Transaction{
		ID:          id,
		FromUserID:  from,
		ToUserID:    to,
		Amount:      input.Amount,
		Currency:    currency,
		Status:      status,
		Timestamp:   timestamp,
		IPAddress:   strings.TrimSpace(input.IPAddress),
		DeviceID:    strings.TrimSpace(input.DeviceID),
		Location:    input.Location,
		Description: strings.TrimSpace(input.Description),
		UpdatedAt:   now,
	}

	stored, err := s.store.UpsertTransaction(ctx, tx)
	if err != nil {
		return domain.Transaction{}, apperr.Store("upsert transaction", err)
	}

	if err := s.store.LinkTransaction(ctx, tx); err != nil {
		return domain.Transaction{}, apperr.Store("infer transaction links", err)
	}

	s.logger.Debug("transaction upserted", zap.String("transactionId", id))
	return stored, nil
}

// GetTransaction fetches a transaction or reports NotFound.
func (s *Service) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	tx, found, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return domain.Transaction{}, apperr.Store("get transaction", err)
	}
	if !found {
		return domain.Transaction{}, apperr.NotFound("transaction", id)
	}
	return tx, nil
}

// DeleteTransaction removes a transaction and all edges touching it.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return apperr.Store("delete transaction", err)
	}
	if !deleted {
		return apperr.NotFound("transaction", id)
	}
	s.logger.Info("transaction deleted", zap.String("transactionId", id))
	return nil
}

// ListTransactions returns transactions matching the filter, newest first.
func (s *Service) ListTransactions(ctx context.Context, filter ListTransactionsFilter) ([]domain.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, repository.ListTransactionsOptions{
		Status:    strings.TrimSpace(filter.Status),
		Currency:  strings.TrimSpace(filter.Currency),
		MinAmount: filter.MinAmount,
		MaxAmount: filter.MaxAmount,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, apperr.Store("list transactions", err)
	}
	return txs, nil
}

// UserConnections returns the relationship view for one user.
func (s *Service) UserConnections(ctx context.Context, userID string) (domain.UserConnections, error) {
	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return domain.UserConnections{}, apperr.Store("check user", err)
	}
	if !exists {
		return domain.UserConnections{}, apperr.NotFound("user", userID)
	}

	conns, err := s.store.FetchUserConnections(ctx, userID)
	if err != nil {
		return domain.UserConnections{}, apperr.Store("fetch user connections", err)
	}
	return conns, nil
}

// TransactionConnections returns the relationship view for one transaction.
func (s *Service) TransactionConnections(ctx context.Context, txID string) (domain.TransactionConnections, error) {
	exists, err := s.store.TransactionExists(ctx, txID)
	if err != nil {
		return domain.TransactionConnections{}, apperr.Store("check transaction", err)
	}
	if !exists {
		return domain.TransactionConnections{}, apperr.NotFound("transaction", txID)
	}

	conns, err := s.store.FetchTransactionConnections(ctx, txID)
	if err != nil {
		return domain.TransactionConnections{}, apperr.Store("fetch transaction connections", err)
	}
	return conns, nil
}

// ShortestPath finds one hop-count shortest path between two users within
// maxDepth hops, or reports that none exists within the bound.
func (s *Service) ShortestPath(ctx context.Context, sourceID, targetID string, maxDepth int) (domain.ShortestPath, error) {
	sourceID = strings.TrimSpace(sourceID)
	targetID = strings.TrimSpace(targetID)
	if sourceID == "" {
		return domain.ShortestPath{}, apperr.Validation("sourceUserId is required")
	}
	if targetID == "" {
		return domain.ShortestPath{}, apperr.Validation("targetUserId is required")
	}
	if maxDepth <= 0 {
		return domain.ShortestPath{}, apperr.Validation("maxDepth must be positive")
	}

	for _, userID := range []string{sourceID, targetID} {
		exists, err := s.store.UserExists(ctx, userID)
		if err != nil {
			return domain.ShortestPath{}, apperr.Store("check path endpoint", err)
		}
		if !exists {
			return domain.ShortestPath{}, apperr.NotFound("user", userID)
		}
	}

	path, err := s.store.ShortestPath(ctx, sourceID, targetID, maxDepth)
	if err != nil {
		return domain.ShortestPath{}, apperr.Store("shortest path", err)
	}
	return path, nil
}

// TransactionClusters groups transactions by one whitelisted attribute and
// returns clusters of at least minSize members, largest first.
func (s *Service) TransactionClusters(ctx context.Context, attribute string, minSize int) ([]domain.Cluster, error) {
	attribute = strings.TrimSpace(attribute)
	if _, ok := repository.ClusterAttributes[attribute]; !ok {
		return nil, apperr.Validation("attribute %q is not clusterable", attribute)
	}
	if minSize <= 0 {
		return nil, apperr.Validation("minClusterSize must be positive")
	}

	clusters, err := s.store.TransactionClusters(ctx, attribute, minSize)
	if err != nil {
		return nil, apperr.Store("transaction clusters", err)
	}
	return clusters, nil
}

// Export produces the full snapshot used by JSON/CSV export.
func (s *Service) Export(ctx context.Context) (domain.Snapshot, error) {
	users, txs, err := s.loadEntities(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	view := s.assemble(ctx, users, txs)

	return domain.Snapshot{
		Users:             users,
		Transactions:      txs,
		Relationships:     view.Edges,
		UserCount:         len(users),
		TransactionCount:  len(txs),
		RelationshipCount: len(view.Edges),
		ExportedAt:        s.nowFn().UTC(),
	}, nil
}

func (s *Service) loadEntities(ctx context.Context) ([]domain.User, []domain.Transaction, error) {
	users, err := s.store.AllUsers(ctx)
	if err != nil {
		return nil, nil, apperr.Store("load users", err)
	}
	txs, err := s.store.AllTransactions(ctx)
	if err != nil {
		return nil, nil, apperr.Store("load transactions", err)
	}
	return users, txs, nil
}
