package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/manas-yu/user-transaction-visualizer/internal/apperr"
	"github.com/manas-yu/user-transaction-visualizer/internal/service"
)

// Handlers exposes the REST handlers for the API.
type Handlers struct {
	logger  *zap.Logger
	service *service.Service
}

// NewHandlers constructs a Handlers instance.
func NewHandlers(logger *zap.Logger, svc *service.Service) *Handlers {
	return &Handlers{
		logger:  logger,
		service: svc,
	}
}

func (h *Handlers) upsertUser(c *gin.Context) {
	var payload userRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpsertUser(c.Request.Context(), payload.toInput())
	if err != nil {
		h.writeServiceError(c, "upsert user", err)
		return
	}

	c.JSON(http.StatusCreated, userFromDomain(user))
}

func (h *Handlers) getUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, userFromDomain(user))
}

func (h *Handlers) deleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, "delete user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": c.Param("id")})
}

func (h *Handlers) listUsers(c *gin.Context) {
	limit, ok := parseIntParam(c, "limit", 0)
	if !ok {
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), service.ListUsersFilter{
		Email: c.Query("email"),
		Phone: c.Query("phone"),
		Limit: limit,
	})
	if err != nil {
		h.writeServiceError(c, "list users", err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, userFromDomain(u))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *Handlers) userConnections(c *gin.Context) {
	conns, err := h.service.UserConnections(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, "fetch user connections", err)
		return
	}
	c.JSON(http.StatusOK, userConnectionsFromDomain(conns))
}

func (h *Handlers) userGraph(c *gin.Context) {
	view, err := h.service.UserGraph(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, "assemble user graph", err)
		return
	}
	c.JSON(http.StatusOK, graphViewFromDomain(view))
}

func (h *Handlers) upsertTransaction(c *gin.Context) {
	var payload transactionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	input, err := payload.toInput()
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.service.UpsertTransaction(c.Request.Context(), input)
	if err != nil {
		h.writeServiceError(c, "upsert transaction", err)
		return
	}

	c.JSON(http.StatusCreated, transactionFromDomain(tx))
}

func (h *Handlers) getTransaction(c *gin.Context) {
	tx, err := h.service.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, "get transaction", err)
		return
	}
	c.JSON(http.StatusOK, transactionFromDomain(tx))
}

func (h *Handlers) deleteTransaction(c *gin.Context) {
	if err := h.service.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		h.writeServiceError(c, "delete transaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": c.Param("id")})
}

func (h *Handlers) listTransactions(c *gin.Context) {
	limit, ok := parseIntParam(c, "limit", 0)
	if !ok {
		return
	}
	minAmount, ok := parseFloatParam(c, "minAmount")
	if !ok {
		return
	}
	maxAmount, ok := parseFloatParam(c, "maxAmount")
	if !ok {
		return
	}

	txs, err := h.service.ListTransactions(c.Request.Context(), service.ListTransactionsFilter{
		Status:    c.Query("status"),
		Currency:  c.Query("currency"),
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		Limit:     limit,
	})
	if err != nil {
		h.writeServiceError(c, "list transactions", err)
		return
	}

	items := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		items = append(items, transactionFromDomain(tx))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *Handlers) transactionConnections(c *gin.Context) {
	conns, err := h.service.TransactionConnections(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, "fetch transaction connections", err)
		return
	}
	c.JSON(http.StatusOK, transactionConnectionsFromDomain(conns))
}

func (h *Handlers) transactionGraph(c *gin.Context) {
	view, err := h.service.TransactionGraph(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, "assemble transaction graph", err)
		return
	}
	c.JSON(http.StatusOK, graphViewFromDomain(view))
}

func (h *Handlers) shortestPath(c *gin.Context) {
	source := c.Query("sourceUserId")
	target := c.Query("targetUserId")
	maxDepth, ok := parseIntParam(c, "maxDepth", service.DefaultMaxDepth)
	if !ok {
		return
	}

	path, err := h.service.ShortestPath(c.Request.Context(), source, target, maxDepth)
	if err != nil {
		h.writeServiceError(c, "shortest path", err)
		return
	}
	c.JSON(http.StatusOK, shortestPathFromDomain(path))
}

func (h *Handlers) transactionClusters(c *gin.Context) {
	attribute := c.Query("attribute")
	minSize, ok := parseIntParam(c, "minClusterSize", service.DefaultMinClusterSize)
	if !ok {
		return
	}

	clusters, err := h.service.TransactionClusters(c.Request.Context(), attribute, minSize)
	if err != nil {
		h.writeServiceError(c, "transaction clusters", err)
		return
	}

	items := make([]clusterResponse, 0, len(clusters))
	for _, cl := range clusters {
		items = append(items, clusterResponse{
			Value:          cl.Value,
			Size:           cl.Size,
			TransactionIDs: cl.TransactionIDs,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"attribute": attribute,
		"clusters":  items,
	})
}

func (h *Handlers) graphView(c *gin.Context) {
	view, err := h.service.GraphView(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "assemble graph", err)
		return
	}
	c.JSON(http.StatusOK, graphViewFromDomain(view))
}

// writeServiceError maps the application error taxonomy onto HTTP statuses.
// Store failures are logged with their cause but reported opaquely.
func (h *Handlers) writeServiceError(c *gin.Context, op string, err error) {
	if appErr, ok := apperr.As(err); ok {
		switch appErr.Category {
		case apperr.CategoryValidation:
			writeError(c, http.StatusBadRequest, appErr.Message)
			return
		case apperr.CategoryNotFound:
			writeError(c, http.StatusNotFound, appErr.Message)
			return
		}
	}
	h.logger.Error(op+" failed", zap.Error(err))
	writeError(c, http.StatusInternalServerError, op+" failed")
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// parseIntParam reads an optional integer query parameter. A malformed value
// aborts the request with 400 and returns ok=false.
func parseIntParam(c *gin.Context, name string, fallback int) (int, bool) {
	v := c.Query(name)
	if v == "" {
		return fallback, true
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return parsed, true
}

func parseFloatParam(c *gin.Context, name string) (float64, bool) {
	v := c.Query(name)
	if v == "" {
		return 0, true
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return parsed, true
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
