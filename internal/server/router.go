package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health         HealthProbe
	API            *Handlers
	AllowedOrigins []string
	ReleaseMode    bool
}

// NewRouter wires the HTTP routes exposed by the backend API.
func NewRouter(logger *zap.Logger, deps RouterDependencies) *gin.Engine {
	if deps.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestLogger(logger))
	router.Use(gin.Recovery())
	if len(deps.AllowedOrigins) > 0 {
		router.Use(corsMiddleware(deps.AllowedOrigins))
	}

	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if deps.Health != nil {
			if err := deps.Health(ctx); err != nil {
				logger.Error("health probe failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "degraded",
					"error":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.API == nil {
		return router
	}

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("", deps.API.upsertUser)
			users.GET("", deps.API.listUsers)
			users.GET("/:id", deps.API.getUser)
			users.DELETE("/:id", deps.API.deleteUser)
			users.GET("/:id/connections", deps.API.userConnections)
			users.GET("/:id/graph", deps.API.userGraph)
		}

		txs := api.Group("/transactions")
		{
			txs.POST("", deps.API.upsertTransaction)
			txs.GET("", deps.API.listTransactions)
			txs.GET("/:id", deps.API.getTransaction)
			txs.DELETE("/:id", deps.API.deleteTransaction)
			txs.GET("/:id/connections", deps.API.transactionConnections)
			txs.GET("/:id/graph", deps.API.transactionGraph)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/shortest-path", deps.API.shortestPath)
			analytics.GET("/clusters", deps.API.transactionClusters)
		}

		api.GET("/graph", deps.API.graphView)
		api.GET("/export", deps.API.export)
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		logger.Info("request completed",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	normalized := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			wildcard = true
		}
		normalized[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		_, allowed := normalized[origin]
		if origin == "" || (!allowed && !wildcard) {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Add("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
