package server

import (
	"context"

	"github.com/manas-yu/user-transaction-visualizer/internal/graph"
)

// HealthProbe reports whether the backing store is reachable.
type HealthProbe func(ctx context.Context) error

// StoreProbe builds a probe over the graph client's connectivity check.
func StoreProbe(client graph.Client) HealthProbe {
	return func(ctx context.Context) error {
		if client == nil {
			return nil
		}
		return client.VerifyConnectivity(ctx)
	}
}
