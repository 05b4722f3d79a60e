package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/manas-yu/user-transaction-visualizer/internal/domain"
)

// ClusterAttributes maps the whitelisted cluster attribute names to the node
// properties they group by. Anything outside this table is rejected before
// query construction.
var ClusterAttributes = map[string]string{
	"ipAddress": "ipAddress",
	"deviceId":  "deviceId",
	"currency":  "currency",
	"status":    "status",
	"amount":    "amount",
}

// ShortestPath computes one hop-count shortest path between two users within
// maxDepth hops, treating every edge kind as traversable in either direction.
// Ties are broken by the store's default path enumeration order. Both users
// are assumed to exist; callers verify existence first. The driver does not
// accept parameters inside variable-length bounds, so the validated depth is
// interpolated into the pattern.
func (r *Repository) ShortestPath(ctx context.Context, sourceID, targetID string, maxDepth int) (domain.ShortestPath, error) {
	if sourceID == "" || targetID == "" {
		return domain.ShortestPath{}, errors.New("source and target user ids are required")
	}
	if maxDepth <= 0 {
		return domain.ShortestPath{}, errors.New("max depth must be positive")
	}

	path := domain.ShortestPath{
		SourceUserID: sourceID,
		TargetUserID: targetID,
	}

	if sourceID == targetID {
		path.Exists = true
		return path, nil
	}

	cypher := fmt.Sprintf(shortestPathCypherTemplate, maxDepth)
	res, err := r.client.ExecuteRead(ctx, cypher, map[string]any{
		"sourceId": sourceID,
		"targetId": targetID,
	})
	if err != nil {
		return domain.ShortestPath{}, fmt.Errorf("shortest path query: %w", err)
	}

	record, ok := res.First()
	if !ok {
		return path, nil
	}

	nodes := pathNodesFrom(record["nodes"])
	edges := pathEdgesFrom(record["edges"])

	path.Exists = true
	path.Length = toInt(record["hops"])
	for i, edge := range edges {
		if i+1 >= len(nodes) {
			break
		}
		path.Steps = append(path.Steps, domain.PathStep{
			From: nodes[i],
			Edge: edge,
			To:   nodes[i+1],
		})
	}

	return path, nil
}

// TransactionClusters groups transactions holding a value for the given
// whitelisted attribute and returns groups of at least minSize members,
// largest first.
func (r *Repository) TransactionClusters(ctx context.Context, attribute string, minSize int) ([]domain.Cluster, error) {
	property, ok := ClusterAttributes[attribute]
	if !ok {
		return nil, fmt.Errorf("attribute %q is not clusterable", attribute)
	}
	if minSize <= 0 {
		return nil, errors.New("minimum cluster size must be positive")
	}

	cypher := fmt.Sprintf(clusterCypherTemplate, property, property)
	res, err := r.client.ExecuteRead(ctx, cypher, map[string]any{"minSize": minSize})
	if err != nil {
		return nil, fmt.Errorf("cluster query for %s: %w", attribute, err)
	}

	clusters := make([]domain.Cluster, 0, len(res.Records))
	for _, record := range res.Records {
		clusters = append(clusters, domain.Cluster{
			Value:          record["value"],
			Size:           toInt(record["size"]),
			TransactionIDs: toStringSlice(record["transactionIds"]),
		})
	}
	return clusters, nil
}

func pathNodesFrom(val any) []domain.PathNode {
	raw, ok := val.([]any)
	if !ok {
		return nil
	}
	nodes := make([]domain.PathNode, 0, len(raw))
	for _, item := range raw {
		m := toPropsMap(item)
		if m == nil {
			continue
		}
		nodes = append(nodes, domain.PathNode{
			ID:    toString(m["id"]),
			Kind:  toString(m["kind"]),
			Props: toPropsMap(m["props"]),
		})
	}
	return nodes
}

func pathEdgesFrom(val any) []domain.PathEdge {
	raw, ok := val.([]any)
	if !ok {
		return nil
	}
	edges := make([]domain.PathEdge, 0, len(raw))
	for _, item := range raw {
		m := toPropsMap(item)
		if m == nil {
			continue
		}
		edges = append(edges, domain.PathEdge{
			Kind:  toString(m["kind"]),
			Props: toPropsMap(m["props"]),
		})
	}
	return edges
}

const shortestPathCypherTemplate = `
MATCH (source:User {id: $sourceId}), (target:User {id: $targetId})
MATCH p = shortestPath((source)-[*..%d]-(target))
RETURN [n IN nodes(p) | {id: n.id, kind: head(labels(n)), props: properties(n)}] AS nodes,
       [rel IN relationships(p) | {kind: type(rel), props: properties(rel)}] AS edges,
       length(p) AS hops
`

const clusterCypherTemplate = `
MATCH (t:Transaction)
WHERE t.%s IS NOT NULL
WITH t.%s AS value, collect(t.id) AS transactionIds, count(t) AS size
WHERE size >= $minSize
RETURN value, size, transactionIds
ORDER BY size DESC
`
