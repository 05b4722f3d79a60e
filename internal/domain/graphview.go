package domain

import "time"

// GraphNode is a renderable node in the assembled visualization graph.
type GraphNode struct {
	ID    string
	Kind  string
	Label string
	Props map[string]any
}

// GraphEdge is a renderable edge; both endpoints are guaranteed to exist in
// the node set of the view that contains it.
type GraphEdge struct {
	Source string
	Target string
	Kind   string
	Props  map[string]any
}

// GraphView is one consistent, duplicate-free node/edge collection assembled
// for visualization or export.
type GraphView struct {
	Nodes         []GraphNode
	Edges         []GraphEdge
	NodeCount     int
	EdgeCount     int
	DroppedEdges  int
	FailedFetches int
}

// Snapshot is the full-graph export payload.
type Snapshot struct {
	Users             []User
	Transactions      []Transaction
	Relationships     []GraphEdge
	UserCount         int
	TransactionCount  int
	RelationshipCount int
	ExportedAt        time.Time
}
