package domain

// PathNode is a node materialized along a traversal step.
type PathNode struct {
	ID    string
	Kind  string
	Props map[string]any
}

// PathEdge is the relationship traversed between two path nodes.
type PathEdge struct {
	Kind  string
	Props map[string]any
}

// PathStep is one hop of a shortest path, in traversal order from source to target.
type PathStep struct {
	From PathNode
	Edge PathEdge
	To   PathNode
}

// ShortestPath is the outcome of a bounded shortest-path search between two users.
type ShortestPath struct {
	SourceUserID string
	TargetUserID string
	Exists       bool
	Length       int
	Steps        []PathStep
}

// Cluster groups transactions sharing one attribute value.
type Cluster struct {
	Value          any
	Size           int
	TransactionIDs []string
}
