package client

import "time"

// Node represents a single node in the forest.
type Node struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
	ParentID   *string        `json:"parent_id,omitempty"`
	Position   int            `json:"position"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CreateNodeRequest is the payload for creating a node.
type CreateNodeRequest struct {
	ID         string         `json:"id,omitempty"`
	Kind       string         `json:"kind"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
	ParentID   *string        `json:"parent_id,omitempty"`
	Position   int            `json:"position,omitempty"`
}

// UpdateNodeRequest is the payload for updating a node. The parent link is
// managed through the dedicated parent endpoints.
type UpdateNodeRequest struct {
	Kind       *string        `json:"kind,omitempty"`
	Label      *string        `json:"label,omitempty"`
	Position   *int           `json:"position,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// SetParentRequest is the payload for reassigning a node's parent.
// A null ParentID detaches the node, making it a root.
type SetParentRequest struct {
	ParentID *string `json:"parent_id"`
}

// Relation reports every pairwise order predicate between two nodes.
type Relation struct {
	A            string `json:"a"`
	B            string `json:"b"`
	AncestorOf   bool   `json:"ancestor_of"`
	DescendantOf bool   `json:"descendant_of"`
	SupertreeOf  bool   `json:"supertree_of"`
	SubtreeOf    bool   `json:"subtree_of"`
	ChildOf      bool   `json:"child_of"`
	ParentOf     bool   `json:"parent_of"`
	SiblingOf    bool   `json:"sibling_of"`
	RootOf       bool   `json:"root_of"`
}

// NodeInfo describes a node's own place in its tree.
type NodeInfo struct {
	ID       string  `json:"id"`
	Root     bool    `json:"root"`
	Child    bool    `json:"child"`
	Parent   bool    `json:"parent"`
	Leaf     bool    `json:"leaf"`
	Depth    int     `json:"depth"`
	RootID   string  `json:"root_id"`
	ParentID *string `json:"parent_id,omitempty"`
}

// ValidateParentResult reports whether a candidate parent assignment is legal.
type ValidateParentResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	NodeID    string         `json:"node_id"`
	Actor     string         `json:"actor,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// StatsResponse is returned by the stats endpoint.
type StatsResponse struct {
	Nodes int64 `json:"nodes"`
	Roots int64 `json:"roots"`
}

// NodeListOptions holds parameters for listing nodes.
type NodeListOptions struct {
	Kind      string
	RootsOnly bool
	Limit     int
	Offset    int
}

// AuditQueryOptions holds parameters for querying audit logs.
type AuditQueryOptions struct {
	NodeID string
	Action string
	Since  *time.Time
	Limit  int
	Offset int
}
