package models

// Relation reports every pairwise order predicate between two nodes A and B.
// AncestorOf/DescendantOf are strict (false when A == B); SubtreeOf and
// SupertreeOf are their reflexive closures.
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

// TreeStats holds aggregate counts for a tenant's forest.
type TreeStats struct {
	Nodes int64 `json:"nodes"`
	Roots int64 `json:"roots"`
}
