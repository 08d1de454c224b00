// Package domain defines the canonical service interfaces shared across API
// layers (REST, client). Consumers should depend on these interfaces rather
// than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/arborhq/arbor/internal/models"
)

// NodeService defines all node CRUD operations.
type NodeService interface {
	ListNodes(ctx context.Context, tenantID string, kindFilter string, rootsOnly bool, limit, offset int) ([]models.Node, bool, error)
	GetNode(ctx context.Context, tenantID, nodeID string) (*models.Node, error)
	CreateNode(ctx context.Context, tenantID string, req models.CreateNodeRequest) (*models.Node, error)
	UpdateNode(ctx context.Context, tenantID string, nodeID string, req models.UpdateNodeRequest) (*models.Node, error)
	DeleteNode(ctx context.Context, tenantID, nodeID string) error
}

// TreeService defines parent-link mutation and hierarchy read operations.
// All slices of node IDs preserve walk order: ancestor walks go nearest
// parent first, descendant traversals follow the requested order.
type TreeService interface {
	Ancestors(ctx context.Context, tenantID, nodeID string) ([]string, error)
	Supertrees(ctx context.Context, tenantID, nodeID string) ([]string, error)
	Path(ctx context.Context, tenantID, nodeID string) ([]string, error)
	ParentPath(ctx context.Context, tenantID, nodeID string) ([]string, error)
	Root(ctx context.Context, tenantID, nodeID string) (string, error)
	Children(ctx context.Context, tenantID, nodeID string) ([]string, error)
	Descendants(ctx context.Context, tenantID, nodeID string, order models.Order) ([]string, error)
	Subtrees(ctx context.Context, tenantID, nodeID string, order models.Order) ([]string, error)
	NodeInfo(ctx context.Context, tenantID, nodeID string) (*models.NodeInfo, error)
	Relation(ctx context.Context, tenantID, a, b string) (*models.Relation, error)
	Reparent(ctx context.Context, tenantID, nodeID string, parentID *string) (*models.Node, error)
	MakeRoot(ctx context.Context, tenantID, nodeID string) (*models.Node, error)
	ValidateParent(ctx context.Context, tenantID, nodeID string, parentID *string) error
	Stats(ctx context.Context, tenantID string) (*models.TreeStats, error)
}

// AuditService defines audit log query operations.
type AuditService interface {
	Auditor
	QueryAudit(ctx context.Context, tenantID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}

// Auditor is the minimal interface for recording audit entries.
// Used by services and handlers for fire-and-forget audit logging.
type Auditor interface {
	RecordAudit(ctx context.Context, tenantID, action, nodeID, actor string, detail map[string]any) error
}
