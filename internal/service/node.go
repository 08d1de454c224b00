// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/arborhq/arbor/internal/domain"
	"github.com/arborhq/arbor/internal/models"
)

// NodeStore is the data-access interface NodeService depends on.
// It reuses domain.NodeService since the method sets are identical, avoiding duplication.
type NodeStore = domain.NodeService

// Compile-time check: *NodeService must satisfy domain.NodeService.
var _ domain.NodeService = (*NodeService)(nil)

// Auditor is an alias for the canonical domain.Auditor interface.
type Auditor = domain.Auditor

// NodeService wraps NodeStore with audit logging on mutations.
type NodeService struct {
	store       NodeStore
	auditWorker AuditEnqueuer
	log         *logrus.Logger
}

// NewNodeService creates a NodeService.
func NewNodeService(store NodeStore, auditWorker AuditEnqueuer, log *logrus.Logger) *NodeService {
	return &NodeService{store: store, auditWorker: auditWorker, log: log}
}

// ListNodes returns a paginated list of nodes (pass-through).
func (s *NodeService) ListNodes(
	ctx context.Context, tenantID, kindFilter string, rootsOnly bool, limit, offset int,
) ([]models.Node, bool, error) {
	return s.store.ListNodes(ctx, tenantID, kindFilter, rootsOnly, limit, offset)
}

// GetNode returns a single node by ID (pass-through).
func (s *NodeService) GetNode(ctx context.Context, tenantID, nodeID string) (*models.Node, error) {
	return s.store.GetNode(ctx, tenantID, nodeID)
}

// CreateNode creates a node and records an audit entry.
func (s *NodeService) CreateNode(
	ctx context.Context, tenantID string, req models.CreateNodeRequest,
) (*models.Node, error) {
	node, err := s.store.CreateNode(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	auditAsync(s.auditWorker, tenantID, "node.create", node.ID, map[string]any{"kind": node.Kind, "label": node.Label})

	return node, nil
}

// UpdateNode updates a node's own fields. The parent link is managed by
// TreeService and is not touched here.
func (s *NodeService) UpdateNode(
	ctx context.Context, tenantID, nodeID string, req models.UpdateNodeRequest,
) (*models.Node, error) {
	node, err := s.store.UpdateNode(ctx, tenantID, nodeID, req)
	if err != nil {
		return nil, err
	}

	auditAsync(s.auditWorker, tenantID, "node.update", node.ID, map[string]any{"kind": node.Kind, "label": node.Label})

	return node, nil
}

// DeleteNode removes a node. Its children are promoted to roots by the store.
func (s *NodeService) DeleteNode(ctx context.Context, tenantID, nodeID string) error {
	err := s.store.DeleteNode(ctx, tenantID, nodeID)
	if err == nil {
		auditAsync(s.auditWorker, tenantID, "node.delete", nodeID, nil)
	}
	return err
}
