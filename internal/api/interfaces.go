package api

import (
	"context"

	"github.com/arborhq/arbor/internal/domain"
	"github.com/arborhq/arbor/internal/models"
)

// NodeRepository defines node operations used by NodeHandler.
// It reuses domain.NodeService since the method sets are identical.
type NodeRepository = domain.NodeService

// TreeRepository defines hierarchy operations used by TreeHandler.
type TreeRepository = domain.TreeService

// AuditRepository defines audit log operations used by AuditHandler.
type AuditRepository interface {
	QueryAudit(ctx context.Context, tenantID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}
