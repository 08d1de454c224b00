package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/arborhq/arbor/internal/domain"
	"github.com/arborhq/arbor/internal/forest"
	"github.com/arborhq/arbor/internal/metrics"
	"github.com/arborhq/arbor/internal/models"
)

// TreeStore is the data-access interface TreeService depends on.
type TreeStore interface {
	ForTenant(tenantID string) forest.Store
	SetParent(ctx context.Context, tenantID, nodeID string, parentID *string) (*models.Node, error)
	Stats(ctx context.Context, tenantID string) (*models.TreeStats, error)
}

// Compile-time check: *TreeService must satisfy domain.TreeService.
var _ domain.TreeService = (*TreeService)(nil)

// TreeService runs hierarchy walks against a tenant-scoped store view and
// serializes parent reassignment through the store.
type TreeService struct {
	store       TreeStore
	auditWorker AuditEnqueuer
	log         *logrus.Logger
	opts        []forest.Option
}

// NewTreeService creates a TreeService. Engine options (such as the maximum
// walk depth) apply to every walk the service runs.
func NewTreeService(store TreeStore, auditWorker AuditEnqueuer, log *logrus.Logger, opts ...forest.Option) *TreeService {
	return &TreeService{store: store, auditWorker: auditWorker, log: log, opts: opts}
}

// engine builds a walk engine over the tenant's store view. Engines are
// stateless, so building one per call is cheap.
func (s *TreeService) engine(tenantID string) *forest.Engine {
	return forest.New(s.store.ForTenant(tenantID), s.opts...)
}

// Ancestors returns the node's proper ancestors, nearest parent first.
func (s *TreeService) Ancestors(ctx context.Context, tenantID, nodeID string) ([]string, error) {
	return s.engine(tenantID).Ancestors(ctx, nodeID)
}

// Supertrees returns the node itself followed by its ancestors.
func (s *TreeService) Supertrees(ctx context.Context, tenantID, nodeID string) ([]string, error) {
	return s.engine(tenantID).Supertrees(ctx, nodeID)
}

// Path returns the root-to-node path, root first.
func (s *TreeService) Path(ctx context.Context, tenantID, nodeID string) ([]string, error) {
	return s.engine(tenantID).Path(ctx, nodeID)
}

// ParentPath returns the root-to-parent path, empty for roots.
func (s *TreeService) ParentPath(ctx context.Context, tenantID, nodeID string) ([]string, error) {
	return s.engine(tenantID).ParentPath(ctx, nodeID)
}

// Root returns the root of the node's tree (the node itself for roots).
func (s *TreeService) Root(ctx context.Context, tenantID, nodeID string) (string, error) {
	return s.engine(tenantID).Root(ctx, nodeID)
}

// Children returns the node's direct children in stored order.
func (s *TreeService) Children(ctx context.Context, tenantID, nodeID string) ([]string, error) {
	return s.store.ForTenant(tenantID).Children(ctx, nodeID)
}

// Descendants returns the node's proper descendants in the given order.
func (s *TreeService) Descendants(ctx context.Context, tenantID, nodeID string, order models.Order) ([]string, error) {
	return s.engine(tenantID).Descendants(ctx, nodeID, order)
}

// Subtrees returns the node followed by its descendants in the given order.
func (s *TreeService) Subtrees(ctx context.Context, tenantID, nodeID string, order models.Order) ([]string, error) {
	return s.engine(tenantID).Subtrees(ctx, nodeID, order)
}

// NodeInfo reports the node's place in its tree.
func (s *TreeService) NodeInfo(ctx context.Context, tenantID, nodeID string) (*models.NodeInfo, error) {
	view := s.store.ForTenant(tenantID)
	e := forest.New(view, s.opts...)

	parent, err := view.Parent(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	children, err := view.Children(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	depth, err := e.Depth(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	rootID, err := e.Root(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	return &models.NodeInfo{
		ID:       nodeID,
		Root:     parent == nil,
		Child:    parent != nil,
		Parent:   len(children) > 0,
		Leaf:     len(children) == 0,
		Depth:    depth,
		RootID:   rootID,
		ParentID: parent,
	}, nil
}

// Relation reports every pairwise order predicate between two nodes.
func (s *TreeService) Relation(ctx context.Context, tenantID, a, b string) (*models.Relation, error) {
	e := s.engine(tenantID)
	rel := &models.Relation{A: a, B: b}

	var err error
	if rel.AncestorOf, err = e.IsAncestorOf(ctx, a, b); err != nil {
		return nil, err
	}
	if rel.DescendantOf, err = e.IsDescendantOf(ctx, a, b); err != nil {
		return nil, err
	}
	if rel.SupertreeOf, err = e.IsSupertreeOf(ctx, a, b); err != nil {
		return nil, err
	}
	if rel.SubtreeOf, err = e.IsSubtreeOf(ctx, a, b); err != nil {
		return nil, err
	}
	if rel.ChildOf, err = e.IsChildOf(ctx, a, b); err != nil {
		return nil, err
	}
	if rel.ParentOf, err = e.IsParentOf(ctx, a, b); err != nil {
		return nil, err
	}
	if rel.SiblingOf, err = e.IsSiblingOf(ctx, a, b); err != nil {
		return nil, err
	}
	if rel.RootOf, err = e.IsRootOf(ctx, a, b); err != nil {
		return nil, err
	}

	return rel, nil
}

// Reparent reassigns the node's parent. A nil parentID detaches the node
// into a root. Cycle-creating assignments are rejected with models.ErrCycle.
func (s *TreeService) Reparent(ctx context.Context, tenantID, nodeID string, parentID *string) (*models.Node, error) {
	node, err := s.store.SetParent(ctx, tenantID, nodeID, parentID)
	if err != nil {
		if errors.Is(err, models.ErrCycle) {
			metrics.CycleRejections.Inc()
			s.log.WithFields(logrus.Fields{
				"tenant_id": tenantID,
				"node_id":   nodeID,
			}).Info("reparent rejected: would create cycle")
		}
		return nil, err
	}

	detail := map[string]any{"parent_id": nil}
	if parentID != nil {
		detail["parent_id"] = *parentID
	}
	auditAsync(s.auditWorker, tenantID, "node.reparent", nodeID, detail)

	return node, nil
}

// MakeRoot detaches the node from its parent.
func (s *TreeService) MakeRoot(ctx context.Context, tenantID, nodeID string) (*models.Node, error) {
	node, err := s.store.SetParent(ctx, tenantID, nodeID, nil)
	if err != nil {
		return nil, err
	}

	auditAsync(s.auditWorker, tenantID, "node.make_root", nodeID, nil)

	return node, nil
}

// ValidateParent checks whether assigning the candidate parent would be
// legal, without committing anything. The result is advisory: a concurrent
// writer may invalidate it before a later Reparent, which re-validates
// under its own lock.
func (s *TreeService) ValidateParent(ctx context.Context, tenantID, nodeID string, parentID *string) error {
	err := s.engine(tenantID).ValidateReparent(ctx, nodeID, parentID)
	if errors.Is(err, models.ErrCycle) {
		metrics.CycleRejections.Inc()
	}
	return err
}

// Stats returns aggregate node and root counts for the tenant.
func (s *TreeService) Stats(ctx context.Context, tenantID string) (*models.TreeStats, error) {
	stats, err := s.store.Stats(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	metrics.NodeCount.Set(float64(stats.Nodes))
	metrics.RootCount.Set(float64(stats.Roots))

	return stats, nil
}
