package api_test

import (
	"context"

	"github.com/arborhq/arbor/internal/models"
)

// mockNodeRepo implements api.NodeRepository for testing.
type mockNodeRepo struct {
	listFn   func(ctx context.Context, tenantID, kindFilter string, rootsOnly bool, limit, offset int) ([]models.Node, bool, error)
	getFn    func(ctx context.Context, tenantID, nodeID string) (*models.Node, error)
	createFn func(ctx context.Context, tenantID string, req models.CreateNodeRequest) (*models.Node, error)
	updateFn func(ctx context.Context, tenantID, nodeID string, req models.UpdateNodeRequest) (*models.Node, error)
	deleteFn func(ctx context.Context, tenantID, nodeID string) error
}

func (m *mockNodeRepo) ListNodes(ctx context.Context, tenantID, kindFilter string, rootsOnly bool, limit, offset int) ([]models.Node, bool, error) {
	return m.listFn(ctx, tenantID, kindFilter, rootsOnly, limit, offset)
}

func (m *mockNodeRepo) GetNode(ctx context.Context, tenantID, nodeID string) (*models.Node, error) {
	return m.getFn(ctx, tenantID, nodeID)
}

func (m *mockNodeRepo) CreateNode(ctx context.Context, tenantID string, req models.CreateNodeRequest) (*models.Node, error) {
	return m.createFn(ctx, tenantID, req)
}

func (m *mockNodeRepo) UpdateNode(ctx context.Context, tenantID, nodeID string, req models.UpdateNodeRequest) (*models.Node, error) {
	return m.updateFn(ctx, tenantID, nodeID, req)
}

func (m *mockNodeRepo) DeleteNode(ctx context.Context, tenantID, nodeID string) error {
	return m.deleteFn(ctx, tenantID, nodeID)
}

// mockTreeRepo implements api.TreeRepository for testing. Unset functions
// panic, pointing at the handler under test wiring the wrong method.
type mockTreeRepo struct {
	ancestorsFn   func(ctx context.Context, tenantID, nodeID string) ([]string, error)
	supertreesFn  func(ctx context.Context, tenantID, nodeID string) ([]string, error)
	pathFn        func(ctx context.Context, tenantID, nodeID string) ([]string, error)
	parentPathFn  func(ctx context.Context, tenantID, nodeID string) ([]string, error)
	rootFn        func(ctx context.Context, tenantID, nodeID string) (string, error)
	childrenFn    func(ctx context.Context, tenantID, nodeID string) ([]string, error)
	descendantsFn func(ctx context.Context, tenantID, nodeID string, order models.Order) ([]string, error)
	subtreesFn    func(ctx context.Context, tenantID, nodeID string, order models.Order) ([]string, error)
	nodeInfoFn    func(ctx context.Context, tenantID, nodeID string) (*models.NodeInfo, error)
	relationFn    func(ctx context.Context, tenantID, a, b string) (*models.Relation, error)
	reparentFn    func(ctx context.Context, tenantID, nodeID string, parentID *string) (*models.Node, error)
	makeRootFn    func(ctx context.Context, tenantID, nodeID string) (*models.Node, error)
	validateFn    func(ctx context.Context, tenantID, nodeID string, parentID *string) error
	statsFn       func(ctx context.Context, tenantID string) (*models.TreeStats, error)
}

func (m *mockTreeRepo) Ancestors(ctx context.Context, tenantID, nodeID string) ([]string, error) {
	return m.ancestorsFn(ctx, tenantID, nodeID)
}

func (m *mockTreeRepo) Supertrees(ctx context.Context, tenantID, nodeID string) ([]string, error) {
	return m.supertreesFn(ctx, tenantID, nodeID)
}

func (m *mockTreeRepo) Path(ctx context.Context, tenantID, nodeID string) ([]string, error) {
	return m.pathFn(ctx, tenantID, nodeID)
}

func (m *mockTreeRepo) ParentPath(ctx context.Context, tenantID, nodeID string) ([]string, error) {
	return m.parentPathFn(ctx, tenantID, nodeID)
}

func (m *mockTreeRepo) Root(ctx context.Context, tenantID, nodeID string) (string, error) {
	return m.rootFn(ctx, tenantID, nodeID)
}

func (m *mockTreeRepo) Children(ctx context.Context, tenantID, nodeID string) ([]string, error) {
	return m.childrenFn(ctx, tenantID, nodeID)
}

func (m *mockTreeRepo) Descendants(ctx context.Context, tenantID, nodeID string, order models.Order) ([]string, error) {
	return m.descendantsFn(ctx, tenantID, nodeID, order)
}

func (m *mockTreeRepo) Subtrees(ctx context.Context, tenantID, nodeID string, order models.Order) ([]string, error) {
	return m.subtreesFn(ctx, tenantID, nodeID, order)
}

func (m *mockTreeRepo) NodeInfo(ctx context.Context, tenantID, nodeID string) (*models.NodeInfo, error) {
	return m.nodeInfoFn(ctx, tenantID, nodeID)
}

func (m *mockTreeRepo) Relation(ctx context.Context, tenantID, a, b string) (*models.Relation, error) {
	return m.relationFn(ctx, tenantID, a, b)
}

func (m *mockTreeRepo) Reparent(ctx context.Context, tenantID, nodeID string, parentID *string) (*models.Node, error) {
	return m.reparentFn(ctx, tenantID, nodeID, parentID)
}

func (m *mockTreeRepo) MakeRoot(ctx context.Context, tenantID, nodeID string) (*models.Node, error) {
	return m.makeRootFn(ctx, tenantID, nodeID)
}

func (m *mockTreeRepo) ValidateParent(ctx context.Context, tenantID, nodeID string, parentID *string) error {
	return m.validateFn(ctx, tenantID, nodeID, parentID)
}

func (m *mockTreeRepo) Stats(ctx context.Context, tenantID string) (*models.TreeStats, error) {
	return m.statsFn(ctx, tenantID)
}

// mockAuditRepo implements api.AuditRepository for testing.
type mockAuditRepo struct {
	queryFn func(ctx context.Context, tenantID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}

func (m *mockAuditRepo) QueryAudit(ctx context.Context, tenantID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	return m.queryFn(ctx, tenantID, opts)
}
