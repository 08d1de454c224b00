package service

import (
	"context"
	"sort"
	"sync"

	"github.com/arborhq/arbor/internal/forest"
	"github.com/arborhq/arbor/internal/models"
)

// mockNodeStore records calls and returns configured responses.
type mockNodeStore struct {
	mu    sync.Mutex
	calls []string

	listNodes  func(ctx context.Context, tenantID, kindFilter string, rootsOnly bool, limit, offset int) ([]models.Node, bool, error)
	getNode    func(ctx context.Context, tenantID, nodeID string) (*models.Node, error)
	createNode func(ctx context.Context, tenantID string, req models.CreateNodeRequest) (*models.Node, error)
	updateNode func(ctx context.Context, tenantID, nodeID string, req models.UpdateNodeRequest) (*models.Node, error)
	deleteNode func(ctx context.Context, tenantID, nodeID string) error
}

func (m *mockNodeStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockNodeStore) ListNodes(ctx context.Context, tenantID, kindFilter string, rootsOnly bool, limit, offset int) ([]models.Node, bool, error) {
	m.record("ListNodes")
	return m.listNodes(ctx, tenantID, kindFilter, rootsOnly, limit, offset)
}

func (m *mockNodeStore) GetNode(ctx context.Context, tenantID, nodeID string) (*models.Node, error) {
	m.record("GetNode")
	return m.getNode(ctx, tenantID, nodeID)
}

func (m *mockNodeStore) CreateNode(ctx context.Context, tenantID string, req models.CreateNodeRequest) (*models.Node, error) {
	m.record("CreateNode")
	return m.createNode(ctx, tenantID, req)
}

func (m *mockNodeStore) UpdateNode(ctx context.Context, tenantID, nodeID string, req models.UpdateNodeRequest) (*models.Node, error) {
	m.record("UpdateNode")
	return m.updateNode(ctx, tenantID, nodeID, req)
}

func (m *mockNodeStore) DeleteNode(ctx context.Context, tenantID, nodeID string) error {
	m.record("DeleteNode")
	return m.deleteNode(ctx, tenantID, nodeID)
}

// memView is an in-memory forest.Store backed by a parent map.
type memView struct {
	parents  map[string]string
	children map[string][]string
}

func newMemView(parents map[string]string) *memView {
	v := &memView{parents: parents, children: make(map[string][]string)}
	for child, parent := range parents {
		v.children[parent] = append(v.children[parent], child)
	}
	for _, kids := range v.children {
		sort.Strings(kids)
	}
	return v
}

func (v *memView) Parent(_ context.Context, id string) (*string, error) {
	p, ok := v.parents[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (v *memView) Children(_ context.Context, id string) ([]string, error) {
	return v.children[id], nil
}

// mockTreeStore serves walks from a memView and records mutations.
type mockTreeStore struct {
	mu    sync.Mutex
	view  *memView
	calls []string

	setParent func(ctx context.Context, tenantID, nodeID string, parentID *string) (*models.Node, error)
	stats     func(ctx context.Context, tenantID string) (*models.TreeStats, error)
}

func (m *mockTreeStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockTreeStore) ForTenant(string) forest.Store {
	return m.view
}

func (m *mockTreeStore) SetParent(ctx context.Context, tenantID, nodeID string, parentID *string) (*models.Node, error) {
	m.record("SetParent")
	return m.setParent(ctx, tenantID, nodeID, parentID)
}

func (m *mockTreeStore) Stats(ctx context.Context, tenantID string) (*models.TreeStats, error) {
	m.record("Stats")
	return m.stats(ctx, tenantID)
}

// mockAuditor records audit calls.
type mockAuditor struct {
	mu    sync.Mutex
	calls []AuditJob

	err error
}

func (m *mockAuditor) RecordAudit(_ context.Context, tenantID, action, nodeID, actor string, detail map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, AuditJob{
		TenantID: tenantID,
		Action:   action,
		NodeID:   nodeID,
		Actor:    actor,
		Detail:   detail,
	})
	return m.err
}

func (m *mockAuditor) getCalls() []AuditJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]AuditJob, len(m.calls))
	copy(cp, m.calls)
	return cp
}
