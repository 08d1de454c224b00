package store_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arborhq/arbor/internal/dbpool"
	"github.com/arborhq/arbor/internal/forest"
	"github.com/arborhq/arbor/internal/models"
	"github.com/arborhq/arbor/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	sharedEnv = &testEnv{pool: pool, log: log}

	return sharedEnv
}

// createTestTenant inserts a throwaway tenant and returns its ID.
func createTestTenant(t *testing.T, env *testEnv) string {
	t.Helper()

	ctx := context.Background()
	tenantID := uuid.New().String()
	apiKey := "test-key-" + tenantID
	hash := sha256.Sum256([]byte(apiKey))

	_, err := env.pool.Exec(ctx,
		"INSERT INTO tenants (id, name, api_key_hash) VALUES ($1, $2, $3)",
		tenantID, "test-"+tenantID[:8], hex.EncodeToString(hash[:]),
	)
	if err != nil {
		t.Fatalf("creating test tenant: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx := context.Background()
		env.pool.Exec(cleanupCtx, "DELETE FROM forest_audit WHERE tenant_id = $1", tenantID)  //nolint:errcheck
		env.pool.Exec(cleanupCtx, "DELETE FROM forest_nodes WHERE tenant_id = $1", tenantID) //nolint:errcheck
		env.pool.Exec(cleanupCtx, "DELETE FROM tenants WHERE id = $1", tenantID)             //nolint:errcheck
	})

	return tenantID
}

func newStores(env *testEnv) (*store.NodeStore, *store.TreeStore) {
	base := store.Base{Pool: env.pool, Log: env.log}
	return store.NewNodeStore(base), store.NewTreeStore(base)
}

func mustCreate(t *testing.T, nodes *store.NodeStore, tenantID, id string, parent *string) *models.Node {
	t.Helper()

	n, err := nodes.CreateNode(context.Background(), tenantID, models.CreateNodeRequest{
		ID: id, Kind: "category", Label: "node " + id, ParentID: parent,
	})
	if err != nil {
		t.Fatalf("creating node %q: %v", id, err)
	}

	return n
}

func ptr(s string) *string { return &s }

func TestNodeStore_CreateGetDelete(t *testing.T) {
	env := getTestEnv(t)
	tenantID := createTestTenant(t, env)
	nodes, _ := newStores(env)
	ctx := context.Background()

	created := mustCreate(t, nodes, tenantID, "r1", nil)
	if created.ParentID != nil {
		t.Errorf("expected root, got parent %v", *created.ParentID)
	}

	got, err := nodes.GetNode(ctx, tenantID, "r1")
	if err != nil {
		t.Fatalf("getting node: %v", err)
	}
	if got.ID != "r1" || got.Kind != "category" {
		t.Errorf("got %+v", got)
	}

	if _, err := nodes.CreateNode(ctx, tenantID, models.CreateNodeRequest{
		ID: "r1", Kind: "category", Label: "dup",
	}); !errors.Is(err, models.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	if err := nodes.DeleteNode(ctx, tenantID, "r1"); err != nil {
		t.Fatalf("deleting node: %v", err)
	}

	if _, err := nodes.GetNode(ctx, tenantID, "r1"); !errors.Is(err, models.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound after delete, got %v", err)
	}
}

func TestNodeStore_CreateWithMissingParent(t *testing.T) {
	env := getTestEnv(t)
	tenantID := createTestTenant(t, env)
	nodes, _ := newStores(env)

	_, err := nodes.CreateNode(context.Background(), tenantID, models.CreateNodeRequest{
		ID: "orphan", Kind: "category", Label: "x", ParentID: ptr("nope"),
	})
	if !errors.Is(err, models.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound for missing parent, got %v", err)
	}
}

func TestTreeStore_ViewAndTraversal(t *testing.T) {
	env := getTestEnv(t)
	tenantID := createTestTenant(t, env)
	nodes, trees := newStores(env)
	ctx := context.Background()

	// R -> A -> B, R -> C; positions give A before C.
	mustCreate(t, nodes, tenantID, "R", nil)
	if _, err := nodes.CreateNode(ctx, tenantID, models.CreateNodeRequest{
		ID: "A", Kind: "category", Label: "a", ParentID: ptr("R"), Position: 1,
	}); err != nil {
		t.Fatalf("creating A: %v", err)
	}
	if _, err := nodes.CreateNode(ctx, tenantID, models.CreateNodeRequest{
		ID: "C", Kind: "category", Label: "c", ParentID: ptr("R"), Position: 2,
	}); err != nil {
		t.Fatalf("creating C: %v", err)
	}
	mustCreate(t, nodes, tenantID, "B", ptr("A"))

	engine := forest.New(trees.ForTenant(tenantID))

	chain, err := engine.Ancestors(ctx, "B")
	if err != nil {
		t.Fatalf("ancestors: %v", err)
	}
	if want := []string{"A", "R"}; !reflect.DeepEqual(chain, want) {
		t.Errorf("Ancestors(B) = %v, want %v", chain, want)
	}

	desc, err := engine.Descendants(ctx, "R", models.OrderBFS)
	if err != nil {
		t.Fatalf("descendants: %v", err)
	}
	if want := []string{"A", "C", "B"}; !reflect.DeepEqual(desc, want) {
		t.Errorf("Descendants(R, bfs) = %v, want %v", desc, want)
	}
}

func TestTreeStore_SetParent(t *testing.T) {
	env := getTestEnv(t)
	tenantID := createTestTenant(t, env)
	nodes, trees := newStores(env)
	ctx := context.Background()

	mustCreate(t, nodes, tenantID, "R", nil)
	mustCreate(t, nodes, tenantID, "A", ptr("R"))
	mustCreate(t, nodes, tenantID, "B", ptr("A"))

	// Legal move: B becomes a direct child of R.
	moved, err := trees.SetParent(ctx, tenantID, "B", ptr("R"))
	if err != nil {
		t.Fatalf("reparenting B: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != "R" {
		t.Errorf("B parent = %v, want R", moved.ParentID)
	}

	// Self-parent and descendant-parent are rejected with ErrCycle.
	if _, err := trees.SetParent(ctx, tenantID, "A", ptr("A")); !errors.Is(err, models.ErrCycle) {
		t.Errorf("self-parent: expected ErrCycle, got %v", err)
	}
	if _, err := trees.SetParent(ctx, tenantID, "R", ptr("B")); !errors.Is(err, models.ErrCycle) {
		t.Errorf("cycle move: expected ErrCycle, got %v", err)
	}

	// Detach: A becomes a root.
	detached, err := trees.SetParent(ctx, tenantID, "A", nil)
	if err != nil {
		t.Fatalf("detaching A: %v", err)
	}
	if detached.ParentID != nil {
		t.Errorf("A parent = %v, want nil", *detached.ParentID)
	}

	if _, err := trees.SetParent(ctx, tenantID, "missing", ptr("R")); !errors.Is(err, models.ErrNodeNotFound) {
		t.Errorf("missing node: expected ErrNodeNotFound, got %v", err)
	}
}

func TestNodeStore_DeletePromotesChildren(t *testing.T) {
	env := getTestEnv(t)
	tenantID := createTestTenant(t, env)
	nodes, trees := newStores(env)
	ctx := context.Background()

	mustCreate(t, nodes, tenantID, "R", nil)
	mustCreate(t, nodes, tenantID, "A", ptr("R"))
	mustCreate(t, nodes, tenantID, "B", ptr("A"))

	if err := nodes.DeleteNode(ctx, tenantID, "A"); err != nil {
		t.Fatalf("deleting A: %v", err)
	}

	// B is promoted to a root, not reattached to R.
	engine := forest.New(trees.ForTenant(tenantID))
	isRoot, err := engine.IsRoot(ctx, "B")
	if err != nil {
		t.Fatalf("IsRoot(B): %v", err)
	}
	if !isRoot {
		t.Error("expected B to become a root after deleting its parent")
	}
}

func TestTreeStore_Stats(t *testing.T) {
	env := getTestEnv(t)
	tenantID := createTestTenant(t, env)
	nodes, trees := newStores(env)
	ctx := context.Background()

	mustCreate(t, nodes, tenantID, "R", nil)
	mustCreate(t, nodes, tenantID, "A", ptr("R"))
	mustCreate(t, nodes, tenantID, "S", nil)

	stats, err := trees.Stats(ctx, tenantID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Nodes != 3 || stats.Roots != 2 {
		t.Errorf("stats = %+v, want 3 nodes / 2 roots", stats)
	}
}

func TestAuditStore_RecordAndQuery(t *testing.T) {
	env := getTestEnv(t)
	tenantID := createTestTenant(t, env)
	audit := store.NewAuditStore(store.Base{Pool: env.pool, Log: env.log})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := audit.RecordAudit(ctx, tenantID, "node.reparent", fmt.Sprintf("n%d", i), "tester", map[string]any{
			"old_parent": nil, "new_parent": "R",
		})
		if err != nil {
			t.Fatalf("recording audit: %v", err)
		}
	}

	entries, hasMore, err := audit.QueryAudit(ctx, tenantID, models.AuditQueryOpts{Action: "node.reparent", Limit: 2})
	if err != nil {
		t.Fatalf("querying audit: %v", err)
	}
	if len(entries) != 2 || !hasMore {
		t.Errorf("got %d entries (hasMore=%v), want 2 with more", len(entries), hasMore)
	}

	byNode, _, err := audit.QueryAudit(ctx, tenantID, models.AuditQueryOpts{NodeID: "n1"})
	if err != nil {
		t.Fatalf("querying audit by node: %v", err)
	}
	if len(byNode) != 1 || byNode[0].NodeID != "n1" {
		t.Errorf("got %+v, want single n1 entry", byNode)
	}
}
