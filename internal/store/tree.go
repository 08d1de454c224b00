package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arborhq/arbor/internal/forest"
	"github.com/arborhq/arbor/internal/models"
)

// TreeStore owns the parent relation: tenant-scoped forest.Store views for
// the traversal engine, and the serialized SetParent write.
type TreeStore struct {
	Base
}

// NewTreeStore creates a new TreeStore.
func NewTreeStore(base Base) *TreeStore {
	return &TreeStore{Base: base}
}

// ForTenant returns a forest.Store view scoped to one tenant. Each Parent
// or Children call is an independent query; the view holds no snapshot.
func (s *TreeStore) ForTenant(tenantID string) forest.Store {
	return &tenantView{pool: s.Pool, tenantID: tenantID}
}

// tenantView reads the parent relation for a single tenant directly off the
// pool. Absent nodes read as roots with no children, per the forest.Store
// contract.
type tenantView struct {
	pool     queryer
	tenantID string
}

// queryer is the subset of query methods tenantView needs, satisfied by
// both the pool and a transaction.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (v *tenantView) Parent(ctx context.Context, id string) (*string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var parentID *string

	err := v.pool.QueryRow(ctx,
		"SELECT parent_id FROM forest_nodes WHERE tenant_id = $1 AND id = $2",
		v.tenantID, id,
	).Scan(&parentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("querying parent of %q: %w", id, err)
	}

	return parentID, nil
}

func (v *tenantView) Children(ctx context.Context, id string) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	// Sibling order is position then id; this defines traversal order for
	// every caller of the engine.
	rows, err := v.pool.Query(ctx,
		"SELECT id FROM forest_nodes WHERE tenant_id = $1 AND parent_id = $2 ORDER BY position, id",
		v.tenantID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying children of %q: %w", id, err)
	}
	defer rows.Close()

	children := make([]string, 0, 8)

	for rows.Next() {
		var child string
		if err := rows.Scan(&child); err != nil {
			return nil, fmt.Errorf("scanning child of %q: %w", id, err)
		}

		children = append(children, child)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating children of %q: %w", id, err)
	}

	return children, nil
}

// SetParent reassigns a node's parent (nil detaches it into a root). Writes
// to the parent relation are serialized per tenant with an advisory lock,
// and the cycle check runs inside the same transaction against the locked
// state, so two concurrent reassignments can never combine into a cycle.
func (s *TreeStore) SetParent(
	ctx context.Context,
	tenantID, nodeID string,
	parentID *string,
) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("setting parent: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", tenantID); err != nil {
		return nil, fmt.Errorf("acquiring reparent lock: %w", err)
	}

	// Re-validate against the locked state. The engine walks the candidate
	// chain through this transaction, so it sees exactly what the write
	// will commit against.
	txEngine := forest.New(&tenantView{pool: tx, tenantID: tenantID})
	if err := txEngine.ValidateReparent(ctx, nodeID, parentID); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx,
		`UPDATE forest_nodes SET parent_id = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
		RETURNING `+nodeColumns,
		parentID, tenantID, nodeID,
	)

	n, err := scanNode(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNodeNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("parent %v: %w", parentID, models.ErrNodeNotFound)
		}

		return nil, fmt.Errorf("scanning reparented node: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing set parent: %w", err)
	}

	s.notify("node.reparented", tenantID, nodeID)

	return n, nil
}

// Stats returns aggregate node and root counts for a tenant.
func (s *TreeStore) Stats(ctx context.Context, tenantID string) (*models.TreeStats, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var stats models.TreeStats

	err = tx.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE parent_id IS NULL)
		FROM forest_nodes WHERE tenant_id = current_setting('app.tenant_id')::uuid`,
	).Scan(&stats.Nodes, &stats.Roots)
	if err != nil {
		return nil, fmt.Errorf("counting nodes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing stats: %w", err)
	}

	return &stats, nil
}
