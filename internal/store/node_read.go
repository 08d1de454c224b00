package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arborhq/arbor/internal/models"
)

// ListNodes returns nodes for a tenant with optional kind filter, optionally
// restricted to roots.
func (s *NodeStore) ListNodes(
	ctx context.Context,
	tenantID string,
	kindFilter string,
	rootsOnly bool,
	limit, offset int,
) ([]models.Node, bool, error) {
	if limit <= 0 {
		limit = 50
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	if offset < 0 {
		offset = 0
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, false, fmt.Errorf("listing nodes: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	where := " WHERE tenant_id = current_setting('app.tenant_id')::uuid"
	filterArgs := make([]any, 0, 1)
	argIdx := 1

	if kindFilter != "" {
		where += fmt.Sprintf(" AND kind = $%d", argIdx)
		filterArgs = append(filterArgs, kindFilter)
		argIdx++
	}

	if rootsOnly {
		where += " AND parent_id IS NULL"
	}

	query := "SELECT " + nodeColumns + " FROM forest_nodes" + where
	query += " ORDER BY position, id"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args := make([]any, 0, len(filterArgs)+2)
	args = append(args, filterArgs...)
	args = append(args, limit+1, offset)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	nodes, err := collectNodes(rows)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(nodes) > limit
	if hasMore {
		nodes = nodes[:limit]
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("committing list nodes: %w", err)
	}

	return nodes, hasMore, nil
}

// GetNode retrieves a single node by ID (pure read, no side effects).
func (s *NodeStore) GetNode(ctx context.Context, tenantID, nodeID string) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("getting node: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	query := `SELECT ` + nodeColumns + ` FROM forest_nodes WHERE tenant_id = current_setting('app.tenant_id')::uuid AND id = $1`

	row := tx.QueryRow(ctx, query, nodeID)

	n, err := scanNode(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNodeNotFound
		}

		return nil, fmt.Errorf("scanning node: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing get node: %w", err)
	}

	return n, nil
}

// GetNodes fetches the given IDs in the given ID order. IDs that no longer
// exist are skipped; traversal callers treat that as store drift, not an
// error.
func (s *NodeStore) GetNodes(ctx context.Context, tenantID string, ids []string) ([]models.Node, error) {
	if len(ids) == 0 {
		return []models.Node{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("getting nodes: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	query := `SELECT ` + nodeColumns + ` FROM forest_nodes
		WHERE tenant_id = current_setting('app.tenant_id')::uuid AND id = ANY($1)`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("querying nodes by id: %w", err)
	}
	defer rows.Close()

	fetched, err := collectNodes(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing get nodes: %w", err)
	}

	byID := make(map[string]models.Node, len(fetched))
	for _, n := range fetched {
		byID[n.ID] = n
	}

	ordered := make([]models.Node, 0, len(fetched))

	for _, id := range ids {
		if n, ok := byID[id]; ok {
			ordered = append(ordered, n)
		}
	}

	return ordered, nil
}
