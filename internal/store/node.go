package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arborhq/arbor/internal/models"
)

// NodeStore handles node CRUD operations. The parent link is written only
// at creation here; reassignment goes through TreeStore.SetParent so the
// serialized cycle check cannot be bypassed.
type NodeStore struct {
	Base
}

// NewNodeStore creates a new NodeStore.
func NewNodeStore(base Base) *NodeStore {
	return &NodeStore{Base: base}
}

// CreateNode inserts a new node and returns the created record. A fresh
// node has no descendants, so a parent link set at creation can never close
// a cycle; only the parent's existence needs checking, which the foreign
// key enforces.
func (s *NodeStore) CreateNode(
	ctx context.Context,
	tenantID string,
	req models.CreateNodeRequest,
) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("creating node: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	props := req.Properties
	if props == nil {
		props = map[string]any{}
	}

	propsJSON, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("preparing node properties: %w", err)
	}

	query := `INSERT INTO forest_nodes (id, tenant_id, kind, label, properties, parent_id, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + nodeColumns

	row := tx.QueryRow(ctx, query, req.ID, tenantID, req.Kind, req.Label, propsJSON, req.ParentID, req.Position)

	n, err := scanNode(row.Scan)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, models.ErrDuplicateKey
			case "23503":
				return nil, fmt.Errorf("parent %v: %w", req.ParentID, models.ErrNodeNotFound)
			}
		}

		return nil, fmt.Errorf("scanning created node: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create node: %w", err)
	}

	s.notify("node.created", tenantID, n.ID)

	return n, nil
}

// buildNodeUpdateQuery constructs the SET clause and arguments for UpdateNode.
func buildNodeUpdateQuery(req models.UpdateNodeRequest) (setClauses []string, args []any, nextArg int, err error) {
	setClauses = make([]string, 0, 4)
	args = make([]any, 0, 5)
	argIdx := 1

	if req.Kind != nil {
		setClauses = append(setClauses, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *req.Kind)
		argIdx++
	}

	if req.Label != nil {
		setClauses = append(setClauses, fmt.Sprintf("label = $%d", argIdx))
		args = append(args, *req.Label)
		argIdx++
	}

	if req.Position != nil {
		setClauses = append(setClauses, fmt.Sprintf("position = $%d", argIdx))
		args = append(args, *req.Position)
		argIdx++
	}

	if req.Properties != nil {
		propsJSON, err := json.Marshal(req.Properties)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("preparing node properties: %w", err)
		}

		setClauses = append(setClauses, fmt.Sprintf("properties = $%d", argIdx))
		args = append(args, propsJSON)
		argIdx++
	}

	return setClauses, args, argIdx, nil
}

// UpdateNode updates an existing node's payload fields and returns the result.
func (s *NodeStore) UpdateNode(
	ctx context.Context,
	tenantID string,
	nodeID string,
	req models.UpdateNodeRequest,
) (*models.Node, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	setClauses, args, argIdx, err := buildNodeUpdateQuery(req)
	if err != nil {
		return nil, err
	}

	if len(setClauses) == 0 {
		return s.GetNode(ctx, tenantID, nodeID)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("updating node: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	query := fmt.Sprintf(
		"UPDATE forest_nodes SET %s WHERE tenant_id = $%d AND id = $%d RETURNING %s",
		strings.Join(setClauses, ", "),
		argIdx,
		argIdx+1,
		nodeColumns,
	)
	args = append(args, tenantID, nodeID)

	row := tx.QueryRow(ctx, query, args...)

	n, err := scanNode(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNodeNotFound
		}

		return nil, fmt.Errorf("scanning updated node: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing update node: %w", err)
	}

	s.notify("node.updated", tenantID, nodeID)

	return n, nil
}

// DeleteNode removes a node by ID. Its children are promoted to roots by
// the parent foreign key's ON DELETE SET NULL; the forest never reattaches
// orphans automatically.
func (s *NodeStore) DeleteNode(ctx context.Context, tenantID, nodeID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	tag, err := tx.Exec(ctx, "DELETE FROM forest_nodes WHERE tenant_id = current_setting('app.tenant_id')::uuid AND id = $1", nodeID)
	if err != nil {
		return fmt.Errorf("executing node delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrNodeNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing delete node: %w", err)
	}

	s.notify("node.deleted", tenantID, nodeID)

	return nil
}
