package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/arborhq/arbor/internal/models"
)

// nodeColumns lists the columns selected for node queries.
const nodeColumns = `id, tenant_id, kind, label, properties, parent_id,
	position, created_at, updated_at`

// scanNode scans a single row into a models.Node.
func scanNode(scan func(dest ...any) error) (*models.Node, error) {
	var n models.Node
	var tenantID uuid.UUID
	var props []byte
	var parentID *string

	err := scan(
		&n.ID,
		&tenantID,
		&n.Kind,
		&n.Label,
		&props,
		&parentID,
		&n.Position,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.TenantID = tenantID
	n.ParentID = parentID

	if err := json.Unmarshal(props, &n.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling node properties: %w", err)
	}

	return &n, nil
}

// collectNodes scans all rows into a node slice.
func collectNodes(rows pgx.Rows) ([]models.Node, error) {
	nodes := make([]models.Node, 0, 16)

	for rows.Next() {
		n, err := scanNode(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning node row: %w", err)
		}

		nodes = append(nodes, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating node rows: %w", err)
	}

	return nodes, nil
}

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 1000
