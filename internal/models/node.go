// Package models defines data types for the forest service.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Node represents a single entry in the forest. The parent link is the only
// structural field; everything else is caller-owned payload.
type Node struct {
	ID         string         `json:"id"`
	TenantID   uuid.UUID      `json:"-"`
	Kind       string         `json:"kind"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
	ParentID   *string        `json:"parent_id,omitempty"`
	Position   int            `json:"position"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.ParentID == nil }

// CreateNodeRequest is the payload for creating a new node.
type CreateNodeRequest struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Label      string         `json:"label"`
	ParentID   *string        `json:"parent_id,omitempty"`
	Position   int            `json:"position"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Validate checks that required fields are present and within limits on
// CreateNodeRequest. If ID is empty, a UUID is auto-generated.
func (r *CreateNodeRequest) Validate() error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	if len(r.ID) > 255 {
		return ErrFieldTooLong("id", 255)
	}

	if r.Kind == "" {
		return ErrMissingKind
	}

	if len(r.Kind) > 100 {
		return ErrFieldTooLong("kind", 100)
	}

	if r.Label == "" {
		return ErrMissingLabel
	}

	if len(r.Label) > 10000 {
		return ErrFieldTooLong("label", 10000)
	}

	if r.ParentID != nil {
		if *r.ParentID == "" {
			return fmt.Errorf("parent_id cannot be empty, omit it to create a root")
		}

		if *r.ParentID == r.ID {
			return ErrCycle
		}

		if len(*r.ParentID) > 255 {
			return ErrFieldTooLong("parent_id", 255)
		}
	}

	if r.Properties != nil {
		data, err := json.Marshal(r.Properties)
		if err != nil {
			return fmt.Errorf("invalid properties: %w", err)
		}
		if len(data) > 65536 {
			return ErrFieldTooLong("properties", 65536)
		}
	}

	return nil
}

// UpdateNodeRequest is the payload for updating a node's payload fields.
// The parent link is never touched here; reparenting goes through
// SetParentRequest so the cycle check cannot be bypassed.
type UpdateNodeRequest struct {
	Kind       *string        `json:"kind,omitempty"`
	Label      *string        `json:"label,omitempty"`
	Position   *int           `json:"position,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Validate checks UpdateNodeRequest fields.
func (r *UpdateNodeRequest) Validate() error {
	if r.Kind != nil && *r.Kind == "" {
		return fmt.Errorf("kind cannot be empty")
	}

	if r.Label != nil && *r.Label == "" {
		return fmt.Errorf("label cannot be empty")
	}

	if r.Kind != nil && len(*r.Kind) > 100 {
		return ErrFieldTooLong("kind", 100)
	}

	if r.Label != nil && len(*r.Label) > 10000 {
		return ErrFieldTooLong("label", 10000)
	}

	if r.Properties != nil {
		data, err := json.Marshal(r.Properties)
		if err != nil {
			return fmt.Errorf("invalid properties: %w", err)
		}
		if len(data) > 65536 {
			return ErrFieldTooLong("properties", 65536)
		}
	}

	return nil
}

// SetParentRequest is the payload for reassigning a node's parent.
// A nil ParentID detaches the node, making it a root.
type SetParentRequest struct {
	ParentID *string `json:"parent_id"`
}

// Validate checks SetParentRequest fields.
func (r *SetParentRequest) Validate() error {
	if r.ParentID != nil {
		if *r.ParentID == "" {
			return fmt.Errorf("parent_id cannot be empty, use null to detach")
		}

		if len(*r.ParentID) > 255 {
			return ErrFieldTooLong("parent_id", 255)
		}
	}

	return nil
}
