package forest

import (
	"context"
	"fmt"

	"github.com/arborhq/arbor/internal/models"
)

// ValidateReparent decides whether assigning candidate as node's parent
// preserves the forest invariant. It is a pure decision: the write itself
// belongs to the store, invoked only after this returns nil.
//
// A nil candidate detaches the node and is always valid. Otherwise the
// assignment is rejected with models.ErrCycle when candidate is the node
// itself, or when node already sits on candidate's ancestor chain; the
// only way a single reassignment can close a cycle. Only candidate's chain
// is walked, so the check is O(depth of candidate), and the walk stops as
// soon as node is found.
func (e *Engine) ValidateReparent(ctx context.Context, node string, candidate *string) error {
	if candidate == nil {
		return nil
	}

	if *candidate == node {
		return fmt.Errorf("node %q cannot be its own parent: %w", node, models.ErrCycle)
	}

	found := false

	err := e.walkAncestors(ctx, *candidate, func(a string) bool {
		if a == node {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	if found {
		return fmt.Errorf("node %q is an ancestor of candidate parent %q: %w", node, *candidate, models.ErrCycle)
	}

	return nil
}
