package forest

import (
	"context"
	"fmt"

	"github.com/arborhq/arbor/internal/models"
)

// Descendants returns every node below id in the given traversal order,
// excluding id itself. An absent node or a leaf yields an empty slice.
//
// All three orders share the same logical tree; they differ only in when a
// node is emitted relative to its own subtree: pre-order and breadth-first
// place every node before its descendants, post-order after them.
func (e *Engine) Descendants(ctx context.Context, id string, order models.Order) ([]string, error) {
	t := &traversal{e: e, seen: map[string]bool{id: true}}

	var err error

	switch order {
	case models.OrderBFS:
		err = t.breadthFirst(ctx, id)
	case models.OrderPost:
		err = t.depthFirst(ctx, id, 0, true)
	case models.OrderPre, "":
		err = t.depthFirst(ctx, id, 0, false)
	default:
		return nil, fmt.Errorf("unknown traversal order %q", order)
	}

	if err != nil {
		return nil, err
	}

	return t.out, nil
}

// Subtrees returns id plus its descendants in the given order. The node
// itself is always listed first: the subtree set is the node prepended to
// its descendant enumeration.
func (e *Engine) Subtrees(ctx context.Context, id string, order models.Order) ([]string, error) {
	desc, err := e.Descendants(ctx, id, order)
	if err != nil {
		return nil, err
	}

	return append([]string{id}, desc...), nil
}

// traversal accumulates one descendant enumeration. The seen set doubles as
// the corruption guard: a repeat visit means the children relation loops,
// which the forest invariant forbids.
type traversal struct {
	e    *Engine
	out  []string
	seen map[string]bool
}

func (t *traversal) mark(id string) error {
	if t.seen[id] {
		return fmt.Errorf("revisited node %q: %w", id, models.ErrCycleDetected)
	}

	if len(t.seen) >= t.e.maxNodes {
		return fmt.Errorf("traversal exceeded %d nodes: %w", t.e.maxNodes, models.ErrCycleDetected)
	}

	t.seen[id] = true

	return nil
}

// depthFirst emits the subtree below id. With post set, each child's
// subtree is emitted before the child's own entry would be, so descendants
// always precede ancestors, the defining property of post-order.
func (t *traversal) depthFirst(ctx context.Context, id string, depth int, post bool) error {
	if depth >= t.e.maxDepth {
		return fmt.Errorf("descent below %q exceeded depth %d: %w", id, t.e.maxDepth, models.ErrCycleDetected)
	}

	children, err := t.e.store.Children(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up children of %q: %w", id, err)
	}

	for _, child := range children {
		if err := t.mark(child); err != nil {
			return err
		}

		if !post {
			t.out = append(t.out, child)
		}

		if err := t.depthFirst(ctx, child, depth+1, post); err != nil {
			return err
		}

		if post {
			t.out = append(t.out, child)
		}
	}

	return nil
}

// breadthFirst emits the subtree below id level by level, keeping the
// store's sibling order within each level.
func (t *traversal) breadthFirst(ctx context.Context, id string) error {
	frontier := []string{id}

	for level := 0; len(frontier) > 0; level++ {
		if level >= t.e.maxDepth {
			return fmt.Errorf("descent below %q exceeded depth %d: %w", id, t.e.maxDepth, models.ErrCycleDetected)
		}

		var next []string

		for _, cur := range frontier {
			children, err := t.e.store.Children(ctx, cur)
			if err != nil {
				return fmt.Errorf("looking up children of %q: %w", cur, err)
			}

			for _, child := range children {
				if err := t.mark(child); err != nil {
					return err
				}

				t.out = append(t.out, child)
				next = append(next, child)
			}
		}

		frontier = next
	}

	return nil
}
