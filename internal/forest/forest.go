// Package forest implements the parent-link invariant and the traversal
// engine over a forest of single-parent nodes.
//
// The package is storage-agnostic: every operation takes its node data from
// a Store, one parent or children lookup at a time, with no caching. Results
// therefore reflect the store's state at call time; callers that need a
// consistent snapshot must provide read isolation at the Store boundary.
package forest

import (
	"context"
	"fmt"

	"github.com/arborhq/arbor/internal/models"
)

// Store is the minimal node-store contract the engine reads from.
//
// Parent returns the parent ID of a node, nil when the node is a root.
// Absent nodes behave like roots with no children: Parent returns nil and
// Children returns an empty slice, never an error.
//
// Children returns the IDs of a node's direct children. The slice order is
// the store's sibling order and defines the within-level order of every
// traversal.
type Store interface {
	Parent(ctx context.Context, id string) (*string, error)
	Children(ctx context.Context, id string) ([]string, error)
}

// DefaultMaxDepth bounds ancestor walks. The forest invariant guarantees
// termination, so hitting the bound means the stored relation is corrupt.
const DefaultMaxDepth = 1000

// defaultMaxNodes bounds descendant traversals for the same reason.
const defaultMaxNodes = 1 << 20

// Engine answers ancestor, descendant and relation queries over a Store.
type Engine struct {
	store    Store
	maxDepth int
	maxNodes int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth overrides the ancestor-walk depth bound. Values below 1 are
// clamped to 1: a zero bound would fail every walk on a healthy forest.
func WithMaxDepth(n int) Option {
	return func(e *Engine) { e.maxDepth = max(n, 1) }
}

// WithMaxNodes overrides the descendant-traversal node bound, clamped to a
// minimum of 1 like WithMaxDepth.
func WithMaxNodes(n int) Option {
	return func(e *Engine) { e.maxNodes = max(n, 1) }
}

// New creates an Engine over the given store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{store: store, maxDepth: DefaultMaxDepth, maxNodes: defaultMaxNodes}
	for _, o := range opts {
		o(e)
	}

	return e
}

// walkAncestors calls visit for each ancestor of id, closest first, until
// visit returns false, the walk reaches a root, or the depth bound trips.
func (e *Engine) walkAncestors(ctx context.Context, id string, visit func(string) bool) error {
	cur := id

	for depth := 0; ; depth++ {
		if depth >= e.maxDepth {
			return fmt.Errorf("walking ancestors of %q: %w", id, models.ErrCycleDetected)
		}

		parent, err := e.store.Parent(ctx, cur)
		if err != nil {
			return fmt.Errorf("looking up parent of %q: %w", cur, err)
		}

		if parent == nil {
			return nil
		}

		if !visit(*parent) {
			return nil
		}

		cur = *parent
	}
}

// Ancestors returns the ancestor chain of id, closest ancestor first,
// ending at the root. The result is empty when id is a root or absent.
func (e *Engine) Ancestors(ctx context.Context, id string) ([]string, error) {
	chain := make([]string, 0, 8)

	err := e.walkAncestors(ctx, id, func(a string) bool {
		chain = append(chain, a)
		return true
	})
	if err != nil {
		return nil, err
	}

	return chain, nil
}

// Supertrees returns id followed by its ancestor chain: every node whose
// subtree contains id, innermost first.
func (e *Engine) Supertrees(ctx context.Context, id string) ([]string, error) {
	chain, err := e.Ancestors(ctx, id)
	if err != nil {
		return nil, err
	}

	return append([]string{id}, chain...), nil
}

// Path returns the root-to-node path: the reverse of Supertrees.
func (e *Engine) Path(ctx context.Context, id string) ([]string, error) {
	super, err := e.Supertrees(ctx, id)
	if err != nil {
		return nil, err
	}

	reverse(super)

	return super, nil
}

// ParentPath returns the root-to-parent path: the reverse of Ancestors.
// It is empty when id is a root.
func (e *Engine) ParentPath(ctx context.Context, id string) ([]string, error) {
	chain, err := e.Ancestors(ctx, id)
	if err != nil {
		return nil, err
	}

	reverse(chain)

	return chain, nil
}

// Root returns the root of id's tree: the last entry of its supertree
// chain. A root (or absent) node is its own root.
func (e *Engine) Root(ctx context.Context, id string) (string, error) {
	root := id

	err := e.walkAncestors(ctx, id, func(a string) bool {
		root = a
		return true
	})
	if err != nil {
		return "", err
	}

	return root, nil
}

// Depth returns the number of parent hops from id to its root.
func (e *Engine) Depth(ctx context.Context, id string) (int, error) {
	depth := 0

	err := e.walkAncestors(ctx, id, func(string) bool {
		depth++
		return true
	})
	if err != nil {
		return 0, err
	}

	return depth, nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
