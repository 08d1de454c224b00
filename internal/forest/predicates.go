package forest

import "context"

// Order predicates derived from the walker. All are total: an absent node
// simply has no ancestors and no children, so predicates return false
// rather than erroring. Only store failures and invariant corruption
// produce errors.

// IsAncestorOf reports whether a is a proper ancestor of b. Strict:
// false when a == b.
func (e *Engine) IsAncestorOf(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return false, nil
	}

	found := false

	err := e.walkAncestors(ctx, b, func(anc string) bool {
		if anc == a {
			found = true
			return false
		}
		return true
	})
	if err != nil {
		return false, err
	}

	return found, nil
}

// IsDescendantOf reports whether a is a proper descendant of b. It walks
// a's ancestor chain rather than enumerating b's subtree: the two are
// equivalent and the chain is the cheaper side.
func (e *Engine) IsDescendantOf(ctx context.Context, a, b string) (bool, error) {
	return e.IsAncestorOf(ctx, b, a)
}

// IsSupertreeOf reports whether b lies in a's subtree closure: the
// reflexive form of IsAncestorOf.
func (e *Engine) IsSupertreeOf(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return true, nil
	}

	return e.IsAncestorOf(ctx, a, b)
}

// IsSubtreeOf reports whether a lies in b's subtree closure: the reflexive
// form of IsDescendantOf.
func (e *Engine) IsSubtreeOf(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return true, nil
	}

	return e.IsDescendantOf(ctx, a, b)
}

// IsChildOf reports whether b is a's direct parent.
func (e *Engine) IsChildOf(ctx context.Context, a, b string) (bool, error) {
	parent, err := e.store.Parent(ctx, a)
	if err != nil {
		return false, err
	}

	return parent != nil && *parent == b, nil
}

// IsParentOf reports whether a is b's direct parent.
func (e *Engine) IsParentOf(ctx context.Context, a, b string) (bool, error) {
	return e.IsChildOf(ctx, b, a)
}

// IsRootOf reports whether a is the root of b's tree. Reflexive only for
// roots: a root is its own root.
func (e *Engine) IsRootOf(ctx context.Context, a, b string) (bool, error) {
	root, err := e.Root(ctx, b)
	if err != nil {
		return false, err
	}

	return root == a, nil
}

// IsRoot reports whether a has no parent.
func (e *Engine) IsRoot(ctx context.Context, a string) (bool, error) {
	parent, err := e.store.Parent(ctx, a)
	if err != nil {
		return false, err
	}

	return parent == nil, nil
}

// IsChild reports whether a has a parent.
func (e *Engine) IsChild(ctx context.Context, a string) (bool, error) {
	root, err := e.IsRoot(ctx, a)
	if err != nil {
		return false, err
	}

	return !root, nil
}

// IsParent reports whether a has at least one child.
func (e *Engine) IsParent(ctx context.Context, a string) (bool, error) {
	children, err := e.store.Children(ctx, a)
	if err != nil {
		return false, err
	}

	return len(children) > 0, nil
}

// IsLeaf reports whether a has no children.
func (e *Engine) IsLeaf(ctx context.Context, a string) (bool, error) {
	parent, err := e.IsParent(ctx, a)
	if err != nil {
		return false, err
	}

	return !parent, nil
}

// IsSiblingOf reports whether a and b share a parent. Strict: false when
// a == b, and false for two roots, which share the absence of a parent
// rather than a parent.
func (e *Engine) IsSiblingOf(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return false, nil
	}

	parentA, err := e.store.Parent(ctx, a)
	if err != nil {
		return false, err
	}
	if parentA == nil {
		return false, nil
	}

	parentB, err := e.store.Parent(ctx, b)
	if err != nil {
		return false, err
	}

	return parentB != nil && *parentA == *parentB, nil
}
