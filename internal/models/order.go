package models

import "fmt"

// Order selects the traversal order for descendant enumeration.
type Order string

// Supported traversal orders. Pre-order depth-first is the default:
// ancestors precede descendants, children in store sibling order.
const (
	OrderPre  Order = "pre"  // depth-first, node before its subtree
	OrderBFS  Order = "bfs"  // level by level, siblings in store order
	OrderPost Order = "post" // depth-first, node after its subtree
)

// ParseOrder maps a request string to an Order. An empty string selects
// the pre-order default.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "pre", "preorder", "dfs":
		return OrderPre, nil
	case "bfs", "breadth":
		return OrderBFS, nil
	case "post", "postorder":
		return OrderPost, nil
	default:
		return "", fmt.Errorf("unknown traversal order %q (want pre, bfs or post)", s)
	}
}

// String implements fmt.Stringer.
func (o Order) String() string { return string(o) }
