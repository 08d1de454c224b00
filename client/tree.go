package client

import (
	"context"
	"net/url"
)

// TreeService handles hierarchy walk and parent-link operations.
type TreeService struct {
	c *Client
}

// listResponse decodes walk responses keyed by the walk name.
type listResponse map[string]any

// walk performs a GET walk request and extracts the string list under key.
func (s *TreeService) walk(ctx context.Context, path, key string, params url.Values) ([]string, error) {
	var resp listResponse
	if err := s.c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	raw, _ := resp[key].([]any)
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Ancestors returns the node's proper ancestors, nearest parent first.
func (s *TreeService) Ancestors(ctx context.Context, id string) ([]string, error) {
	return s.walk(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/ancestors", "ancestors", nil)
}

// Supertrees returns the node itself followed by its ancestors.
func (s *TreeService) Supertrees(ctx context.Context, id string) ([]string, error) {
	return s.walk(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/supertrees", "supertrees", nil)
}

// Path returns the root-to-node path, root first.
func (s *TreeService) Path(ctx context.Context, id string) ([]string, error) {
	return s.walk(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/path", "path", nil)
}

// ParentPath returns the root-to-parent path, empty for roots.
func (s *TreeService) ParentPath(ctx context.Context, id string) ([]string, error) {
	return s.walk(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/parent-path", "parent_path", nil)
}

// Children returns the node's direct children in stored order.
func (s *TreeService) Children(ctx context.Context, id string) ([]string, error) {
	return s.walk(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/children", "children", nil)
}

// Descendants returns the node's proper descendants. Order is one of
// "pre", "bfs" or "post"; empty selects pre-order.
func (s *TreeService) Descendants(ctx context.Context, id, order string) ([]string, error) {
	params := url.Values{}
	if order != "" {
		params.Set("order", order)
	}
	return s.walk(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/descendants", "descendants", params)
}

// Subtrees returns the node followed by its descendants in the given order.
func (s *TreeService) Subtrees(ctx context.Context, id, order string) ([]string, error) {
	params := url.Values{}
	if order != "" {
		params.Set("order", order)
	}
	return s.walk(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/subtrees", "subtrees", params)
}

// Root returns the root of the node's tree.
func (s *TreeService) Root(ctx context.Context, id string) (string, error) {
	var resp struct {
		ID   string `json:"id"`
		Root string `json:"root"`
	}
	if err := s.c.get(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/root", nil, &resp); err != nil {
		return "", err
	}
	return resp.Root, nil
}

// Info returns the node's place in its tree.
func (s *TreeService) Info(ctx context.Context, id string) (*NodeInfo, error) {
	var info NodeInfo
	if err := s.c.get(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Relation returns every pairwise order predicate between two nodes.
func (s *TreeService) Relation(ctx context.Context, a, b string) (*Relation, error) {
	var rel Relation
	path := "/api/v1/relations/" + url.PathEscape(a) + "/" + url.PathEscape(b)
	if err := s.c.get(ctx, path, nil, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

// SetParent reassigns the node's parent. Pass nil to detach the node into
// a root. Cycle-creating assignments fail with a 409 whose code is "cycle";
// use IsCycle to detect them.
func (s *TreeService) SetParent(ctx context.Context, id string, parentID *string) (*Node, error) {
	var node Node
	req := SetParentRequest{ParentID: parentID}
	if err := s.c.put(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/parent", &req, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// RemoveParent detaches the node from its parent, making it a root.
func (s *TreeService) RemoveParent(ctx context.Context, id string) (*Node, error) {
	var node Node
	if err := s.c.del(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/parent", nil, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// ValidateParent checks whether assigning the candidate parent would be
// legal, without committing anything.
func (s *TreeService) ValidateParent(ctx context.Context, id string, parentID *string) (*ValidateParentResult, error) {
	var result ValidateParentResult
	req := SetParentRequest{ParentID: parentID}
	if err := s.c.post(ctx, "/api/v1/nodes/"+url.PathEscape(id)+"/validate-parent", &req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
