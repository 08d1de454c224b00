package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithAPIKey("test-key"))
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "0.3.0"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("got status %q, want ok", resp.Status)
	}
	if resp.Version != "0.3.0" {
		t.Errorf("got version %q, want 0.3.0", resp.Version)
	}
}

func TestStats(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/stats": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, StatsResponse{Nodes: 500, Roots: 12})
		},
	})
	resp, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if resp.Nodes != 500 || resp.Roots != 12 {
		t.Errorf("got %+v", resp)
	}
}

func TestAuthHeader(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("Authorization = %q", got)
			}
			jsonResponse(w, 200, HealthResponse{Status: "ok"})
		},
	})
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error: %v", err)
	}
}

func TestNodesCRUD(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/nodes": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("roots_only") != "true" {
				t.Errorf("roots_only not forwarded: %s", r.URL.RawQuery)
			}
			jsonResponse(w, 200, map[string]any{"nodes": []Node{{ID: "n1", Label: "Projects"}}, "has_more": false})
		},
		"POST /api/v1/nodes": func(w http.ResponseWriter, r *http.Request) {
			var req CreateNodeRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			jsonResponse(w, 201, Node{ID: req.ID, Kind: req.Kind, Label: req.Label})
		},
		"GET /api/v1/nodes/n1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Node{ID: "n1", Label: "Projects"})
		},
		"PUT /api/v1/nodes/n1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Node{ID: "n1", Label: "Renamed"})
		},
		"DELETE /api/v1/nodes/n1": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]bool{"deleted": true})
		},
	})

	ctx := context.Background()

	nodes, hasMore, err := c.Nodes.List(ctx, &NodeListOptions{RootsOnly: true})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(nodes) != 1 || hasMore {
		t.Errorf("List: got %d nodes, hasMore=%v", len(nodes), hasMore)
	}

	node, err := c.Nodes.Create(ctx, &CreateNodeRequest{ID: "n2", Kind: "folder", Label: "Inbox"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if node.ID != "n2" {
		t.Errorf("Create: got id %q", node.ID)
	}

	if _, err := c.Nodes.Get(ctx, "n1"); err != nil {
		t.Fatalf("Get error: %v", err)
	}

	label := "Renamed"
	updated, err := c.Nodes.Update(ctx, "n1", &UpdateNodeRequest{Label: &label})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Label != "Renamed" {
		t.Errorf("Update: got label %q", updated.Label)
	}

	if err := c.Nodes.Delete(ctx, "n1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestTreeWalks(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/nodes/b/ancestors": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{"id": "b", "ancestors": []string{"a", "r"}})
		},
		"GET /api/v1/nodes/b/path": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{"id": "b", "path": []string{"r", "a", "b"}})
		},
		"GET /api/v1/nodes/b/root": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]string{"id": "b", "root": "r"})
		},
		"GET /api/v1/nodes/r/descendants": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("order") != "bfs" {
				t.Errorf("order not forwarded: %s", r.URL.RawQuery)
			}
			jsonResponse(w, 200, map[string]any{"id": "r", "order": "bfs", "descendants": []string{"a", "c", "b"}})
		},
	})

	ctx := context.Background()

	ancestors, err := c.Tree.Ancestors(ctx, "b")
	if err != nil {
		t.Fatalf("Ancestors error: %v", err)
	}
	if len(ancestors) != 2 || ancestors[0] != "a" {
		t.Errorf("Ancestors = %v", ancestors)
	}

	path, err := c.Tree.Path(ctx, "b")
	if err != nil {
		t.Fatalf("Path error: %v", err)
	}
	if len(path) != 3 || path[0] != "r" || path[2] != "b" {
		t.Errorf("Path = %v", path)
	}

	root, err := c.Tree.Root(ctx, "b")
	if err != nil {
		t.Fatalf("Root error: %v", err)
	}
	if root != "r" {
		t.Errorf("Root = %q", root)
	}

	desc, err := c.Tree.Descendants(ctx, "r", "bfs")
	if err != nil {
		t.Fatalf("Descendants error: %v", err)
	}
	if len(desc) != 3 || desc[1] != "c" {
		t.Errorf("Descendants = %v", desc)
	}
}

func TestSetParent_CycleError(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"PUT /api/v1/nodes/r/parent": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 409, map[string]string{"code": "cycle", "message": "parent assignment would create a cycle"})
		},
	})

	parent := "b"
	_, err := c.Tree.SetParent(context.Background(), "r", &parent)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsCycle(err) {
		t.Errorf("IsCycle(%v) = false", err)
	}
	if !IsConflict(err) {
		t.Errorf("IsConflict(%v) = false", err)
	}
}

func TestValidateParent(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/nodes/b/validate-parent": func(w http.ResponseWriter, r *http.Request) {
			var req SetParentRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			if req.ParentID == nil || *req.ParentID != "c" {
				t.Errorf("parent_id = %v", req.ParentID)
			}
			jsonResponse(w, 200, ValidateParentResult{Valid: true})
		},
	})

	parent := "c"
	result, err := c.Tree.ValidateParent(context.Background(), "b", &parent)
	if err != nil {
		t.Fatalf("ValidateParent error: %v", err)
	}
	if !result.Valid {
		t.Error("expected valid result")
	}
}

func TestRelation(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/relations/r/b": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Relation{A: "r", B: "b", AncestorOf: true, RootOf: true})
		},
	})

	rel, err := c.Tree.Relation(context.Background(), "r", "b")
	if err != nil {
		t.Fatalf("Relation error: %v", err)
	}
	if !rel.AncestorOf || !rel.RootOf {
		t.Errorf("Relation = %+v", rel)
	}
}

func TestAPIError_NotFound(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/nodes/missing": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "node not found"})
		},
	})

	_, err := c.Nodes.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false", err)
	}
}

func TestAuditQuery(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/audit": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("action") != "node.reparent" {
				t.Errorf("action not forwarded: %s", r.URL.RawQuery)
			}
			jsonResponse(w, 200, map[string]any{
				"data":     []AuditEntry{{Action: "node.reparent", NodeID: "b"}},
				"has_more": false,
			})
		},
	})

	entries, hasMore, err := c.Audit.Query(context.Background(), &AuditQueryOptions{Action: "node.reparent"})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if len(entries) != 1 || hasMore {
		t.Errorf("entries=%d hasMore=%v", len(entries), hasMore)
	}
}
