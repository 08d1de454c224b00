package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/arborhq/arbor/internal/dbpool"
	"github.com/arborhq/arbor/internal/middleware"
	"github.com/arborhq/arbor/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log          *logrus.Logger
	Pool         *dbpool.Pool
	Hub          *ws.Hub
	Nodes        NodeRepository
	Tree         TreeRepository
	Audit        AuditRepository
	TenantLookup middleware.TenantLookup
	CORSOrigins  []string
	Version      string
}

// Router-level limits.
const (
	maxBodySize = 1 << 20 // 1 MB
	rateLimit   = 100     // requests per second per IP
	rateBurst   = 200     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Hub, log, deps.Version)
	nodes := NewNodeHandler(deps.Nodes, log)
	tree := NewTreeHandler(deps.Tree, log)
	stats := NewStatsHandler(deps.Tree, log)
	audit := NewAuditHandler(deps.Audit, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// All other API routes require authentication.
	bfGuard := middleware.NewBruteForceGuard(ctx, log)
	api.Use(middleware.BruteForceMiddleware(bfGuard))
	api.Use(middleware.AuthMiddleware(middleware.NewCachedTenantLookup(ctx, deps.TenantLookup), log, bfGuard))

	// Nodes.
	api.GET("/nodes", nodes.List)
	api.POST("/nodes", nodes.Create)
	api.GET("/nodes/:id", nodes.Get)
	api.PUT("/nodes/:id", nodes.Update)
	api.DELETE("/nodes/:id", nodes.Delete)

	// Parent link.
	api.PUT("/nodes/:id/parent", tree.SetParent)
	api.DELETE("/nodes/:id/parent", tree.DeleteParent)
	api.POST("/nodes/:id/validate-parent", tree.ValidateParent)

	// Ancestor walks.
	api.GET("/nodes/:id/ancestors", tree.Ancestors)
	api.GET("/nodes/:id/supertrees", tree.Supertrees)
	api.GET("/nodes/:id/path", tree.Path)
	api.GET("/nodes/:id/parent-path", tree.ParentPath)
	api.GET("/nodes/:id/root", tree.Root)

	// Descendant traversals.
	api.GET("/nodes/:id/descendants", tree.Descendants)
	api.GET("/nodes/:id/subtrees", tree.Subtrees)
	api.GET("/nodes/:id/children", tree.Children)

	// Relations.
	api.GET("/nodes/:id/info", tree.Info)
	api.GET("/relations/:a/:b", tree.Relation)

	// Audit.
	api.GET("/audit", audit.Query)

	// Stats.
	api.GET("/stats", stats.GetStats)

	// WebSocket endpoint.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins, deps.TenantLookup))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
