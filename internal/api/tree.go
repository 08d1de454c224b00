package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arborhq/arbor/internal/models"
)

// TreeHandler serves hierarchy walk and parent-link endpoints.
type TreeHandler struct {
	repo TreeRepository
	log  *logrus.Logger
}

// NewTreeHandler creates a TreeHandler with the given service and logger.
func NewTreeHandler(repo TreeRepository, log *logrus.Logger) *TreeHandler {
	return &TreeHandler{repo: repo, log: log}
}

// respondWalkError maps walk errors to HTTP responses. A detected cycle in
// stored data is corruption, not a client error.
func (h *TreeHandler) respondWalkError(c *gin.Context, op string, err error) {
	if errors.Is(err, models.ErrCycleDetected) {
		h.log.WithError(err).WithField("op", op).Error("stored parent relation is cyclic")
		respondError(c, http.StatusInternalServerError, ErrCodeIntegrity, "stored hierarchy is corrupted")

		return
	}

	h.log.WithError(err).Error(op)
	respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// walk runs a per-node list operation and writes the result under key.
func (h *TreeHandler) walk(c *gin.Context, key string, fn func(ctx context.Context, tenantID, nodeID string) ([]string, error)) {
	nodeID := c.Param("id")
	if err := validatePathID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	ids, err := fn(c.Request.Context(), tenantID, nodeID)
	if err != nil {
		h.respondWalkError(c, key, err)

		return
	}

	if ids == nil {
		ids = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"id": nodeID, key: ids})
}

// Ancestors handles GET /api/v1/nodes/:id/ancestors.
func (h *TreeHandler) Ancestors(c *gin.Context) {
	h.walk(c, "ancestors", h.repo.Ancestors)
}

// Supertrees handles GET /api/v1/nodes/:id/supertrees.
func (h *TreeHandler) Supertrees(c *gin.Context) {
	h.walk(c, "supertrees", h.repo.Supertrees)
}

// Path handles GET /api/v1/nodes/:id/path.
func (h *TreeHandler) Path(c *gin.Context) {
	h.walk(c, "path", h.repo.Path)
}

// ParentPath handles GET /api/v1/nodes/:id/parent-path.
func (h *TreeHandler) ParentPath(c *gin.Context) {
	h.walk(c, "parent_path", h.repo.ParentPath)
}

// Children handles GET /api/v1/nodes/:id/children.
func (h *TreeHandler) Children(c *gin.Context) {
	h.walk(c, "children", h.repo.Children)
}

// Root handles GET /api/v1/nodes/:id/root.
func (h *TreeHandler) Root(c *gin.Context) {
	nodeID := c.Param("id")
	if err := validatePathID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	root, err := h.repo.Root(c.Request.Context(), tenantID, nodeID)
	if err != nil {
		h.respondWalkError(c, "root", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"id": nodeID, "root": root})
}

// orderedWalk parses the order query parameter and runs an ordered traversal.
func (h *TreeHandler) orderedWalk(c *gin.Context, key string, fn func(ctx context.Context, tenantID, nodeID string, order models.Order) ([]string, error)) {
	nodeID := c.Param("id")
	if err := validatePathID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	order, err := models.ParseOrder(c.Query("order"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	ids, err := fn(c.Request.Context(), tenantID, nodeID, order)
	if err != nil {
		h.respondWalkError(c, key, err)

		return
	}

	if ids == nil {
		ids = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"id": nodeID, "order": order.String(), key: ids})
}

// Descendants handles GET /api/v1/nodes/:id/descendants.
func (h *TreeHandler) Descendants(c *gin.Context) {
	h.orderedWalk(c, "descendants", h.repo.Descendants)
}

// Subtrees handles GET /api/v1/nodes/:id/subtrees.
func (h *TreeHandler) Subtrees(c *gin.Context) {
	h.orderedWalk(c, "subtrees", h.repo.Subtrees)
}

// Info handles GET /api/v1/nodes/:id/info.
func (h *TreeHandler) Info(c *gin.Context) {
	nodeID := c.Param("id")
	if err := validatePathID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	info, err := h.repo.NodeInfo(c.Request.Context(), tenantID, nodeID)
	if err != nil {
		h.respondWalkError(c, "info", err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// Relation handles GET /api/v1/relations/:a/:b.
func (h *TreeHandler) Relation(c *gin.Context) {
	a, b := c.Param("a"), c.Param("b")
	if err := validatePathID(a); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}
	if err := validatePathID(b); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	rel, err := h.repo.Relation(c.Request.Context(), tenantID, a, b)
	if err != nil {
		h.respondWalkError(c, "relation", err)

		return
	}

	c.JSON(http.StatusOK, rel)
}

// SetParent handles PUT /api/v1/nodes/:id/parent.
func (h *TreeHandler) SetParent(c *gin.Context) {
	nodeID := c.Param("id")
	if err := validatePathID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req models.SetParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	node, err := h.repo.Reparent(c.Request.Context(), tenantID, nodeID, req.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrCycle):
			respondError(c, http.StatusConflict, ErrCodeCycle, "parent assignment would create a cycle")
		case errors.Is(err, models.ErrNodeNotFound):
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "node or parent not found")
		default:
			h.respondWalkError(c, "reparent", err)
		}

		return
	}

	h.log.WithFields(logrus.Fields{"action": "node.reparent", "tenant_id": tenantID, "node_id": nodeID}).Info("audit")

	c.JSON(http.StatusOK, node)
}

// DeleteParent handles DELETE /api/v1/nodes/:id/parent. The node becomes a root.
func (h *TreeHandler) DeleteParent(c *gin.Context) {
	nodeID := c.Param("id")
	if err := validatePathID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	node, err := h.repo.MakeRoot(c.Request.Context(), tenantID, nodeID)
	if err != nil {
		if errors.Is(err, models.ErrNodeNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "node not found")

			return
		}

		h.respondWalkError(c, "make_root", err)

		return
	}

	h.log.WithFields(logrus.Fields{"action": "node.make_root", "tenant_id": tenantID, "node_id": nodeID}).Info("audit")

	c.JSON(http.StatusOK, node)
}

// ValidateParent handles POST /api/v1/nodes/:id/validate-parent. It checks a
// candidate parent without committing anything.
func (h *TreeHandler) ValidateParent(c *gin.Context) {
	nodeID := c.Param("id")
	if err := validatePathID(nodeID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	var req models.SetParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	err := h.repo.ValidateParent(c.Request.Context(), tenantID, nodeID, req.ParentID)
	if err != nil {
		if errors.Is(err, models.ErrCycle) {
			c.JSON(http.StatusOK, gin.H{"valid": false, "reason": err.Error()})

			return
		}

		h.respondWalkError(c, "validate_parent", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}
