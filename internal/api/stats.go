package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatsHandler serves the forest statistics endpoint.
type StatsHandler struct {
	repo TreeRepository
	log  *logrus.Logger
}

// NewStatsHandler creates a StatsHandler with the given dependencies.
func NewStatsHandler(repo TreeRepository, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{repo: repo, log: log}
}

// GetStats handles GET /api/v1/stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	stats, err := h.repo.Stats(c.Request.Context(), tenantID)
	if err != nil {
		h.log.WithError(err).Error("stats query")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, stats)
}
