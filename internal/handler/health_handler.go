package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db           *sqlx.DB
	aiConfigured bool
}

// NewHealthHandler creates a HealthHandler. aiConfigured reflects whether a
// completion provider is wired; it is reported so operators can tell a
// heuristic-only deployment from a misconfigured one.
func NewHealthHandler(db *sqlx.DB, aiConfigured bool) *HealthHandler {
	return &HealthHandler{db: db, aiConfigured: aiConfigured}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	analysisMode := "heuristic"
	if h.aiConfigured {
		analysisMode = "ai"
	}
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "database not reachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "analysis_mode": analysisMode})
}
