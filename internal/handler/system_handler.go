package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"evidos/internal/domain"
	"evidos/internal/port"
)

// SystemHandler handles system endpoints.
type SystemHandler struct {
	systems port.SystemRepository
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(systems port.SystemRepository) *SystemHandler {
	return &SystemHandler{systems: systems}
}

type createSystemRequest struct {
	Name        string `json:"name" binding:"required"`
	Acronym     string `json:"acronym"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/systems
func (h *SystemHandler) Create(c *gin.Context) {
	var req createSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	system := &domain.System{
		ID:          uuid.New(),
		Name:        req.Name,
		Acronym:     req.Acronym,
		Description: req.Description,
		IsActive:    true,
	}
	if err := h.systems.Create(c.Request.Context(), system); err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, system)
}

// List handles GET /api/v1/systems
func (h *SystemHandler) List(c *gin.Context) {
	systems, err := h.systems.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, systems)
}

// GetByID handles GET /api/v1/systems/:systemID
func (h *SystemHandler) GetByID(c *gin.Context) {
	systemID, err := uuid.Parse(c.Param("systemID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid system id")
		return
	}

	system, err := h.systems.GetByID(c.Request.Context(), systemID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, system)
}
