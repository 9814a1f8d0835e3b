package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"evidos/internal/port"
	"evidos/internal/xlsxexport"
)

// EvidenceHandler handles evidence listing and export endpoints.
type EvidenceHandler struct {
	evidence port.EvidenceRepository
	systems  port.SystemRepository
}

// NewEvidenceHandler creates a new EvidenceHandler.
func NewEvidenceHandler(evidence port.EvidenceRepository, systems port.SystemRepository) *EvidenceHandler {
	return &EvidenceHandler{evidence: evidence, systems: systems}
}

// ListBySystem handles GET /api/v1/systems/:systemID/evidence
func (h *EvidenceHandler) ListBySystem(c *gin.Context) {
	systemID, ok := parseSystemID(c)
	if !ok {
		return
	}

	if _, err := h.systems.GetByID(c.Request.Context(), systemID); err != nil {
		HandleError(c, err)
		return
	}

	evidence, err := h.evidence.ListBySystem(c.Request.Context(), systemID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, evidence)
}

// Export handles GET /api/v1/systems/:systemID/evidence/export
func (h *EvidenceHandler) Export(c *gin.Context) {
	systemID, ok := parseSystemID(c)
	if !ok {
		return
	}

	system, err := h.systems.GetByID(c.Request.Context(), systemID)
	if err != nil {
		HandleError(c, err)
		return
	}

	evidence, err := h.evidence.ListBySystem(c.Request.Context(), systemID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := xlsxexport.WriteWorkbook(&buf, evidence); err != nil {
		HandleError(c, err)
		return
	}

	filename := xlsxexport.BuildFilename(system.Name)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
