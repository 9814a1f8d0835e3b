package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"evidos/internal/domain"
	"evidos/internal/pipeline"
	"evidos/internal/port"
)

// AnalysisHandler handles analysis trigger and status endpoints.
type AnalysisHandler struct {
	pipeline  *pipeline.Pipeline
	documents port.DocumentRepository
	systems   port.SystemRepository
	evidence  port.EvidenceRepository
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(
	p *pipeline.Pipeline,
	documents port.DocumentRepository,
	systems port.SystemRepository,
	evidence port.EvidenceRepository,
) *AnalysisHandler {
	return &AnalysisHandler{
		pipeline:  p,
		documents: documents,
		systems:   systems,
		evidence:  evidence,
	}
}

type analyzeRequest struct {
	UseAI              *bool    `json:"use_ai"`
	CreateEvidence     *bool    `json:"create_evidence"`
	ControlIdentifiers []string `json:"control_identifiers"`
}

func (r *analyzeRequest) options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	if r.UseAI != nil {
		opts.UseAI = *r.UseAI
	}
	if r.CreateEvidence != nil {
		opts.CreateEvidence = *r.CreateEvidence
	}
	if len(r.ControlIdentifiers) > 0 {
		opts.AnalyzeAllControls = false
		opts.ControlIdentifiers = r.ControlIdentifiers
	}
	return opts
}

// AnalyzeDocument handles POST /api/v1/systems/:systemID/documents/:documentID/analyze
func (h *AnalysisHandler) AnalyzeDocument(c *gin.Context) {
	systemID, documentID, ok := parseDocumentPath(c)
	if !ok {
		return
	}

	var req analyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	if _, err := h.documents.GetByID(c.Request.Context(), systemID, documentID); err != nil {
		HandleError(c, err)
		return
	}

	job, err := h.pipeline.StartDocument(systemID, documentID, req.options())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, job)
}

// ReprocessDocument handles POST /api/v1/systems/:systemID/documents/:documentID/reprocess
func (h *AnalysisHandler) ReprocessDocument(c *gin.Context) {
	systemID, documentID, ok := parseDocumentPath(c)
	if !ok {
		return
	}

	var req analyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	if _, err := h.documents.GetByID(c.Request.Context(), systemID, documentID); err != nil {
		HandleError(c, err)
		return
	}

	job, err := h.pipeline.StartReprocess(c.Request.Context(), systemID, documentID, req.options())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, job)
}

// AnalyzeSystem handles POST /api/v1/systems/:systemID/analyze
func (h *AnalysisHandler) AnalyzeSystem(c *gin.Context) {
	systemID, ok := parseSystemID(c)
	if !ok {
		return
	}

	var req analyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	system, err := h.systems.GetByID(c.Request.Context(), systemID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if !system.IsActive {
		HandleError(c, domain.ErrSystemInactive)
		return
	}

	ids, err := h.pipeline.StartSystem(c.Request.Context(), systemID, req.options())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, gin.H{"queued": ids})
}

// GetAnalysis handles GET /api/v1/systems/:systemID/documents/:documentID/analysis.
// It returns the document's analysis state, the latest tracked job if any,
// and the persisted evidence rows.
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	systemID, documentID, ok := parseDocumentPath(c)
	if !ok {
		return
	}

	doc, err := h.documents.GetByID(c.Request.Context(), systemID, documentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	evidence, err := h.evidence.ListByDocument(c.Request.Context(), documentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	resp := gin.H{
		"document_id":      doc.ID,
		"analysis_status":  doc.AnalysisStatus,
		"analysis_error":   doc.AnalysisError,
		"last_analyzed_at": doc.LastAnalyzedAt,
		"evidence":         evidence,
	}
	if job, ok := h.pipeline.CurrentJob(documentID); ok {
		resp["job"] = job
	}
	RespondOK(c, resp)
}
