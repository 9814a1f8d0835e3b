package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"evidos/internal/domain"
	"evidos/internal/port"
)

// maxUploadBytes caps document uploads at 25 MiB.
const maxUploadBytes = 25 << 20

// DocumentHandler handles document endpoints.
type DocumentHandler struct {
	documents port.DocumentRepository
	systems   port.SystemRepository
	evidence  port.EvidenceRepository
	storage   port.ObjectStorage
	bucket    string
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(
	documents port.DocumentRepository,
	systems port.SystemRepository,
	evidence port.EvidenceRepository,
	storage port.ObjectStorage,
	bucket string,
) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		systems:   systems,
		evidence:  evidence,
		storage:   storage,
		bucket:    bucket,
	}
}

// Upload handles POST /api/v1/systems/:systemID/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	systemID, ok := parseSystemID(c)
	if !ok {
		return
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "missing file field")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if _, allowed := domain.AllowedContentTypes[contentType]; !allowed {
		HandleError(c, domain.ErrUnsupportedFileType)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unreadable file")
		return
	}
	defer file.Close()

	docID := uuid.New()
	key := fmt.Sprintf("systems/%s/documents/%s%s", systemID, docID, filepath.Ext(fileHeader.Filename))

	if err := h.storage.Upload(c.Request.Context(), port.UploadInput{
		Bucket:      h.bucket,
		Key:         key,
		Body:        file,
		ContentType: contentType,
	}); err != nil {
		HandleError(c, err)
		return
	}

	doc := &domain.Document{
		ID:             docID,
		SystemID:       systemID,
		FileName:       filepath.Base(key),
		OriginalName:   fileHeader.Filename,
		ContentType:    contentType,
		FileSize:       fileHeader.Size,
		S3Bucket:       h.bucket,
		S3Key:          key,
		AnalysisStatus: domain.AnalysisStatusPending,
	}
	if err := h.documents.Create(c.Request.Context(), doc); err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, doc)
}

// List handles GET /api/v1/systems/:systemID/documents
func (h *DocumentHandler) List(c *gin.Context) {
	systemID, ok := parseSystemID(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	docs, total, err := h.documents.ListBySystem(c.Request.Context(), systemID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/systems/:systemID/documents/:documentID
func (h *DocumentHandler) GetByID(c *gin.Context) {
	systemID, documentID, ok := parseDocumentPath(c)
	if !ok {
		return
	}

	doc, err := h.documents.GetByID(c.Request.Context(), systemID, documentID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, doc)
}

// Delete handles DELETE /api/v1/systems/:systemID/documents/:documentID
func (h *DocumentHandler) Delete(c *gin.Context) {
	systemID, documentID, ok := parseDocumentPath(c)
	if !ok {
		return
	}

	doc, err := h.documents.GetByID(c.Request.Context(), systemID, documentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	if err := h.evidence.DeleteByDocument(c.Request.Context(), documentID); err != nil {
		HandleError(c, err)
		return
	}
	if err := h.storage.Delete(c.Request.Context(), doc.S3Bucket, doc.S3Key); err != nil {
		HandleError(c, err)
		return
	}
	if err := h.documents.Delete(c.Request.Context(), systemID, documentID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": documentID})
}

func parseSystemID(c *gin.Context) (uuid.UUID, bool) {
	systemID, err := uuid.Parse(c.Param("systemID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid system id")
		return uuid.Nil, false
	}
	return systemID, true
}

func parseDocumentPath(c *gin.Context) (systemID, documentID uuid.UUID, ok bool) {
	systemID, ok = parseSystemID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	documentID, err := uuid.Parse(c.Param("documentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document id")
		return uuid.Nil, uuid.Nil, false
	}
	return systemID, documentID, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset = intQuery(c, "offset", 0)
	limit = intQuery(c, "limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

func intQuery(c *gin.Context, name string, fallback int) int {
	var v int
	if _, err := fmt.Sscanf(c.Query(name), "%d", &v); err != nil {
		return fallback
	}
	return v
}
