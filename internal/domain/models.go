package domain

import (
	"time"

	"github.com/google/uuid"
)

// System represents an organizational system undergoing assessment.
type System struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Acronym     string    `db:"acronym" json:"acronym"`
	Description string    `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents an uploaded artifact (policy, scan result, diagram
// export) attached to a system.
type Document struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	SystemID       uuid.UUID      `db:"system_id" json:"system_id"`
	FileName       string         `db:"file_name" json:"file_name"`
	OriginalName   string         `db:"original_name" json:"original_name"`
	ContentType    string         `db:"content_type" json:"content_type"`
	FileSize       int64          `db:"file_size" json:"file_size"`
	S3Bucket       string         `db:"s3_bucket" json:"s3_bucket"`
	S3Key          string         `db:"s3_key" json:"s3_key"`
	AnalysisStatus AnalysisStatus `db:"analysis_status" json:"analysis_status"`
	AnalysisError  string         `db:"analysis_error" json:"analysis_error"`
	LastAnalyzedAt *time.Time     `db:"last_analyzed_at" json:"last_analyzed_at"`
	UploadedBy     *uuid.UUID     `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Control represents a compliance control documents are evaluated against.
// Identifier is the human label (e.g. "AC-1"), Family the two-letter family
// code (e.g. "AC").
type Control struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SystemID    uuid.UUID `db:"system_id" json:"system_id"`
	Identifier  string    `db:"identifier" json:"identifier"`
	Family      string    `db:"family" json:"family"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Guidance    string    `db:"guidance" json:"guidance"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Evidence links a document to a control with a relevance judgment. One row
// per (document, control) pair per analysis run; reprocessing replaces the
// document's rows wholesale.
type Evidence struct {
	ID             uuid.UUID         `db:"id" json:"id"`
	SystemID       uuid.UUID         `db:"system_id" json:"system_id"`
	DocumentID     uuid.UUID         `db:"document_id" json:"document_id"`
	ControlID      uuid.UUID         `db:"control_id" json:"control_id"`
	RelevanceScore int               `db:"relevance_score" json:"relevance_score"`
	Satisfaction   SatisfactionLevel `db:"satisfaction" json:"satisfaction"`
	ExcerptSummary string            `db:"excerpt_summary" json:"excerpt_summary"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
}

// EvidenceWithControl is an Evidence row joined with its control labels,
// used by listings and the workbook export.
type EvidenceWithControl struct {
	Evidence
	ControlIdentifier string `db:"control_identifier" json:"control_identifier"`
	ControlTitle      string `db:"control_title" json:"control_title"`
	DocumentName      string `db:"document_name" json:"document_name"`
}
