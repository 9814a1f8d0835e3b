package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"evidos/internal/domain"
	"evidos/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.AnalysisStatus == "" {
		doc.AnalysisStatus = domain.AnalysisStatusPending
	}

	query := `INSERT INTO documents (
		id, system_id, file_name, original_name, content_type, file_size,
		s3_bucket, s3_key,
		analysis_status, analysis_error, last_analyzed_at,
		uploaded_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8,
		$9, $10, $11,
		$12, $13, $14
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.SystemID, doc.FileName, doc.OriginalName, doc.ContentType, doc.FileSize,
		doc.S3Bucket, doc.S3Key,
		doc.AnalysisStatus, doc.AnalysisError, doc.LastAnalyzedAt,
		doc.UploadedBy, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, systemID, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1 AND system_id = $2", docID, systemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListBySystem(ctx context.Context, systemID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE system_id = $1", systemID)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListBySystem count: %w", err)
	}

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents WHERE system_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		systemID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListBySystem: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) UpdateAnalysisState(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE documents
		 SET analysis_status = $1, analysis_error = $2, last_analyzed_at = $3, updated_at = $4
		 WHERE id = $5`,
		doc.AnalysisStatus, doc.AnalysisError, doc.LastAnalyzedAt, doc.UpdatedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateAnalysisState: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateAnalysisState: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, systemID, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = $1 AND system_id = $2", docID, systemID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
