package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"evidos/internal/domain"
	"evidos/internal/port"
)

type evidenceRepo struct {
	db *sqlx.DB
}

// NewEvidenceRepo creates a new PostgreSQL-backed EvidenceRepository.
func NewEvidenceRepo(db *sqlx.DB) port.EvidenceRepository {
	return &evidenceRepo{db: db}
}

func (r *evidenceRepo) CreateBatch(ctx context.Context, evidence []domain.Evidence) error {
	if len(evidence) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("evidenceRepo.CreateBatch begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	query := `INSERT INTO evidence (
		id, system_id, document_id, control_id,
		relevance_score, satisfaction, excerpt_summary, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for i := range evidence {
		e := &evidence[i]
		e.CreatedAt = now
		if _, err := tx.ExecContext(ctx, query,
			e.ID, e.SystemID, e.DocumentID, e.ControlID,
			e.RelevanceScore, e.Satisfaction, e.ExcerptSummary, e.CreatedAt); err != nil {
			return fmt.Errorf("evidenceRepo.CreateBatch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("evidenceRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *evidenceRepo) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM evidence WHERE document_id = $1", documentID)
	if err != nil {
		return fmt.Errorf("evidenceRepo.DeleteByDocument: %w", err)
	}
	return nil
}

func (r *evidenceRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Evidence, error) {
	var evidence []domain.Evidence
	err := r.db.SelectContext(ctx, &evidence,
		"SELECT * FROM evidence WHERE document_id = $1 ORDER BY relevance_score DESC", documentID)
	if err != nil {
		return nil, fmt.Errorf("evidenceRepo.ListByDocument: %w", err)
	}
	return evidence, nil
}

func (r *evidenceRepo) CountByDocument(ctx context.Context, documentID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM evidence WHERE document_id = $1", documentID)
	if err != nil {
		return 0, fmt.Errorf("evidenceRepo.CountByDocument: %w", err)
	}
	return count, nil
}

func (r *evidenceRepo) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]domain.EvidenceWithControl, error) {
	var evidence []domain.EvidenceWithControl
	err := r.db.SelectContext(ctx, &evidence,
		`SELECT e.*,
		        c.identifier AS control_identifier,
		        c.title AS control_title,
		        d.original_name AS document_name
		 FROM evidence e
		 JOIN controls c ON c.id = e.control_id
		 JOIN documents d ON d.id = e.document_id
		 WHERE e.system_id = $1
		 ORDER BY c.identifier, e.relevance_score DESC`,
		systemID)
	if err != nil {
		return nil, fmt.Errorf("evidenceRepo.ListBySystem: %w", err)
	}
	return evidence, nil
}
