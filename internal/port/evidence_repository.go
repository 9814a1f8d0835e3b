package port

import (
	"context"

	"github.com/google/uuid"

	"evidos/internal/domain"
)

// EvidenceRepository persists evidence records linking documents to controls.
type EvidenceRepository interface {
	CreateBatch(ctx context.Context, evidence []domain.Evidence) error
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Evidence, error)
	CountByDocument(ctx context.Context, documentID uuid.UUID) (int, error)
	ListBySystem(ctx context.Context, systemID uuid.UUID) ([]domain.EvidenceWithControl, error)
}
