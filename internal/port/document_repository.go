package port

import (
	"context"

	"github.com/google/uuid"

	"evidos/internal/domain"
)

// DocumentRepository provides access to document records.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, systemID, docID uuid.UUID) (*domain.Document, error)
	ListBySystem(ctx context.Context, systemID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	UpdateAnalysisState(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, systemID, docID uuid.UUID) error
}
