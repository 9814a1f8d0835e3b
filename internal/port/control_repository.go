package port

import (
	"context"

	"github.com/google/uuid"

	"evidos/internal/domain"
)

// ControlRepository provides access to the controls a system is assessed against.
type ControlRepository interface {
	GetByID(ctx context.Context, systemID, controlID uuid.UUID) (*domain.Control, error)
	GetByIdentifier(ctx context.Context, systemID uuid.UUID, identifier string) (*domain.Control, error)
	ListBySystem(ctx context.Context, systemID uuid.UUID) ([]domain.Control, error)
}
