package port

import (
	"context"

	"github.com/google/uuid"

	"evidos/internal/domain"
)

// SystemRepository provides access to assessed systems.
type SystemRepository interface {
	Create(ctx context.Context, system *domain.System) error
	GetByID(ctx context.Context, systemID uuid.UUID) (*domain.System, error)
	List(ctx context.Context) ([]domain.System, error)
}
