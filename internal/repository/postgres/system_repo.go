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

type systemRepo struct {
	db *sqlx.DB
}

// NewSystemRepo creates a new PostgreSQL-backed SystemRepository.
func NewSystemRepo(db *sqlx.DB) port.SystemRepository {
	return &systemRepo{db: db}
}

func (r *systemRepo) Create(ctx context.Context, system *domain.System) error {
	now := time.Now().UTC()
	system.CreatedAt = now
	system.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO systems (id, name, acronym, description, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		system.ID, system.Name, system.Acronym, system.Description,
		system.IsActive, system.CreatedAt, system.UpdatedAt)
	if err != nil {
		return fmt.Errorf("systemRepo.Create: %w", err)
	}
	return nil
}

func (r *systemRepo) GetByID(ctx context.Context, systemID uuid.UUID) (*domain.System, error) {
	var system domain.System
	err := r.db.GetContext(ctx, &system,
		"SELECT * FROM systems WHERE id = $1", systemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("systemRepo.GetByID: %w", err)
	}
	return &system, nil
}

func (r *systemRepo) List(ctx context.Context) ([]domain.System, error) {
	var systems []domain.System
	err := r.db.SelectContext(ctx, &systems,
		"SELECT * FROM systems ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("systemRepo.List: %w", err)
	}
	return systems, nil
}
