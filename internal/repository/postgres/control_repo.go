package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"evidos/internal/domain"
	"evidos/internal/port"
)

type controlRepo struct {
	db *sqlx.DB
}

// NewControlRepo creates a new PostgreSQL-backed ControlRepository.
func NewControlRepo(db *sqlx.DB) port.ControlRepository {
	return &controlRepo{db: db}
}

func (r *controlRepo) GetByID(ctx context.Context, systemID, controlID uuid.UUID) (*domain.Control, error) {
	var control domain.Control
	err := r.db.GetContext(ctx, &control,
		"SELECT * FROM controls WHERE id = $1 AND system_id = $2", controlID, systemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("controlRepo.GetByID: %w", err)
	}
	return &control, nil
}

func (r *controlRepo) GetByIdentifier(ctx context.Context, systemID uuid.UUID, identifier string) (*domain.Control, error) {
	var control domain.Control
	err := r.db.GetContext(ctx, &control,
		"SELECT * FROM controls WHERE system_id = $1 AND identifier = $2", systemID, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("controlRepo.GetByIdentifier: %w", err)
	}
	return &control, nil
}

func (r *controlRepo) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]domain.Control, error) {
	var controls []domain.Control
	err := r.db.SelectContext(ctx, &controls,
		"SELECT * FROM controls WHERE system_id = $1 ORDER BY identifier", systemID)
	if err != nil {
		return nil, fmt.Errorf("controlRepo.ListBySystem: %w", err)
	}
	return controls, nil
}
