package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"evidos/internal/domain"
)

// MockControlRepo is a mock implementation of port.ControlRepository.
type MockControlRepo struct {
	mock.Mock
}

func (m *MockControlRepo) GetByID(ctx context.Context, systemID, controlID uuid.UUID) (*domain.Control, error) {
	args := m.Called(ctx, systemID, controlID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Control), args.Error(1)
}

func (m *MockControlRepo) GetByIdentifier(ctx context.Context, systemID uuid.UUID, identifier string) (*domain.Control, error) {
	args := m.Called(ctx, systemID, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Control), args.Error(1)
}

func (m *MockControlRepo) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]domain.Control, error) {
	args := m.Called(ctx, systemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Control), args.Error(1)
}
