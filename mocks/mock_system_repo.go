package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"evidos/internal/domain"
)

// MockSystemRepo is a mock implementation of port.SystemRepository.
type MockSystemRepo struct {
	mock.Mock
}

func (m *MockSystemRepo) Create(ctx context.Context, system *domain.System) error {
	args := m.Called(ctx, system)
	return args.Error(0)
}

func (m *MockSystemRepo) GetByID(ctx context.Context, systemID uuid.UUID) (*domain.System, error) {
	args := m.Called(ctx, systemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.System), args.Error(1)
}

func (m *MockSystemRepo) List(ctx context.Context) ([]domain.System, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.System), args.Error(1)
}
