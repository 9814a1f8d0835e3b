package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"evidos/internal/domain"
)

// MockEvidenceRepo is a mock implementation of port.EvidenceRepository.
type MockEvidenceRepo struct {
	mock.Mock
}

func (m *MockEvidenceRepo) CreateBatch(ctx context.Context, evidence []domain.Evidence) error {
	args := m.Called(ctx, evidence)
	return args.Error(0)
}

func (m *MockEvidenceRepo) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockEvidenceRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Evidence, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Evidence), args.Error(1)
}

func (m *MockEvidenceRepo) CountByDocument(ctx context.Context, documentID uuid.UUID) (int, error) {
	args := m.Called(ctx, documentID)
	return args.Int(0), args.Error(1)
}

func (m *MockEvidenceRepo) ListBySystem(ctx context.Context, systemID uuid.UUID) ([]domain.EvidenceWithControl, error) {
	args := m.Called(ctx, systemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EvidenceWithControl), args.Error(1)
}
