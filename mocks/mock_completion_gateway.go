package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"evidos/internal/port"
)

// MockCompletionGateway is a mock implementation of port.CompletionGateway.
type MockCompletionGateway struct {
	mock.Mock
}

func (m *MockCompletionGateway) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
