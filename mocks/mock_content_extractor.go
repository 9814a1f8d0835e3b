package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"evidos/internal/port"
)

// MockContentExtractor is a mock implementation of port.ContentExtractor.
type MockContentExtractor struct {
	mock.Mock
}

func (m *MockContentExtractor) Extract(ctx context.Context, in port.ExtractInput) (*port.ExtractedContent, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractedContent), args.Error(1)
}
