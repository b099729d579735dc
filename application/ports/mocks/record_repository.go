// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"

	"product-search/domain/product"

	"github.com/stretchr/testify/mock"
)

// MockRecordRepository is a testify mock of ports.RecordRepository.
type MockRecordRepository struct {
	mock.Mock
}

// QueryByProduct implements ports.RecordRepository.
func (m *MockRecordRepository) QueryByProduct(ctx context.Context, productName string) ([]product.Record, error) {
	args := m.Called(ctx, productName)
	if records, ok := args.Get(0).([]product.Record); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

// Strategy implements ports.RecordRepository.
func (m *MockRecordRepository) Strategy() string {
	return "mock"
}
