package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/connect360/tagdrop/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) InsertDropMessage(ctx context.Context, tokenHash string, sanitizedContent string) (bool, error) {
	args := m.Called(ctx, tokenHash, sanitizedContent)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) FetchActiveDropMessages(ctx context.Context, tokenHash string, limit int) ([]models.DropMessage, error) {
	args := m.Called(ctx, tokenHash, limit)
	return args.Get(0).([]models.DropMessage), args.Error(1)
}

func (m *MockStore) PurgeExpiredDropMessages(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) GetTagByCode(ctx context.Context, code string) (models.Tag, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(models.Tag), args.Error(1)
}
