package mocks

import (
	"context"

	"github.com/feltline/feltline/internal/domain/history"
	"github.com/stretchr/testify/mock"
)

// KVStore is a mock for repository.KVStore.
type KVStore struct {
	mock.Mock
}

func (m *KVStore) Get(ctx context.Context, userID, key string) ([]byte, error) {
	args := m.Called(ctx, userID, key)
	if value, ok := args.Get(0).([]byte); ok {
		return value, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *KVStore) Set(ctx context.Context, userID, key string, value []byte) error {
	args := m.Called(ctx, userID, key, value)
	return args.Error(0)
}

func (m *KVStore) Remove(ctx context.Context, userID, key string) error {
	args := m.Called(ctx, userID, key)
	return args.Error(0)
}

func (m *KVStore) RemoveAll(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *KVStore) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// HistoryRepository is a mock for repository.HistoryRepository.
type HistoryRepository struct {
	mock.Mock
}

func (m *HistoryRepository) Create(ctx context.Context, userID string, rec *history.Record) error {
	args := m.Called(ctx, userID, rec)
	return args.Error(0)
}

func (m *HistoryRepository) List(ctx context.Context, userID string) ([]history.Record, error) {
	args := m.Called(ctx, userID)
	if recs, ok := args.Get(0).([]history.Record); ok {
		return recs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HistoryRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// KeyRepository is a mock for repository.KeyRepository.
type KeyRepository struct {
	mock.Mock
}

func (m *KeyRepository) ResolveUser(ctx context.Context, keyHash string) (string, error) {
	args := m.Called(ctx, keyHash)
	return args.String(0), args.Error(1)
}

func (m *KeyRepository) Insert(ctx context.Context, keyHash, userID, description string) error {
	args := m.Called(ctx, keyHash, userID, description)
	return args.Error(0)
}
