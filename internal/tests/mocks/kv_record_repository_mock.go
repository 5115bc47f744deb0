package mocks

import (
	"context"
	"sync"

	"veostudio/internal/models"
)

// KVRecordRepositoryMock keeps records in memory unless a Func field overrides a call.
type KVRecordRepositoryMock struct {
	GetFunc    func(ctx context.Context, key string) (*models.KVRecord, error)
	PutFunc    func(ctx context.Context, key, value string) error
	DeleteFunc func(ctx context.Context, key string) error

	mu      sync.Mutex
	Records map[string]string
	Puts    int
}

func (m *KVRecordRepositoryMock) Get(ctx context.Context, key string) (*models.KVRecord, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Records[key]
	if !ok {
		return nil, nil
	}
	return &models.KVRecord{Name: key, Value: v}, nil
}

func (m *KVRecordRepositoryMock) Put(ctx context.Context, key, value string) error {
	m.mu.Lock()
	m.Puts++
	m.mu.Unlock()
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Records == nil {
		m.Records = make(map[string]string)
	}
	m.Records[key] = value
	return nil
}

func (m *KVRecordRepositoryMock) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Records, key)
	return nil
}

func (m *KVRecordRepositoryMock) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Records[key]
}

func (m *KVRecordRepositoryMock) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Puts
}
