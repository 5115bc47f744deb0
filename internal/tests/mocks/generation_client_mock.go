package mocks

import (
	"context"
	"sync"

	"veostudio/internal/models"
	"veostudio/internal/video/client"
)

type GenerationClientMock struct {
	GenerateFunc func(ctx context.Context, credential string, req models.GenerationRequest, sink client.ProgressSink) (*client.Result, error)

	mu       sync.Mutex
	requests []models.GenerationRequest
}

func (m *GenerationClientMock) Generate(ctx context.Context, credential string, req models.GenerationRequest, sink client.ProgressSink) (*client.Result, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, credential, req, sink)
	}
	return &client.Result{Data: []byte("video"), MIMEType: "video/mp4"}, nil
}

func (m *GenerationClientMock) Requests() []models.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.GenerationRequest(nil), m.requests...)
}
