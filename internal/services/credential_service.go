package services

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrEmptyCredential = errors.New("api key is empty")

// CredentialService holds the Gemini API key for the lifetime of the process.
// The key is kept in memory only.
type CredentialService interface {
	Startup(ctx context.Context)
	Set(apiKey string) error
	Get() string
	Clear()
	HasCredential() bool
}

type credentialService struct {
	ctx context.Context

	mu     sync.RWMutex
	apiKey string
}

// NewCredentialService returns a holder seeded with initial, which may be empty.
func NewCredentialService(initial string) CredentialService {
	return &credentialService{apiKey: strings.TrimSpace(initial)}
}

func (s *credentialService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func (s *credentialService) Set(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrEmptyCredential
	}
	s.mu.Lock()
	s.apiKey = apiKey
	s.mu.Unlock()
	return nil
}

func (s *credentialService) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

func (s *credentialService) Clear() {
	s.mu.Lock()
	s.apiKey = ""
	s.mu.Unlock()
}

func (s *credentialService) HasCredential() bool {
	return s.Get() != ""
}
