package services

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"gorm.io/gorm"

	"veostudio/internal/media"
	"veostudio/internal/repositories"
	"veostudio/internal/video/client"
)

// Services aggregates the application services. Fields use plural names
// (e.g., Models) to align with Go conventions seen in service containers.
type Services struct {
	Credentials CredentialService
	Models      ModelService
	Images      ImageService
	History     HistoryService
	Generations GenerationService
	Media       *media.Store
}

type Config struct {
	MediaDir string
	// APIKey seeds the credential holder, usually from GEMINI_API_KEY.
	APIKey     string
	HTTPClient *http.Client
	Client     client.Config
	Generation GenerationConfig
	// ProviderFactory overrides the Gemini provider, mainly for tests.
	ProviderFactory client.ProviderFactory
}

// NewServices constructs the service container using repositories backed by db.
func NewServices(db *gorm.DB, cfg Config) (*Services, error) {
	store, err := media.NewStore(cfg.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("open media store: %w", err)
	}

	factory := cfg.ProviderFactory
	if factory == nil {
		factory = client.GeminiProviderFactory(cfg.HTTPClient)
	}
	clientCfg := cfg.Client
	if clientCfg.HTTPClient == nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	credentials := NewCredentialService(cfg.APIKey)
	catalogue := NewModelService()
	history := NewHistoryService(repositories.NewKVRecordRepository(db), store)
	generations := NewGenerationService(client.New(factory, clientCfg), credentials, catalogue, history, store, cfg.Generation)

	return &Services{
		Credentials: credentials,
		Models:      catalogue,
		Images:      NewImageService(),
		History:     history,
		Generations: generations,
		Media:       store,
	}, nil
}

// Startup hands ctx to every service and loads the stored history.
func (s *Services) Startup(ctx context.Context) error {
	s.Credentials.Startup(ctx)
	s.Images.Startup(ctx)
	if err := s.Models.Startup(ctx); err != nil {
		return err
	}
	s.History.Startup(ctx)
	if err := s.History.Load(); err != nil {
		log.Printf("services: %v", err)
	}
	s.Generations.Startup(ctx)
	return nil
}

func (s *Services) Shutdown() {
	s.Generations.Shutdown()
}
