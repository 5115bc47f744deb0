package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"veostudio/internal/assets"
	"veostudio/internal/models"
)

var ErrUnknownModel = errors.New("unknown video model")

type ModelService interface {
	Startup(ctx context.Context) error
	ListModelGroups() ([]models.VideoModelGroup, error)
	GetModel(modelKey string) (*models.VideoModel, error)
	// Resolve accepts either a catalogue key or a provider model name.
	Resolve(variant string) (*models.VideoModel, error)
	DefaultModel() (*models.VideoModel, error)
}

type modelService struct {
	ctx  context.Context
	data []byte

	mu            sync.RWMutex
	providerOrder []string
	providerNames map[string]string
	models        map[string]*models.VideoModel
	byAPIName     map[string]string
	defaultKey    string
}

type rawModelFile struct {
	Providers []rawProvider `json:"providers"`
}

type rawProvider struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Models      []rawModel `json:"models"`
}

type rawModel struct {
	DisplayName string `json:"displayName"`
	ShortName   string `json:"shortName"`
	APIName     string `json:"apiName"`
	Default     bool   `json:"default,omitempty"`
}

// NewModelService reads the embedded catalogue.
func NewModelService() ModelService {
	return NewModelServiceFromData(assets.ModelsData)
}

// NewModelServiceFromData reads the catalogue from data instead of the embedded asset.
func NewModelServiceFromData(data []byte) ModelService {
	return &modelService{
		data:          data,
		providerNames: make(map[string]string),
		models:        make(map[string]*models.VideoModel),
		byAPIName:     make(map[string]string),
	}
}

func (s *modelService) Startup(ctx context.Context) error {
	s.ctx = ctx

	var parsed rawModelFile
	if err := json.Unmarshal(s.data, &parsed); err != nil {
		return fmt.Errorf("parse models asset: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.providerOrder = make([]string, 0, len(parsed.Providers))
	for _, provider := range parsed.Providers {
		providerID := strings.TrimSpace(provider.ID)
		if providerID == "" {
			continue
		}
		providerName := strings.TrimSpace(provider.DisplayName)
		s.providerNames[providerID] = providerName
		s.providerOrder = append(s.providerOrder, providerID)
		for _, mdl := range provider.Models {
			apiName := strings.TrimSpace(mdl.APIName)
			if apiName == "" {
				continue
			}
			key := providerID + "|" + apiName
			shortName := strings.TrimSpace(mdl.ShortName)
			if shortName == "" {
				shortName = strings.TrimSpace(mdl.DisplayName)
			}
			s.models[key] = &models.VideoModel{
				Key:          key,
				DisplayName:  strings.TrimSpace(mdl.DisplayName),
				ShortName:    shortName,
				APIName:      apiName,
				ProviderID:   providerID,
				ProviderName: providerName,
				Default:      mdl.Default,
			}
			s.byAPIName[apiName] = key
			if mdl.Default && s.defaultKey == "" {
				s.defaultKey = key
			}
		}
	}
	if len(s.models) == 0 {
		return errors.New("models asset lists no video models")
	}
	if s.defaultKey == "" {
		keys := make([]string, 0, len(s.models))
		for k := range s.models {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s.defaultKey = keys[0]
		s.models[s.defaultKey].Default = true
	}
	return nil
}

func (s *modelService) ListModelGroups() ([]models.VideoModelGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.VideoModelGroup, 0, len(s.providerOrder))
	for _, providerID := range s.providerOrder {
		group := models.VideoModelGroup{
			ProviderID:   providerID,
			ProviderName: s.providerName(providerID),
		}
		var modelsForProvider []models.VideoModel
		for _, mdl := range s.models {
			if mdl.ProviderID != providerID {
				continue
			}
			modelsForProvider = append(modelsForProvider, *mdl)
		}
		sort.SliceStable(modelsForProvider, func(i, j int) bool {
			return strings.ToLower(modelsForProvider[i].DisplayName) < strings.ToLower(modelsForProvider[j].DisplayName)
		})
		group.Models = modelsForProvider
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *modelService) GetModel(modelKey string) (*models.VideoModel, error) {
	modelKey = strings.TrimSpace(modelKey)
	if modelKey == "" {
		return nil, fmt.Errorf("model key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	mdl, ok := s.models[modelKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, modelKey)
	}
	out := *mdl
	return &out, nil
}

func (s *modelService) Resolve(variant string) (*models.VideoModel, error) {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return s.DefaultModel()
	}
	s.mu.RLock()
	key, ok := s.byAPIName[variant]
	s.mu.RUnlock()
	if ok {
		return s.GetModel(key)
	}
	return s.GetModel(variant)
}

func (s *modelService) DefaultModel() (*models.VideoModel, error) {
	s.mu.RLock()
	key := s.defaultKey
	s.mu.RUnlock()
	if key == "" {
		return nil, errors.New("model catalogue is not loaded")
	}
	return s.GetModel(key)
}

func (s *modelService) providerName(providerID string) string {
	if name, ok := s.providerNames[providerID]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	return providerID
}
