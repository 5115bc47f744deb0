package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"veostudio/internal/models"
)

// Submission is what gets sent to the provider. Aspect ratio, resolution and
// sound are not part of it: the API does not accept them yet.
type Submission struct {
	Model  string
	Prompt string
	Image  *models.ImageFile
}

// Operation is the provider's handle on a long-running generation.
type Operation struct {
	Name     string
	Done     bool
	VideoURI string
	// ErrorMessage is set when the provider finished the job without output.
	ErrorMessage string

	raw *genai.GenerateVideosOperation
}

type Provider interface {
	Submit(ctx context.Context, sub Submission) (*Operation, error)
	Poll(ctx context.Context, op *Operation) (*Operation, error)
}

// ProviderFactory builds a Provider bound to one credential.
type ProviderFactory func(ctx context.Context, apiKey string) (Provider, error)

type GeminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string, httpClient *http.Client) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("api key is required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProvider{client: c}, nil
}

// GeminiProviderFactory returns a ProviderFactory creating Gemini providers
// that share httpClient (nil means http.DefaultClient).
func GeminiProviderFactory(httpClient *http.Client) ProviderFactory {
	return func(ctx context.Context, apiKey string) (Provider, error) {
		return NewGeminiProvider(ctx, apiKey, httpClient)
	}
}

func (p *GeminiProvider) Submit(ctx context.Context, sub Submission) (*Operation, error) {
	var image *genai.Image
	if sub.Image != nil {
		image = &genai.Image{
			ImageBytes: sub.Image.Bytes,
			MIMEType:   sub.Image.MIMEType,
		}
	}

	op, err := p.client.Models.GenerateVideos(ctx, sub.Model, sub.Prompt, image, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
	})
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, errors.New("provider returned no operation")
	}
	return fromGenaiOperation(op), nil
}

func (p *GeminiProvider) Poll(ctx context.Context, op *Operation) (*Operation, error) {
	if op == nil {
		return nil, errors.New("operation is required")
	}
	raw := op.raw
	if raw == nil {
		raw = &genai.GenerateVideosOperation{Name: op.Name}
	}
	next, err := p.client.Operations.GetVideosOperation(ctx, raw, nil)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, errors.New("provider returned no operation")
	}
	return fromGenaiOperation(next), nil
}

func fromGenaiOperation(op *genai.GenerateVideosOperation) *Operation {
	out := &Operation{
		Name: op.Name,
		Done: op.Done,
		raw:  op,
	}
	if msg, ok := op.Error["message"]; ok {
		out.ErrorMessage = fmt.Sprint(msg)
	}
	if op.Response == nil {
		return out
	}
	for _, generated := range op.Response.GeneratedVideos {
		if generated != nil && generated.Video != nil && generated.Video.URI != "" {
			out.VideoURI = generated.Video.URI
			break
		}
	}
	if out.VideoURI == "" && len(op.Response.RAIMediaFilteredReasons) > 0 && out.ErrorMessage == "" {
		out.ErrorMessage = strings.Join(op.Response.RAIMediaFilteredReasons, "; ")
	}
	return out
}
