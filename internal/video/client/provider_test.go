package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestFromGenaiOperation(t *testing.T) {
	pending := fromGenaiOperation(&genai.GenerateVideosOperation{Name: "operations/1"})
	assert.Equal(t, "operations/1", pending.Name)
	assert.False(t, pending.Done)
	assert.Empty(t, pending.VideoURI)

	done := fromGenaiOperation(&genai.GenerateVideosOperation{
		Name: "operations/1",
		Done: true,
		Response: &genai.GenerateVideosResponse{
			GeneratedVideos: []*genai.GeneratedVideo{
				{Video: &genai.Video{}},
				{Video: &genai.Video{URI: "https://files/v1?alt=media"}},
			},
		},
	})
	assert.True(t, done.Done)
	assert.Equal(t, "https://files/v1?alt=media", done.VideoURI)
	assert.NotNil(t, done.raw)

	filtered := fromGenaiOperation(&genai.GenerateVideosOperation{
		Done: true,
		Response: &genai.GenerateVideosResponse{
			RAIMediaFilteredReasons: []string{"people", "violence"},
		},
	})
	assert.Empty(t, filtered.VideoURI)
	assert.Equal(t, "people; violence", filtered.ErrorMessage)

	failed := fromGenaiOperation(&genai.GenerateVideosOperation{
		Done:  true,
		Error: map[string]any{"code": 3, "message": "invalid prompt"},
	})
	assert.Equal(t, "invalid prompt", failed.ErrorMessage)
}

func TestGeminiProviderRequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(t.Context(), " ", nil)
	assert.Error(t, err)
}
