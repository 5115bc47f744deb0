package unit_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"veostudio/internal/services"
)

func TestCredentialService_SetGetClear(t *testing.T) {
	svc := services.NewCredentialService("")
	assert.False(t, svc.HasCredential())

	assert.NoError(t, svc.Set("  abc  "))
	assert.True(t, svc.HasCredential())
	assert.Equal(t, "abc", svc.Get())

	svc.Clear()
	assert.False(t, svc.HasCredential())
	assert.Empty(t, svc.Get())
}

func TestCredentialService_RejectsBlank(t *testing.T) {
	svc := services.NewCredentialService("seed")
	assert.ErrorIs(t, svc.Set("   "), services.ErrEmptyCredential)
	assert.Equal(t, "seed", svc.Get())
}
