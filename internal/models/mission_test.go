package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretNormalize(t *testing.T) {
	assert.Equal(t, Secret("fox"), Secret("  FoX ").Normalize())
	assert.True(t, Secret("LAMP").Equal(Secret(" lamp")))
	assert.False(t, Secret("lamp").Equal(Secret("lamb")))
	assert.True(t, Secret("").Equal(Secret("   ")))
}
