package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFromEnv_DisabledWithoutAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")

	pollCache, err := InitFromEnv()
	require.NoError(t, err)
	assert.Nil(t, pollCache)
}

func TestInitFromEnv_UnreachableAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")

	pollCache, err := InitFromEnv()
	assert.Error(t, err)
	assert.Nil(t, pollCache)
}
