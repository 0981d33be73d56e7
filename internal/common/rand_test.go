package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandByteArray(t *testing.T) {
	size := 32

	data1, err := GenerateRandByteArray(size)
	require.NoError(t, err)
	data2, err := GenerateRandByteArray(size)
	require.NoError(t, err)

	assert.Len(t, data1, size)
	assert.Len(t, data2, size)
	assert.NotEqual(t, data1, data2)
}
