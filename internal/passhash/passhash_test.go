package passhash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("Sup3rSecret!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.NotContains(t, hash, "Sup3rSecret!")
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"), "hash should use the fixed cost factor")

	assert.NoError(t, Verify(hash, "Sup3rSecret!"))
	assert.Error(t, Verify(hash, "WrongPass1!"))
}

func TestHashesAreSalted(t *testing.T) {
	first, err := Hash("Sup3rSecret!")
	require.NoError(t, err)

	second, err := Hash("Sup3rSecret!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHasherAdapter(t *testing.T) {
	hasher := Hasher{}

	hash, err := hasher.Hash("Sup3rSecret!")
	require.NoError(t, err)

	assert.NoError(t, hasher.Verify(hash, "Sup3rSecret!"))
	assert.Error(t, hasher.Verify(hash, "another"))
}
