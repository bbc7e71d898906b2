package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	a, err := DeriveKey("hunter2")
	require.NoError(t, err)
	assert.Len(t, a, 32)

	b, err := DeriveKey("hunter2")
	require.NoError(t, err)
	assert.Equal(t, a, b, "derivation is deterministic")

	c, err := DeriveKey("hunter3")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = DeriveKey("")
	assert.Error(t, err)
}

func TestDeriveSessionKey(t *testing.T) {
	key, err := DeriveKey("hunter2")
	require.NoError(t, err)

	sn := make([]byte, NonceSize)
	cn := make([]byte, NonceSize)
	cn[0] = 1

	a := DeriveSessionKey(key, sn, cn)
	assert.Len(t, a, 32)
	assert.Equal(t, a, DeriveSessionKey(key, sn, cn))

	// Order and identity of the nonces both matter.
	assert.NotEqual(t, a, DeriveSessionKey(key, cn, sn))
	cn[0] = 2
	assert.NotEqual(t, a, DeriveSessionKey(key, sn, cn))
}
