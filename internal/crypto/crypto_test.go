package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte { return bytes.Repeat([]byte{b}, 32) }

func TestCipher_SealOpen(t *testing.T) {
	c, err := NewCipher(testKey(1))
	require.NoError(t, err)

	sealed, err := c.Seal("今天很开心")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "开心")

	again, err := c.Seal("今天很开心")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per call")

	plain, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "今天很开心", plain)
}

func TestCipher_PassThrough(t *testing.T) {
	c, err := NewCipher(testKey(1))
	require.NoError(t, err)

	empty, err := c.Seal("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	plain, err := c.Open("legacy plaintext row")
	require.NoError(t, err)
	assert.Equal(t, "legacy plaintext row", plain)
}

func TestCipher_Errors(t *testing.T) {
	_, err := NewCipher([]byte("short"))
	assert.Error(t, err)

	c, err := NewCipher(testKey(1))
	require.NoError(t, err)
	other, err := NewCipher(testKey(2))
	require.NoError(t, err)

	sealed, err := c.Seal("secret")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)

	_, err = c.Open(prefix + "!!!")
	assert.ErrorIs(t, err, ErrCiphertext)
	_, err = c.Open(prefix + "AAAA")
	assert.ErrorIs(t, err, ErrCiphertext)
}
