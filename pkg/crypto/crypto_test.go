package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCipher_EncryptDecrypt(t *testing.T) {
	c, err := NewTokenCipher("a-long-enough-secret")
	require.NoError(t, err)
	require.True(t, c.Enabled())

	sealed, err := c.Encrypt("AQX-token")
	require.NoError(t, err)
	assert.NotEqual(t, "AQX-token", sealed)

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "AQX-token", plain)
}

func TestTokenCipher_NonceIsRandom(t *testing.T) {
	c, err := NewTokenCipher("secret")
	require.NoError(t, err)

	a, _ := c.Encrypt("same")
	b, _ := c.Encrypt("same")
	assert.NotEqual(t, a, b)
}

func TestTokenCipher_WrongKeyFails(t *testing.T) {
	c1, _ := NewTokenCipher("one")
	c2, _ := NewTokenCipher("two")

	sealed, err := c1.Encrypt("token")
	require.NoError(t, err)

	_, err = c2.Decrypt(sealed)
	assert.Error(t, err)
}

func TestTokenCipher_Disabled(t *testing.T) {
	c, err := NewTokenCipher("")
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	sealed, err := c.Encrypt("token")
	require.NoError(t, err)
	assert.Equal(t, "token", sealed)
}

func TestTokenCipher_Malformed(t *testing.T) {
	c, _ := NewTokenCipher("secret")

	_, err := c.Decrypt("%%%not-base64")
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	_, err = c.Decrypt("AAAA")
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}
