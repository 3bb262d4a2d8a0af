package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

var ErrMalformedCiphertext = errors.New("crypto: malformed ciphertext")

// TokenCipher seals platform tokens at rest with AES-256-GCM.
type TokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher derives a 32 byte key from secret. An empty secret yields a
// cipher that stores values unchanged, which is only acceptable in local dev.
func NewTokenCipher(secret string) (*TokenCipher, error) {
	if secret == "" {
		return &TokenCipher{}, nil
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &TokenCipher{aead: gcm}, nil
}

// Enabled reports whether values are actually encrypted.
func (c *TokenCipher) Enabled() bool {
	return c != nil && c.aead != nil
}

// Encrypt returns base64(nonce || ciphertext).
func (c *TokenCipher) Encrypt(plainText string) (string, error) {
	if !c.Enabled() || plainText == "" {
		return plainText, nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *TokenCipher) Decrypt(cipherText string) (string, error) {
	if !c.Enabled() || cipherText == "" {
		return cipherText, nil
	}

	data, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return "", ErrMalformedCiphertext
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}

	return string(plain), nil
}
