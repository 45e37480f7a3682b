package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// ':' is outside the base64 alphabet, so no legacy blob starts with it.
	sealedPrefix = "v2:"
	sealInfo     = "mis/field-cipher/v2"
)

// deriveSealKey separates the GCM key from the raw secret used by the legacy format.
func deriveSealKey(master []byte) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("%w: key derivation: %w", ErrConfiguration, err)
	}
	return key, nil
}

func (c *FieldCipher) protectSealed(plaintext []byte) (string, error) {
	ns := c.aead.NonceSize()
	nonce := make([]byte, ns, ns+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(c.random, nonce); err != nil {
		return "", fmt.Errorf("%w: nonce generation: %w", ErrEncryption, err)
	}

	// 🛡️ The version prefix is bound as associated data so it cannot be swapped.
	sealed := c.aead.Seal(nonce, nonce, plaintext, []byte(sealedPrefix))
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *FieldCipher) revealSealed(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: sealed blob is not valid base64", ErrMalformedInput)
	}

	ns := c.aead.NonceSize()
	if len(data) < ns+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: sealed blob is %d bytes, too short for nonce and tag", ErrMalformedInput, len(data))
	}

	nonce, body := data[:ns], data[ns:]
	plaintext, err := c.aead.Open(nil, nonce, body, []byte(sealedPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrDecryption)
	}
	return plaintext, nil
}
