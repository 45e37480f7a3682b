package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// KeySize is the AES-256 secret key length in bytes.
const KeySize = 32

// ParseKey decodes a base64 secret key and enforces KeySize.
func ParseKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: key is empty", ErrConfiguration)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// The decoder error carries an offset only, but keep it out anyway.
		return nil, fmt.Errorf("%w: key is not valid base64", ErrConfiguration)
	}

	if len(key) != KeySize {
		zero(key)
		return nil, fmt.Errorf("%w: key decodes to %d bytes, want %d", ErrConfiguration, len(key), KeySize)
	}

	return key, nil
}

// GenerateKey returns a fresh random key in the base64 form ParseKey accepts.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	defer zero(key)

	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("crypto: key generation failure: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// 🛡️ Scrub temporary key material once the cipher schedule holds its own copy.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
