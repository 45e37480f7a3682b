package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

// Format selects the wire format Protect writes. Reveal reads both.
type Format string

const (
	// FormatCBC is the legacy layout: base64(IV || AES-256-CBC ciphertext).
	FormatCBC Format = "cbc"
	// FormatGCM is the sealed layout: "v2:" + base64(nonce || AES-256-GCM ciphertext || tag).
	FormatGCM Format = "gcm"
)

// ParseFormat maps a configuration value to a Format. Empty means FormatCBC.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCBC:
		return FormatCBC, nil
	case FormatGCM:
		return FormatGCM, nil
	default:
		return "", fmt.Errorf("%w: unknown field cipher format %q", ErrConfiguration, s)
	}
}

// FieldCipher protects short text fields at rest. It holds only immutable key
// schedules, so one instance is safe for unlimited concurrent use.
type FieldCipher struct {
	block  cipher.Block // AES-256 under the secret key, legacy format
	aead   cipher.AEAD  // AES-256-GCM under the HKDF-derived key, sealed format
	format Format
	random io.Reader
}

// Option configures a FieldCipher at construction.
type Option func(*FieldCipher)

// WithFormat sets the format produced by Protect.
func WithFormat(f Format) Option {
	return func(c *FieldCipher) { c.format = f }
}

// WithRandom replaces crypto/rand as the IV and nonce source. Tests only.
func WithRandom(r io.Reader) Option {
	return func(c *FieldCipher) { c.random = r }
}

// New builds a FieldCipher from a raw 32-byte key. The caller keeps ownership of key.
func New(key []byte, opts ...Option) (*FieldCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", ErrConfiguration, len(key), KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: block cipher: %w", ErrConfiguration, err)
	}

	sealKey, err := deriveSealKey(key)
	if err != nil {
		return nil, err
	}
	defer zero(sealKey)

	sealBlock, err := aes.NewCipher(sealKey)
	if err != nil {
		return nil, fmt.Errorf("%w: block cipher: %w", ErrConfiguration, err)
	}

	aead, err := cipher.NewGCM(sealBlock)
	if err != nil {
		return nil, fmt.Errorf("%w: GCM: %w", ErrConfiguration, err)
	}

	c := &FieldCipher{
		block:  block,
		aead:   aead,
		format: FormatCBC,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.format != FormatCBC && c.format != FormatGCM {
		return nil, fmt.Errorf("%w: unknown field cipher format %q", ErrConfiguration, c.format)
	}
	if c.random == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfiguration)
	}

	return c, nil
}

// NewFromBase64 decodes the configured key and builds a FieldCipher. This is the
// startup path: any error here must stop the process.
func NewFromBase64(encoded string, opts ...Option) (*FieldCipher, error) {
	key, err := ParseKey(encoded)
	if err != nil {
		return nil, err
	}
	defer zero(key)

	return New(key, opts...)
}

// Format reports the format Protect writes.
func (c *FieldCipher) Format() Format {
	return c.format
}

// Protect encrypts plaintext under a fresh random IV (or nonce) and returns the blob.
func (c *FieldCipher) Protect(plaintext string) (string, error) {
	if c.format == FormatGCM {
		return c.protectSealed([]byte(plaintext))
	}
	return c.protectCBC([]byte(plaintext))
}

// Reveal decrypts a blob produced by Protect in either format.
func (c *FieldCipher) Reveal(blob string) (string, error) {
	var (
		plaintext []byte
		err       error
	)
	if payload, ok := strings.CutPrefix(blob, sealedPrefix); ok {
		plaintext, err = c.revealSealed(payload)
	} else {
		plaintext, err = c.revealCBC(blob)
	}
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// Upgrade rewrites a legacy blob in the sealed format. Sealed blobs are verified
// and returned as is; changed reports whether a rewrite happened.
func (c *FieldCipher) Upgrade(blob string) (upgraded string, changed bool, err error) {
	if payload, ok := strings.CutPrefix(blob, sealedPrefix); ok {
		if _, err := c.revealSealed(payload); err != nil {
			return "", false, err
		}
		return blob, false, nil
	}

	plaintext, err := c.revealCBC(blob)
	if err != nil {
		return "", false, err
	}
	defer zero(plaintext)

	sealed, err := c.protectSealed(plaintext)
	if err != nil {
		return "", false, err
	}
	return sealed, true, nil
}

// IsSealed reports whether blob uses the authenticated format.
func IsSealed(blob string) bool {
	return strings.HasPrefix(blob, sealedPrefix)
}
