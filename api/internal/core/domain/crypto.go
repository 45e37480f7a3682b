package domain

// FieldCipher is the contract the household path uses to protect PII at rest.
// Implementations hold an immutable key and are safe for concurrent use.
type FieldCipher interface {
	// Protect returns an opaque blob for plaintext. On error nothing may be persisted.
	Protect(plaintext string) (string, error)

	// Reveal returns the plaintext behind a blob produced by Protect.
	// It never returns a partial result.
	Reveal(blob string) (string, error)
}
