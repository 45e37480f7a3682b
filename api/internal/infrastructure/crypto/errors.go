package crypto

import "errors"

// Callers match these with errors.Is. Messages never carry key, IV or plaintext bytes.
var (
	// ErrConfiguration means the secret key is missing or does not decode to KeySize bytes.
	ErrConfiguration = errors.New("crypto: invalid configuration")

	// ErrEncryption means the random source or the block cipher failed during Protect.
	// Nothing usable was produced and the caller must not persist the field.
	ErrEncryption = errors.New("crypto: encryption failure")

	// ErrMalformedInput means a blob failed structural validation (bad base64, too short).
	ErrMalformedInput = errors.New("crypto: malformed input")

	// ErrDecryption means a structurally valid blob could not be decrypted under this key.
	ErrDecryption = errors.New("crypto: decryption failure")
)
