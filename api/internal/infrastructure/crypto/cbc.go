package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"io"
)

// IVSize is the legacy IV length, one AES block.
const IVSize = aes.BlockSize

func (c *FieldCipher) protectCBC(plaintext []byte) (string, error) {
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	defer zero(padded)

	// IV || ciphertext in one allocation
	out := make([]byte, IVSize+len(padded))
	iv := out[:IVSize]
	if _, err := io.ReadFull(c.random, iv); err != nil {
		return "", fmt.Errorf("%w: iv generation: %w", ErrEncryption, err)
	}

	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[IVSize:], padded)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *FieldCipher) revealCBC(blob string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: blob is not valid base64", ErrMalformedInput)
	}
	if len(data) < IVSize {
		return nil, fmt.Errorf("%w: blob is %d bytes, shorter than the %d byte IV", ErrMalformedInput, len(data), IVSize)
	}

	iv, body := data[:IVSize], data[IVSize:]
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not block aligned", ErrDecryption)
	}

	plaintext := make([]byte, len(body))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plaintext, body)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		zero(plaintext)
		return nil, err
	}
	return unpadded, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// pkcs7Unpad expects len(data) to be a non-zero multiple of blockSize.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecryption)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrDecryption)
		}
	}
	return data[:len(data)-n], nil
}
