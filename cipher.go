package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Algorithm identifies the AEAD used for field encryption. Both supported
// algorithms take a 256-bit key, a 12-byte nonce and produce a 16-byte tag,
// so they share the blob layout.
type Algorithm uint8

const (
	// AlgorithmAES256GCM is AES-256 in Galois/Counter Mode. Default.
	AlgorithmAES256GCM Algorithm = iota
	// AlgorithmChaCha20Poly1305 is the IETF ChaCha20-Poly1305 construction.
	AlgorithmChaCha20Poly1305
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmAES256GCM:
		return "aes-256-gcm"
	case AlgorithmChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return "unknown"
	}
}

// FieldCipher encrypts and decrypts single field values under the "enc"
// subkey of a field and key version. It holds no mutable state and is safe
// for concurrent use.
type FieldCipher struct {
	keys      *KeyStore
	algorithm Algorithm
}

// NewFieldCipher creates a FieldCipher backed by keys.
func NewFieldCipher(keys *KeyStore, opts ...Option) (*FieldCipher, error) {
	cfg := applyOptions(opts)
	if cfg.algorithm != AlgorithmAES256GCM && cfg.algorithm != AlgorithmChaCha20Poly1305 {
		return nil, ErrUnsupportedAlgorithm
	}
	return &FieldCipher{keys: keys, algorithm: cfg.algorithm}, nil
}

// Algorithm returns the configured AEAD.
func (c *FieldCipher) Algorithm() Algorithm {
	return c.algorithm
}

// Encrypt encrypts plaintext for field under key version.
// Returns nil, nil for an empty plaintext: absence is never encrypted.
//
// The blob format is: [nonce:12][ciphertext][tag:16]
func (c *FieldCipher) Encrypt(plaintext string, field string, version int) ([]byte, error) {
	if plaintext == "" {
		return nil, nil
	}

	aead, err := c.aead(field, version)
	if err != nil {
		return nil, err
	}

	nonce, err := generateNonce()
	if err != nil {
		return nil, err
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return formatBlob(nonce, sealed), nil
}

// Decrypt recovers the plaintext of blob for field under key version.
//
// A nil or empty blob yields Absent. A blob that fails authentication, or is
// too short to be a blob at all, yields IntegrityFailure. The returned error
// is reserved for key store failures such as a missing key, which are
// configuration problems rather than data problems.
func (c *FieldCipher) Decrypt(blob []byte, field string, version int) (Plaintext, error) {
	if len(blob) == 0 {
		return absentPlaintext(), nil
	}

	aead, err := c.aead(field, version)
	if err != nil {
		return Plaintext{}, err
	}

	nonce, sealed, err := parseBlob(blob)
	if err != nil {
		return failedPlaintext(err), nil
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return failedPlaintext(fmt.Errorf("%w: field %q version %d", ErrDecryptionFailed, field, version)), nil
	}

	return presentPlaintext(string(plaintext)), nil
}

// aead builds the AEAD for the "enc" subkey of field/version.
func (c *FieldCipher) aead(field string, version int) (cipher.AEAD, error) {
	key, err := c.keys.Subkey(PurposeEncryption, field, version)
	if err != nil {
		return nil, err
	}
	return newAEAD(c.algorithm, key[:])
}

func newAEAD(algo Algorithm, key []byte) (cipher.AEAD, error) {
	switch algo {
	case AlgorithmAES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("fieldcrypt: creating cipher: %w", err)
		}
		return cipher.NewGCM(block)
	case AlgorithmChaCha20Poly1305:
		return chacha20poly1305.New(key)
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// generateNonce returns a fresh random 12-byte nonce.
func generateNonce() ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("fieldcrypt: generating nonce: %w", err)
	}
	return nonce, nil
}
