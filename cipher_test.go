package fieldcrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(version int) []byte {
	// Generate a deterministic 32-byte key for testing
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(version*31 + i)
	}
	return key
}

func testSource(versions ...int) *MapSource {
	values := make(map[string]string, len(versions))
	for _, v := range versions {
		values[keySlotPrefix+strconv.Itoa(v)] = EncodeKey(testKey(v))
	}
	return NewMapSource(values)
}

func testKeyStore(t *testing.T, opts ...Option) *KeyStore {
	t.Helper()
	ks, err := NewKeyStore(testSource(1, 2), opts...)
	require.NoError(t, err)
	return ks
}

func testCipher(t *testing.T, opts ...Option) *FieldCipher {
	t.Helper()
	c, err := NewFieldCipher(testKeyStore(t, opts...), opts...)
	require.NoError(t, err)
	return c
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := testCipher(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"simple text", "Compra Mercado"},
		{"unicode", "Lista básica こんにちは"},
		{"surrounding whitespace kept", "  padded  "},
		{"amount string", "20.00"},
		{"large text", strings.Repeat("x", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := c.Encrypt(tt.plaintext, "notes", 1)
			require.NoError(t, err)
			require.NotNil(t, blob)
			require.False(t, bytes.Contains(blob, []byte(tt.plaintext)))

			result, err := c.Decrypt(blob, "notes", 1)
			require.NoError(t, err)
			require.Equal(t, Present, result.State)
			require.Equal(t, tt.plaintext, result.Value)
		})
	}
}

func TestEncrypt_EmptyIsAbsent(t *testing.T) {
	c := testCipher(t)

	blob, err := c.Encrypt("", "notes", 1)
	require.NoError(t, err)
	require.Nil(t, blob)
}

func TestDecrypt_AbsentBlob(t *testing.T) {
	c := testCipher(t)

	for _, blob := range [][]byte{nil, {}} {
		result, err := c.Decrypt(blob, "notes", 1)
		require.NoError(t, err)
		require.Equal(t, Absent, result.State)
		require.NoError(t, result.Err)
	}
}

func TestEncrypt_BlobLayout(t *testing.T) {
	// Master key = 32 'A' bytes, as deployed by the reference test fixtures.
	src := NewMapSource(map[string]string{"MASTER_KEY": EncodeKey(bytes.Repeat([]byte("A"), 32))})
	ks, err := NewKeyStore(src)
	require.NoError(t, err)
	c, err := NewFieldCipher(ks)
	require.NoError(t, err)

	blob, err := c.Encrypt("Compra Mercado", "description", 1)
	require.NoError(t, err)
	require.Len(t, blob, 12+len("Compra Mercado")+16)

	result, err := c.Decrypt(blob, "description", 1)
	require.NoError(t, err)
	require.Equal(t, "Compra Mercado", result.Value)

	// The blob is a plain AES-256-GCM nonce||ct||tag under the "enc" subkey.
	subkey, err := ks.Subkey(PurposeEncryption, "description", 1)
	require.NoError(t, err)
	block, err := aes.NewCipher(subkey[:])
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)
	plain, err := gcm.Open(nil, blob[:12], blob[12:], nil)
	require.NoError(t, err)
	require.Equal(t, "Compra Mercado", string(plain))
}

func TestEncrypt_FreshNonce(t *testing.T) {
	c := testCipher(t)

	blob1, err := c.Encrypt("same", "notes", 1)
	require.NoError(t, err)
	blob2, err := c.Encrypt("same", "notes", 1)
	require.NoError(t, err)

	require.False(t, bytes.Equal(blob1, blob2))
	require.False(t, bytes.Equal(blob1[:nonceSize], blob2[:nonceSize]))
}

func TestDecrypt_VersionBinding(t *testing.T) {
	c := testCipher(t)

	blob, err := c.Encrypt("secret", "notes", 1)
	require.NoError(t, err)

	result, err := c.Decrypt(blob, "notes", 2)
	require.NoError(t, err)
	require.Equal(t, IntegrityFailure, result.State)
	require.Empty(t, result.Value)
	require.ErrorIs(t, result.Err, ErrDecryptionFailed)
}

func TestDecrypt_FieldBinding(t *testing.T) {
	c := testCipher(t)

	blob, err := c.Encrypt("secret", "notes", 1)
	require.NoError(t, err)

	result, err := c.Decrypt(blob, "description", 1)
	require.NoError(t, err)
	require.Equal(t, IntegrityFailure, result.State)
}

func TestDecrypt_Tampered(t *testing.T) {
	c := testCipher(t)

	blob, err := c.Encrypt("secret", "notes", 1)
	require.NoError(t, err)

	positions := map[string]int{
		"nonce":      0,
		"ciphertext": nonceSize,
		"tag":        len(blob) - 1,
	}
	for name, pos := range positions {
		t.Run(name, func(t *testing.T) {
			tampered := bytes.Clone(blob)
			tampered[pos] ^= 0x01

			result, err := c.Decrypt(tampered, "notes", 1)
			require.NoError(t, err)
			require.Equal(t, IntegrityFailure, result.State)
		})
	}
}

func TestDecrypt_Truncated(t *testing.T) {
	c := testCipher(t)

	result, err := c.Decrypt([]byte{0x01, 0x02, 0x03}, "notes", 1)
	require.NoError(t, err)
	require.Equal(t, IntegrityFailure, result.State)
	require.ErrorIs(t, result.Err, ErrInvalidFormat)
}

func TestDecrypt_MissingKeyIsError(t *testing.T) {
	c := testCipher(t)

	blob, err := c.Encrypt("secret", "notes", 1)
	require.NoError(t, err)

	_, err = c.Decrypt(blob, "notes", 3)
	require.ErrorIs(t, err, ErrMissingKey)

	_, err = c.Encrypt("secret", "notes", 3)
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestEncrypt_InvalidField(t *testing.T) {
	c := testCipher(t)

	_, err := c.Encrypt("secret", "", 1)
	require.ErrorIs(t, err, ErrInvalidField)
}

func TestFieldCipher_ChaCha20Poly1305(t *testing.T) {
	c := testCipher(t, WithAlgorithm(AlgorithmChaCha20Poly1305))
	require.Equal(t, AlgorithmChaCha20Poly1305, c.Algorithm())

	blob, err := c.Encrypt("Compra Mercado", "description", 1)
	require.NoError(t, err)
	require.Len(t, blob, len("Compra Mercado")+BlobOverhead)

	result, err := c.Decrypt(blob, "description", 1)
	require.NoError(t, err)
	require.Equal(t, "Compra Mercado", result.Value)

	// Same keys, other algorithm: must fail closed.
	gcm, err := NewFieldCipher(c.keys)
	require.NoError(t, err)
	result, err = gcm.Decrypt(blob, "description", 1)
	require.NoError(t, err)
	require.Equal(t, IntegrityFailure, result.State)
}

func TestNewFieldCipher_UnsupportedAlgorithm(t *testing.T) {
	_, err := NewFieldCipher(testKeyStore(t), WithAlgorithm(Algorithm(9)))
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestAlgorithm_String(t *testing.T) {
	require.Equal(t, "aes-256-gcm", AlgorithmAES256GCM.String())
	require.Equal(t, "chacha20-poly1305", AlgorithmChaCha20Poly1305.String())
	require.Equal(t, "unknown", Algorithm(9).String())
}

func TestFieldCipher_HKDFDerivation(t *testing.T) {
	hkdfKeys, err := NewKeyStore(testSource(1), WithHKDF())
	require.NoError(t, err)
	hkdfCipher, err := NewFieldCipher(hkdfKeys)
	require.NoError(t, err)

	blob, err := hkdfCipher.Encrypt("value", "notes", 1)
	require.NoError(t, err)

	result, err := hkdfCipher.Decrypt(blob, "notes", 1)
	require.NoError(t, err)
	require.Equal(t, "value", result.Value)

	// HMAC-derived keys cannot read HKDF-derived data.
	result, err = testCipher(t).Decrypt(blob, "notes", 1)
	require.NoError(t, err)
	require.Equal(t, IntegrityFailure, result.State)
}

func TestFieldCipher_Concurrent(t *testing.T) {
	c := testCipher(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plaintext := strings.Repeat("v", i+1)
			version := i%2 + 1
			blob, err := c.Encrypt(plaintext, "notes", version)
			if !assert.NoError(t, err) {
				return
			}
			result, err := c.Decrypt(blob, "notes", version)
			assert.NoError(t, err)
			assert.Equal(t, plaintext, result.Value)
		}(i)
	}
	wg.Wait()
}
