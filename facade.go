package fieldcrypt

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SealedValue holds the two artifacts a searchable record attribute needs.
type SealedValue struct {
	Ciphertext []byte // EncryptedBlob, nil when the plaintext was absent
	BlindIndex string // 64-char hex digest, "" when there is no index entry
	Version    int    // Key version used
}

// Crypter composes FieldCipher and BlindIndexer. It is the entry point the
// persistence layer and the batch jobs use. Safe for concurrent use.
type Crypter struct {
	keys    *KeyStore
	cipher  *FieldCipher
	indexer *BlindIndexer
}

// New creates a Crypter backed by keys.
//
// Example:
//
//	keys, err := fieldcrypt.NewKeyStore(fieldcrypt.EnvSource{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	crypter, err := fieldcrypt.New(keys)
//
//	sealed, err := crypter.EncryptAndIndex("Compra Mercado", "description", keys.ActiveVersion())
//	// store sealed.Ciphertext in description_enc
//	// store sealed.BlindIndex in description_bidx
//	// store sealed.Version in enc_version
func New(keys *KeyStore, opts ...Option) (*Crypter, error) {
	c, err := NewFieldCipher(keys, opts...)
	if err != nil {
		return nil, err
	}
	return &Crypter{
		keys:    keys,
		cipher:  c,
		indexer: NewBlindIndexer(keys, opts...),
	}, nil
}

// Keys returns the underlying key store.
func (c *Crypter) Keys() *KeyStore {
	return c.keys
}

// ActiveVersion returns the key version new writes use.
func (c *Crypter) ActiveVersion() int {
	return c.keys.ActiveVersion()
}

// Encrypt encrypts a value that needs no search support.
func (c *Crypter) Encrypt(plaintext string, field string, version int) ([]byte, error) {
	return c.cipher.Encrypt(plaintext, field, version)
}

// Decrypt recovers a value; see FieldCipher.Decrypt.
func (c *Crypter) Decrypt(blob []byte, field string, version int) (Plaintext, error) {
	return c.cipher.Decrypt(blob, field, version)
}

// BlindIndex computes the search digest of plaintext; see BlindIndexer.Compute.
func (c *Crypter) BlindIndex(plaintext string, field string, version int) (string, error) {
	return c.indexer.Compute(plaintext, field, version)
}

// EncryptAndIndex encrypts plaintext and computes its blind index.
// The ciphertext preserves the original value; only the index is normalized.
func (c *Crypter) EncryptAndIndex(plaintext string, field string, version int) (*SealedValue, error) {
	blob, err := c.cipher.Encrypt(plaintext, field, version)
	if err != nil {
		return nil, err
	}
	idx, err := c.indexer.Compute(plaintext, field, version)
	if err != nil {
		return nil, err
	}
	return &SealedValue{Ciphertext: blob, BlindIndex: idx, Version: version}, nil
}

// EncryptAmount encrypts a monetary value as its fixed 2-decimal string.
// Amounts are never indexed.
func (c *Crypter) EncryptAmount(amount decimal.Decimal, field string, version int) ([]byte, error) {
	return c.cipher.Encrypt(FormatAmount(amount), field, version)
}

// DecryptAmount recovers a monetary value.
// Returns an invalid NullDecimal and no error when nothing was stored. An
// integrity failure is returned as an error wrapping ErrDecryptionFailed or
// ErrInvalidFormat, never as an absent value.
func (c *Crypter) DecryptAmount(blob []byte, field string, version int) (decimal.NullDecimal, error) {
	result, err := c.cipher.Decrypt(blob, field, version)
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	switch result.State {
	case Absent:
		return decimal.NullDecimal{}, nil
	case IntegrityFailure:
		return decimal.NullDecimal{}, result.Err
	}

	d, err := ParseAmount(result.Value)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("field %q: %w", field, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
