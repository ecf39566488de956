package fieldcrypt

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Purpose separates subkeys derived from the same master key.
type Purpose string

const (
	// PurposeEncryption scopes subkeys used by FieldCipher.
	PurposeEncryption Purpose = "enc"
	// PurposeBlindIndex scopes subkeys used by BlindIndexer.
	PurposeBlindIndex Purpose = "bidx"
)

func (p Purpose) valid() bool {
	return p == PurposeEncryption || p == PurposeBlindIndex
}

// Derivation selects the keyed construction used to derive subkeys.
type Derivation uint8

const (
	// DerivationHMAC computes HMAC-SHA256(master, label). This is the default and
	// matches data already stored by earlier deployments.
	DerivationHMAC Derivation = iota
	// DerivationHKDF computes HKDF-SHA256(master, salt=nil, info=label).
	DerivationHKDF
)

// SubkeySize is the length of every derived subkey.
const SubkeySize = 32

// subkeyLabel returns the canonical derivation message "{purpose}:{field}:v{version}".
func subkeyLabel(purpose Purpose, field string, version int) string {
	return fmt.Sprintf("%s:%s:v%d", purpose, field, version)
}

// deriveSubkey derives the 32-byte subkey for one purpose/field/version triple.
// It is a pure function of its inputs.
func deriveSubkey(d Derivation, masterKey []byte, purpose Purpose, field string, version int) ([SubkeySize]byte, error) {
	var out [SubkeySize]byte
	label := subkeyLabel(purpose, field, version)

	switch d {
	case DerivationHMAC:
		h := hmac.New(sha256.New, masterKey)
		h.Write([]byte(label))
		copy(out[:], h.Sum(nil))
	case DerivationHKDF:
		reader := hkdf.New(sha256.New, masterKey, nil, []byte(label))
		if _, err := io.ReadFull(reader, out[:]); err != nil {
			return out, err
		}
	default:
		return out, ErrUnsupportedAlgorithm
	}

	return out, nil
}
