package fieldcrypt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// DigestLength is the length of a hex-encoded blind index.
const DigestLength = 2 * sha256.Size

// BlindIndexer computes deterministic HMAC-SHA256 digests of normalized
// values under the "bidx" subkey, enabling equality search over ciphertext.
//
// Equal plaintexts under the same field and version always produce equal
// digests, so a stored digest column reveals duplicates and value frequency
// even without the key.
type BlindIndexer struct {
	keys      *KeyStore
	normalize Normalizer
}

// NewBlindIndexer creates a BlindIndexer backed by keys.
func NewBlindIndexer(keys *KeyStore, opts ...Option) *BlindIndexer {
	cfg := applyOptions(opts)
	return &BlindIndexer{keys: keys, normalize: cfg.normalizer}
}

// Compute returns the 64-character lowercase hex digest of plaintext for
// field under key version. Returns "" when the normalized value is empty:
// such values get no index entry.
func (b *BlindIndexer) Compute(plaintext string, field string, version int) (string, error) {
	normalized := b.normalize(plaintext)
	if normalized == "" {
		return "", nil
	}

	key, err := b.keys.Subkey(PurposeBlindIndex, field, version)
	if err != nil {
		return "", err
	}
	return computeDigest(&key, normalized), nil
}

// ComputeAll returns the digest of plaintext for every configured key version.
// Useful for search queries that need to match records across a rotation.
// Returns nil when the normalized value is empty.
func (b *BlindIndexer) ComputeAll(plaintext string, field string) (map[int]string, error) {
	if b.normalize(plaintext) == "" {
		return nil, nil
	}

	versions := b.keys.Versions()
	digests := make(map[int]string, len(versions))
	for _, version := range versions {
		digest, err := b.Compute(plaintext, field, version)
		if err != nil {
			return nil, err
		}
		digests[version] = digest
	}
	return digests, nil
}

// computeDigest computes hex(HMAC-SHA256(key, data)).
func computeDigest(key *[SubkeySize]byte, data string) string {
	h := hmac.New(sha256.New, key[:])
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
