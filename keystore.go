package fieldcrypt

import (
	"crypto/rand"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// MinKeySize is the minimum decoded length of a master key.
const MinKeySize = 32

// Key slot names. Version n lives in MASTER_KEY_<n>; version 1 may also be
// read from the unversioned legacy slot.
const (
	keySlotPrefix = "MASTER_KEY_"
	legacyKeySlot = "MASTER_KEY"
)

// KeyStore resolves master keys by version and derives purpose/field scoped
// subkeys from them. Keys are loaded once, cached, and never mutated
// afterwards, so a KeyStore is safe for concurrent use.
//
// A KeyStore is constructed once at process start and passed to every
// component that needs key material.
type KeyStore struct {
	source        KeySource
	prefix        string
	activeVersion int
	derivation    Derivation

	// insecure enables ephemeral key generation for a missing active slot.
	insecure bool
	logger   zerolog.Logger

	mu        sync.RWMutex
	keys      map[int][]byte
	generated map[int]bool
	closed    bool
}

// NewKeyStore creates a production KeyStore reading from src.
// The active version's key is resolved immediately, so a missing, malformed or
// short key prevents the caller from starting.
//
// Example:
//
//	keys, err := fieldcrypt.NewKeyStore(fieldcrypt.EnvSource{},
//	    fieldcrypt.WithActiveVersion(2),
//	)
func NewKeyStore(src KeySource, opts ...Option) (*KeyStore, error) {
	cfg := applyOptions(opts)
	ks := newKeyStore(src, cfg)
	if _, err := ks.masterKey(ks.activeVersion); err != nil {
		return nil, err
	}
	return ks, nil
}

// NewInsecureDevKeyStore creates a KeyStore that generates a random ephemeral
// key for the active version when its slot is empty. Every other version must
// be configured. Data encrypted under a generated key is unrecoverable once
// the process exits; see Generated.
//
// Never use this outside local development and tests. Every generated key is
// reported through logger at warn level.
func NewInsecureDevKeyStore(src KeySource, logger zerolog.Logger, opts ...Option) (*KeyStore, error) {
	cfg := applyOptions(opts)
	ks := newKeyStore(src, cfg)
	ks.insecure = true
	ks.logger = logger

	ks.logger.Warn().
		Str("func", "NewInsecureDevKeyStore").
		Msg("INSECURE development key store in use: missing master keys will be generated and lost on exit")

	if _, err := ks.masterKey(ks.activeVersion); err != nil {
		return nil, err
	}
	return ks, nil
}

func newKeyStore(src KeySource, cfg *config) *KeyStore {
	return &KeyStore{
		source:        src,
		prefix:        cfg.keyPrefix,
		activeVersion: cfg.activeVersion,
		derivation:    cfg.derivation,
		logger:        zerolog.Nop(),
		keys:          make(map[int][]byte),
		generated:     make(map[int]bool),
	}
}

// Load returns a copy of the master key for version.
func (ks *KeyStore) Load(version int) ([]byte, error) {
	key, err := ks.masterKey(version)
	if err != nil {
		return nil, err
	}
	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)
	return keyCopy, nil
}

// ActiveVersion returns the version new writes should use.
func (ks *KeyStore) ActiveVersion() int {
	return ks.activeVersion
}

// Insecure reports whether the store was built by NewInsecureDevKeyStore.
func (ks *KeyStore) Insecure() bool {
	return ks.insecure
}

// Generated reports whether the key for version was made up by an insecure
// store instead of read from its slot. Such a key is gone once the process
// exits.
func (ks *KeyStore) Generated(version int) bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.generated[version]
}

// Versions returns every version with a configured or already loaded key,
// sorted ascending. The active version is always included.
func (ks *KeyStore) Versions() []int {
	seen := map[int]struct{}{ks.activeVersion: {}}

	slot := ks.prefix + keySlotPrefix
	for _, name := range ks.source.Names() {
		if _, set := ks.lookup(name); !set {
			continue
		}
		if name == ks.prefix+legacyKeySlot {
			seen[1] = struct{}{}
			continue
		}
		suffix, ok := strings.CutPrefix(name, slot)
		if !ok {
			continue
		}
		if v, err := strconv.Atoi(suffix); err == nil && v >= 1 {
			seen[v] = struct{}{}
		}
	}

	ks.mu.RLock()
	for v := range ks.keys {
		seen[v] = struct{}{}
	}
	ks.mu.RUnlock()

	versions := make([]int, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions
}

// Subkey derives the 32-byte subkey for purpose, field and version.
func (ks *KeyStore) Subkey(purpose Purpose, field string, version int) ([SubkeySize]byte, error) {
	if !purpose.valid() {
		return [SubkeySize]byte{}, fmt.Errorf("%w: %q", ErrInvalidPurpose, purpose)
	}
	if field == "" {
		return [SubkeySize]byte{}, ErrInvalidField
	}
	master, err := ks.masterKey(version)
	if err != nil {
		return [SubkeySize]byte{}, err
	}
	return deriveSubkey(ks.derivation, master, purpose, field, version)
}

// Close zeros out all cached key material.
// After calling Close, the KeyStore is no longer usable.
func (ks *KeyStore) Close() {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	for _, key := range ks.keys {
		for i := range key {
			key[i] = 0
		}
	}
	ks.keys = nil
	ks.closed = true
}

// masterKey returns the cached key for version, resolving it on first use.
func (ks *KeyStore) masterKey(version int) ([]byte, error) {
	if version < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, version)
	}

	ks.mu.RLock()
	key, ok := ks.keys[version]
	closed := ks.closed
	ks.mu.RUnlock()
	if closed {
		return nil, ErrKeyStoreClosed
	}
	if ok {
		return key, nil
	}

	key, generated, err := ks.resolve(version)
	if err != nil {
		return nil, err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	if ks.closed {
		return nil, ErrKeyStoreClosed
	}
	// Another goroutine may have resolved the same version meanwhile; keep
	// the first so generated dev keys stay stable.
	if existing, ok := ks.keys[version]; ok {
		return existing, nil
	}
	ks.keys[version] = key
	if generated {
		ks.generated[version] = true
	}
	return key, nil
}

// resolve reads and decodes the key slot for version.
// Lookup order: <prefix>MASTER_KEY_<version>, then <prefix>MASTER_KEY for
// version 1, then ephemeral generation for the active version of an
// insecure store. The second result reports a generated key.
func (ks *KeyStore) resolve(version int) ([]byte, bool, error) {
	name := ks.slotName(version)
	raw, ok := ks.lookup(name)
	if !ok && version == 1 {
		name = ks.prefix + legacyKeySlot
		raw, ok = ks.lookup(name)
	}

	if !ok {
		if ks.insecure && version == ks.activeVersion {
			key, err := ks.generate(version)
			return key, err == nil, err
		}
		return nil, false, fmt.Errorf("%w: version %d (%s)", ErrMissingKey, version, ks.slotName(version))
	}

	key, err := decodeKey(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: version %d (%s)", err, version, name)
	}
	return key, false, nil
}

// lookup treats blank values as unset.
func (ks *KeyStore) lookup(name string) (string, bool) {
	raw, ok := ks.source.Lookup(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return raw, true
}

func (ks *KeyStore) slotName(version int) string {
	return ks.prefix + keySlotPrefix + strconv.Itoa(version)
}

func (ks *KeyStore) generate(version int) ([]byte, error) {
	key := make([]byte, MinKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("fieldcrypt: generating ephemeral key: %w", err)
	}
	ks.logger.Warn().
		Str("func", "KeyStore.generate").
		Int("version", version).
		Str("slot", ks.slotName(version)).
		Msg("INSECURE: generated ephemeral master key; data encrypted with it is lost on restart")
	return key, nil
}
