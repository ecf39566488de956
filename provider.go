package fieldcrypt

import (
	"encoding/base64"
	"os"
	"sort"
	"strings"
)

// KeySource is the configuration surface master keys are read from.
// Implement this interface to feed keys from a secrets manager; values are
// base64-encoded secrets addressed by slot name (e.g. "MASTER_KEY_2").
type KeySource interface {
	// Lookup returns the raw value stored under name and whether it is set.
	Lookup(name string) (string, bool)

	// Names returns every slot name the source knows about. It is used to
	// enumerate configured key versions.
	Names() []string
}

// EnvSource reads key slots from the process environment.
type EnvSource struct{}

// Lookup implements KeySource.
func (EnvSource) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Names implements KeySource.
func (EnvSource) Names() []string {
	environ := os.Environ()
	names := make([]string, 0, len(environ))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MapSource is a simple in-memory KeySource.
// Useful for testing or for embedding keys fetched from an external system.
type MapSource struct {
	values map[string]string
}

// NewMapSource creates a MapSource holding a copy of values.
func NewMapSource(values map[string]string) *MapSource {
	valuesCopy := make(map[string]string, len(values))
	for name, v := range values {
		valuesCopy[name] = v
	}
	return &MapSource{values: valuesCopy}
}

// Lookup implements KeySource.
func (s *MapSource) Lookup(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Names implements KeySource.
func (s *MapSource) Names() []string {
	return sortedMapKeys(s.values)
}

// EncodeKey returns the base64 representation expected in a key slot.
func EncodeKey(secret []byte) string {
	return base64.StdEncoding.EncodeToString(secret)
}

// decodeKey decodes a key slot value and enforces the minimum key length.
func decodeKey(raw string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	if len(key) < MinKeySize {
		return nil, ErrKeyTooShort
	}
	return key, nil
}

// sortedMapKeys returns map keys sorted alphabetically.
func sortedMapKeys[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
