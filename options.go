package fieldcrypt

// Option is a functional option shared by NewKeyStore, NewFieldCipher,
// NewBlindIndexer and New. Each constructor reads the settings it needs.
type Option func(*config)

// config holds construction options.
type config struct {
	keyPrefix     string
	activeVersion int
	derivation    Derivation
	algorithm     Algorithm
	normalizer    Normalizer
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		activeVersion: 1,
		derivation:    DerivationHMAC,
		algorithm:     AlgorithmAES256GCM,
		normalizer:    NormalizeText,
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithKeyPrefix prepends prefix to every key slot name, so that
// WithKeyPrefix("APP_") reads APP_MASTER_KEY_<n> and APP_MASTER_KEY.
func WithKeyPrefix(prefix string) Option {
	return func(c *config) {
		c.keyPrefix = prefix
	}
}

// WithActiveVersion sets the key version new writes use. Default is 1.
func WithActiveVersion(version int) Option {
	return func(c *config) {
		c.activeVersion = version
	}
}

// WithHKDF derives subkeys with HKDF-SHA256 instead of HMAC-SHA256.
// Data written under one derivation cannot be read under the other.
func WithHKDF() Option {
	return func(c *config) {
		c.derivation = DerivationHKDF
	}
}

// WithAlgorithm selects the AEAD used by FieldCipher. Default is AES-256-GCM.
func WithAlgorithm(algo Algorithm) Option {
	return func(c *config) {
		c.algorithm = algo
	}
}

// WithNormalizer sets the normalizer applied before blind indexing.
// Default is NormalizeText (trim + lowercase).
func WithNormalizer(norm Normalizer) Option {
	return func(c *config) {
		c.normalizer = norm
	}
}
