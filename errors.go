package fieldcrypt

import "errors"

var (
	// ErrMissingKey indicates no key slot is configured for the requested version
	// and no legacy fallback applies.
	ErrMissingKey = errors.New("fieldcrypt: master key not configured")

	// ErrInvalidEncoding indicates a configured key slot is not valid base64.
	ErrInvalidEncoding = errors.New("fieldcrypt: master key is not valid base64")

	// ErrKeyTooShort indicates a decoded master key is shorter than 32 bytes.
	ErrKeyTooShort = errors.New("fieldcrypt: master key must be at least 32 bytes")

	// ErrInvalidVersion indicates a key version below 1.
	ErrInvalidVersion = errors.New("fieldcrypt: key version must be >= 1")

	// ErrInvalidField indicates an empty field identifier.
	ErrInvalidField = errors.New("fieldcrypt: field name must not be empty")

	// ErrInvalidPurpose indicates a subkey purpose other than "enc" or "bidx".
	ErrInvalidPurpose = errors.New("fieldcrypt: unknown subkey purpose")

	// ErrDecryptionFailed indicates AEAD authentication failed (wrong key/version,
	// corrupted or tampered data).
	ErrDecryptionFailed = errors.New("fieldcrypt: decryption failed")

	// ErrInvalidFormat indicates a blob too short to hold a nonce and a tag.
	ErrInvalidFormat = errors.New("fieldcrypt: invalid ciphertext format")

	// ErrUnsupportedAlgorithm indicates an unknown AEAD algorithm option.
	ErrUnsupportedAlgorithm = errors.New("fieldcrypt: unsupported algorithm")

	// ErrInvalidAmount indicates a monetary value that cannot be parsed as a decimal.
	ErrInvalidAmount = errors.New("fieldcrypt: invalid monetary amount")

	// ErrKeyStoreClosed indicates the key store was used after Close() was called.
	ErrKeyStoreClosed = errors.New("fieldcrypt: key store is closed")
)
