package config

import "errors"

var (
	// ErrInvalidStorageConfigs indicates an unsupported driver or an empty DSN.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidKeyConfigs indicates an active key version below 1.
	ErrInvalidKeyConfigs = errors.New("invalid key configuration")
	// ErrInvalidJobConfigs indicates a non-positive batch size or an empty
	// collection name.
	ErrInvalidJobConfigs = errors.New("invalid job configuration")
)
