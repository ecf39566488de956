package config

import (
	"errors"
	"fmt"
)

func (cfg *StructuredConfig) validate() error {
	var errs []error

	switch cfg.Storage.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("%w: unsupported driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver))
	}
	if cfg.Storage.DB.DSN == "" {
		errs = append(errs, fmt.Errorf("%w: empty DSN", ErrInvalidStorageConfigs))
	}

	if cfg.Keys.ActiveVersion < 1 {
		errs = append(errs, fmt.Errorf("%w: active version %d", ErrInvalidKeyConfigs, cfg.Keys.ActiveVersion))
	}

	if cfg.Jobs.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("%w: batch size %d", ErrInvalidJobConfigs, cfg.Jobs.BatchSize))
	}
	if cfg.Jobs.Collection == "" {
		errs = append(errs, fmt.Errorf("%w: empty collection", ErrInvalidJobConfigs))
	}

	return errors.Join(errs...)
}
