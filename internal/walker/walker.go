// Package walker implements the resumable batch jobs that move record
// collections through the encrypted-field lifecycle: legacy plaintext to
// Encrypted(v) (MigrationWalker) and Encrypted(v) to Encrypted(v')
// (RotationWalker).
//
// Both walkers scan by ascending id with a keyset cursor, commit once per
// batch and are safe to kill between commits. A single writer per collection
// is assumed; it must be enforced outside this package.
package walker

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DefaultBatchSize is used when Options.BatchSize is zero.
const DefaultBatchSize = 500

var (
	// ErrInvalidBatchSize is returned for a negative batch size.
	ErrInvalidBatchSize = errors.New("walker: invalid batch size")
	// ErrInvalidVersion is returned for a rotation version below 1.
	ErrInvalidVersion = errors.New("walker: invalid key version")
	// ErrSameVersion is returned when rotating a version onto itself.
	ErrSameVersion = errors.New("walker: from and to versions are equal")
	// ErrEphemeralKey is returned when a run would write data under a key an
	// insecure key store generated for this process only.
	ErrEphemeralKey = errors.New("walker: refusing to write under an ephemeral key")
)

// BatchReport describes one processed batch.
type BatchReport struct {
	RunID string
	// Batch is the 1-based batch number within the run.
	Batch int
	// Selected is the number of records the batch selected.
	Selected int
	// Processed is the number of records migrated or rotated.
	Processed int
	// Skipped is the number of records left untouched after a row-level error.
	Skipped int
	// Total is the cumulative Processed count of the run.
	Total int
	// LastID is the keyset cursor after the batch.
	LastID int64
	// DryRun is set when the batch was rolled back on purpose.
	DryRun bool
}

func resolveBatchSize(size int) (int, error) {
	switch {
	case size == 0:
		return DefaultBatchSize, nil
	case size < 0:
		return 0, fmt.Errorf("%w: %d", ErrInvalidBatchSize, size)
	}
	return size, nil
}

func newRunID() string {
	return uuid.NewString()
}
