package models

// Record is one row of a collection as seen by the batch walkers.
//
// Maps are keyed by Field.Name. A missing or nil entry means the column is
// NULL.
type Record struct {
	ID int64
	// Version is the key version tag, 0 when unset.
	Version int
	// Plain holds legacy plaintext column values.
	Plain map[string]*string
	// Encrypted holds ciphertext column values.
	Encrypted map[string][]byte
	// Index holds blind index column values.
	Index map[string]string
}

// HasPlain reports whether the legacy plaintext of field is non-NULL.
func (r Record) HasPlain(field string) bool {
	return r.Plain[field] != nil
}

// HasEncrypted reports whether the ciphertext of field is non-NULL.
func (r Record) HasEncrypted(field string) bool {
	return r.Encrypted[field] != nil
}

// RecordUpdate is the set of column changes a walker writes for one record.
// Only fields present in Encrypted are touched.
type RecordUpdate struct {
	ID      int64
	Version int
	// Encrypted holds new ciphertexts; a nil blob writes NULL.
	Encrypted map[string][]byte
	// Index holds new blind indexes for indexed fields; "" writes NULL.
	Index map[string]string
	// NullPlain lists fields whose legacy plaintext column is set to NULL.
	NullPlain []string
}

// NewRecordUpdate returns an empty update for id at version.
func NewRecordUpdate(id int64, version int) RecordUpdate {
	return RecordUpdate{
		ID:        id,
		Version:   version,
		Encrypted: make(map[string][]byte),
		Index:     make(map[string]string),
	}
}

// Empty reports whether the update changes no field.
func (u RecordUpdate) Empty() bool {
	return len(u.Encrypted) == 0 && len(u.NullPlain) == 0
}
