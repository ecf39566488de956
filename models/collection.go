// Package models describes the encrypted record collections processed by the
// batch jobs.
package models

import (
	"errors"
	"fmt"
)

// FieldKind tells the walkers how a legacy plaintext column is converted
// into the string that gets encrypted.
type FieldKind int

const (
	// FieldText is free text, stored as-is.
	FieldText FieldKind = iota
	// FieldAmount is a monetary value, stored as a fixed 2-decimal string.
	FieldAmount
)

func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "text"
	case FieldAmount:
		return "amount"
	default:
		return "unknown"
	}
}

// Field describes one encrypted attribute of a collection.
type Field struct {
	// Name is the field identifier bound into subkey derivation
	// (e.g. "description", "account_balance").
	Name string
	// Plain is the legacy plaintext column, "" when it was dropped.
	Plain string
	// Encrypted is the ciphertext column (<name>_enc).
	Encrypted string
	// Index is the blind index column (<name>_bidx), "" for unsearchable fields.
	Index string
	Kind  FieldKind
}

// Indexed reports whether the field carries a blind index.
func (f Field) Indexed() bool {
	return f.Index != ""
}

// Collection describes a table holding encrypted records keyed by id, with a
// single key version tag shared by all of a record's encrypted fields.
type Collection struct {
	Name          string
	Table         string
	IDColumn      string
	VersionColumn string
	Fields        []Field
}

var (
	// ErrInvalidCollection is returned by Validate for malformed descriptors.
	ErrInvalidCollection = errors.New("invalid collection")
	// ErrUnknownCollection is returned by Lookup for unregistered names.
	ErrUnknownCollection = errors.New("unknown collection")
)

// Validate checks that every identifier is set and SQL-safe and that no
// column is used twice.
func (c Collection) Validate() error {
	if c.Name == "" || len(c.Fields) == 0 {
		return fmt.Errorf("%w: name and fields are required", ErrInvalidCollection)
	}

	seen := make(map[string]struct{})
	check := func(column string, required bool) error {
		if column == "" {
			if required {
				return fmt.Errorf("%w: %s: missing column", ErrInvalidCollection, c.Name)
			}
			return nil
		}
		if !isIdentifier(column) {
			return fmt.Errorf("%w: %s: invalid identifier %q", ErrInvalidCollection, c.Name, column)
		}
		if _, dup := seen[column]; dup {
			return fmt.Errorf("%w: %s: column %q used twice", ErrInvalidCollection, c.Name, column)
		}
		seen[column] = struct{}{}
		return nil
	}

	if !isIdentifier(c.Table) {
		return fmt.Errorf("%w: %s: invalid table %q", ErrInvalidCollection, c.Name, c.Table)
	}
	if err := check(c.IDColumn, true); err != nil {
		return err
	}
	if err := check(c.VersionColumn, true); err != nil {
		return err
	}

	names := make(map[string]struct{}, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s: field without name", ErrInvalidCollection, c.Name)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("%w: %s: field %q declared twice", ErrInvalidCollection, c.Name, f.Name)
		}
		names[f.Name] = struct{}{}

		if err := check(f.Encrypted, true); err != nil {
			return err
		}
		if err := check(f.Plain, false); err != nil {
			return err
		}
		if err := check(f.Index, false); err != nil {
			return err
		}
		if f.Kind == FieldAmount && f.Indexed() {
			return fmt.Errorf("%w: %s: amount field %q cannot be indexed", ErrInvalidCollection, c.Name, f.Name)
		}
	}
	return nil
}

// LegacyFields returns the fields that still have a plaintext column.
func (c Collection) LegacyFields() []Field {
	fields := make([]Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.Plain != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Field returns the field named name.
func (c Collection) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// WithoutPlain returns a copy of c in which the named fields have no legacy
// plaintext column. Used when a deployment has already dropped them.
func (c Collection) WithoutPlain(names ...string) Collection {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	out := c
	out.Fields = make([]Field, len(c.Fields))
	for i, f := range c.Fields {
		if _, ok := drop[f.Name]; ok {
			f.Plain = ""
		}
		out.Fields[i] = f
	}
	return out
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
