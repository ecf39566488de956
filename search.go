package fieldcrypt

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// isValidColumnName checks if a column name is safe for SQL interpolation.
// Must start with letter or underscore, followed by alphanumeric/underscore.
func isValidColumnName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_') {
				return false
			}
			continue
		}
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

// SearchCondition builds a WHERE fragment matching plaintext against the
// blind index column across every configured key version:
//
//	(enc_version = ? AND description_bidx = ?) OR (enc_version = ? AND description_bidx = ?)
//
// Records written under any version stay findable while a rotation is in
// progress. A value that normalizes to empty has no index entry and yields a
// condition that matches nothing.
//
// Example:
//
//	cond, err := crypter.SearchCondition("description_bidx", "enc_version", "description", "compra mercado")
//	query, args, err := sq.Select("id").From("transactions").Where(cond).
//	    PlaceholderFormat(sq.Dollar).ToSql()
func (c *Crypter) SearchCondition(indexColumn, versionColumn, field, plaintext string) (sq.Sqlizer, error) {
	if !isValidColumnName(indexColumn) {
		return nil, fmt.Errorf("%w: index column %q", ErrInvalidField, indexColumn)
	}
	if !isValidColumnName(versionColumn) {
		return nil, fmt.Errorf("%w: version column %q", ErrInvalidField, versionColumn)
	}

	digests, err := c.indexer.ComputeAll(plaintext, field)
	if err != nil {
		return nil, err
	}
	if len(digests) == 0 {
		return sq.Expr("1 = 0"), nil
	}

	cond := make(sq.Or, 0, len(digests))
	for _, version := range c.keys.Versions() {
		digest, ok := digests[version]
		if !ok {
			continue
		}
		cond = append(cond, sq.And{
			sq.Eq{versionColumn: version},
			sq.Eq{indexColumn: digest},
		})
	}
	return cond, nil
}
