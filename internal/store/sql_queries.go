package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/ai8future/fieldcrypt/models"
)

// recordColumns lists the selected columns in scan order: id, version, then
// per field the plaintext (when withPlain and still present), the
// ciphertext and the blind index (when indexed).
func recordColumns(c models.Collection, withPlain bool) []string {
	cols := []string{c.IDColumn, c.VersionColumn}
	for _, f := range c.Fields {
		if withPlain && f.Plain != "" {
			cols = append(cols, f.Plain)
		}
		cols = append(cols, f.Encrypted)
		if f.Indexed() {
			cols = append(cols, f.Index)
		}
	}
	return cols
}

func buildSelectPendingQuery(b sq.StatementBuilderType, c models.Collection, afterID int64, limit int) (string, []any, error) {
	pending := sq.Or{}
	for _, f := range c.LegacyFields() {
		pending = append(pending, sq.And{
			sq.NotEq{f.Plain: nil},
			sq.Eq{f.Encrypted: nil},
		})
	}

	return b.Select(recordColumns(c, true)...).
		From(c.Table).
		Where(sq.Gt{c.IDColumn: afterID}).
		Where(pending).
		OrderBy(c.IDColumn).
		Limit(uint64(limit)).
		ToSql()
}

func buildSelectByVersionQuery(b sq.StatementBuilderType, c models.Collection, version int, afterID int64, limit int) (string, []any, error) {
	return b.Select(recordColumns(c, false)...).
		From(c.Table).
		Where(sq.Eq{c.VersionColumn: version}).
		Where(sq.Gt{c.IDColumn: afterID}).
		OrderBy(c.IDColumn).
		Limit(uint64(limit)).
		ToSql()
}

func buildCountByVersionQuery(b sq.StatementBuilderType, c models.Collection) (string, []any, error) {
	return b.Select(c.VersionColumn, "COUNT(*)").
		From(c.Table).
		GroupBy(c.VersionColumn).
		ToSql()
}

// buildUpdateQuery sets the version tag and, in collection field order, every
// ciphertext present in the update, the matching blind index for indexed
// fields, and NULL for the listed plaintext columns.
func buildUpdateQuery(b sq.StatementBuilderType, c models.Collection, u models.RecordUpdate) (string, []any, error) {
	nullPlain := make(map[string]struct{}, len(u.NullPlain))
	for _, name := range u.NullPlain {
		nullPlain[name] = struct{}{}
	}

	query := b.Update(c.Table).Set(c.VersionColumn, u.Version)
	for _, f := range c.Fields {
		if blob, ok := u.Encrypted[f.Name]; ok {
			query = query.Set(f.Encrypted, nullableBytes(blob))
			if f.Indexed() {
				query = query.Set(f.Index, nullableString(u.Index[f.Name]))
			}
		}
		if _, ok := nullPlain[f.Name]; ok && f.Plain != "" {
			query = query.Set(f.Plain, nil)
		}
	}

	return query.Where(sq.Eq{c.IDColumn: u.ID}).ToSql()
}

func scanRecord(rows *sql.Rows, c models.Collection, withPlain bool) (models.Record, error) {
	var (
		id      int64
		version sql.NullInt64
	)
	plain := make(map[string]*sql.NullString)
	enc := make(map[string]*[]byte)
	idx := make(map[string]*sql.NullString)

	dest := []any{&id, &version}
	for _, f := range c.Fields {
		if withPlain && f.Plain != "" {
			plain[f.Name] = new(sql.NullString)
			dest = append(dest, plain[f.Name])
		}
		enc[f.Name] = new([]byte)
		dest = append(dest, enc[f.Name])
		if f.Indexed() {
			idx[f.Name] = new(sql.NullString)
			dest = append(dest, idx[f.Name])
		}
	}

	if err := rows.Scan(dest...); err != nil {
		return models.Record{}, err
	}

	record := models.Record{
		ID:        id,
		Version:   int(version.Int64),
		Plain:     make(map[string]*string, len(plain)),
		Encrypted: make(map[string][]byte, len(enc)),
		Index:     make(map[string]string, len(idx)),
	}
	for name, v := range plain {
		if v.Valid {
			s := v.String
			record.Plain[name] = &s
		}
	}
	for name, v := range enc {
		if *v != nil {
			record.Encrypted[name] = *v
		}
	}
	for name, v := range idx {
		if v.Valid {
			record.Index[name] = v.String
		}
	}
	return record, nil
}

// nullableBytes maps a nil blob to SQL NULL. Some drivers bind a nil []byte
// as an empty blob.
func nullableBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
