package fieldcrypt

import "strings"

// Normalizer transforms input strings into a canonical form before computing blind indexes.
//
// IMPORTANT: Use the SAME normalizer on both write and search.
// Mixing normalizers breaks lookups.
type Normalizer func(string) string

// NormalizeText is the default normalizer for free-text fields
// (descriptions, notes, creditor names). Applies: trim whitespace + lowercase.
//
// Example: "  Compra Mercado " -> "compra mercado"
var NormalizeText Normalizer = func(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeNone is an identity normalizer that returns the input unchanged.
// Use for exact-match (case-sensitive) searches.
var NormalizeNone Normalizer = func(s string) string {
	return s
}

// NormalizeTrim normalizes by trimming leading and trailing whitespace only.
// Preserves case.
var NormalizeTrim Normalizer = func(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeCollapse trims, lowercases and collapses inner runs of whitespace
// to a single space, so "Compra   Mercado" matches "compra mercado".
var NormalizeCollapse Normalizer = func(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
