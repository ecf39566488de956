package models

import (
	"fmt"
	"sort"
)

// Built-in collection names.
const (
	CollectionTransactions = "transactions"
	CollectionAccounts     = "accounts"
	CollectionCreditCards  = "credit_cards"
)

// DefaultVersionColumn is the record-level key version tag column.
const DefaultVersionColumn = "enc_version"

// Transactions holds the searchable text attributes and the amount of a
// financial transaction.
var Transactions = Collection{
	Name:          CollectionTransactions,
	Table:         "transactions",
	IDColumn:      "id",
	VersionColumn: DefaultVersionColumn,
	Fields: []Field{
		{Name: "description", Plain: "description", Encrypted: "description_enc", Index: "description_bidx", Kind: FieldText},
		{Name: "notes", Plain: "notes", Encrypted: "notes_enc", Index: "notes_bidx", Kind: FieldText},
		{Name: "creditor_name", Plain: "creditor_name", Encrypted: "creditor_name_enc", Index: "creditor_name_bidx", Kind: FieldText},
		{Name: "amount", Plain: "amount", Encrypted: "amount_enc", Kind: FieldAmount},
	},
}

// Accounts holds account balances.
var Accounts = Collection{
	Name:          CollectionAccounts,
	Table:         "accounts",
	IDColumn:      "id",
	VersionColumn: DefaultVersionColumn,
	Fields: []Field{
		{Name: "account_balance", Plain: "balance", Encrypted: "balance_enc", Kind: FieldAmount},
	},
}

// CreditCards holds card balances.
var CreditCards = Collection{
	Name:          CollectionCreditCards,
	Table:         "credit_cards",
	IDColumn:      "id",
	VersionColumn: DefaultVersionColumn,
	Fields: []Field{
		{Name: "cc_current_balance", Plain: "current_balance", Encrypted: "current_balance_enc", Kind: FieldAmount},
	},
}

var builtin = map[string]Collection{
	CollectionTransactions: Transactions,
	CollectionAccounts:     Accounts,
	CollectionCreditCards:  CreditCards,
}

// Lookup returns the built-in collection registered under name.
func Lookup(name string) (Collection, error) {
	c, ok := builtin[name]
	if !ok {
		return Collection{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownCollection, name, CollectionNames())
	}
	return c, nil
}

// CollectionNames returns the built-in collection names, sorted.
func CollectionNames() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
