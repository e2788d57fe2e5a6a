// Package dedup finds credit-card transactions re-introduced by overlapping
// statement uploads.
package dedup

import (
	"github.com/tallyup-dev/tallyup/internal/model"
)

// Fingerprint is the composite duplicate key: post date, description and
// amount concatenated with no further normalization.
func Fingerprint(t model.Transaction) string {
	return t.PostDate + t.Description + t.Amount.String()
}

// Find walks transactions once, in the given order, and returns every
// occurrence beyond the first of each fingerprint, provided it came from a
// different statement than the first-seen (canonical) copy. Re-uploads of the
// same statement produce same-statement fingerprint collisions; those are
// legitimate repeated charges, not duplicates, and are never flagged.
//
// The first transaction seen in iteration order survives; the walk is a
// single O(n) map pass and is idempotent once flagged copies are deleted.
func Find(txns []model.Transaction) []model.Transaction {
	canonical := make(map[string]model.Transaction, len(txns))

	var duplicates []model.Transaction
	for _, txn := range txns {
		key := Fingerprint(txn)
		first, seen := canonical[key]
		if !seen {
			canonical[key] = txn
			continue
		}
		if first.StatementID != txn.StatementID {
			duplicates = append(duplicates, txn)
		}
	}
	return duplicates
}

// IDs extracts the ids of the flagged transactions for bulk deletion.
func IDs(txns []model.Transaction) []string {
	ids := make([]string, len(txns))
	for i, txn := range txns {
		ids[i] = txn.ID
	}
	return ids
}
