package dedup

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyup-dev/tallyup/internal/model"
)

func txn(id, statementID, postDate, desc string, amount string) model.Transaction {
	return model.Transaction{
		ID:          id,
		StatementID: statementID,
		Kind:        model.KindCreditCard,
		PostDate:    postDate,
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
	}
}

func TestFind_CrossStatementDuplicate(t *testing.T) {
	txns := []model.Transaction{
		txn("a", "s1", "2023-03-02T00:00:00.000Z", "STARBUCKS #123", "-5.40"),
		txn("b", "s2", "2023-03-02T00:00:00.000Z", "STARBUCKS #123", "-5.40"),
	}

	dups := Find(txns)
	require.Len(t, dups, 1)
	assert.Equal(t, "b", dups[0].ID)
}

func TestFind_FirstSeenSurvives(t *testing.T) {
	txns := []model.Transaction{
		txn("later-date", "s2", "2023-03-02T00:00:00.000Z", "COFFEE", "-4.00"),
		txn("earlier-date", "s1", "2023-03-02T00:00:00.000Z", "COFFEE", "-4.00"),
	}

	// Iteration order decides, not the date: the s2 copy came first.
	dups := Find(txns)
	require.Len(t, dups, 1)
	assert.Equal(t, "earlier-date", dups[0].ID)
}

func TestFind_SameStatementNeverFlagged(t *testing.T) {
	// Two identical charges on one statement are legitimate repeats.
	txns := []model.Transaction{
		txn("a", "s1", "2023-03-02T00:00:00.000Z", "VENDING", "-1.50"),
		txn("b", "s1", "2023-03-02T00:00:00.000Z", "VENDING", "-1.50"),
	}

	assert.Empty(t, Find(txns))
}

func TestFind_DifferentFingerprintsNotFlagged(t *testing.T) {
	txns := []model.Transaction{
		txn("a", "s1", "2023-03-02T00:00:00.000Z", "STARBUCKS #123", "-5.40"),
		txn("b", "s2", "2023-03-02T00:00:00.000Z", "STARBUCKS #123", "-5.41"),
		txn("c", "s2", "2023-03-03T00:00:00.000Z", "STARBUCKS #123", "-5.40"),
		txn("d", "s2", "2023-03-02T00:00:00.000Z", "STARBUCKS #124", "-5.40"),
	}

	assert.Empty(t, Find(txns))
}

func TestFind_Idempotent(t *testing.T) {
	txns := []model.Transaction{
		txn("a", "s1", "2023-03-02T00:00:00.000Z", "STARBUCKS #123", "-5.40"),
		txn("b", "s2", "2023-03-02T00:00:00.000Z", "STARBUCKS #123", "-5.40"),
		txn("c", "s1", "2023-03-05T00:00:00.000Z", "GROCER", "-20.00"),
	}

	dups := Find(txns)
	require.Len(t, dups, 1)

	// Remove the flagged copy and run again: nothing further.
	var remaining []model.Transaction
	for _, tx := range txns {
		if tx.ID != dups[0].ID {
			remaining = append(remaining, tx)
		}
	}
	assert.Empty(t, Find(remaining))
}

func TestFingerprint_Composition(t *testing.T) {
	a := txn("a", "s1", "2023-03-02T00:00:00.000Z", "DESC", "-5.40")
	b := txn("b", "s2", "2023-03-02T00:00:00.000Z", "DESC", "-5.4")

	// decimal renders -5.40 and -5.4 identically, so these collide.
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestIDs(t *testing.T) {
	txns := []model.Transaction{
		txn("a", "s1", "p", "d", "1"),
		txn("b", "s2", "p", "d", "1"),
	}
	assert.Equal(t, []string{"a", "b"}, IDs(txns))
}
