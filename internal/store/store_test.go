package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyup-dev/tallyup/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func creditTxn(id, statementID, date, desc, amount string) model.Transaction {
	return model.Transaction{
		ID:              id,
		StatementID:     statementID,
		Kind:            model.KindCreditCard,
		TransactionDate: date,
		PostDate:        date,
		Description:     desc,
		Amount:          decimal.RequireFromString(amount),
	}
}

func TestStatements_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stmt := model.Statement{
		ID:               "stmt-1",
		FileName:         "Chase7011_Activity20220601_20221231_20240521.csv",
		Kind:             model.StatementCreditCard,
		StartDate:        "2022-06-01T00:00:00.000Z",
		EndDate:          "2022-12-31T00:00:00.000Z",
		TransactionCount: 3,
		NetAmount:        decimal.RequireFromString("81.61"),
	}
	require.NoError(t, s.AddStatement(ctx, stmt))

	got, err := s.Statements(ctx, model.StatementCreditCard)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stmt.FileName, got[0].FileName)
	assert.True(t, stmt.NetAmount.Equal(got[0].NetAmount))

	checking, err := s.Statements(ctx, model.StatementChecking)
	require.NoError(t, err)
	assert.Empty(t, checking)
}

func TestTransactions_RangeQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddTransactions(ctx, []model.Transaction{
		creditTxn("a", "s1", "2023-01-15T00:00:00.000Z", "JAN", "-1.00"),
		creditTxn("b", "s1", "2023-02-15T00:00:00.000Z", "FEB", "-2.00"),
		creditTxn("c", "s1", "2023-03-15T00:00:00.000Z", "MAR", "-3.00"),
	}))

	got, err := s.Transactions(ctx, model.KindCreditCard, "2023-02-01T00:00:00.000Z", "2023-02-28T00:00:00.000Z")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "FEB", got[0].Description)

	all, err := s.Transactions(ctx, model.KindCreditCard, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTransactions_InsertionOrderPreserved(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddTransactions(ctx, []model.Transaction{
		creditTxn("z", "s1", "2023-03-15T00:00:00.000Z", "THIRD-DATE", "-1.00"),
		creditTxn("a", "s1", "2023-01-15T00:00:00.000Z", "FIRST-DATE", "-1.00"),
	}))

	got, err := s.Transactions(ctx, model.KindCreditCard, "", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "z", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestDeleteTransactions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddTransactions(ctx, []model.Transaction{
		creditTxn("a", "s1", "2023-01-15T00:00:00.000Z", "KEEP", "-1.00"),
		creditTxn("b", "s1", "2023-01-16T00:00:00.000Z", "DROP", "-2.00"),
	}))
	require.NoError(t, s.DeleteTransactions(ctx, []string{"b"}))

	got, err := s.Transactions(ctx, model.KindCreditCard, "", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestDuplicateCandidates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddTransactions(ctx, []model.Transaction{
		creditTxn("a", "s1", "2023-01-15T00:00:00.000Z", "STARBUCKS", "-5.4"),
		creditTxn("b", "s2", "2023-01-15T00:00:00.000Z", "STARBUCKS", "-5.4"),
		creditTxn("c", "s1", "2023-01-16T00:00:00.000Z", "UNIQUE", "-9.99"),
	}))

	candidates, err := s.DuplicateCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "a", candidates[0].ID)
	assert.Equal(t, "b", candidates[1].ID)
}

func TestMinMaxDates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.MinMaxDates(ctx, model.KindCreditCard)
	require.NoError(t, err)
	assert.Empty(t, empty.MinDate)
	assert.Empty(t, empty.MaxDate)

	require.NoError(t, s.AddTransactions(ctx, []model.Transaction{
		creditTxn("a", "s1", "2023-02-15T00:00:00.000Z", "MID", "-1.00"),
		creditTxn("b", "s1", "2023-01-15T00:00:00.000Z", "MIN", "-1.00"),
		creditTxn("c", "s1", "2023-03-15T00:00:00.000Z", "MAX", "-1.00"),
	}))

	bounds, err := s.MinMaxDates(ctx, model.KindCreditCard)
	require.NoError(t, err)
	assert.Equal(t, "2023-01-15T00:00:00.000Z", bounds.MinDate)
	assert.Equal(t, "2023-03-15T00:00:00.000Z", bounds.MaxDate)
}

func TestEnsureIgnoreCategory_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureIgnoreCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.IgnoreCategoryName, first.Name)
	assert.NotEmpty(t, first.ID)

	second, err := s.EnsureIgnoreCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestCategories_CRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := model.Category{ID: "c1", Name: "Groceries"}
	require.NoError(t, s.AddCategory(ctx, c))

	got, err := s.CategoryByName(ctx, "Groceries")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)

	c.Name = "Food"
	c.DisregardLevel = model.DisregardAll
	require.NoError(t, s.UpdateCategory(ctx, c))

	updated, err := s.CategoryByName(ctx, "Food")
	require.NoError(t, err)
	assert.Equal(t, model.DisregardAll, updated.DisregardLevel)

	_, err = s.CategoryByName(ctx, "Groceries")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteCategory(ctx, "c1"))
	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestRules_OrderAndReplace(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddRule(ctx, model.CategoryAssignmentRule{ID: "r1", Pattern: "AMAZON", CategoryID: "c1"}))
	require.NoError(t, s.AddRule(ctx, model.CategoryAssignmentRule{ID: "r2", Pattern: "AMAZON PRIME", CategoryID: "c2"}))

	rules, err := s.Rules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "r1", rules[0].ID)
	assert.Equal(t, "r2", rules[1].ID)

	replacement := []model.CategoryAssignmentRule{
		{ID: "r3", Pattern: "COSTCO", CategoryID: "c1"},
	}
	require.NoError(t, s.ReplaceRules(ctx, replacement))

	rules, err = s.Rules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "r3", rules[0].ID)

	require.NoError(t, s.ReplaceRules(ctx, nil))
	rules, err = s.Rules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestRules_Updates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddRule(ctx, model.CategoryAssignmentRule{ID: "r1", Pattern: "OLD", CategoryID: "c1"}))

	require.NoError(t, s.UpdateRulePattern(ctx, "r1", "NEW"))
	require.NoError(t, s.UpdateRuleCategory(ctx, "r1", "c2"))

	rule, err := s.RuleByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "NEW", rule.Pattern)
	assert.Equal(t, "c2", rule.CategoryID)

	assert.ErrorIs(t, s.UpdateRulePattern(ctx, "missing", "X"), ErrNotFound)

	require.NoError(t, s.DeleteRule(ctx, "r1"))
	_, err = s.RuleByID(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransactionsByRule(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddTransactions(ctx, []model.Transaction{
		creditTxn("a", "s1", "2023-01-15T00:00:00.000Z", "STARBUCKS #123", "-5.40"),
		creditTxn("b", "s1", "2023-01-16T00:00:00.000Z", "starbucks lowercase", "-5.40"),
		creditTxn("c", "s1", "2023-01-17T00:00:00.000Z", "GROCER", "-9.00"),
	}))
	require.NoError(t, s.AddRule(ctx, model.CategoryAssignmentRule{ID: "r1", Pattern: "STARBUCKS", CategoryID: "c1"}))

	matched, err := s.TransactionsByRule(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "a", matched[0].ID)
}

func TestSplitTransaction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	parent := model.Transaction{
		ID:              "parent",
		StatementID:     "s1",
		Kind:            model.KindChecking,
		TransactionDate: "03/01/2023",
		Name:            "COSTCO",
		Amount:          decimal.RequireFromString("-100.00"),
	}
	require.NoError(t, s.AddTransactions(ctx, []model.Transaction{parent}))

	children := []model.Transaction{
		{ID: "c1", StatementID: "s1", Kind: model.KindChecking, Name: "COSTCO food", Amount: decimal.RequireFromString("-60.00")},
		{ID: "c2", StatementID: "s1", Kind: model.KindChecking, Name: "COSTCO tires", Amount: decimal.RequireFromString("-40.00")},
	}
	require.NoError(t, s.SplitTransaction(ctx, "parent", children))

	got, err := s.TransactionByID(ctx, "parent")
	require.NoError(t, err)
	assert.True(t, got.IsSplit)

	child, err := s.TransactionByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "parent", child.ParentTransactionID)

	assert.ErrorIs(t, s.SplitTransaction(ctx, "missing", nil), ErrNotFound)
}

func TestSetOverrideCategory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddTransactions(ctx, []model.Transaction{
		creditTxn("a", "s1", "2023-01-15T00:00:00.000Z", "ONE", "-1.00"),
		creditTxn("b", "s1", "2023-01-16T00:00:00.000Z", "TWO", "-2.00"),
	}))
	require.NoError(t, s.SetOverrideCategory(ctx, "cat-x", []string{"a"}))

	a, err := s.TransactionByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, a.OverrideCategory)
	assert.Equal(t, "cat-x", a.OverrideCategoryID)

	b, err := s.TransactionByID(ctx, "b")
	require.NoError(t, err)
	assert.False(t, b.OverrideCategory)
}

func TestUpdateTransaction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	txn := creditTxn("a", "s1", "2023-01-15T00:00:00.000Z", "ORIGINAL", "-1.00")
	require.NoError(t, s.AddTransactions(ctx, []model.Transaction{txn}))

	txn.UserDescription = "renamed by user"
	require.NoError(t, s.UpdateTransaction(ctx, txn))

	got, err := s.TransactionByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "renamed by user", got.UserDescription)
	assert.Equal(t, "ORIGINAL", got.Description)

	missing := creditTxn("nope", "s1", "2023-01-15T00:00:00.000Z", "X", "-1.00")
	assert.ErrorIs(t, s.UpdateTransaction(ctx, missing), ErrNotFound)
}
