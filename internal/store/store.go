// Package store persists statements, transactions, categories and rules.
//
// The core issues whole-collection reads and bulk writes and relies on the
// database's per-call atomicity; multi-call operations (replace-all rules,
// duplicate removal) are deliberately not wrapped in transactions, matching
// the single-user tool's original semantics.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tallyup-dev/tallyup/internal/model"
)

// ErrNotFound is returned by point lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Store wraps the database handle.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// migrates the schema. Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if err := db.AutoMigrate(
		&transactionRecord{},
		&statementRecord{},
		&categoryRecord{},
		&ruleRecord{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AddStatement inserts one statement.
func (s *Store) AddStatement(ctx context.Context, stmt model.Statement) error {
	rec := toStatementRecord(stmt)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("inserting statement %s: %w", stmt.ID, err)
	}
	return nil
}

// Statements returns all statements of one kind.
func (s *Store) Statements(ctx context.Context, kind model.StatementKind) ([]model.Statement, error) {
	var recs []statementRecord
	if err := s.db.WithContext(ctx).Where("kind = ?", string(kind)).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("querying statements: %w", err)
	}
	stmts := make([]model.Statement, 0, len(recs))
	for _, rec := range recs {
		stmt, err := fromStatementRecord(rec)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// AddTransactions bulk-inserts transactions. A nil or empty slice is a no-op.
func (s *Store) AddTransactions(ctx context.Context, txns []model.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	recs := make([]transactionRecord, len(txns))
	for i, txn := range txns {
		recs[i] = toTransactionRecord(txn)
	}
	if err := s.db.WithContext(ctx).Create(&recs).Error; err != nil {
		return fmt.Errorf("inserting %d transactions: %w", len(txns), err)
	}
	return nil
}

// Transactions returns transactions of one kind, in insertion order,
// optionally bounded by transactionDate (inclusive). Empty bounds are open.
func (s *Store) Transactions(ctx context.Context, kind model.TransactionKind, startDate, endDate string) ([]model.Transaction, error) {
	q := s.db.WithContext(ctx).Where("kind = ?", string(kind)).Order("seq")
	if startDate != "" {
		q = q.Where("transaction_date >= ?", startDate)
	}
	if endDate != "" {
		q = q.Where("transaction_date <= ?", endDate)
	}
	var recs []transactionRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	return fromTransactionRecords(recs)
}

// TransactionByID returns one transaction.
func (s *Store) TransactionByID(ctx context.Context, id string) (model.Transaction, error) {
	var rec transactionRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("querying transaction %s: %w", id, err)
	}
	return fromTransactionRecord(rec)
}

// UpdateTransaction replaces the stored row for the transaction's id.
func (s *Store) UpdateTransaction(ctx context.Context, txn model.Transaction) error {
	rec := toTransactionRecord(txn)
	res := s.db.WithContext(ctx).Model(&transactionRecord{}).
		Where("id = ?", txn.ID).
		Select("*").Omit("seq").
		Updates(rec)
	if res.Error != nil {
		return fmt.Errorf("updating transaction %s: %w", txn.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transaction %s: %w", txn.ID, ErrNotFound)
	}
	return nil
}

// DeleteTransactions bulk-deletes by id set.
func (s *Store) DeleteTransactions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&transactionRecord{}).Error; err != nil {
		return fmt.Errorf("deleting %d transactions: %w", len(ids), err)
	}
	return nil
}

// SetOverrideCategory stamps an override category onto a set of transactions.
func (s *Store) SetOverrideCategory(ctx context.Context, categoryID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&transactionRecord{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"override_category": true, "override_category_id": categoryID}).Error
	if err != nil {
		return fmt.Errorf("overriding category on %d transactions: %w", len(ids), err)
	}
	return nil
}

// SplitTransaction flags the parent as split and inserts the child records.
// The two writes are separate calls; a failure between them leaves the parent
// flagged without children, the same gap the original carried.
func (s *Store) SplitTransaction(ctx context.Context, parentID string, children []model.Transaction) error {
	res := s.db.WithContext(ctx).Model(&transactionRecord{}).
		Where("id = ?", parentID).
		Update("is_split", true)
	if res.Error != nil {
		return fmt.Errorf("flagging transaction %s as split: %w", parentID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transaction %s: %w", parentID, ErrNotFound)
	}
	for i := range children {
		children[i].ParentTransactionID = parentID
	}
	return s.AddTransactions(ctx, children)
}

// MinMaxDates returns the transactionDate bounds over one kind.
func (s *Store) MinMaxDates(ctx context.Context, kind model.TransactionKind) (model.MinMaxDates, error) {
	var bounds struct {
		MinDate *string
		MaxDate *string
	}
	err := s.db.WithContext(ctx).Model(&transactionRecord{}).
		Where("kind = ?", string(kind)).
		Select("MIN(transaction_date) AS min_date, MAX(transaction_date) AS max_date").
		Scan(&bounds).Error
	if err != nil {
		return model.MinMaxDates{}, fmt.Errorf("querying date bounds: %w", err)
	}
	var mm model.MinMaxDates
	if bounds.MinDate != nil {
		mm.MinDate = *bounds.MinDate
	}
	if bounds.MaxDate != nil {
		mm.MaxDate = *bounds.MaxDate
	}
	return mm, nil
}

// DuplicateCandidates returns credit-card transactions whose fingerprint
// columns (post date, description, amount) collide with at least one other
// row, in insertion order. The in-memory pass in dedup decides which copies
// are actual cross-statement duplicates.
func (s *Store) DuplicateCandidates(ctx context.Context) ([]model.Transaction, error) {
	var recs []transactionRecord
	err := s.db.WithContext(ctx).
		Where("kind = ?", string(model.KindCreditCard)).
		Where(`(post_date, description, amount) IN (
			SELECT post_date, description, amount FROM transactions
			WHERE kind = ? GROUP BY post_date, description, amount HAVING COUNT(*) > 1
		)`, string(model.KindCreditCard)).
		Order("seq").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("querying duplicate candidates: %w", err)
	}
	return fromTransactionRecords(recs)
}

// TransactionsByRule returns the transactions whose descriptive text the
// rule's pattern matches. Matching is case-sensitive, so it runs over the
// loaded rows rather than through the database's collation.
func (s *Store) TransactionsByRule(ctx context.Context, ruleID string) ([]model.Transaction, error) {
	rule, err := s.RuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	var recs []transactionRecord
	if err := s.db.WithContext(ctx).Order("seq").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	txns, err := fromTransactionRecords(recs)
	if err != nil {
		return nil, err
	}
	var matched []model.Transaction
	for _, txn := range txns {
		if strings.Contains(txn.DescriptiveText(), rule.Pattern) {
			matched = append(matched, txn)
		}
	}
	return matched, nil
}

// Categories returns all categories.
func (s *Store) Categories(ctx context.Context) ([]model.Category, error) {
	var recs []categoryRecord
	if err := s.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	cats := make([]model.Category, len(recs))
	for i, rec := range recs {
		cats[i] = fromCategoryRecord(rec)
	}
	return cats, nil
}

// CategoryByName looks a category up by exact name.
func (s *Store) CategoryByName(ctx context.Context, name string) (model.Category, error) {
	var rec categoryRecord
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("querying category %q: %w", name, err)
	}
	return fromCategoryRecord(rec), nil
}

// AddCategory inserts one category.
func (s *Store) AddCategory(ctx context.Context, c model.Category) error {
	rec := toCategoryRecord(c)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("inserting category %q: %w", c.Name, err)
	}
	return nil
}

// AddCategories bulk-inserts categories. Empty input is a no-op.
func (s *Store) AddCategories(ctx context.Context, cats []model.Category) error {
	if len(cats) == 0 {
		return nil
	}
	recs := make([]categoryRecord, len(cats))
	for i, c := range cats {
		recs[i] = toCategoryRecord(c)
	}
	if err := s.db.WithContext(ctx).Create(&recs).Error; err != nil {
		return fmt.Errorf("inserting %d categories: %w", len(cats), err)
	}
	return nil
}

// UpdateCategory replaces the stored category.
func (s *Store) UpdateCategory(ctx context.Context, c model.Category) error {
	res := s.db.WithContext(ctx).Model(&categoryRecord{}).
		Where("id = ?", c.ID).
		Select("*").
		Updates(toCategoryRecord(c))
	if res.Error != nil {
		return fmt.Errorf("updating category %s: %w", c.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category. Rules referencing it simply stop
// matching; they are not cascaded.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&categoryRecord{}).Error; err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	return nil
}

// EnsureIgnoreCategory creates the sentinel Ignore category if missing and
// returns it. Safe to call on every startup.
func (s *Store) EnsureIgnoreCategory(ctx context.Context) (model.Category, error) {
	existing, err := s.CategoryByName(ctx, model.IgnoreCategoryName)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.Category{}, err
	}
	c := model.Category{
		ID:             uuid.NewString(),
		Name:           model.IgnoreCategoryName,
		DisregardLevel: model.DisregardNone,
	}
	if err := s.AddCategory(ctx, c); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// Rules returns all assignment rules in storage order.
func (s *Store) Rules(ctx context.Context) ([]model.CategoryAssignmentRule, error) {
	var recs []ruleRecord
	if err := s.db.WithContext(ctx).Order("seq").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("querying rules: %w", err)
	}
	rules := make([]model.CategoryAssignmentRule, len(recs))
	for i, rec := range recs {
		rules[i] = fromRuleRecord(rec)
	}
	return rules, nil
}

// RuleByID returns one rule.
func (s *Store) RuleByID(ctx context.Context, id string) (model.CategoryAssignmentRule, error) {
	var rec ruleRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CategoryAssignmentRule{}, fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.CategoryAssignmentRule{}, fmt.Errorf("querying rule %s: %w", id, err)
	}
	return fromRuleRecord(rec), nil
}

// AddRule appends a rule at the end of the evaluation order.
func (s *Store) AddRule(ctx context.Context, rule model.CategoryAssignmentRule) error {
	rec := toRuleRecord(rule)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("inserting rule %q: %w", rule.Pattern, err)
	}
	return nil
}

// UpdateRule rewrites a rule's pattern and category, keeping its position.
func (s *Store) UpdateRule(ctx context.Context, rule model.CategoryAssignmentRule) error {
	res := s.db.WithContext(ctx).Model(&ruleRecord{}).
		Where("id = ?", rule.ID).
		Updates(map[string]any{"pattern": rule.Pattern, "category_id": rule.CategoryID})
	if res.Error != nil {
		return fmt.Errorf("updating rule %s: %w", rule.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rule %s: %w", rule.ID, ErrNotFound)
	}
	return nil
}

// UpdateRulePattern rewrites only the pattern.
func (s *Store) UpdateRulePattern(ctx context.Context, id, pattern string) error {
	res := s.db.WithContext(ctx).Model(&ruleRecord{}).Where("id = ?", id).Update("pattern", pattern)
	if res.Error != nil {
		return fmt.Errorf("updating rule %s pattern: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateRuleCategory rewrites only the category reference.
func (s *Store) UpdateRuleCategory(ctx context.Context, id, categoryID string) error {
	res := s.db.WithContext(ctx).Model(&ruleRecord{}).Where("id = ?", id).Update("category_id", categoryID)
	if res.Error != nil {
		return fmt.Errorf("updating rule %s category: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteRule removes one rule.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&ruleRecord{}).Error; err != nil {
		return fmt.Errorf("deleting rule %s: %w", id, err)
	}
	return nil
}

// ReplaceRules deletes every rule and inserts the given set in order. The
// delete and insert are separate calls with no isolation against concurrent
// writers; acceptable for a single-user tool.
func (s *Store) ReplaceRules(ctx context.Context, rules []model.CategoryAssignmentRule) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&ruleRecord{}).Error; err != nil {
		return fmt.Errorf("clearing rules: %w", err)
	}
	if len(rules) == 0 {
		return nil
	}
	recs := make([]ruleRecord, len(rules))
	for i, rule := range rules {
		recs[i] = toRuleRecord(rule)
	}
	if err := s.db.WithContext(ctx).Create(&recs).Error; err != nil {
		return fmt.Errorf("inserting %d rules: %w", len(rules), err)
	}
	return nil
}

func fromTransactionRecords(recs []transactionRecord) ([]model.Transaction, error) {
	txns := make([]model.Transaction, 0, len(recs))
	for _, rec := range recs {
		txn, err := fromTransactionRecord(rec)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
