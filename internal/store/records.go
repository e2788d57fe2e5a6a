package store

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallyup-dev/tallyup/internal/model"
)

// transactionRecord is the transactions table row. Seq preserves insertion
// order, which the duplicate detector's first-seen-wins pass depends on.
// Amounts are stored as exact decimal strings.
type transactionRecord struct {
	Seq         int64  `gorm:"primaryKey;autoIncrement"`
	ID          string `gorm:"uniqueIndex;size:36"`
	StatementID string `gorm:"index"`
	Kind        string `gorm:"index"`

	TransactionDate string `gorm:"index"`
	Amount          string

	PostDate       string
	Description    string
	IssuerCategory string
	TypeLabel      string

	TypeCode     string
	Name         string
	Memo         string
	CheckingType string
	CheckNumber  string
	Payee        string

	IsSplit             bool
	ParentTransactionID string

	UserDescription    string
	OverrideCategory   bool
	OverrideCategoryID string
}

func (transactionRecord) TableName() string { return "transactions" }

type statementRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	FileName  string
	Kind      string `gorm:"index"`
	StartDate string
	EndDate   string

	TransactionCount   int
	NetAmount          string
	CheckCount         int
	ATMWithdrawalCount int
}

func (statementRecord) TableName() string { return "statements" }

type categoryRecord struct {
	ID             string `gorm:"primaryKey;size:36"`
	Name           string `gorm:"uniqueIndex"`
	ParentID       string
	DisregardLevel int
}

func (categoryRecord) TableName() string { return "categories" }

// ruleRecord keeps rules in insertion order via Seq; rule evaluation order is
// storage order.
type ruleRecord struct {
	Seq        int64  `gorm:"primaryKey;autoIncrement"`
	ID         string `gorm:"uniqueIndex;size:36"`
	Pattern    string
	CategoryID string
}

func (ruleRecord) TableName() string { return "category_assignment_rules" }

func toTransactionRecord(t model.Transaction) transactionRecord {
	return transactionRecord{
		ID:                  t.ID,
		StatementID:         t.StatementID,
		Kind:                string(t.Kind),
		TransactionDate:     t.TransactionDate,
		Amount:              t.Amount.String(),
		PostDate:            t.PostDate,
		Description:         t.Description,
		IssuerCategory:      t.IssuerCategory,
		TypeLabel:           t.TypeLabel,
		TypeCode:            t.TypeCode,
		Name:                t.Name,
		Memo:                t.Memo,
		CheckingType:        string(t.CheckingType),
		CheckNumber:         t.CheckNumber,
		Payee:               t.Payee,
		IsSplit:             t.IsSplit,
		ParentTransactionID: t.ParentTransactionID,
		UserDescription:     t.UserDescription,
		OverrideCategory:    t.OverrideCategory,
		OverrideCategoryID:  t.OverrideCategoryID,
	}
}

func fromTransactionRecord(r transactionRecord) (model.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing stored amount %q for transaction %s: %w", r.Amount, r.ID, err)
	}
	return model.Transaction{
		ID:                  r.ID,
		StatementID:         r.StatementID,
		Kind:                model.TransactionKind(r.Kind),
		TransactionDate:     r.TransactionDate,
		Amount:              amount,
		PostDate:            r.PostDate,
		Description:         r.Description,
		IssuerCategory:      r.IssuerCategory,
		TypeLabel:           r.TypeLabel,
		TypeCode:            r.TypeCode,
		Name:                r.Name,
		Memo:                r.Memo,
		CheckingType:        model.CheckingTransactionType(r.CheckingType),
		CheckNumber:         r.CheckNumber,
		Payee:               r.Payee,
		IsSplit:             r.IsSplit,
		ParentTransactionID: r.ParentTransactionID,
		UserDescription:     r.UserDescription,
		OverrideCategory:    r.OverrideCategory,
		OverrideCategoryID:  r.OverrideCategoryID,
	}, nil
}

func toStatementRecord(s model.Statement) statementRecord {
	return statementRecord{
		ID:                 s.ID,
		FileName:           s.FileName,
		Kind:               string(s.Kind),
		StartDate:          s.StartDate,
		EndDate:            s.EndDate,
		TransactionCount:   s.TransactionCount,
		NetAmount:          s.NetAmount.String(),
		CheckCount:         s.CheckCount,
		ATMWithdrawalCount: s.ATMWithdrawalCount,
	}
}

func fromStatementRecord(r statementRecord) (model.Statement, error) {
	net, err := decimal.NewFromString(r.NetAmount)
	if err != nil {
		return model.Statement{}, fmt.Errorf("parsing stored net amount %q for statement %s: %w", r.NetAmount, r.ID, err)
	}
	return model.Statement{
		ID:                 r.ID,
		FileName:           r.FileName,
		Kind:               model.StatementKind(r.Kind),
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		TransactionCount:   r.TransactionCount,
		NetAmount:          net,
		CheckCount:         r.CheckCount,
		ATMWithdrawalCount: r.ATMWithdrawalCount,
	}, nil
}

func toCategoryRecord(c model.Category) categoryRecord {
	return categoryRecord{
		ID:             c.ID,
		Name:           c.Name,
		ParentID:       c.ParentID,
		DisregardLevel: int(c.DisregardLevel),
	}
}

func fromCategoryRecord(r categoryRecord) model.Category {
	return model.Category{
		ID:             r.ID,
		Name:           r.Name,
		ParentID:       r.ParentID,
		DisregardLevel: model.DisregardLevel(r.DisregardLevel),
	}
}

func toRuleRecord(rule model.CategoryAssignmentRule) ruleRecord {
	return ruleRecord{ID: rule.ID, Pattern: rule.Pattern, CategoryID: rule.CategoryID}
}

func fromRuleRecord(r ruleRecord) model.CategoryAssignmentRule {
	return model.CategoryAssignmentRule{ID: r.ID, Pattern: r.Pattern, CategoryID: r.CategoryID}
}
