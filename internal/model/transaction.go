package model

import (
	"github.com/shopspring/decimal"
)

// TransactionKind discriminates the two statement sources a transaction can
// come from. The extractor and the categorizer branch exhaustively on it.
type TransactionKind string

const (
	KindCreditCard TransactionKind = "creditCard"
	KindChecking   TransactionKind = "checking"
)

// CheckingTransactionType further classifies checking rows.
type CheckingTransactionType string

const (
	CheckingTypeCheck CheckingTransactionType = "check"
	CheckingTypeTBD   CheckingTransactionType = "tbd"
)

// Transaction is one line-item extracted from a statement. It is a tagged
// union: Kind selects which of the kind-specific field groups is meaningful.
type Transaction struct {
	ID              string          `json:"id"`
	StatementID     string          `json:"statementId"`
	Kind            TransactionKind `json:"kind"`
	TransactionDate string          `json:"transactionDate"` // ISO-8601 instant
	Amount          decimal.Decimal `json:"amount"`          // negative = debit

	// Credit-card fields.
	PostDate       string `json:"postDate,omitempty"` // ISO-8601 instant
	Description    string `json:"description,omitempty"`
	IssuerCategory string `json:"issuerCategory,omitempty"` // as exported by the issuer
	TypeLabel      string `json:"typeLabel,omitempty"`      // e.g. "Sale", "Payment"

	// Checking fields.
	TypeCode     string                  `json:"typeCode,omitempty"`
	Name         string                  `json:"name,omitempty"` // payee/description
	Memo         string                  `json:"memo,omitempty"`
	CheckingType CheckingTransactionType `json:"checkingType,omitempty"`
	CheckNumber  string                  `json:"checkNumber,omitempty"`
	Payee        string                  `json:"payee,omitempty"`

	// Split linkage: a split parent keeps its row but is excluded from
	// report totals; children reference it.
	IsSplit             bool   `json:"isSplit,omitempty"`
	ParentTransactionID string `json:"parentTransactionId,omitempty"`

	// User edits applied after extraction.
	UserDescription    string `json:"userDescription,omitempty"`
	OverrideCategory   bool   `json:"overrideCategory,omitempty"`
	OverrideCategoryID string `json:"overrideCategoryId,omitempty"`
}

// DescriptiveText returns the text that categorization rules match against:
// the description for credit-card rows, the payee name for checking rows.
func (t Transaction) DescriptiveText() string {
	if t.Kind == KindCreditCard {
		return t.Description
	}
	return t.Name
}

// IsCheck reports whether a checking transaction is a written check.
func (t Transaction) IsCheck() bool {
	return t.Kind == KindChecking && t.CheckingType == CheckingTypeCheck
}

// MinMaxDates holds the bounds of transactionDate over a collection.
type MinMaxDates struct {
	MinDate string `json:"minDate"`
	MaxDate string `json:"maxDate"`
}
