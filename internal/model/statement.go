package model

import (
	"github.com/shopspring/decimal"
)

// StatementKind identifies which account a statement export came from.
type StatementKind string

const (
	StatementCreditCard StatementKind = "creditCard"
	StatementChecking   StatementKind = "checking"
)

// Statement is one uploaded export file and its derived metadata. It is
// written once after extraction and never mutated afterwards.
type Statement struct {
	ID        string        `json:"id"`
	FileName  string        `json:"fileName"`
	Kind      StatementKind `json:"type"`
	StartDate string        `json:"startDate"` // ISO-8601 instant, from the file name
	EndDate   string        `json:"endDate"`   // ISO-8601 instant, from the file name

	TransactionCount int             `json:"transactionCount"`
	NetAmount        decimal.Decimal `json:"netAmount"`

	// Checking-only aggregates.
	CheckCount         int `json:"checkCount,omitempty"`
	ATMWithdrawalCount int `json:"atmWithdrawalCount,omitempty"`
}
