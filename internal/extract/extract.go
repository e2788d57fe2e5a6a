// Package extract converts normalized statement rows into typed transaction
// records and computes per-statement aggregates.
package extract

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tallyup-dev/tallyup/internal/csvkit"
	"github.com/tallyup-dev/tallyup/internal/model"
)

// Credit-card export columns.
const (
	ccColTransactionDate = 0
	ccColPostDate        = 1
	ccColDescription     = 2
	ccColCategory        = 3
	ccColType            = 4
	ccColAmount          = 5
)

// Checking export columns.
const (
	chkColTransactionDate = 0
	chkColTypeCode        = 1
	chkColName            = 2
	chkColMemo            = 3
	chkColAmount          = 4
)

const atmWithdrawalPrefix = "ATM WITHDRAWAL"

// Result holds the extracted records and the aggregates stamped onto the
// owning statement before it is persisted.
type Result struct {
	Transactions       []model.Transaction
	TransactionCount   int
	NetAmount          decimal.Decimal
	CheckCount         int
	ATMWithdrawalCount int
}

// CreditCard extracts credit-card transactions from normalized rows. Rows
// that are empty or carry a malformed date are skipped; extraction continues.
func CreditCard(statementID string, rows []csvkit.Row, log zerolog.Logger) Result {
	var res Result
	for i, row := range rows {
		if row.Empty() {
			continue
		}

		txnDate := row.At(ccColTransactionDate).String()
		postDate := row.At(ccColPostDate).String()
		if !ValidDate(txnDate) || !ValidDate(postDate) {
			log.Debug().Int("row", i+1).Str("transactionDate", txnDate).Str("postDate", postDate).
				Msg("skipping credit-card row with malformed date")
			continue
		}

		amount := row.At(ccColAmount)
		res.NetAmount = res.NetAmount.Add(amount.Number)

		desc := row.At(ccColDescription).String()
		res.Transactions = append(res.Transactions, model.Transaction{
			ID:              uuid.NewString(),
			StatementID:     statementID,
			Kind:            model.KindCreditCard,
			TransactionDate: ToISO(txnDate),
			PostDate:        ToISO(postDate),
			Description:     desc,
			IssuerCategory:  row.At(ccColCategory).String(),
			TypeLabel:       row.At(ccColType).String(),
			Amount:          amount.Number,
			UserDescription: desc,
		})
	}
	res.TransactionCount = len(res.Transactions)
	return res
}

// Checking extracts checking-account transactions from normalized rows. Rows
// that are empty or carry a non-numeric amount are skipped. A name of exactly
// "CHECK" marks a written check (the type code column holds the check
// number); a name starting with "ATM WITHDRAWAL" counts toward the ATM
// withdrawal aggregate.
func Checking(statementID string, rows []csvkit.Row, log zerolog.Logger) Result {
	var res Result
	for i, row := range rows {
		if row.Empty() {
			continue
		}

		amount := row.At(chkColAmount)
		if !amount.IsNumber() {
			log.Debug().Int("row", i+1).Str("amount", amount.String()).
				Msg("skipping checking row with non-numeric amount")
			continue
		}
		res.NetAmount = res.NetAmount.Add(amount.Number)

		name := row.At(chkColName).String()
		typeCode := row.At(chkColTypeCode).String()

		if strings.HasPrefix(name, atmWithdrawalPrefix) {
			res.ATMWithdrawalCount++
		}

		txn := model.Transaction{
			ID:              uuid.NewString(),
			StatementID:     statementID,
			Kind:            model.KindChecking,
			TransactionDate: row.At(chkColTransactionDate).String(),
			TypeCode:        typeCode,
			Name:            name,
			Memo:            row.At(chkColMemo).String(),
			Amount:          amount.Number,
			CheckingType:    model.CheckingTypeTBD,
			UserDescription: name,
		}

		if name == "CHECK" {
			res.CheckCount++
			txn.CheckingType = model.CheckingTypeCheck
			txn.CheckNumber = typeCode
			txn.Payee = "TBD"
		}

		res.Transactions = append(res.Transactions, txn)
	}
	res.TransactionCount = len(res.Transactions)
	return res
}

// Apply stamps the computed aggregates onto the statement.
func (r Result) Apply(s *model.Statement) {
	s.TransactionCount = r.TransactionCount
	s.NetAmount = r.NetAmount
	if s.Kind == model.StatementChecking {
		s.CheckCount = r.CheckCount
		s.ATMWithdrawalCount = r.ATMWithdrawalCount
	}
}
