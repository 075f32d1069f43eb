package command

import (
	"strings"

	"github.com/radhian/ledger-reconciler/consts"
	"github.com/shopspring/decimal"
)

// Posting is one ledger line produced by a command. RequiresFunds marks a debit
// against a member account that must not take the balance below zero.
type Posting struct {
	AccountNumber string
	Direction     string
	Amount        decimal.Decimal
	Currency      string
	Narration     string
	RequiresFunds bool
}

// Postings expands a command into balanced lines. A reversal yields none; its
// lines depend on the entries already posted under the original reference.
func Postings(cmd PostingCommand) []Posting {
	switch c := cmd.(type) {
	case *CashInitialization:
		return []Posting{
			debit(c.TillAccountNumber, c.Amount, c.Currency, "cash initialization", false),
			credit(c.VaultAccountNumber, c.Amount, c.Currency, "cash initialization"),
		}
	case *TransferToMember:
		lines := []Posting{
			debit(c.FromAccountNumber, c.Amount.Add(c.Fee), c.Currency, narrationOr(c.Narration, "transfer"), true),
			credit(c.ToAccountNumber, c.Amount, c.Currency, narrationOr(c.Narration, "transfer")),
		}
		return appendFee(lines, c.FeeAccountNumber, c.Fee, c.Currency)
	case *TransferToNonMember:
		lines := []Posting{
			debit(c.FromAccountNumber, c.Amount.Add(c.Fee), c.Currency, "transfer to "+c.BeneficiaryName, true),
			credit(c.ClearingAccountNumber, c.Amount, c.Currency, "transfer to "+c.BeneficiaryName),
		}
		return appendFee(lines, c.FeeAccountNumber, c.Fee, c.Currency)
	case *WithdrawalTransfer:
		lines := []Posting{
			debit(c.AccountNumber, c.Amount.Add(c.Fee), c.Currency, "withdrawal", true),
			credit(c.TillAccountNumber, c.Amount, c.Currency, "withdrawal"),
		}
		return appendFee(lines, c.FeeAccountNumber, c.Fee, c.Currency)
	case *AutoPostingEvent:
		return fromLines(c.Lines, c.Currency, c.EventCode)
	case *LoanApprovalPosting:
		return []Posting{
			debit(c.CommitmentAccountNumber, c.ApprovedAmount, c.Currency, "loan approval "+c.LoanApplicationID, false),
			credit(c.ContraAccountNumber, c.ApprovedAmount, c.Currency, "loan approval "+c.LoanApplicationID),
		}
	case *AccountPosting:
		return fromLines(c.Lines, c.Currency, c.Narration)
	case *LoanDisbursementPosting:
		lines := []Posting{
			debit(c.LoanReceivableAccountNumber, c.Principal, c.Currency, "loan disbursement "+c.LoanID, false),
			credit(c.MemberAccountNumber, c.Principal.Sub(c.ProcessingFee), c.Currency, "loan disbursement "+c.LoanID),
		}
		return appendFee(lines, c.FeeIncomeAccountNumber, c.ProcessingFee, c.Currency)
	case *AccountingEntryReversal:
		return nil
	case *MemberAccountClosure:
		var lines []Posting
		if c.Balance.IsPositive() {
			lines = append(lines, debit(c.MemberAccountNumber, c.Balance, c.Currency, "account closure", true))
		}
		if settled := c.Balance.Sub(c.ClosingFee); settled.IsPositive() {
			lines = append(lines, credit(c.SettlementAccountNumber, settled, c.Currency, "account closure"))
		}
		return appendFee(lines, c.FeeAccountNumber, c.ClosingFee, c.Currency)
	}
	return nil
}

func debit(account string, amount decimal.Decimal, currency, narration string, requiresFunds bool) Posting {
	return Posting{
		AccountNumber: account,
		Direction:     consts.DirectionDebit,
		Amount:        amount,
		Currency:      currency,
		Narration:     narration,
		RequiresFunds: requiresFunds,
	}
}

func credit(account string, amount decimal.Decimal, currency, narration string) Posting {
	return Posting{
		AccountNumber: account,
		Direction:     consts.DirectionCredit,
		Amount:        amount,
		Currency:      currency,
		Narration:     narration,
	}
}

func appendFee(lines []Posting, account string, fee decimal.Decimal, currency string) []Posting {
	if !fee.IsPositive() {
		return lines
	}
	return append(lines, credit(account, fee, currency, "fee"))
}

func fromLines(lines []Line, currency, narration string) []Posting {
	postings := make([]Posting, 0, len(lines))
	for _, line := range lines {
		postings = append(postings, Posting{
			AccountNumber: line.AccountNumber,
			Direction:     strings.ToUpper(line.Direction),
			Amount:        line.Amount,
			Currency:      currency,
			Narration:     narrationOr(line.Narration, narration),
		})
	}
	return postings
}

func narrationOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
