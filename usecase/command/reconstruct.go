package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/radhian/ledger-reconciler/consts"
	"github.com/shopspring/decimal"
)

// Reconstruct rebuilds the posting command stored on a tracker. It never
// returns a nil command together with a nil error.
func Reconstruct(trackerID string, dataType CommandDataType, payload *string) (PostingCommand, error) {
	if payload == nil || isNullPayload(*payload) {
		return nil, &ReconstructionError{TrackerID: trackerID, DataType: dataType, Err: ErrMissingPayload}
	}

	var cmd PostingCommand
	switch dataType {
	case AddCashInitializationCommand:
		cmd = &CashInitialization{}
	case AddTransferEventCommand:
		cmd = &TransferToMember{}
	case AddTransferToNonMemberEventCommand:
		cmd = &TransferToNonMember{}
	case AddWithdrawalTransferEventCommand:
		cmd = &WithdrawalTransfer{}
	case AutoPostingEventCommand:
		cmd = &AutoPostingEvent{}
	case LoanApprovalPostingCommand:
		cmd = &LoanApprovalPosting{}
	case MakeAccountPostingCommand:
		cmd = &AccountPosting{}
	case LoanDisbursementPostingCommand:
		cmd = &LoanDisbursementPosting{}
	case ReverseAccountingEntryCommand:
		cmd = &AccountingEntryReversal{}
	case ClosingOfMemberAccountCommand:
		cmd = &MemberAccountClosure{}
	default:
		return nil, &ReconstructionError{TrackerID: trackerID, DataType: dataType, Err: ErrUnknownCommandType}
	}

	if err := decodeStrict(*payload, cmd); err != nil {
		return nil, &ReconstructionError{
			TrackerID: trackerID,
			DataType:  dataType,
			Err:       fmt.Errorf("%w: %v", ErrMalformedPayload, err),
		}
	}
	if err := cmd.validate(); err != nil {
		return nil, &ReconstructionError{
			TrackerID: trackerID,
			DataType:  dataType,
			Err:       fmt.Errorf("%w: %v", ErrMalformedPayload, err),
		}
	}
	return cmd, nil
}

func isNullPayload(payload string) bool {
	trimmed := strings.TrimSpace(payload)
	return trimmed == "" || trimmed == "null"
}

func decodeStrict(payload string, target interface{}) error {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after command payload")
	}
	return nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func requirePositive(field string, value decimal.Decimal) error {
	if !value.IsPositive() {
		return fmt.Errorf("%s must be greater than zero", field)
	}
	return nil
}

func requireFeeAccount(fee decimal.Decimal, account string) error {
	if fee.IsNegative() {
		return errors.New("fee must not be negative")
	}
	if fee.IsPositive() {
		return requireText("feeAccountNumber", account)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func validateLines(lines []Line) error {
	if len(lines) < 2 {
		return errors.New("at least two posting lines are required")
	}
	debit, credit := decimal.Zero, decimal.Zero
	for i, line := range lines {
		if err := requireText(fmt.Sprintf("lines[%d].accountNumber", i), line.AccountNumber); err != nil {
			return err
		}
		if err := requirePositive(fmt.Sprintf("lines[%d].amount", i), line.Amount); err != nil {
			return err
		}
		switch strings.ToUpper(line.Direction) {
		case consts.DirectionDebit:
			debit = debit.Add(line.Amount)
		case consts.DirectionCredit:
			credit = credit.Add(line.Amount)
		default:
			return fmt.Errorf("lines[%d].direction %q is not DEBIT or CREDIT", i, line.Direction)
		}
	}
	if !debit.Equal(credit) {
		return fmt.Errorf("posting lines are unbalanced: debit %s, credit %s", debit, credit)
	}
	return nil
}

func (c *CashInitialization) validate() error {
	return firstError(
		requireText("transactionReferenceId", c.TransactionReferenceID),
		requireText("tillAccountNumber", c.TillAccountNumber),
		requireText("vaultAccountNumber", c.VaultAccountNumber),
		requirePositive("amount", c.Amount),
	)
}

func (c *TransferToMember) validate() error {
	return firstError(
		requireText("transactionReferenceId", c.TransactionReferenceID),
		requireText("fromAccountNumber", c.FromAccountNumber),
		requireText("toAccountNumber", c.ToAccountNumber),
		requirePositive("amount", c.Amount),
		requireFeeAccount(c.Fee, c.FeeAccountNumber),
	)
}

func (c *TransferToNonMember) validate() error {
	return firstError(
		requireText("transactionReferenceId", c.TransactionReferenceID),
		requireText("fromAccountNumber", c.FromAccountNumber),
		requireText("clearingAccountNumber", c.ClearingAccountNumber),
		requireText("beneficiaryName", c.BeneficiaryName),
		requirePositive("amount", c.Amount),
		requireFeeAccount(c.Fee, c.FeeAccountNumber),
	)
}

func (c *WithdrawalTransfer) validate() error {
	return firstError(
		requireText("transactionReferenceId", c.TransactionReferenceID),
		requireText("accountNumber", c.AccountNumber),
		requireText("tillAccountNumber", c.TillAccountNumber),
		requirePositive("amount", c.Amount),
		requireFeeAccount(c.Fee, c.FeeAccountNumber),
	)
}

func (c *AutoPostingEvent) validate() error {
	return firstError(
		requireText("transactionReferenceId", c.TransactionReferenceID),
		requireText("eventCode", c.EventCode),
		validateLines(c.Lines),
	)
}

func (c *LoanApprovalPosting) validate() error {
	return firstError(
		requireText("transactionReferenceId", c.TransactionReferenceID),
		requireText("loanApplicationId", c.LoanApplicationID),
		requireText("commitmentAccountNumber", c.CommitmentAccountNumber),
		requireText("contraAccountNumber", c.ContraAccountNumber),
		requirePositive("approvedAmount", c.ApprovedAmount),
	)
}

func (c *AccountPosting) validate() error {
	return firstError(
		requireText("transactionReferenceId", c.TransactionReferenceID),
		validateLines(c.Lines),
	)
}

func (c *LoanDisbursementPosting) validate() error {
	return firstError(
		requireText("transactionReferenceId", c.TransactionReferenceID),
		requireText("loanId", c.LoanID),
		requireText("loanReceivableAccountNumber", c.LoanReceivableAccountNumber),
		requireText("memberAccountNumber", c.MemberAccountNumber),
		requirePositive("principal", c.Principal),
		requireFeeAccount(c.ProcessingFee, c.FeeIncomeAccountNumber),
		requireFeeBelow(c.ProcessingFee, c.Principal),
	)
}

func requireFeeBelow(fee, principal decimal.Decimal) error {
	if fee.GreaterThanOrEqual(principal) {
		return errors.New("processingFee must be lower than principal")
	}
	return nil
}

func (c *AccountingEntryReversal) validate() error {
	if err := firstError(
		requireText("transactionReferenceId", c.TransactionReferenceID),
		requireText("originalReferenceId", c.OriginalReferenceID),
	); err != nil {
		return err
	}
	if c.OriginalReferenceID == c.TransactionReferenceID {
		return errors.New("a reversal cannot reference itself")
	}
	return nil
}

func (c *MemberAccountClosure) validate() error {
	if err := firstError(
		requireText("transactionReferenceId", c.TransactionReferenceID),
		requireText("memberAccountNumber", c.MemberAccountNumber),
		requireText("settlementAccountNumber", c.SettlementAccountNumber),
		requireFeeAccount(c.ClosingFee, c.FeeAccountNumber),
	); err != nil {
		return err
	}
	if c.Balance.IsNegative() {
		return errors.New("balance must not be negative")
	}
	if c.ClosingFee.GreaterThan(c.Balance) {
		return errors.New("closingFee exceeds the account balance")
	}
	return nil
}
