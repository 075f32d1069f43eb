// Package command holds the closed set of accounting posting commands that a
// tracker can replay, and the reconstruction of those commands from their
// stored tag and JSON payload.
package command

import (
	"github.com/shopspring/decimal"
)

// CommandDataType tags the shape of a stored posting command.
type CommandDataType string

const (
	AddCashInitializationCommand       CommandDataType = "AddCashInitializationCommand"
	AddTransferEventCommand            CommandDataType = "AddTransferEventCommand"
	AddTransferToNonMemberEventCommand CommandDataType = "AddTransferToNonMemberEventCommand"
	AddWithdrawalTransferEventCommand  CommandDataType = "AddWithdrawalTransferEventCommand"
	AutoPostingEventCommand            CommandDataType = "AutoPostingEventCommand"
	LoanApprovalPostingCommand         CommandDataType = "LoanApprovalPostingCommand"
	MakeAccountPostingCommand          CommandDataType = "MakeAccountPostingCommand"
	LoanDisbursementPostingCommand     CommandDataType = "LoanDisbursementPostingCommand"
	ReverseAccountingEntryCommand      CommandDataType = "ReverseAccountingEntryCommand"
	ClosingOfMemberAccountCommand      CommandDataType = "ClosingOfMemberAccountCommand"
)

// DataTypes lists every known tag.
func DataTypes() []CommandDataType {
	return []CommandDataType{
		AddCashInitializationCommand,
		AddTransferEventCommand,
		AddTransferToNonMemberEventCommand,
		AddWithdrawalTransferEventCommand,
		AutoPostingEventCommand,
		LoanApprovalPostingCommand,
		MakeAccountPostingCommand,
		LoanDisbursementPostingCommand,
		ReverseAccountingEntryCommand,
		ClosingOfMemberAccountCommand,
	}
}

// PostingCommand is implemented only by the command types in this package.
type PostingCommand interface {
	DataType() CommandDataType
	Reference() string
	validate() error
}

// Line is one account movement inside a generic or auto posting.
type Line struct {
	AccountNumber string          `json:"accountNumber"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Narration     string          `json:"narration,omitempty"`
}

type CashInitialization struct {
	TransactionReferenceID string          `json:"transactionReferenceId"`
	BranchID               string          `json:"branchId"`
	TellerID               string          `json:"tellerId"`
	TillAccountNumber      string          `json:"tillAccountNumber"`
	VaultAccountNumber     string          `json:"vaultAccountNumber"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency"`
}

type TransferToMember struct {
	TransactionReferenceID string          `json:"transactionReferenceId"`
	FromAccountNumber      string          `json:"fromAccountNumber"`
	ToAccountNumber        string          `json:"toAccountNumber"`
	Amount                 decimal.Decimal `json:"amount"`
	Fee                    decimal.Decimal `json:"fee"`
	FeeAccountNumber       string          `json:"feeAccountNumber,omitempty"`
	Currency               string          `json:"currency"`
	Narration              string          `json:"narration,omitempty"`
}

type TransferToNonMember struct {
	TransactionReferenceID string          `json:"transactionReferenceId"`
	FromAccountNumber      string          `json:"fromAccountNumber"`
	ClearingAccountNumber  string          `json:"clearingAccountNumber"`
	BeneficiaryName        string          `json:"beneficiaryName"`
	BeneficiaryPhone       string          `json:"beneficiaryPhone,omitempty"`
	Amount                 decimal.Decimal `json:"amount"`
	Fee                    decimal.Decimal `json:"fee"`
	FeeAccountNumber       string          `json:"feeAccountNumber,omitempty"`
	Currency               string          `json:"currency"`
}

type WithdrawalTransfer struct {
	TransactionReferenceID string          `json:"transactionReferenceId"`
	AccountNumber          string          `json:"accountNumber"`
	TillAccountNumber      string          `json:"tillAccountNumber"`
	Amount                 decimal.Decimal `json:"amount"`
	Fee                    decimal.Decimal `json:"fee"`
	FeeAccountNumber       string          `json:"feeAccountNumber,omitempty"`
	Currency               string          `json:"currency"`
}

type AutoPostingEvent struct {
	TransactionReferenceID string `json:"transactionReferenceId"`
	EventCode              string `json:"eventCode"`
	Currency               string `json:"currency"`
	Lines                  []Line `json:"lines"`
}

type LoanApprovalPosting struct {
	TransactionReferenceID  string          `json:"transactionReferenceId"`
	LoanApplicationID       string          `json:"loanApplicationId"`
	LoanProductID           string          `json:"loanProductId"`
	CommitmentAccountNumber string          `json:"commitmentAccountNumber"`
	ContraAccountNumber     string          `json:"contraAccountNumber"`
	ApprovedAmount          decimal.Decimal `json:"approvedAmount"`
	Currency                string          `json:"currency"`
}

type AccountPosting struct {
	TransactionReferenceID string `json:"transactionReferenceId"`
	Currency               string `json:"currency"`
	Narration              string `json:"narration,omitempty"`
	Lines                  []Line `json:"lines"`
}

// LoanDisbursementPosting carries the amounts already computed by the loan
// schedule; no amortization happens here.
type LoanDisbursementPosting struct {
	TransactionReferenceID      string          `json:"transactionReferenceId"`
	LoanID                      string          `json:"loanId"`
	LoanReceivableAccountNumber string          `json:"loanReceivableAccountNumber"`
	MemberAccountNumber         string          `json:"memberAccountNumber"`
	Principal                   decimal.Decimal `json:"principal"`
	ProcessingFee               decimal.Decimal `json:"processingFee"`
	FeeIncomeAccountNumber      string          `json:"feeIncomeAccountNumber,omitempty"`
	Currency                    string          `json:"currency"`
}

type AccountingEntryReversal struct {
	TransactionReferenceID string `json:"transactionReferenceId"`
	OriginalReferenceID    string `json:"originalReferenceId"`
	Reason                 string `json:"reason,omitempty"`
}

type MemberAccountClosure struct {
	TransactionReferenceID  string          `json:"transactionReferenceId"`
	MemberAccountNumber     string          `json:"memberAccountNumber"`
	SettlementAccountNumber string          `json:"settlementAccountNumber"`
	Balance                 decimal.Decimal `json:"balance"`
	ClosingFee              decimal.Decimal `json:"closingFee"`
	FeeAccountNumber        string          `json:"feeAccountNumber,omitempty"`
	Currency                string          `json:"currency"`
}

func (c *CashInitialization) DataType() CommandDataType      { return AddCashInitializationCommand }
func (c *TransferToMember) DataType() CommandDataType        { return AddTransferEventCommand }
func (c *TransferToNonMember) DataType() CommandDataType     { return AddTransferToNonMemberEventCommand }
func (c *WithdrawalTransfer) DataType() CommandDataType      { return AddWithdrawalTransferEventCommand }
func (c *AutoPostingEvent) DataType() CommandDataType        { return AutoPostingEventCommand }
func (c *LoanApprovalPosting) DataType() CommandDataType     { return LoanApprovalPostingCommand }
func (c *AccountPosting) DataType() CommandDataType          { return MakeAccountPostingCommand }
func (c *LoanDisbursementPosting) DataType() CommandDataType { return LoanDisbursementPostingCommand }
func (c *AccountingEntryReversal) DataType() CommandDataType { return ReverseAccountingEntryCommand }
func (c *MemberAccountClosure) DataType() CommandDataType    { return ClosingOfMemberAccountCommand }

func (c *CashInitialization) Reference() string      { return c.TransactionReferenceID }
func (c *TransferToMember) Reference() string        { return c.TransactionReferenceID }
func (c *TransferToNonMember) Reference() string     { return c.TransactionReferenceID }
func (c *WithdrawalTransfer) Reference() string      { return c.TransactionReferenceID }
func (c *AutoPostingEvent) Reference() string        { return c.TransactionReferenceID }
func (c *LoanApprovalPosting) Reference() string     { return c.TransactionReferenceID }
func (c *AccountPosting) Reference() string          { return c.TransactionReferenceID }
func (c *LoanDisbursementPosting) Reference() string { return c.TransactionReferenceID }
func (c *AccountingEntryReversal) Reference() string { return c.TransactionReferenceID }
func (c *MemberAccountClosure) Reference() string    { return c.TransactionReferenceID }
