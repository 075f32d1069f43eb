package consts

import "time"

const (
	// Audit severities
	SeverityInformation = "Information"
	SeverityWarning     = "Warning"
	SeverityError       = "Error"

	// Per-item outcomes
	OutcomeReconciled           = "reconciled"
	OutcomeReplayed             = "replayed"
	OutcomeRejected             = "rejected"
	OutcomeReconstructionFailed = "reconstruction_failed"
	OutcomeDispatchFailed       = "dispatch_failed"
	OutcomeSkipped              = "skipped"
	OutcomeDeadLettered         = "dead_lettered"

	// Posting directions
	DirectionDebit  = "DEBIT"
	DirectionCredit = "CREDIT"

	// Item source kinds
	ItemSourceDatabase = "database"
	ItemSourceHTTP     = "http"

	// Default config
	DefaultPollInterval      = 5 * time.Minute
	DefaultDegradedThreshold = 24 * time.Hour
	DefaultPageNumber        = 1
	DefaultPageSize          = 100
	DefaultMaxRetry          = 0
	DefaultFailFastAfter     = 1
	DefaultHTTPPort          = "8080"
	DefaultSourceTimeout     = 30 * time.Second
	DefaultAuditLogLimit     = 50

	// Token refresh margin before the reported expiry
	TokenExpirySkew = 30 * time.Second

	SystemOperator = "system"
)
