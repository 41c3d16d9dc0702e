package funding

import "errors"

// Validation errors: rejected synchronously, no state change.
var (
	ErrInvalidAmounts  = errors.New("max target must be greater than min target")
	ErrInvalidWindow   = errors.New("invalid funding window")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidAsset    = errors.New("source asset is not set")
	ErrInvalidIdentity = errors.New("identity is not set")
)

// Authorization errors: wrong caller for a privileged operation.
var ErrUnauthorized = errors.New("caller is not authorized")

// State errors: operation invalid for the current lifecycle phase.
var (
	ErrUnknownProposal    = errors.New("unknown proposal")
	ErrAlreadyReviewed    = errors.New("proposal already reviewed")
	ErrNotActive          = errors.New("funding window is not active")
	ErrTargetExceeded     = errors.New("contribution would exceed max target")
	ErrAlreadyClaimed     = errors.New("funds already claimed")
	ErrNotEnded           = errors.New("funding window has not ended")
	ErrTargetNotReached   = errors.New("min target not reached")
	ErrCampaignSuccessful = errors.New("campaign reached its target, refunds are closed")
	ErrNoContribution     = errors.New("no contribution to refund")
)

// ErrReentrantCall is returned when a mutating call arrives while another
// mutating call on the same ledger is inside its asset-transfer step.
var ErrReentrantCall = errors.New("ledger is busy with another settlement call")

// ErrTransferFailed wraps asset-transfer collaborator failures. The calling
// operation rolls back every mutation it made before the transfer.
var ErrTransferFailed = errors.New("asset transfer failed")
