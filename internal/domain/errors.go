package domain

import "errors"

// Kind classifies a failure so callers can react without matching messages.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindState         Kind = "state"
	KindResource      Kind = "resource"
	KindTemporal      Kind = "temporal"
	KindNotFound      Kind = "not_found"
)

// Error is a classified escrow failure. Values are compared by identity, so
// every exported Err* below is a distinct sentinel usable with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrInvalidLedger      = newError(KindValidation, "invalid_ledger", "Invalid token ledger")
	ErrInvalidOwner       = newError(KindValidation, "invalid_owner", "Invalid owner address")
	ErrInvalidScientist   = newError(KindValidation, "invalid_scientist", "Invalid scientist address")
	ErrInvalidAddress     = newError(KindValidation, "invalid_address", "Invalid address")
	ErrInvalidGoal        = newError(KindValidation, "invalid_goal", "Goal must be > 0")
	ErrInvalidDuration    = newError(KindValidation, "invalid_duration", "Duration must be > 0")
	ErrInvalidAmount      = newError(KindValidation, "invalid_amount", "Amount must be > 0")
	ErrAmountTooSmall     = newError(KindValidation, "amount_too_small", "Amount too small")
	ErrAmountOverflow     = newError(KindValidation, "amount_overflow", "Amount overflows ledger range")
	ErrDescriptionMissing = newError(KindValidation, "description_required", "Description required")
	ErrInvalidMilestone   = newError(KindValidation, "invalid_milestone", "Invalid milestone")
	ErrInvalidThreshold   = newError(KindValidation, "invalid_threshold", "Vote threshold must be within 1..10000")
	ErrInvalidInput       = newError(KindValidation, "invalid_input", "Invalid input")

	ErrOnlyOwner    = newError(KindAuthorization, "only_owner", "Only owner can call")
	ErrUnauthorized = newError(KindAuthorization, "unauthorized", "Caller identity required")

	ErrPaused            = newError(KindState, "paused", "Contract is paused")
	ErrNotPaused         = newError(KindState, "not_paused", "Contract is not paused")
	ErrAlreadyCompleted  = newError(KindState, "already_completed", "Already completed")
	ErrNotCompleted      = newError(KindState, "milestone_not_completed", "Milestone not completed")
	ErrAlreadyReleased   = newError(KindState, "already_released", "Already released")
	ErrAlreadyVoted      = newError(KindState, "already_voted", "Already voted")
	ErrNoVotingPower     = newError(KindState, "no_voting_power", "No voting power")
	ErrVotingClosed      = newError(KindState, "voting_closed", "Voting closed")
	ErrVoteNotPassed     = newError(KindState, "vote_not_passed", "Vote not passed")
	ErrCannotRefund      = newError(KindState, "cannot_refund", "Cannot refund")
	ErrNoDonation        = newError(KindState, "no_donation", "No donation to refund")
	ErrAlreadyRefunded   = newError(KindState, "already_refunded", "Already refunded")
	ErrAlreadyFailed     = newError(KindState, "already_failed", "Already failed")
	ErrProjectFailed     = newError(KindState, "project_failed", "Project failed")
	ErrProjectClosed     = newError(KindState, "project_closed", "Project closed")
	ErrInvalidTransition = newError(KindState, "invalid_transition", "Invalid status transition")

	ErrInsufficientBalance   = newError(KindResource, "insufficient_balance", "Insufficient balance")
	ErrInsufficientAllowance = newError(KindResource, "insufficient_allowance", "Insufficient allowance")
	ErrTransferFailed        = newError(KindResource, "transfer_failed", "Token transfer failed")

	ErrFundingEnded     = newError(KindTemporal, "funding_ended", "Funding ended")
	ErrRefundNotAllowed = newError(KindTemporal, "refund_not_available", "Cannot refund before funding fails")

	ErrNotFound = newError(KindNotFound, "not_found", "not found")
)

// KindOf returns the classification of err, or "" when err is not an escrow
// failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the stable machine code carried by err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
