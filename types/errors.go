package types

import "errors"

// Verification failure reason codes, surfaced verbatim in the 400 body
// so the payer knows what to fix before re-paying.
const (
	// -----------------------------
	// RECEIPT LOOKUP
	// -----------------------------
	ReasonTransactionNotFound = "transaction_not_found"
	ReasonTransactionFailed   = "transaction_failed"

	// -----------------------------
	// TRANSFER CHECKS
	// -----------------------------
	ReasonNoTransferFound = "no_transfer_found"
	ReasonWrongRecipient  = "wrong_recipient"
	ReasonAmountMismatch  = "amount_mismatch"
)

// Error codes for the non-verification failure classes.
const (
	CodeValidation    = "validation_error"
	CodeAuthorization = "authorization_error"
	CodeStateConflict = "state_conflict"
	CodeNotFound      = "not_found"
	CodeExecution     = "execution_failure"
	CodeInternal      = "internal_error"
)

// Error is the service's typed error: a stable machine code plus a
// human message that goes into the response body.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds a typed error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// AsError unwraps err into a *Error when possible.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Payout precondition and execution errors. Each precondition failure
// is distinct so the caller can tell why nothing happened.
var (
	ErrBountyNotFound     = NewError(CodeNotFound, "bounty not found")
	ErrNotCreator         = NewError(CodeAuthorization, "only the bounty creator can select a winner")
	ErrBountyAlreadyPaid  = NewError(CodeStateConflict, "bounty has already been paid out")
	ErrSubmissionNotFound = NewError(CodeNotFound, "submission not found")
	ErrWinnerMismatch     = NewError(CodeAuthorization, "winner address does not match submission")
)
