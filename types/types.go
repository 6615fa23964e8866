// Package types holds the x402 protocol types shared by the payment
// gate, the verifier and the HTTP handlers.
package types

// X402Version is the protocol version this service speaks.
const X402Version = 1

// SchemeExact is the only payment scheme the board accepts: the paid
// amount must equal the required amount, no more, no less.
const SchemeExact = "exact"

// PaymentRequirements describes exactly what a client must pay before a
// guarded action is allowed.
type PaymentRequirements struct {
	// Scheme of the payment protocol, always "exact".
	Scheme string `json:"scheme"`

	// Network the payment must be made on (e.g. "base-sepolia").
	Network string `json:"network"`

	// MaxAmountRequired is the amount in atomic units of the asset.
	// Kept as a string because Go has no uint256.
	MaxAmountRequired string `json:"maxAmountRequired"`

	// PayTo is the platform wallet the payment must be sent to.
	PayTo string `json:"payTo"`

	// Asset is the ERC-20 contract the payment must move.
	Asset string `json:"asset"`

	// MaxTimeoutSeconds is how long the requirement stays actionable.
	MaxTimeoutSeconds int `json:"maxTimeoutSeconds,omitempty"`
}

// PaymentChallenge is the 402 response body. Accepts carries the
// requirement computed from the very request being challenged, never a
// cached one: the required amount depends on the declared prizes.
type PaymentChallenge struct {
	X402Version int                   `json:"x402Version"`
	Error       string                `json:"error"`
	Accepts     []PaymentRequirements `json:"accepts"`
}

// NewPaymentChallenge builds the standard challenge body around a
// freshly computed requirement.
func NewPaymentChallenge(req PaymentRequirements) PaymentChallenge {
	return PaymentChallenge{
		X402Version: X402Version,
		Error:       "Payment Required",
		Accepts:     []PaymentRequirements{req},
	}
}

// VerificationResult is the verifier's verdict on a claimed payment.
// It is transient: the reason is surfaced to the caller but never
// persisted.
type VerificationResult struct {
	Valid         bool   `json:"valid"`
	InvalidReason string `json:"invalidReason,omitempty"`
}

// Invalid builds a rejection with the given reason code.
func Invalid(reason string) *VerificationResult {
	return &VerificationResult{Valid: false, InvalidReason: reason}
}

// ValidResult builds an accepting result.
func ValidResult() *VerificationResult {
	return &VerificationResult{Valid: true}
}

// PrizeTier is one rank of a bounty's prize ladder. Amount stays a
// human-unit decimal string; conversion to atomic units happens only
// inside the pricing calculator.
type PrizeTier struct {
	Rank   int    `json:"rank"`
	Amount string `json:"amount"`
}

// PayoutResult is returned to the payout caller on success.
type PayoutResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash"`
	Winner  string `json:"winner"`
	Amount  string `json:"amount"`
}
