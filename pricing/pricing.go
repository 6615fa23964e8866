// Package pricing computes the exact amount a creator must escrow
// before a bounty exists: the fixed platform fee plus every valid
// prize tier, converted once from human-unit decimal strings to the
// asset's smallest units. All arithmetic past the parse is big.Int;
// float accumulation never touches an amount.
//
// Rounding policy: half-up (shopspring's Round, half away from zero —
// identical for the non-negative amounts allowed here). Client and
// server must agree bit-for-bit, so the policy is fixed here and
// nowhere else.
package pricing

import (
	"math/big"

	"github.com/shopspring/decimal"

	"bounty-board/config"
	"bounty-board/types"
)

// Calculator is an immutable pricing fixture: fee, asset terms and the
// requirement template are injected at construction so the same tiers
// always price to the same requirement, request after request.
type Calculator struct {
	feeUnits       *big.Int
	decimals       int32
	network        string
	payTo          string
	asset          string
	timeoutSeconds int
}

// NewCalculator parses the configured creation fee once. A malformed
// fee is a startup error.
func NewCalculator(cfg *config.Config) (*Calculator, error) {
	feeUnits, ok := ParseUnits(cfg.CreationFee, cfg.AssetDecimals)
	if !ok {
		return nil, types.NewError(types.CodeValidation, "creation fee is not a valid non-negative amount")
	}
	return &Calculator{
		feeUnits:       feeUnits,
		decimals:       cfg.AssetDecimals,
		network:        cfg.Network,
		payTo:          cfg.PlatformWallet,
		asset:          cfg.AssetAddress,
		timeoutSeconds: int(cfg.PayTimeout.Seconds()),
	}, nil
}

// RequiredAmount sums the fee and every valid tier in smallest units.
// Tiers with non-numeric or negative amounts are dropped from both the
// sum and the returned list; they must never reach the store. Dropping
// every tier leaves just the fee, which is a legal "tip only" bounty.
func (c *Calculator) RequiredAmount(tiers []types.PrizeTier) (*big.Int, []types.PrizeTier) {
	total := new(big.Int).Set(c.feeUnits)
	valid := make([]types.PrizeTier, 0, len(tiers))

	for _, tier := range tiers {
		units, ok := ParseUnits(tier.Amount, c.decimals)
		if !ok {
			continue
		}
		total.Add(total, units)
		valid = append(valid, tier)
	}

	return total, valid
}

// Requirement builds the payment requirement for a creation request.
// The 402 challenge and the later verification both call this with the
// same tiers, so the two legs of the flow can never quote different
// amounts.
func (c *Calculator) Requirement(tiers []types.PrizeTier) (types.PaymentRequirements, []types.PrizeTier) {
	total, valid := c.RequiredAmount(tiers)
	return types.PaymentRequirements{
		Scheme:            types.SchemeExact,
		Network:           c.network,
		MaxAmountRequired: total.String(),
		PayTo:             c.payTo,
		Asset:             c.asset,
		MaxTimeoutSeconds: c.timeoutSeconds,
	}, valid
}

// ParseUnits converts one human-unit decimal string to an integer in
// 10^-decimals units under the package rounding policy. The payout
// executor uses it too (with the native asset's 18 decimals), so every
// amount in the system is converted by the same function.
func ParseUnits(amount string, decimals int32) (*big.Int, bool) {
	d, err := decimal.NewFromString(amount)
	if err != nil || d.IsNegative() {
		return nil, false
	}
	return d.Shift(decimals).Round(0).BigInt(), true
}
