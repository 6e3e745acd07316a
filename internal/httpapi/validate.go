package httpapi

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/solana-zh/dlmm-quote-engine/pkg/traits"
)

// ErrInvalidRequest marks a POST /quote request rejected at the
// boundary before it ever reaches the routing/pricing core (spec §7,
// "InvalidRequest — raised early; never reaches the simulator").
var ErrInvalidRequest = errors.New("invalid request")

// validateQuoteRequest checks the boundary validation order DESIGN.md
// documents: identical tokens, then unsupported tokens, then an
// unparseable or negative amount. It returns the parsed amount_in on
// success, or an error wrapping ErrInvalidRequest (testable with
// errors.Is) describing the first failure found.
func validateQuoteRequest(req QuoteRequest) (decimal.Decimal, error) {
	if req.InputToken == req.OutputToken {
		return decimal.Decimal{}, fmt.Errorf("%w: input and output tokens must be different", ErrInvalidRequest)
	}
	if !traits.IsSupportedToken(req.InputToken) {
		return decimal.Decimal{}, fmt.Errorf("%w: unsupported input token: %s", ErrInvalidRequest, req.InputToken)
	}
	if !traits.IsSupportedToken(req.OutputToken) {
		return decimal.Decimal{}, fmt.Errorf("%w: unsupported output token: %s", ErrInvalidRequest, req.OutputToken)
	}
	amountIn, err := decimal.NewFromString(req.AmountIn)
	if err != nil || amountIn.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid amount_in: %s", ErrInvalidRequest, req.AmountIn)
	}
	return amountIn, nil
}
