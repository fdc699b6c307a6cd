// Package payment abstracts the payment processor behind a small capability
// interface so controllers never depend on a concrete gateway.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Charge describes one authorization attempt against a gateway.
type Charge struct {
	OrderNumber string
	Amount      decimal.Decimal
	Method      string
	Email       string
	Phone       string
}

// Result is the gateway's answer to a charge.
type Result struct {
	Approved    bool
	Reference   string
	RedirectURL string
	Reason      string
}

// Gateway authorizes charges. Implementations: HTTPGateway for a hosted
// processor, SimulatedGateway as the deterministic development double.
type Gateway interface {
	Authorize(ctx context.Context, charge Charge) (Result, error)
}
