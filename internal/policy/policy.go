// Package policy decides whether a checkout still needs payment data and
// whether it must pass spam protection before an order is placed.
package policy

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"

	"github.com/yourorg/checkout-orchestrator/internal/checkout"
)

// DefaultPaymentDataRequired is the rule used when none is configured.
const DefaultPaymentDataRequired = "outstanding_balance - applied_store_credit > 0"

// Parameters available to a payment requirement rule.
const (
	ParamGrandTotal         = "grand_total"
	ParamOutstandingBalance = "outstanding_balance"
	ParamStoreCredit        = "store_credit"
	ParamAppliedStoreCredit = "applied_store_credit"
	ParamUseStoreCredit     = "use_store_credit"
)

// Policy evaluates a compiled payment requirement rule against checkout state.
type Policy struct {
	expression string
	compiled   *govaluate.EvaluableExpression
}

// New compiles expression. An empty expression selects DefaultPaymentDataRequired.
func New(expression string) (*Policy, error) {
	if expression == "" {
		expression = DefaultPaymentDataRequired
	}
	compiled, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to compile payment requirement rule %q: %w", expression, err)
	}
	return &Policy{expression: expression, compiled: compiled}, nil
}

// Default returns the policy for DefaultPaymentDataRequired.
func Default() *Policy {
	p, err := New(DefaultPaymentDataRequired)
	if err != nil {
		panic(err)
	}
	return p
}

// Expression returns the rule source.
func (p *Policy) Expression() string { return p.expression }

// PaymentDataRequired reports whether the shopper must provide payment data.
// With useStoreCredit set, the customer's store credit is deducted from the
// outstanding balance first. A state with no checkout requires nothing.
func (p *Policy) PaymentDataRequired(state checkout.State, useStoreCredit bool) (bool, error) {
	c := state.GetCheckout()
	if c == nil {
		return false, nil
	}

	credit := 0.0
	if customer := state.GetCustomer(); customer != nil {
		credit = customer.StoreCredit
	}
	applied := 0.0
	if useStoreCredit {
		applied = math.Min(credit, c.OutstandingBalance)
	}

	result, err := p.compiled.Evaluate(map[string]interface{}{
		ParamGrandTotal:         c.GrandTotal,
		ParamOutstandingBalance: c.OutstandingBalance,
		ParamStoreCredit:        credit,
		ParamAppliedStoreCredit: applied,
		ParamUseStoreCredit:     useStoreCredit,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate payment requirement rule %q: %w", p.expression, err)
	}

	required, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("payment requirement rule %q returned %T, want bool", p.expression, result)
	}
	return required, nil
}

// ShouldExecuteSpamCheck reports whether the checkout is flagged for spam
// protection.
func ShouldExecuteSpamCheck(state checkout.State) bool {
	c := state.GetCheckout()
	return c != nil && c.ShouldExecuteSpamCheck
}
