// Package reporting summarizes the action journal of a checkout store.
package reporting

import (
	"github.com/yourorg/checkout-orchestrator/internal/action"
	"github.com/yourorg/checkout-orchestrator/internal/apperr"
)

// Phase is the position of an action within its operation's stream.
type Phase string

const (
	PhaseRequested Phase = "requested"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

type classification struct {
	operation string
	phase     Phase
}

var classifications = map[action.Type]classification{
	action.InitializeRequested: {"initialize", PhaseRequested},
	action.InitializeSucceeded: {"initialize", PhaseSucceeded},
	action.InitializeFailed:    {"initialize", PhaseFailed},

	action.ExecuteRequested: {"execute", PhaseRequested},
	action.ExecuteSucceeded: {"execute", PhaseSucceeded},
	action.ExecuteFailed:    {"execute", PhaseFailed},

	action.FinalizeRequested: {"finalize", PhaseRequested},
	action.FinalizeSucceeded: {"finalize", PhaseSucceeded},
	action.FinalizeFailed:    {"finalize", PhaseFailed},

	action.DeinitializeRequested: {"deinitialize", PhaseRequested},
	action.DeinitializeSucceeded: {"deinitialize", PhaseSucceeded},
	action.DeinitializeFailed:    {"deinitialize", PhaseFailed},

	action.WidgetInteractionStarted:  {"widget_interaction", PhaseRequested},
	action.WidgetInteractionFinished: {"widget_interaction", PhaseSucceeded},
	action.WidgetInteractionFailed:   {"widget_interaction", PhaseFailed},

	action.LoadOrderPaymentsRequested: {"load_order_payments", PhaseRequested},
	action.LoadOrderPaymentsSucceeded: {"load_order_payments", PhaseSucceeded},
	action.LoadOrderPaymentsFailed:    {"load_order_payments", PhaseFailed},

	action.SubmitOrderRequested: {"submit_order", PhaseRequested},
	action.SubmitOrderSucceeded: {"submit_order", PhaseSucceeded},
	action.SubmitOrderFailed:    {"submit_order", PhaseFailed},

	action.FinalizeOrderRequested: {"finalize_order", PhaseRequested},
	action.FinalizeOrderSucceeded: {"finalize_order", PhaseSucceeded},
	action.FinalizeOrderFailed:    {"finalize_order", PhaseFailed},

	action.VerifyCheckoutRequested: {"verify_spam_protection", PhaseRequested},
	action.VerifyCheckoutSucceeded: {"verify_spam_protection", PhaseSucceeded},
	action.VerifyCheckoutFailed:    {"verify_spam_protection", PhaseFailed},

	action.SubmitPaymentRequested: {"submit_payment", PhaseRequested},
	action.SubmitPaymentSucceeded: {"submit_payment", PhaseSucceeded},
	action.SubmitPaymentFailed:    {"submit_payment", PhaseFailed},

	action.LoadPaymentMethodsRequested: {"load_payment_methods", PhaseRequested},
	action.LoadPaymentMethodsSucceeded: {"load_payment_methods", PhaseSucceeded},
	action.LoadPaymentMethodsFailed:    {"load_payment_methods", PhaseFailed},
}

// OperationStats counts the actions of one operation.
type OperationStats struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// RetrospectiveReport summarizes checkout activity from an action journal.
type RetrospectiveReport struct {
	TotalActions  int                        `json:"totalActions"`
	Operations    map[string]*OperationStats `json:"operations"`
	FailureKinds  map[string]int             `json:"failureKinds"` // apperr.Kind of each Failed action
	MethodUsage   map[string]int             `json:"methodUsage"`  // Requested actions per payment method
	BenignFailure int                        `json:"benignFailures"`
	Unclassified  int                        `json:"unclassified"`
}

// RetrospectiveReporter generates retrospective reports from action journals.
type RetrospectiveReporter struct{}

// NewRetrospectiveReporter creates a new RetrospectiveReporter.
func NewRetrospectiveReporter() *RetrospectiveReporter {
	return &RetrospectiveReporter{}
}

// GenerateRetrospective analyzes journal and produces a RetrospectiveReport.
func (rr *RetrospectiveReporter) GenerateRetrospective(journal []action.Action) *RetrospectiveReport {
	report := &RetrospectiveReport{
		Operations:   make(map[string]*OperationStats),
		FailureKinds: make(map[string]int),
		MethodUsage:  make(map[string]int),
	}

	for _, a := range journal {
		report.TotalActions++

		c, ok := classifications[a.Type]
		if !ok {
			report.Unclassified++
			continue
		}
		stats := report.Operations[c.operation]
		if stats == nil {
			stats = &OperationStats{}
			report.Operations[c.operation] = stats
		}

		switch c.phase {
		case PhaseRequested:
			stats.Requested++
			if a.Meta.MethodID != "" {
				report.MethodUsage[a.Meta.MethodID]++
			}
		case PhaseSucceeded:
			stats.Succeeded++
		case PhaseFailed:
			stats.Failed++
			err := a.Err()
			if apperr.IsBenign(err) {
				report.BenignFailure++
			}
			report.FailureKinds[apperr.Kind(err)]++
		}
	}

	return report
}
