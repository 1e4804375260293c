package checkout

import (
	"maps"
	"slices"

	"github.com/yourorg/checkout-orchestrator/internal/action"
)

// Reduce returns the snapshot that follows s after a. It never mutates s.
func Reduce(s State, a action.Action) State {
	switch a.Type {
	case action.InitializeRequested:
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) {
			st.InitializingMethodID = a.Meta.MethodID
		})
		return s
	case action.InitializeSucceeded:
		s.Strategies = setInitialized(s.Strategies, a.Meta.MethodID, true)
		s.Strategies = clearError(s.Strategies, "initialize")
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) { st.InitializingMethodID = "" })
		return s
	case action.InitializeFailed:
		s.Strategies = recordError(s.Strategies, "initialize", a)
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) { st.InitializingMethodID = "" })
		return s

	case action.DeinitializeRequested:
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) {
			st.DeinitializingMethodID = a.Meta.MethodID
		})
		return s
	case action.DeinitializeSucceeded:
		s.Strategies = setInitialized(s.Strategies, a.Meta.MethodID, false)
		s.Strategies = clearError(s.Strategies, "deinitialize")
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) { st.DeinitializingMethodID = "" })
		return s
	case action.DeinitializeFailed:
		s.Strategies = recordError(s.Strategies, "deinitialize", a)
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) { st.DeinitializingMethodID = "" })
		return s

	case action.ExecuteRequested:
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) {
			st.IsExecuting = true
			st.ExecutingMethodID = a.Meta.MethodID
		})
		return s
	case action.ExecuteSucceeded, action.ExecuteFailed:
		if a.Error {
			s.Strategies = recordError(s.Strategies, "execute", a)
		} else {
			s.Strategies = clearError(s.Strategies, "execute")
		}
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) {
			st.IsExecuting = false
			st.ExecutingMethodID = ""
		})
		return s

	case action.FinalizeRequested:
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) {
			st.IsFinalizing = true
			st.FinalizingMethodID = a.Meta.MethodID
		})
		return s
	case action.FinalizeSucceeded, action.FinalizeFailed:
		if a.Error {
			s.Strategies = recordError(s.Strategies, "finalize", a)
		} else {
			s.Strategies = clearError(s.Strategies, "finalize")
		}
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) {
			st.IsFinalizing = false
			st.FinalizingMethodID = ""
		})
		return s

	case action.WidgetInteractionStarted:
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) { st.IsWidgetInteracting = true })
		return s
	case action.WidgetInteractionFinished, action.WidgetInteractionFailed:
		if a.Error {
			s.Strategies = recordError(s.Strategies, "widget", a)
		}
		s.Strategies = reduceStatus(s.Strategies, func(st *StrategyStatus) { st.IsWidgetInteracting = false })
		return s

	case action.LoadOrderPaymentsSucceeded:
		if order, ok := a.Payload.(*Order); ok && order != nil {
			s.Order = order
			s.Payment.ID = nil
		}
		return s

	case action.FinalizeOrderSucceeded:
		if o, ok := a.Payload.(*Order); ok && o != nil {
			s.Order = o
		}
		return s

	case action.SubmitOrderSucceeded:
		if submitted, ok := a.Payload.(*OrderSubmitted); ok && submitted != nil {
			if submitted.Order != nil {
				s.Order = submitted.Order
				if s.Checkout != nil {
					c := *s.Checkout
					c.OrderID = submitted.Order.OrderID
					s.Checkout = &c
				}
			}
			if submitted.PaymentToken != "" {
				s.Payment.Token = submitted.PaymentToken
			}
		}
		return s

	case action.SubmitPaymentSucceeded:
		if submitted, ok := a.Payload.(*PaymentSubmitted); ok && submitted != nil {
			s.Payment.Status = submitted.Status
		}
		return s

	case action.VerifyCheckoutSucceeded:
		if c, ok := a.Payload.(*Checkout); ok && c != nil {
			s.Checkout = c
		} else if s.Checkout != nil {
			c := *s.Checkout
			c.ShouldExecuteSpamCheck = false
			s.Checkout = &c
		}
		return s

	case action.LoadPaymentMethodsSucceeded:
		switch p := a.Payload.(type) {
		case []PaymentMethod:
			s.PaymentMethods = slices.Clone(p)
		case *PaymentMethodsLoaded:
			s.PaymentMethods = slices.Clone(p.Methods)
			if p.Meta != nil {
				meta := *p.Meta
				s.PaymentMethodsMeta = &meta
			}
		}
		return s
	}
	return s
}

func setInitialized(st StrategiesState, methodID string, initialized bool) StrategiesState {
	next := maps.Clone(st.Initialized)
	if next == nil {
		next = make(map[string]bool)
	}
	next[methodID] = initialized
	st.Initialized = next
	return st
}

func reduceStatus(st StrategiesState, fn func(*StrategyStatus)) StrategiesState {
	status := st.Status
	fn(&status)
	st.Status = status
	return st
}

func recordError(st StrategiesState, op string, a action.Action) StrategiesState {
	next := maps.Clone(st.Errors)
	if next == nil {
		next = make(map[string]StrategyError)
	}
	e := StrategyError{MethodID: a.Meta.MethodID}
	if err := a.Err(); err != nil {
		e.err = err
		e.Message = err.Error()
	}
	next[op] = e
	st.Errors = next
	return st
}

func clearError(st StrategiesState, op string) StrategiesState {
	if _, ok := st.Errors[op]; !ok {
		return st
	}
	next := maps.Clone(st.Errors)
	delete(next, op)
	st.Errors = next
	return st
}
