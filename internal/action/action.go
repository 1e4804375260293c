// Package action defines the tagged records that drive the checkout store.
// Every orchestrated operation produces a short, ordered sequence of actions:
// a Requested action followed by exactly one Succeeded or Failed action.
package action

import (
	"errors"
	"fmt"
)

// Type identifies a state transition event.
type Type string

// Payment strategy lifecycle actions.
const (
	InitializeRequested Type = "PAYMENT_STRATEGY_INITIALIZE_REQUESTED"
	InitializeSucceeded Type = "PAYMENT_STRATEGY_INITIALIZE_SUCCEEDED"
	InitializeFailed    Type = "PAYMENT_STRATEGY_INITIALIZE_FAILED"

	ExecuteRequested Type = "PAYMENT_STRATEGY_EXECUTE_REQUESTED"
	ExecuteSucceeded Type = "PAYMENT_STRATEGY_EXECUTE_SUCCEEDED"
	ExecuteFailed    Type = "PAYMENT_STRATEGY_EXECUTE_FAILED"

	FinalizeRequested Type = "PAYMENT_STRATEGY_FINALIZE_REQUESTED"
	FinalizeSucceeded Type = "PAYMENT_STRATEGY_FINALIZE_SUCCEEDED"
	FinalizeFailed    Type = "PAYMENT_STRATEGY_FINALIZE_FAILED"

	DeinitializeRequested Type = "PAYMENT_STRATEGY_DEINITIALIZE_REQUESTED"
	DeinitializeSucceeded Type = "PAYMENT_STRATEGY_DEINITIALIZE_SUCCEEDED"
	DeinitializeFailed    Type = "PAYMENT_STRATEGY_DEINITIALIZE_FAILED"

	WidgetInteractionStarted  Type = "PAYMENT_STRATEGY_WIDGET_INTERACTION_STARTED"
	WidgetInteractionFinished Type = "PAYMENT_STRATEGY_WIDGET_INTERACTION_FINISHED"
	WidgetInteractionFailed   Type = "PAYMENT_STRATEGY_WIDGET_INTERACTION_FAILED"
)

// Collaborator actions.
const (
	LoadOrderPaymentsRequested Type = "LOAD_ORDER_PAYMENTS_REQUESTED"
	LoadOrderPaymentsSucceeded Type = "LOAD_ORDER_PAYMENTS_SUCCEEDED"
	LoadOrderPaymentsFailed    Type = "LOAD_ORDER_PAYMENTS_FAILED"

	SubmitOrderRequested Type = "SUBMIT_ORDER_REQUESTED"
	SubmitOrderSucceeded Type = "SUBMIT_ORDER_SUCCEEDED"
	SubmitOrderFailed    Type = "SUBMIT_ORDER_FAILED"

	FinalizeOrderRequested Type = "FINALIZE_ORDER_REQUESTED"
	FinalizeOrderSucceeded Type = "FINALIZE_ORDER_SUCCEEDED"
	FinalizeOrderFailed    Type = "FINALIZE_ORDER_FAILED"

	VerifyCheckoutRequested Type = "VERIFY_CHECKOUT_SPAM_PROTECTION_REQUESTED"
	VerifyCheckoutSucceeded Type = "VERIFY_CHECKOUT_SPAM_PROTECTION_SUCCEEDED"
	VerifyCheckoutFailed    Type = "VERIFY_CHECKOUT_SPAM_PROTECTION_FAILED"

	SubmitPaymentRequested Type = "SUBMIT_PAYMENT_REQUESTED"
	SubmitPaymentSucceeded Type = "SUBMIT_PAYMENT_SUCCEEDED"
	SubmitPaymentFailed    Type = "SUBMIT_PAYMENT_FAILED"

	LoadPaymentMethodsRequested Type = "LOAD_PAYMENT_METHODS_REQUESTED"
	LoadPaymentMethodsSucceeded Type = "LOAD_PAYMENT_METHODS_SUCCEEDED"
	LoadPaymentMethodsFailed    Type = "LOAD_PAYMENT_METHODS_FAILED"
)

// Meta carries correlation data. MethodID is set on every payment strategy action.
type Meta struct {
	MethodID  string `json:"methodId,omitempty"`
	GatewayID string `json:"gatewayId,omitempty"`
	OrderID   int64  `json:"orderId,omitempty"`
}

// Action is a single state transition event.
type Action struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload,omitempty"`
	Meta    Meta `json:"meta"`
	Error   bool `json:"error,omitempty"`
}

// New creates a non-error action.
func New(t Type, payload any, meta Meta) Action {
	return Action{Type: t, Payload: payload, Meta: meta}
}

// NewError creates a Failed action carrying err verbatim as its payload.
func NewError(t Type, err error, meta Meta) Action {
	return Action{Type: t, Payload: err, Meta: meta, Error: true}
}

// Err returns the error carried by a failed action, or nil.
func (a Action) Err() error {
	if !a.Error {
		return nil
	}
	if err, ok := a.Payload.(error); ok {
		return err
	}
	return fmt.Errorf("action %s failed", a.Type)
}

// Emitter receives each action as it is produced. Implementations must apply
// the action before returning so producers can re-read state afterwards.
type Emitter func(Action)

// FailedError is returned by a thunk whose stream ended with a Failed action.
// It unwraps to the original error.
type FailedError struct {
	Action Action
}

// Fail emits a Failed action for err and returns it as a FailedError. When err
// is itself the result of a nested failed stream, the new action carries the
// nested cause rather than the nested action.
func Fail(emit Emitter, t Type, err error, meta Meta) error {
	a := NewError(t, Cause(err), meta)
	emit(a)
	return &FailedError{Action: a}
}

func (e *FailedError) Error() string {
	cause := e.Action.Err()
	if cause == nil {
		return string(e.Action.Type)
	}
	return fmt.Sprintf("%s: %v", e.Action.Type, cause)
}

func (e *FailedError) Unwrap() error {
	return e.Action.Err()
}

// FailedAction extracts the terminal Failed action from err, if any.
func FailedAction(err error) (Action, bool) {
	var fe *FailedError
	if errors.As(err, &fe) {
		return fe.Action, true
	}
	return Action{}, false
}

// Cause strips FailedError layers and returns the error that started the
// failure.
func Cause(err error) error {
	for {
		var fe *FailedError
		if !errors.As(err, &fe) {
			return err
		}
		cause := fe.Action.Err()
		if cause == nil {
			return err
		}
		err = cause
	}
}
