package order

import (
	"context"
	"fmt"

	"github.com/yourorg/checkout-orchestrator/internal/action"
	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
)

// Validator checks an outbound payload against a contract.
type Validator interface {
	Check(v any) error
}

// ActionCreator builds order thunks.
type ActionCreator struct {
	sender         RequestSender
	validator      Validator
	externalSource string
}

// Option configures an ActionCreator.
type Option func(*ActionCreator)

// WithValidator validates every submission before it is sent.
func WithValidator(v Validator) Option {
	return func(c *ActionCreator) { c.validator = v }
}

// WithExternalSource tags submissions with the embedding application.
func WithExternalSource(source string) Option {
	return func(c *ActionCreator) { c.externalSource = source }
}

// NewActionCreator creates an ActionCreator.
func NewActionCreator(sender RequestSender, opts ...Option) *ActionCreator {
	c := &ActionCreator{sender: sender}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadOrderPayments reloads the order with its payment records.
func (c *ActionCreator) LoadOrderPayments(orderID int64) checkout.Thunk {
	return func(ctx context.Context, _ checkout.ReadableStore, emit action.Emitter) error {
		meta := action.Meta{OrderID: orderID}
		emit(action.New(action.LoadOrderPaymentsRequested, nil, meta))

		o, err := c.sender.LoadOrderPayments(ctx, orderID)
		if err != nil {
			return action.Fail(emit, action.LoadOrderPaymentsFailed, err, meta)
		}

		emit(action.New(action.LoadOrderPaymentsSucceeded, o, meta))
		return nil
	}
}

// FinalizeOrder completes an order whose payment was confirmed asynchronously.
func (c *ActionCreator) FinalizeOrder(orderID int64) checkout.Thunk {
	return func(ctx context.Context, _ checkout.ReadableStore, emit action.Emitter) error {
		meta := action.Meta{OrderID: orderID}
		emit(action.New(action.FinalizeOrderRequested, nil, meta))

		o, err := c.sender.FinalizeOrder(ctx, orderID)
		if err != nil {
			return action.Fail(emit, action.FinalizeOrderFailed, err, meta)
		}

		emit(action.New(action.FinalizeOrderSucceeded, o, meta))
		return nil
	}
}

// SubmitOrder places the order for the current checkout.
func (c *ActionCreator) SubmitOrder(body *RequestBody) checkout.Thunk {
	return func(ctx context.Context, store checkout.ReadableStore, emit action.Emitter) error {
		var meta action.Meta
		if body != nil && body.Payment != nil {
			meta = action.Meta{MethodID: body.Payment.MethodID, GatewayID: body.Payment.GatewayID}
		}
		emit(action.New(action.SubmitOrderRequested, nil, meta))

		payload, err := c.buildPayload(store.GetState(), body)
		if err != nil {
			return action.Fail(emit, action.SubmitOrderFailed, err, meta)
		}

		if c.validator != nil {
			if err := c.validator.Check(payload); err != nil {
				return action.Fail(emit, action.SubmitOrderFailed, err, meta)
			}
		}

		submitted, err := c.sender.SubmitOrder(ctx, payload)
		if err != nil {
			return action.Fail(emit, action.SubmitOrderFailed, err, meta)
		}
		if submitted.Order != nil {
			meta.OrderID = submitted.Order.OrderID
		}

		emit(action.New(action.SubmitOrderSucceeded, submitted, meta))
		return nil
	}
}

func (c *ActionCreator) buildPayload(state checkout.State, body *RequestBody) (SubmitPayload, error) {
	co := state.GetCheckout()
	if co == nil {
		return SubmitPayload{}, apperr.NewMissingDataError(apperr.MissingCheckout)
	}
	if o := state.GetOrder(); o != nil && o.IsComplete {
		return SubmitPayload{}, fmt.Errorf("order %d is already complete", o.OrderID)
	}

	payload := SubmitPayload{
		CartID:          co.Cart.ID,
		CustomerMessage: co.CustomerMessage,
		ExternalSource:  c.externalSource,
	}
	if body != nil {
		payload.UseStoreCredit = body.UseStoreCredit
		payload.Payment = body.Payment
		if body.CustomerMessage != "" {
			payload.CustomerMessage = body.CustomerMessage
		}
	}
	return payload, nil
}
