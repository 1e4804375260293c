package payment

import (
	"context"

	"github.com/yourorg/checkout-orchestrator/internal/action"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
)

// ActionCreator builds payment submission thunks.
type ActionCreator struct {
	sender      Sender
	transformer *Transformer
}

// NewActionCreator creates an ActionCreator.
func NewActionCreator(sender Sender, transformer *Transformer) *ActionCreator {
	if transformer == nil {
		transformer = NewTransformer()
	}
	return &ActionCreator{sender: sender, transformer: transformer}
}

// SubmitPayment transforms p against the current state and submits it.
func (c *ActionCreator) SubmitPayment(p Payment) checkout.Thunk {
	return func(ctx context.Context, store checkout.ReadableStore, emit action.Emitter) error {
		meta := action.Meta{MethodID: p.MethodID, GatewayID: p.GatewayID}
		emit(action.New(action.SubmitPaymentRequested, nil, meta))

		body, err := c.transformer.Transform(p, store.GetState())
		if err != nil {
			return action.Fail(emit, action.SubmitPaymentFailed, err, meta)
		}
		return c.send(ctx, body, meta, emit)
	}
}

// SubmitHostedPayment submits card data collected by a hosted form.
func (c *ActionCreator) SubmitHostedPayment(values map[HostedFieldType]string, data HostedFormOrderData, nonce string, additional *AdditionalAction) checkout.Thunk {
	return func(ctx context.Context, _ checkout.ReadableStore, emit action.Emitter) error {
		var meta action.Meta
		if data.PaymentMethod != nil {
			meta = action.Meta{MethodID: data.PaymentMethod.ID, GatewayID: data.PaymentMethod.Gateway}
		}
		emit(action.New(action.SubmitPaymentRequested, nil, meta))

		body := c.transformer.TransformWithHostedFormData(values, data, nonce, additional)
		return c.send(ctx, body, meta, emit)
	}
}

func (c *ActionCreator) send(ctx context.Context, body RequestBody, meta action.Meta, emit action.Emitter) error {
	resp, err := c.sender.SubmitPayment(ctx, body)
	if err != nil {
		return action.Fail(emit, action.SubmitPaymentFailed, err, meta)
	}
	emit(action.New(action.SubmitPaymentSucceeded, &checkout.PaymentSubmitted{ID: resp.ID, Status: resp.Status}, meta))
	return nil
}
