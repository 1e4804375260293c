package strategy

import (
	"context"

	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/integration"
	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
)

// RegisterBuiltins registers the no-payment-data, credit card and offsite
// strategies, all acting through svc.
func RegisterBuiltins(r *Registry, svc integration.Service) {
	r.Register(NoPaymentDataRequired, func() (PaymentStrategy, error) {
		return &noPaymentDataRequiredStrategy{svc: svc}, nil
	})
	r.Register(CreditCard, func() (PaymentStrategy, error) {
		return &creditCardStrategy{svc: svc}, nil
	})
	r.Register(Offsite, func() (PaymentStrategy, error) {
		return &offsiteStrategy{svc: svc}, nil
	})
}

// noPaymentDataRequiredStrategy places orders covered entirely by store
// credit or with nothing outstanding.
type noPaymentDataRequiredStrategy struct {
	svc integration.Service
}

func (s *noPaymentDataRequiredStrategy) Initialize(context.Context, payment.InitializeOptions) error {
	return nil
}

func (s *noPaymentDataRequiredStrategy) Execute(ctx context.Context, payload order.RequestBody, _ payment.RequestOptions) error {
	body := payload
	body.Payment = nil
	return s.svc.SubmitOrder(ctx, &body)
}

func (s *noPaymentDataRequiredStrategy) Finalize(context.Context, payment.RequestOptions) error {
	return nil
}

func (s *noPaymentDataRequiredStrategy) Deinitialize(context.Context, payment.RequestOptions) error {
	return nil
}

// creditCardStrategy submits the order and then the card payment.
type creditCardStrategy struct {
	svc integration.Service
}

func (s *creditCardStrategy) Initialize(context.Context, payment.InitializeOptions) error {
	return nil
}

func (s *creditCardStrategy) Execute(ctx context.Context, payload order.RequestBody, _ payment.RequestOptions) error {
	if payload.Payment == nil {
		return s.svc.SubmitOrder(ctx, &payload)
	}

	p := *payload.Payment
	orderBody := payload
	orderBody.Payment = &payment.OrderPaymentRequestBody{MethodID: p.MethodID, GatewayID: p.GatewayID}
	if err := s.svc.SubmitOrder(ctx, &orderBody); err != nil {
		return err
	}

	return s.svc.SubmitPayment(ctx, payment.Payment{
		MethodID:    p.MethodID,
		GatewayID:   p.GatewayID,
		PaymentData: p.PaymentData,
	})
}

func (s *creditCardStrategy) Finalize(context.Context, payment.RequestOptions) error {
	return apperr.ErrOrderFinalizationNotRequired
}

func (s *creditCardStrategy) Deinitialize(context.Context, payment.RequestOptions) error {
	return nil
}

// offsiteStrategy hands the shopper to a hosted payment page; the payment
// submission carries no card data.
type offsiteStrategy struct {
	svc integration.Service
}

func (s *offsiteStrategy) Initialize(context.Context, payment.InitializeOptions) error {
	return nil
}

func (s *offsiteStrategy) Execute(ctx context.Context, payload order.RequestBody, opts payment.RequestOptions) error {
	methodID, gatewayID := opts.MethodID, opts.GatewayID
	if payload.Payment != nil {
		methodID, gatewayID = payload.Payment.MethodID, payload.Payment.GatewayID
	}

	orderBody := payload
	orderBody.Payment = &payment.OrderPaymentRequestBody{MethodID: methodID, GatewayID: gatewayID}
	if err := s.svc.SubmitOrder(ctx, &orderBody); err != nil {
		return err
	}

	return s.svc.SubmitPayment(ctx, payment.Payment{MethodID: methodID, GatewayID: gatewayID})
}

// Finalize completes the order once the hosted page has acknowledged the
// payment.
func (s *offsiteStrategy) Finalize(ctx context.Context, _ payment.RequestOptions) error {
	state := s.svc.GetState()
	o := state.GetOrder()
	if o == nil {
		return apperr.ErrOrderFinalizationNotRequired
	}
	switch state.GetPaymentStatus() {
	case checkout.PaymentStatusAcknowledge, checkout.PaymentStatusFinalize:
		return s.svc.FinalizeOrder(ctx, o.OrderID)
	}
	return apperr.ErrOrderFinalizationNotRequired
}

func (s *offsiteStrategy) Deinitialize(context.Context, payment.RequestOptions) error {
	return nil
}
