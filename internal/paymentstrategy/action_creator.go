// Package paymentstrategy runs the payment strategy lifecycle (initialize,
// execute, finalize, deinitialize) as thunks against the checkout store.
// Every operation emits a Requested action followed by exactly one Succeeded
// or Failed action, except where a guard ends it before anything is emitted.
package paymentstrategy

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourorg/checkout-orchestrator/internal/action"
	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
	"github.com/yourorg/checkout-orchestrator/internal/policy"
	"github.com/yourorg/checkout-orchestrator/internal/strategy"
	"github.com/yourorg/checkout-orchestrator/internal/tracing"
)

const (
	opInitialize        = "initialize"
	opExecute           = "execute"
	opFinalize          = "finalize"
	opDeinitialize      = "deinitialize"
	opWidgetInteraction = "widget_interaction"
)

// OrderPaymentsLoader reloads an order with its payment records.
type OrderPaymentsLoader interface {
	LoadOrderPayments(orderID int64) checkout.Thunk
}

// SpamProtector verifies the checkout before an order is placed.
type SpamProtector interface {
	VerifyCheckoutSpamProtection() checkout.Thunk
}

// ActionCreator builds payment strategy lifecycle thunks.
type ActionCreator struct {
	resolver *strategy.Resolver
	orders   OrderPaymentsLoader
	spam     SpamProtector
	policy   *policy.Policy
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures an ActionCreator.
type Option func(*ActionCreator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *ActionCreator) { c.logger = l }
}

// WithPolicy replaces the default payment requirement policy.
func WithPolicy(p *policy.Policy) Option {
	return func(c *ActionCreator) { c.policy = p }
}

// NewActionCreator creates an ActionCreator.
func NewActionCreator(resolver *strategy.Resolver, orders OrderPaymentsLoader, spam SpamProtector, opts ...Option) *ActionCreator {
	c := &ActionCreator{
		resolver: resolver,
		orders:   orders,
		spam:     spam,
		policy:   policy.Default(),
		logger:   slog.Default(),
		tracer:   otel.Tracer("paymentstrategy"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute places the order through the strategy of the payment method in
// payload. The spam check, when the checkout requires one, runs before
// ExecuteRequested and fails the operation without it.
func (c *ActionCreator) Execute(payload order.RequestBody, opts payment.RequestOptions) checkout.Thunk {
	methodID, gatewayID := opts.MethodID, opts.GatewayID
	if payload.Payment != nil {
		methodID, gatewayID = payload.Payment.MethodID, payload.Payment.GatewayID
	}
	meta := action.Meta{MethodID: methodID, GatewayID: gatewayID}

	return func(ctx context.Context, store checkout.ReadableStore, emit action.Emitter) (err error) {
		ctx, op := c.begin(ctx, opExecute, methodID, opts.Timeout)
		defer func() { c.end(op, err) }()

		state := store.GetState()
		if state.GetCheckout() == nil {
			return action.Fail(emit, action.ExecuteFailed, apperr.NewMissingDataError(apperr.MissingCheckout), meta)
		}

		if policy.ShouldExecuteSpamCheck(state) {
			if err := c.spam.VerifyCheckoutSpamProtection()(ctx, store, emit); err != nil {
				return action.Fail(emit, action.ExecuteFailed, err, meta)
			}
		}

		emit(action.New(action.ExecuteRequested, nil, meta))

		state = store.GetState()
		required, err := c.policy.PaymentDataRequired(state, payload.UseStoreCredit)
		if err != nil {
			return action.Fail(emit, action.ExecuteFailed, err, meta)
		}

		var resolved strategy.Resolved
		if required {
			method, ok := state.GetPaymentMethod(methodID, gatewayID)
			if !ok {
				return action.Fail(emit, action.ExecuteFailed, apperr.NewMissingDataError(apperr.MissingPaymentMethod), meta)
			}
			resolved, err = c.resolver.Resolve(method)
		} else {
			resolved, err = c.resolver.ResolveType(strategy.NoPaymentDataRequired)
		}
		if err != nil {
			return action.Fail(emit, action.ExecuteFailed, err, meta)
		}
		op.source = resolved.Source

		runOpts := opts
		runOpts.MethodID, runOpts.GatewayID = methodID, gatewayID
		if err := resolved.Execute(ctx, payload, runOpts); err != nil {
			return action.Fail(emit, action.ExecuteFailed, err, meta)
		}

		emit(action.New(action.ExecuteSucceeded, nil, meta))
		return nil
	}
}

// Finalize completes a payment confirmed out of band, typically after a
// redirect. The method comes from the payment recorded in state rather than
// from opts. When none can be found the operation fails with
// apperr.ErrOrderFinalizationNotRequired, which callers treat as informational.
func (c *ActionCreator) Finalize(opts payment.RequestOptions) checkout.Thunk {
	return func(ctx context.Context, store checkout.ReadableStore, emit action.Emitter) (err error) {
		ctx, op := c.begin(ctx, opFinalize, "", opts.Timeout)
		defer func() { c.end(op, err) }()

		emit(action.New(action.FinalizeRequested, nil, action.Meta{}))

		// FinalizeFailed carries the last known provider id, read at failure time.
		fail := func(err error) error {
			meta := action.Meta{}
			if id, ok := store.GetState().GetPaymentID(); ok {
				meta.MethodID = id.ProviderID
			}
			op.methodID = meta.MethodID
			return action.Fail(emit, action.FinalizeFailed, err, meta)
		}

		if co := store.GetState().GetCheckout(); co != nil && co.OrderID != 0 {
			if err := c.orders.LoadOrderPayments(co.OrderID)(ctx, store, emit); err != nil {
				return fail(err)
			}
		}

		state := store.GetState()
		id, ok := state.GetPaymentID()
		if !ok {
			return fail(apperr.ErrOrderFinalizationNotRequired)
		}
		method, ok := state.GetPaymentMethod(id.ProviderID, id.GatewayID)
		if !ok {
			return fail(apperr.ErrOrderFinalizationNotRequired)
		}
		op.methodID = method.ID

		resolved, err := c.resolver.Resolve(method)
		if err != nil {
			return fail(err)
		}
		op.source = resolved.Source

		runOpts := opts
		runOpts.MethodID, runOpts.GatewayID = method.ID, method.Gateway
		if err := resolved.Finalize(ctx, runOpts); err != nil {
			return fail(err)
		}

		emit(action.New(action.FinalizeSucceeded, nil, action.Meta{MethodID: method.ID}))
		return nil
	}
}

// Initialize prepares the strategy of opts.MethodID. A method that is already
// initialized is left alone and nothing is emitted.
func (c *ActionCreator) Initialize(opts payment.InitializeOptions) checkout.Thunk {
	meta := action.Meta{MethodID: opts.MethodID, GatewayID: opts.GatewayID}

	return func(ctx context.Context, store checkout.ReadableStore, emit action.Emitter) (err error) {
		ctx, op := c.begin(ctx, opInitialize, opts.MethodID, opts.Timeout)
		defer func() { c.end(op, err) }()

		state := store.GetState()
		method, ok := state.GetPaymentMethod(opts.MethodID, opts.GatewayID)
		if !ok {
			return action.Fail(emit, action.InitializeFailed, apperr.NewMissingDataError(apperr.MissingPaymentMethod), meta)
		}
		if opts.MethodID != "" && state.IsInitialized(opts.MethodID) {
			op.outcome = OutcomeSkipped
			return nil
		}

		resolved, err := c.resolver.Resolve(method)
		if err != nil {
			return action.Fail(emit, action.InitializeFailed, err, meta)
		}
		op.source = resolved.Source

		emit(action.New(action.InitializeRequested, nil, meta))
		if err := resolved.Initialize(ctx, opts); err != nil {
			return action.Fail(emit, action.InitializeFailed, err, meta)
		}

		emit(action.New(action.InitializeSucceeded, nil, meta))
		return nil
	}
}

// Deinitialize tears down the strategy of opts.MethodID. A method that was
// never initialized is left alone and nothing is emitted.
func (c *ActionCreator) Deinitialize(opts payment.RequestOptions) checkout.Thunk {
	meta := action.Meta{MethodID: opts.MethodID, GatewayID: opts.GatewayID}

	return func(ctx context.Context, store checkout.ReadableStore, emit action.Emitter) (err error) {
		ctx, op := c.begin(ctx, opDeinitialize, opts.MethodID, opts.Timeout)
		defer func() { c.end(op, err) }()

		state := store.GetState()
		method, ok := state.GetPaymentMethod(opts.MethodID, opts.GatewayID)
		if !ok {
			return action.Fail(emit, action.DeinitializeFailed, apperr.NewMissingDataError(apperr.MissingPaymentMethod), meta)
		}
		if opts.MethodID != "" && !state.IsInitialized(opts.MethodID) {
			op.outcome = OutcomeSkipped
			return nil
		}

		resolved, err := c.resolver.Resolve(method)
		if err != nil {
			return action.Fail(emit, action.DeinitializeFailed, err, meta)
		}
		op.source = resolved.Source

		emit(action.New(action.DeinitializeRequested, nil, meta))
		if err := resolved.Deinitialize(ctx, opts); err != nil {
			return action.Fail(emit, action.DeinitializeFailed, err, meta)
		}

		emit(action.New(action.DeinitializeSucceeded, nil, meta))
		return nil
	}
}

// WidgetInteraction wraps a shopper interaction with a provider widget, such
// as a wallet popup, in Started and Finished actions.
func (c *ActionCreator) WidgetInteraction(fn func(ctx context.Context) error, opts payment.RequestOptions) checkout.Thunk {
	meta := action.Meta{MethodID: opts.MethodID}

	return func(ctx context.Context, _ checkout.ReadableStore, emit action.Emitter) (err error) {
		ctx, op := c.begin(ctx, opWidgetInteraction, opts.MethodID, opts.Timeout)
		defer func() { c.end(op, err) }()

		emit(action.New(action.WidgetInteractionStarted, nil, meta))
		if err := fn(ctx); err != nil {
			return action.Fail(emit, action.WidgetInteractionFailed, err, meta)
		}

		emit(action.New(action.WidgetInteractionFinished, nil, meta))
		return nil
	}
}

type operation struct {
	name      string
	methodID  string
	requestID string
	source    strategy.Source
	outcome   string
	start     time.Time
	span      trace.Span
	cancel    context.CancelFunc
}

func (c *ActionCreator) begin(ctx context.Context, name, methodID string, timeout time.Duration) (context.Context, *operation) {
	ctx, span := c.tracer.Start(ctx, "PaymentStrategy."+name)
	op := &operation{
		name:     name,
		methodID: methodID,
		outcome:  OutcomeSucceeded,
		start:    time.Now(),
		span:     span,
		cancel:   func() {},
	}
	if id, ok := tracing.RequestIDFromContext(ctx); ok {
		op.requestID = id
		span.SetAttributes(attribute.String("checkout.request_id", id))
	}
	if timeout > 0 {
		ctx, op.cancel = context.WithTimeout(ctx, timeout)
	}
	return ctx, op
}

func (c *ActionCreator) end(op *operation, err error) {
	defer op.span.End()
	op.cancel()

	switch {
	case err == nil:
	case apperr.IsBenign(err):
		op.outcome = OutcomeNotRequired
	default:
		op.outcome = OutcomeFailed
	}

	source := string(op.source)
	if source == "" {
		source = "none"
	}
	operationsTotal.WithLabelValues(op.name, op.outcome, source).Inc()
	operationDuration.WithLabelValues(op.name).Observe(time.Since(op.start).Seconds())

	op.span.SetAttributes(
		attribute.String("checkout.method_id", op.methodID),
		attribute.String("checkout.strategy_source", source),
		attribute.String("checkout.outcome", op.outcome),
	)

	attrs := []any{"operation", op.name, "method_id", op.methodID, "source", source}
	if op.requestID != "" {
		attrs = append(attrs, "request_id", op.requestID)
	}
	switch op.outcome {
	case OutcomeFailed:
		cause := action.Cause(err)
		op.span.RecordError(cause)
		op.span.SetStatus(codes.Error, cause.Error())
		c.logger.Warn("payment strategy operation failed", append(attrs, "kind", apperr.Kind(cause), "error", cause)...)
	case OutcomeNotRequired:
		c.logger.Info("order finalization not required", attrs...)
	default:
		op.span.SetStatus(codes.Ok, "")
		c.logger.Debug("payment strategy operation completed", append(attrs, "outcome", op.outcome)...)
	}
}
