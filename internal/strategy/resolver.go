package strategy

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/integration"
	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
)

// Source tells which registry produced a Resolved strategy.
type Source string

const (
	SourceV2     Source = "v2"
	SourceLegacy Source = "legacy"
)

// Resolved is a strategy from exactly one of the two registries.
type Resolved struct {
	Source Source
	v2     integration.PaymentStrategy
	legacy PaymentStrategy
}

// FromV2 wraps a v2 strategy.
func FromV2(s integration.PaymentStrategy) Resolved {
	return Resolved{Source: SourceV2, v2: s}
}

// FromLegacy wraps a legacy strategy.
func FromLegacy(s PaymentStrategy) Resolved {
	return Resolved{Source: SourceLegacy, legacy: s}
}

// Strategy returns the underlying strategy value.
func (r Resolved) Strategy() any {
	if r.Source == SourceV2 {
		return r.v2
	}
	return r.legacy
}

func (r Resolved) Initialize(ctx context.Context, opts payment.InitializeOptions) error {
	if r.Source == SourceV2 {
		return r.v2.Initialize(ctx, opts)
	}
	return r.legacy.Initialize(ctx, opts)
}

func (r Resolved) Execute(ctx context.Context, payload order.RequestBody, opts payment.RequestOptions) error {
	if r.Source == SourceV2 {
		return r.v2.Execute(ctx, payload, opts)
	}
	return r.legacy.Execute(ctx, payload, opts)
}

func (r Resolved) Finalize(ctx context.Context, opts payment.RequestOptions) error {
	if r.Source == SourceV2 {
		return r.v2.Finalize(ctx, opts)
	}
	return r.legacy.Finalize(ctx, opts)
}

func (r Resolved) Deinitialize(ctx context.Context, opts payment.RequestOptions) error {
	if r.Source == SourceV2 {
		return r.v2.Deinitialize(ctx, opts)
	}
	return r.legacy.Deinitialize(ctx, opts)
}

// Resolver picks the strategy for a payment method: the v2 registry first,
// the legacy registry only when v2 has nothing registered for the method.
type Resolver struct {
	v2     *integration.Registry
	legacy *Registry
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(v2 *integration.Registry, legacy *Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{v2: v2, legacy: legacy, logger: logger}
}

// Resolve returns the strategy for m. Errors other than "not found" from the
// v2 registry are returned as is.
func (r *Resolver) Resolve(m checkout.PaymentMethod) (Resolved, error) {
	s, err := r.v2.Get(integration.ResolveID{ID: m.ID})
	if err == nil {
		r.logger.Debug("strategy resolved", "method_id", m.ID, "source", SourceV2)
		return FromV2(s), nil
	}
	if !errors.Is(err, apperr.ErrStrategyNotFound) {
		return Resolved{}, err
	}

	legacy, err := r.legacy.GetByMethod(m)
	if err != nil {
		return Resolved{}, err
	}
	r.logger.Debug("strategy resolved", "method_id", m.ID, "gateway", m.Gateway, "source", SourceLegacy)
	return FromLegacy(legacy), nil
}

// ResolveType returns a fixed legacy strategy.
func (r *Resolver) ResolveType(t Type) (Resolved, error) {
	s, err := r.legacy.Get(t)
	if err != nil {
		return Resolved{}, err
	}
	return FromLegacy(s), nil
}
