// Package strategy holds the legacy payment strategy registry, the built-in
// legacy strategies, and the resolver that picks between the v2 and legacy
// registries.
package strategy

import (
	"context"

	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
	"github.com/yourorg/checkout-orchestrator/internal/registry"
)

// RegistryName labels the legacy registry in errors and metrics.
const RegistryName = "legacy"

// Type names a legacy strategy.
type Type string

// Built-in legacy strategies.
const (
	NoPaymentDataRequired Type = "nopaymentdatarequired"
	CreditCard            Type = "creditcard"
	Offsite               Type = "offsitepayment"
)

// PaymentStrategy is a legacy payment strategy.
type PaymentStrategy interface {
	Initialize(ctx context.Context, opts payment.InitializeOptions) error
	Execute(ctx context.Context, payload order.RequestBody, opts payment.RequestOptions) error
	Finalize(ctx context.Context, opts payment.RequestOptions) error
	Deinitialize(ctx context.Context, opts payment.RequestOptions) error
}

// Registry maps strategy types and method ids to legacy strategies.
type Registry struct {
	reg *registry.Registry[Type, PaymentStrategy]
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{reg: registry.New[Type, PaymentStrategy](RegistryName)}
}

// Register binds factory to t.
func (r *Registry) Register(t Type, factory registry.Factory[PaymentStrategy]) {
	r.reg.Register(t, factory)
}

// Get returns the strategy registered for t.
func (r *Registry) Get(t Type) (PaymentStrategy, error) {
	return r.reg.Get(t)
}

// GetByMethod returns the strategy for a payment method. A strategy
// registered under the method's gateway (or its id when it has none) wins;
// otherwise hosted methods use the offsite strategy and everything else the
// credit card strategy. Instances are cached per gateway, or per id.
func (r *Registry) GetByMethod(m checkout.PaymentMethod) (PaymentStrategy, error) {
	return r.reg.GetCached(r.tokenFor(m), cacheKey(m))
}

func (r *Registry) tokenFor(m checkout.PaymentMethod) Type {
	if key := cacheKey(m); r.reg.Has(key) {
		return key
	}
	if m.Type == checkout.MethodTypeHosted {
		return Offsite
	}
	return CreditCard
}

func cacheKey(m checkout.PaymentMethod) Type {
	if m.Gateway != "" {
		return Type(m.Gateway)
	}
	return Type(m.ID)
}
