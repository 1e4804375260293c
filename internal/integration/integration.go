// Package integration hosts the second generation of payment strategies.
// They are constructed with a Service giving them narrow access to checkout
// state and submissions, and are resolved by id, gateway or method type.
package integration

import (
	"context"
	"fmt"
	"sync"

	"github.com/yourorg/checkout-orchestrator/internal/apperr"
	"github.com/yourorg/checkout-orchestrator/internal/checkout"
	"github.com/yourorg/checkout-orchestrator/internal/order"
	"github.com/yourorg/checkout-orchestrator/internal/payment"
	"github.com/yourorg/checkout-orchestrator/internal/registry"
)

// RegistryName labels the v2 registry in errors and metrics.
const RegistryName = "v2"

// PaymentStrategy is a v2 payment strategy.
type PaymentStrategy interface {
	Initialize(ctx context.Context, opts payment.InitializeOptions) error
	Execute(ctx context.Context, payload order.RequestBody, opts payment.RequestOptions) error
	Finalize(ctx context.Context, opts payment.RequestOptions) error
	Deinitialize(ctx context.Context, opts payment.RequestOptions) error
}

// Service is what a v2 strategy may do against the checkout.
type Service interface {
	GetState() checkout.State
	SubmitOrder(ctx context.Context, body *order.RequestBody) error
	SubmitPayment(ctx context.Context, p payment.Payment) error
	LoadOrderPayments(ctx context.Context, orderID int64) error
	FinalizeOrder(ctx context.Context, orderID int64) error
}

// Factory constructs a v2 strategy.
type Factory func(svc Service) (PaymentStrategy, error)

// ResolveID selects a v2 strategy. Empty fields are wildcards.
type ResolveID struct {
	ID      string `json:"id,omitempty"`
	Gateway string `json:"gateway,omitempty"`
	Type    string `json:"type,omitempty"`
}

func (r ResolveID) String() string {
	return fmt.Sprintf("id=%s,gateway=%s,type=%s", r.ID, r.Gateway, r.Type)
}

// Registry resolves v2 strategies. Lookup prefers an exact id match, then a
// gateway-only registration, then a type-only registration.
type Registry struct {
	svc       Service
	instances *registry.Registry[int, PaymentStrategy]

	mu  sync.RWMutex
	ids []binding
}

// binding ties a ResolveID to the registration it came from. Every id of one
// Register call shares the registration's instance.
type binding struct {
	id    ResolveID
	group int
}

// NewRegistry creates a Registry whose strategies are built with svc.
func NewRegistry(svc Service) *Registry {
	return &Registry{
		svc:       svc,
		instances: registry.New[int, PaymentStrategy](RegistryName),
	}
}

// Register binds factory to every given id. All ids share one instance.
func (r *Registry) Register(factory Factory, ids ...ResolveID) {
	if factory == nil {
		panic("integration: nil factory")
	}
	if len(ids) == 0 {
		panic("integration: Register needs at least one ResolveID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	group := len(r.ids)
	r.instances.Register(group, func() (PaymentStrategy, error) { return factory(r.svc) })
	for _, id := range ids {
		r.ids = append(r.ids, binding{id: id, group: group})
	}
}

// Get returns the strategy matching q.
func (r *Registry) Get(q ResolveID) (PaymentStrategy, error) {
	group, ok := r.match(q)
	if !ok {
		return nil, &apperr.NotFoundError{Registry: RegistryName, Key: q.String()}
	}
	return r.instances.Get(group)
}

func (r *Registry) match(q ResolveID) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if q.ID != "" {
		for _, b := range r.ids {
			if b.id.ID == q.ID && (q.Gateway == "" || b.id.Gateway == "" || b.id.Gateway == q.Gateway) {
				return b.group, true
			}
		}
	}
	if q.Gateway != "" {
		for _, b := range r.ids {
			if b.id.ID == "" && b.id.Gateway == q.Gateway {
				return b.group, true
			}
		}
	}
	if q.Type != "" {
		for _, b := range r.ids {
			if b.id.ID == "" && b.id.Gateway == "" && b.id.Type == q.Type {
				return b.group, true
			}
		}
	}
	return 0, false
}
