// Package registry provides a keyed factory registry that constructs each
// instance lazily and caches it, so at most one instance exists per cache key.
package registry

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yourorg/checkout-orchestrator/internal/apperr"
)

var instancesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "checkout",
	Subsystem: "strategy_registry",
	Name:      "instances_created_total",
	Help:      "Number of strategy instances constructed, by registry.",
}, []string{"registry"})

// InstancesCreated exposes the construction counter for tests.
func InstancesCreated() *prometheus.CounterVec { return instancesCreated }

// Factory constructs an instance.
type Factory[V any] func() (V, error)

// Registry maps keys to factories and caches constructed instances.
type Registry[K comparable, V any] struct {
	name      string
	mu        sync.Mutex
	factories map[K]Factory[V]
	instances map[K]V
}

// New creates an empty registry. name is used in errors and metrics.
func New[K comparable, V any](name string) *Registry[K, V] {
	return &Registry[K, V]{
		name:      name,
		factories: make(map[K]Factory[V]),
		instances: make(map[K]V),
	}
}

// Name returns the registry name.
func (r *Registry[K, V]) Name() string { return r.name }

// Register binds factory to key, replacing any previous binding.
func (r *Registry[K, V]) Register(key K, factory Factory[V]) {
	if factory == nil {
		panic(fmt.Sprintf("registry %s: nil factory for %v", r.name, key))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = factory
}

// Has reports whether a factory is registered for key.
func (r *Registry[K, V]) Has(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.factories[key]
	return ok
}

// Get returns the instance for key, constructing it on first use.
func (r *Registry[K, V]) Get(key K) (V, error) {
	return r.GetCached(key, key)
}

// GetCached constructs with the factory bound to key but caches the instance
// under cacheKey.
func (r *Registry[K, V]) GetCached(key, cacheKey K) (V, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inst, ok := r.instances[cacheKey]; ok {
		return inst, nil
	}

	var zero V
	factory, ok := r.factories[key]
	if !ok {
		return zero, &apperr.NotFoundError{Registry: r.name, Key: fmt.Sprint(key)}
	}

	inst, err := factory()
	if err != nil {
		return zero, fmt.Errorf("registry %s: construct %v: %w", r.name, key, err)
	}
	r.instances[cacheKey] = inst
	instancesCreated.WithLabelValues(r.name).Inc()
	return inst, nil
}

// Keys returns the registered keys in no particular order.
func (r *Registry[K, V]) Keys() []K {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]K, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	return keys
}
