package checkout

import (
	"context"
	"log/slog"
	"sync"

	"github.com/yourorg/checkout-orchestrator/internal/action"
)

const defaultJournalLimit = 1000

// ReadableStore exposes the current snapshot.
type ReadableStore interface {
	GetState() State
}

// Dispatcher runs thunks against a store.
type Dispatcher interface {
	ReadableStore
	Dispatch(ctx context.Context, thunk Thunk) error
}

// Thunk is an asynchronous operation over the store. Every action passed to
// emit has been reduced into the store by the time emit returns.
type Thunk func(ctx context.Context, store ReadableStore, emit action.Emitter) error

// Store owns the current checkout snapshot. Snapshots are only replaced by
// reducing dispatched actions.
type Store struct {
	mu           sync.RWMutex
	state        State
	journal      []action.Action
	journalLimit int
	subscribers  map[int]chan action.Action
	nextSubID    int
	logger       *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used to report dropped notifications.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithJournalLimit caps the number of applied actions kept for reporting.
func WithJournalLimit(n int) StoreOption {
	return func(s *Store) { s.journalLimit = n }
}

// NewStore creates a Store seeded with initial.
func NewStore(initial State, opts ...StoreOption) *Store {
	s := &Store{
		state:        initial,
		journalLimit: defaultJournalLimit,
		subscribers:  make(map[int]chan action.Action),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetState returns the current snapshot.
func (s *Store) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch runs thunk against the store and returns its terminal error.
func (s *Store) Dispatch(ctx context.Context, thunk Thunk) error {
	return thunk(ctx, s, s.apply)
}

// Apply reduces a single action into the store.
func (s *Store) Apply(a action.Action) {
	s.apply(a)
}

func (s *Store) apply(a action.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, a)
	s.journal = append(s.journal, a)
	if s.journalLimit > 0 && len(s.journal) > s.journalLimit {
		s.journal = s.journal[len(s.journal)-s.journalLimit:]
	}

	for _, ch := range s.subscribers {
		select {
		case ch <- a:
		default:
			s.logger.Warn("store: subscriber buffer full, dropping action", "type", a.Type, "method_id", a.Meta.MethodID)
		}
	}
}

// Subscribe returns a channel receiving every applied action and a function
// that cancels the subscription and closes the channel.
func (s *Store) Subscribe(buffer int) (<-chan action.Action, func()) {
	ch := make(chan action.Action, buffer)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Journal returns a copy of the most recently applied actions.
func (s *Store) Journal() []action.Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]action.Action, len(s.journal))
	copy(out, s.journal)
	return out
}
