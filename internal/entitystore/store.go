package entitystore

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/phrazzld/taskdesk/internal/client"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
)

// Resource is the REST surface a Store drives. *client.Resource satisfies it.
type Resource[T any] interface {
	Get(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, q client.Query) ([]T, int64, error)
	Create(ctx context.Context, entity T) (*T, error)
	Update(ctx context.Context, entity T) (*T, error)
	Patch(ctx context.Context, entity T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// State is a snapshot of a Store. Entity is the zero value until a fetch
// or write succeeds.
type State[T any] struct {
	Entity        T
	Entities      []T
	TotalItems    int64
	Loading       bool
	Updating      bool
	UpdateSuccess bool
	ErrorMessage  string
}

// Listener receives a snapshot after every transition.
type Listener[T any] func(State[T])

// Store is safe for concurrent use. Listeners run on the goroutine that
// caused the transition, after the store's lock is released.
type Store[T any] struct {
	name     string
	resource Resource[T]
	logger   *slog.Logger

	mu        sync.Mutex
	state     State[T]
	lastQuery client.Query
	listeners map[int]Listener[T]
	nextID    int
}

// New creates a Store named after its entity type, e.g. "task".
func New[T any](name string, resource Resource[T], log *slog.Logger) *Store[T] {
	if resource == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("resource cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store[T]{
		name:      name,
		resource:  resource,
		logger:    log.With(slog.String("component", "entity_store"), slog.String("entity", name)),
		listeners: make(map[int]Listener[T]),
	}
}

// State returns a copy of the current state.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store[T]) snapshot() State[T] {
	st := s.state
	if s.state.Entities != nil {
		st.Entities = make([]T, len(s.state.Entities))
		copy(st.Entities, s.state.Entities)
	}
	return st
}

// transition applies fn under the lock, then notifies listeners.
func (s *Store[T]) transition(fn func(st *State[T])) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.snapshot()
	listeners := make([]Listener[T], 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if l, ok := s.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store[T]) fetchStarted() {
	s.transition(func(st *State[T]) {
		st.ErrorMessage = ""
		st.UpdateSuccess = false
		st.Loading = true
	})
}

func (s *Store[T]) writeStarted() {
	s.transition(func(st *State[T]) {
		st.ErrorMessage = ""
		st.UpdateSuccess = false
		st.Updating = true
	})
}

func (s *Store[T]) failed(ctx context.Context, op string, err error) error {
	logger.FromContextOrDefault(ctx, s.logger).Warn("entity action failed",
		slog.String("entity", s.name),
		slog.String("action", op),
		slog.String("error", err.Error()))

	s.transition(func(st *State[T]) {
		st.Loading = false
		st.Updating = false
		st.UpdateSuccess = false
		st.ErrorMessage = errorMessage(err)
	})
	return err
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// GetEntity fetches one entity into State.Entity.
func (s *Store[T]) GetEntity(ctx context.Context, id int64) error {
	s.fetchStarted()
	entity, err := s.resource.Get(ctx, id)
	if err != nil {
		return s.failed(ctx, "get_entity", err)
	}
	s.transition(func(st *State[T]) {
		st.Loading = false
		st.Entity = *entity
	})
	return nil
}

// GetEntities fetches one page into State.Entities and State.TotalItems.
// The query is remembered and reused to refresh the list after writes.
func (s *Store[T]) GetEntities(ctx context.Context, q client.Query) error {
	s.mu.Lock()
	s.lastQuery = q
	s.mu.Unlock()

	s.fetchStarted()
	entities, total, err := s.resource.List(ctx, q)
	if err != nil {
		return s.failed(ctx, "get_entities", err)
	}
	s.transition(func(st *State[T]) {
		st.Loading = false
		st.Entities = entities
		st.TotalItems = total
	})
	return nil
}

// CreateEntity posts a new entity. On success State.UpdateSuccess is true
// when it returns, and the last requested page has been reloaded.
func (s *Store[T]) CreateEntity(ctx context.Context, entity T) error {
	return s.write(ctx, "create_entity", s.resource.Create, entity)
}

// UpdateEntity replaces an existing entity. Success is reported the same
// way as CreateEntity.
func (s *Store[T]) UpdateEntity(ctx context.Context, entity T) error {
	return s.write(ctx, "update_entity", s.resource.Update, entity)
}

// PartialUpdateEntity merge-patches an existing entity.
func (s *Store[T]) PartialUpdateEntity(ctx context.Context, entity T) error {
	return s.write(ctx, "partial_update_entity", s.resource.Patch, entity)
}

func (s *Store[T]) write(ctx context.Context, op string, call func(context.Context, T) (*T, error), entity T) error {
	s.writeStarted()
	saved, err := call(ctx, entity)
	if err != nil {
		return s.failed(ctx, op, err)
	}
	s.transition(func(st *State[T]) {
		st.Updating = false
		st.Loading = false
		st.UpdateSuccess = true
		st.Entity = *saved
	})
	s.refresh(ctx)
	return nil
}

// DeleteEntity removes an entity and clears State.Entity.
func (s *Store[T]) DeleteEntity(ctx context.Context, id int64) error {
	s.writeStarted()
	if err := s.resource.Delete(ctx, id); err != nil {
		return s.failed(ctx, "delete_entity", err)
	}
	s.transition(func(st *State[T]) {
		var zero T
		st.Updating = false
		st.UpdateSuccess = true
		st.Entity = zero
	})
	s.refresh(ctx)
	return nil
}

// refresh reloads the last requested page after a successful write.
// UpdateSuccess stays set; a failed reload is recorded in ErrorMessage but
// does not fail the write.
func (s *Store[T]) refresh(ctx context.Context) {
	s.mu.Lock()
	q := s.lastQuery
	s.mu.Unlock()

	s.transition(func(st *State[T]) {
		st.Loading = true
	})
	entities, total, err := s.resource.List(ctx, q)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("entity list refresh failed",
			slog.String("entity", s.name),
			slog.String("error", err.Error()))
		s.transition(func(st *State[T]) {
			st.Loading = false
			st.ErrorMessage = errorMessage(err)
		})
		return
	}
	s.transition(func(st *State[T]) {
		st.Loading = false
		st.Entities = entities
		st.TotalItems = total
	})
}

// Reset restores the initial state. Subscriptions are kept.
func (s *Store[T]) Reset() {
	s.transition(func(st *State[T]) {
		*st = State[T]{}
	})
	s.mu.Lock()
	s.lastQuery = client.Query{}
	s.mu.Unlock()
}
