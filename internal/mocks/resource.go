package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskdesk/internal/client"
)

// MockResource implements entitystore.Resource for testing
type MockResource[T any] struct {
	// Custom behavior functions
	GetFn    func(ctx context.Context, id int64) (*T, error)
	ListFn   func(ctx context.Context, q client.Query) ([]T, int64, error)
	CreateFn func(ctx context.Context, entity T) (*T, error)
	UpdateFn func(ctx context.Context, entity T) (*T, error)
	PatchFn  func(ctx context.Context, entity T) (*T, error)
	DeleteFn func(ctx context.Context, id int64) error

	// Default response values
	Entities []T
	Total    int64
	Err      error

	mu      sync.Mutex
	gets    []int64
	lists   []client.Query
	creates []T
	updates []T
	patches []T
	deletes []int64
}

// Get implements the entitystore.Resource interface
func (m *MockResource[T]) Get(ctx context.Context, id int64) (*T, error) {
	m.mu.Lock()
	m.gets = append(m.gets, id)
	m.mu.Unlock()

	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	var zero T
	return &zero, nil
}

// List implements the entitystore.Resource interface
func (m *MockResource[T]) List(ctx context.Context, q client.Query) ([]T, int64, error) {
	m.mu.Lock()
	m.lists = append(m.lists, q)
	m.mu.Unlock()

	if m.ListFn != nil {
		return m.ListFn(ctx, q)
	}
	if m.Err != nil {
		return nil, 0, m.Err
	}
	return m.Entities, m.Total, nil
}

// Create implements the entitystore.Resource interface
func (m *MockResource[T]) Create(ctx context.Context, entity T) (*T, error) {
	m.mu.Lock()
	m.creates = append(m.creates, entity)
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, entity)
	}
	return m.echo(entity)
}

// Update implements the entitystore.Resource interface
func (m *MockResource[T]) Update(ctx context.Context, entity T) (*T, error) {
	m.mu.Lock()
	m.updates = append(m.updates, entity)
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, entity)
	}
	return m.echo(entity)
}

// Patch implements the entitystore.Resource interface
func (m *MockResource[T]) Patch(ctx context.Context, entity T) (*T, error) {
	m.mu.Lock()
	m.patches = append(m.patches, entity)
	m.mu.Unlock()

	if m.PatchFn != nil {
		return m.PatchFn(ctx, entity)
	}
	return m.echo(entity)
}

// Delete implements the entitystore.Resource interface
func (m *MockResource[T]) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	m.deletes = append(m.deletes, id)
	m.mu.Unlock()

	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.Err
}

func (m *MockResource[T]) echo(entity T) (*T, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &entity, nil
}

// GetCalls returns the IDs passed to Get, in call order.
func (m *MockResource[T]) GetCalls() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.gets...)
}

// ListCalls returns the queries passed to List, in call order.
func (m *MockResource[T]) ListCalls() []client.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]client.Query(nil), m.lists...)
}

// CreateCalls returns the entities passed to Create.
func (m *MockResource[T]) CreateCalls() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.creates...)
}

// UpdateCalls returns the entities passed to Update.
func (m *MockResource[T]) UpdateCalls() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.updates...)
}

// PatchCalls returns the entities passed to Patch.
func (m *MockResource[T]) PatchCalls() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.patches...)
}

// DeleteCalls returns the IDs passed to Delete.
func (m *MockResource[T]) DeleteCalls() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.deletes...)
}
