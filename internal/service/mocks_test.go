package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/events"
	"github.com/phrazzld/taskdesk/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockTaskStore mocks the store.TaskStore interface
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskStore) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskStore) List(ctx context.Context) ([]domain.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]domain.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// WithTx returns the mock itself so expectations cover transactional calls.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// fakeTransactor runs fn without a database transaction.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	f.calls++
	return fn(ctx, nil)
}

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.EntityChangedEvent
	err    error
}

func (r *recordingEmitter) EmitEvent(ctx context.Context, event *events.EntityChangedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingEmitter) actions() []events.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]events.Action, len(r.events))
	for i, e := range r.events {
		actions[i] = e.Action
	}
	return actions
}

// stubSearcher returns fixed search results.
type stubSearcher struct {
	tasks []domain.Task
	jobs  []domain.Job
	total int64
	err   error
}

func (s *stubSearcher) SearchTasks(query string) ([]domain.Task, error) { return s.tasks, s.err }
func (s *stubSearcher) CountTasks(query string) (int64, error) {
	return int64(len(s.tasks)), s.err
}

func (s *stubSearcher) SearchJobs(query string, page store.PageRequest) ([]domain.Job, int64, error) {
	return s.jobs, s.total, s.err
}
func (s *stubSearcher) CountJobs(query string) (int64, error) { return s.total, s.err }
