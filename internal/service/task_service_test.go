package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/events"
	"github.com/phrazzld/taskdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

type taskServiceFixture struct {
	store    *MockTaskStore
	tx       *fakeTransactor
	emitter  *recordingEmitter
	searcher *stubSearcher
	service  TaskService
}

func newTaskServiceFixture(t *testing.T) *taskServiceFixture {
	t.Helper()
	f := &taskServiceFixture{
		store:    &MockTaskStore{},
		tx:       &fakeTransactor{},
		emitter:  &recordingEmitter{},
		searcher: &stubSearcher{},
	}
	svc, err := NewTaskService(f.store, f.tx, f.searcher, f.emitter, nil)
	require.NoError(t, err)
	f.service = svc
	t.Cleanup(func() { f.store.AssertExpectations(t) })
	return f
}

func TestNewTaskService_NilDependencies(t *testing.T) {
	_, err := NewTaskService(nil, &fakeTransactor{}, &stubSearcher{}, &recordingEmitter{}, nil)
	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "create_service", serviceErr.Op)

	_, err = NewTaskService(&MockTaskStore{}, &fakeTransactor{}, &stubSearcher{}, nil, nil)
	assert.Error(t, err)
}

func TestTaskService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and emits", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.store.On("Create", ctx, mock.AnythingOfType("*domain.Task")).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.Task).ID = 5 }).
			Return(nil)

		task, err := f.service.Save(ctx, domain.Task{Title: "AAAAAAAAAA"})
		require.NoError(t, err)
		assert.Equal(t, int64(5), task.ID)
		assert.Equal(t, []events.Action{events.ActionCreated}, f.emitter.actions())
		assert.Equal(t, int64(5), f.emitter.events[0].EntityID)
	})

	t.Run("rejects an existing ID", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		_, err := f.service.Save(ctx, domain.Task{ID: 1})
		assert.ErrorIs(t, err, domain.ErrIDPresent)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, f.emitter.actions())
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		dbErr := errors.New("disk full")
		f.store.On("Create", ctx, mock.Anything).Return(dbErr)

		_, err := f.service.Save(ctx, domain.Task{Title: "x"})
		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		assert.Equal(t, "save", serviceErr.Op)
		assert.ErrorIs(t, err, dbErr)
		assert.Empty(t, f.emitter.actions())
	})

	t.Run("emitter failure does not fail the write", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.emitter.err = errors.New("handler down")
		f.store.On("Create", ctx, mock.Anything).Return(nil)

		_, err := f.service.Save(ctx, domain.Task{Title: "x"})
		assert.NoError(t, err)
	})
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		pathID    int64
		task      domain.Task
		setup     func(m *MockTaskStore)
		expectErr error
	}{
		{
			name:      "missing body id",
			pathID:    1,
			task:      domain.Task{Title: "x"},
			expectErr: domain.ErrIDMissing,
		},
		{
			name:      "mismatched id",
			pathID:    1,
			task:      domain.Task{ID: 2},
			expectErr: domain.ErrIDMismatch,
		},
		{
			name:   "unknown task",
			pathID: 3,
			task:   domain.Task{ID: 3},
			setup: func(m *MockTaskStore) {
				m.On("Exists", ctx, int64(3)).Return(false, nil)
			},
			expectErr: domain.ErrInvalidID,
		},
		{
			name:   "updated",
			pathID: 4,
			task:   domain.Task{ID: 4, Title: "BBBBBBBBBB"},
			setup: func(m *MockTaskStore) {
				m.On("Exists", ctx, int64(4)).Return(true, nil)
				m.On("Update", ctx, &domain.Task{ID: 4, Title: "BBBBBBBBBB"}).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTaskServiceFixture(t)
			if tt.setup != nil {
				tt.setup(f.store)
			}

			task, err := f.service.Update(ctx, tt.pathID, tt.task)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.ErrorIs(t, err, domain.ErrValidation)
				assert.Empty(t, f.emitter.actions())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.task, *task)
			assert.Equal(t, 1, f.tx.calls)
			assert.Equal(t, []events.Action{events.ActionUpdated}, f.emitter.actions())
		})
	}
}

func TestTaskService_PartialUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("merges non-nil fields", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.store.On("GetByID", ctx, int64(1)).
			Return(&domain.Task{ID: 1, Title: "AAAAAAAAAA", Description: "AAAAAAAAAA"}, nil)
		f.store.On("Update", ctx, &domain.Task{ID: 1, Title: "AAAAAAAAAA", Description: "BBBBBBBBBB"}).
			Return(nil)

		task, err := f.service.PartialUpdate(ctx, 1, domain.TaskPatch{ID: 1, Description: strp("BBBBBBBBBB")})
		require.NoError(t, err)
		assert.Equal(t, "AAAAAAAAAA", task.Title)
		assert.Equal(t, "BBBBBBBBBB", task.Description)
		assert.Equal(t, []events.Action{events.ActionUpdated}, f.emitter.actions())
	})

	t.Run("unknown task is a validation error", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.store.On("GetByID", ctx, int64(9)).Return(nil, store.ErrTaskNotFound)

		_, err := f.service.PartialUpdate(ctx, 9, domain.TaskPatch{ID: 9})
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("missing id", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		_, err := f.service.PartialUpdate(ctx, 9, domain.TaskPatch{})
		assert.ErrorIs(t, err, domain.ErrIDMissing)
	})
}

func TestTaskService_Reads(t *testing.T) {
	ctx := context.Background()
	f := newTaskServiceFixture(t)

	stored := []domain.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}
	f.store.On("List", ctx).Return(stored, nil)
	f.store.On("Count", ctx).Return(int64(2), nil)
	f.store.On("GetByID", ctx, int64(1)).Return(&stored[0], nil)
	f.store.On("GetByID", ctx, int64(3)).Return(nil, store.ErrTaskNotFound)

	all, err := f.service.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored, all)

	n, err := f.service.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	one, err := f.service.FindOne(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", one.Title)

	_, err = f.service.FindOne(ctx, 3)
	assert.Equal(t, ErrTaskNotFound, err)
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.store.On("Delete", ctx, int64(1)).Return(nil)

		require.NoError(t, f.service.Delete(ctx, 1))
		assert.Equal(t, []events.Action{events.ActionDeleted}, f.emitter.actions())
	})

	t.Run("not found", func(t *testing.T) {
		f := newTaskServiceFixture(t)
		f.store.On("Delete", ctx, int64(2)).Return(store.ErrTaskNotFound)

		assert.Equal(t, ErrTaskNotFound, f.service.Delete(ctx, 2))
		assert.Empty(t, f.emitter.actions())
	})
}

func TestTaskService_Search(t *testing.T) {
	ctx := context.Background()
	f := newTaskServiceFixture(t)
	f.searcher.tasks = []domain.Task{{ID: 7, Title: "match"}}

	tasks, err := f.service.Search(ctx, "match")
	require.NoError(t, err)
	assert.Equal(t, f.searcher.tasks, tasks)

	n, err := f.service.SearchCount(ctx, "match")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	t.Run("bad query", func(t *testing.T) {
		f.searcher.err = fmt.Errorf("%w: title:(", store.ErrInvalidQuery)

		_, err := f.service.Search(ctx, "title:(")
		assert.ErrorIs(t, err, store.ErrInvalidQuery)
		var serviceErr *ServiceError
		assert.ErrorAs(t, err, &serviceErr)

		_, err = f.service.SearchCount(ctx, "title:(")
		assert.ErrorIs(t, err, store.ErrInvalidQuery)
	})
}
