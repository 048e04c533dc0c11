package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/sqlite"
	"github.com/phrazzld/taskdesk/internal/store"
	"github.com/phrazzld/taskdesk/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64p(v int64) *int64 { return &v }

func TestTaskStore_CRUD(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	tasks := sqlite.NewTaskStore(db, nil)

	task := &domain.Task{Title: "AAAAAAAAAA", Description: "AAAAAAAAAA"}
	require.NoError(t, tasks.Create(ctx, task))
	require.NotZero(t, task.ID)

	got, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, *task, *got)

	got.Title = "BBBBBBBBBB"
	got.Description = ""
	require.NoError(t, tasks.Update(ctx, got))

	got, err = tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "BBBBBBBBBB", got.Title)
	assert.Empty(t, got.Description)

	exists, err := tasks.Exists(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	second := &domain.Task{Title: "second"}
	require.NoError(t, tasks.Create(ctx, second))

	all, err := tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, task.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	count, err := tasks.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, tasks.Delete(ctx, task.ID))
	_, err = tasks.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.ErrorIs(t, tasks.Delete(ctx, task.ID), store.ErrTaskNotFound)
}

func TestTaskStore_Errors(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	tasks := sqlite.NewTaskStore(db, nil)

	t.Run("update missing", func(t *testing.T) {
		err := tasks.Update(ctx, &domain.Task{ID: 42, Title: "x"})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("invalid task", func(t *testing.T) {
		long := make([]rune, domain.MaxTextLength+1)
		for i := range long {
			long[i] = 'a'
		}
		err := tasks.Create(ctx, &domain.Task{Title: string(long)})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing exists", func(t *testing.T) {
		exists, err := tasks.Exists(ctx, 99)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestJobStore_CRUDWithTasks(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	tasks := sqlite.NewTaskStore(db, nil)
	jobs := sqlite.NewJobStore(db, nil)

	t1 := &domain.Task{Title: "one"}
	t2 := &domain.Task{Title: "two"}
	require.NoError(t, tasks.Create(ctx, t1))
	require.NoError(t, tasks.Create(ctx, t2))

	job := &domain.Job{JobTitle: "analyst", MinSalary: int64p(1), MaxSalary: int64p(2)}
	require.NoError(t, jobs.Create(ctx, job))
	require.NotZero(t, job.ID)

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return jobs.WithTx(tx).ReplaceTasks(ctx, job.ID, []int64{t2.ID, t1.ID, t1.ID})
	})
	require.NoError(t, err)

	got, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "analyst", got.JobTitle)
	assert.Equal(t, int64(1), *got.MinSalary)
	assert.Equal(t, []int64{t1.ID, t2.ID}, got.TaskIDs())

	got.MaxSalary = nil
	require.NoError(t, jobs.Update(ctx, got))
	got, err = jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, got.MaxSalary)

	// Deleting a task removes it from the relation.
	require.NoError(t, tasks.Delete(ctx, t2.ID))
	got, err = jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{t1.ID}, got.TaskIDs())

	require.NoError(t, jobs.Delete(ctx, job.ID))
	_, err = jobs.GetByID(ctx, job.ID)
	assert.ErrorIs(t, err, store.ErrJobNotFound)
	assert.ErrorIs(t, jobs.Delete(ctx, job.ID), store.ErrJobNotFound)
	assert.ErrorIs(t, jobs.Update(ctx, job), store.ErrJobNotFound)
}

func TestJobStore_ReplaceTasksUnknownTask(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	jobs := sqlite.NewJobStore(db, nil)

	job := &domain.Job{JobTitle: "x"}
	require.NoError(t, jobs.Create(ctx, job))

	err := jobs.ReplaceTasks(ctx, job.ID, []int64{404})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestJobStore_ListPaging(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	tasks := sqlite.NewTaskStore(db, nil)
	jobs := sqlite.NewJobStore(db, nil)

	task := &domain.Task{Title: "shared"}
	require.NoError(t, tasks.Create(ctx, task))

	for _, title := range []string{"c", "a", "b"} {
		job := &domain.Job{JobTitle: title}
		require.NoError(t, jobs.Create(ctx, job))
		require.NoError(t, jobs.ReplaceTasks(ctx, job.ID, []int64{task.ID}))
	}

	tests := []struct {
		name     string
		page     store.PageRequest
		eager    bool
		expected []string
	}{
		{name: "default order by id", page: store.NewPageRequest(0, 10), expected: []string{"c", "a", "b"}},
		{name: "sort by title", page: store.NewPageRequest(0, 10, store.SortOrder{Field: "jobTitle"}), expected: []string{"a", "b", "c"}},
		{name: "sort desc", page: store.NewPageRequest(0, 10, store.SortOrder{Field: "jobTitle", Desc: true}), expected: []string{"c", "b", "a"}},
		{name: "second page", page: store.NewPageRequest(1, 2, store.SortOrder{Field: "jobTitle"}), expected: []string{"c"}},
		{name: "eager", page: store.NewPageRequest(0, 1), eager: true, expected: []string{"c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := jobs.List(ctx, tt.page, tt.eager)
			require.NoError(t, err)

			titles := make([]string, len(list))
			for i, j := range list {
				titles[i] = j.JobTitle
				if tt.eager {
					assert.Len(t, j.Tasks, 1)
				} else {
					assert.Empty(t, j.Tasks)
				}
			}
			assert.Equal(t, tt.expected, titles)
		})
	}

	t.Run("unknown sort field", func(t *testing.T) {
		_, err := jobs.List(ctx, store.NewPageRequest(0, 10, store.SortOrder{Field: "salary"}), false)
		assert.ErrorIs(t, err, store.ErrInvalidSort)
	})

	t.Run("list all carries tasks", func(t *testing.T) {
		all, err := jobs.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		for _, j := range all {
			assert.Len(t, j.Tasks, 1)
		}
		count, err := jobs.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestMapError(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO rel_job__task (job_id, task_id) VALUES (1, 1)`)
	require.Error(t, err)
	assert.True(t, sqlite.IsForeignKeyViolation(err))
	assert.ErrorIs(t, sqlite.MapError(err), store.ErrInvalidEntity)

	_, err = db.ExecContext(ctx, `INSERT INTO task (id, title) VALUES (1, 'a')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO task (id, title) VALUES (1, 'b')`)
	require.Error(t, err)
	assert.ErrorIs(t, sqlite.MapError(err), store.ErrDuplicate)

	assert.ErrorIs(t, sqlite.MapError(sql.ErrNoRows), store.ErrNotFound)
	assert.NoError(t, sqlite.MapError(nil))
}

func TestTaskStore_WriteFailureCarriesOperation(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	err = sqlite.NewTaskStore(db, nil).WithTx(tx).Create(ctx, &domain.Task{Title: "AAAAAAAAAA"})
	require.Error(t, err)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "task", storeErr.Entity)
	assert.Equal(t, "create", storeErr.Operation)
	assert.ErrorIs(t, err, sql.ErrTxDone)
}
