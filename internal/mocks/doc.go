// Package mocks provides centralized mock implementations for testing.
//
// Mocks use function fields for custom behavior, fall back to canned
// values when a function is not set, and record every call for later
// verification:
//
//	res := &mocks.MockResource[domain.Task]{
//	    GetFn: func(ctx context.Context, id int64) (*domain.Task, error) {
//	        return &domain.Task{ID: id, Title: "loaded"}, nil
//	    },
//	}
//	store := entitystore.New[domain.Task]("task", res, nil)
//	// ...
//	assert.Equal(t, []int64{42}, res.GetCalls())
package mocks
