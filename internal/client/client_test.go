package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/taskdesk/internal/client"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// newTestClient serves handler and records every request it receives.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*client.Client, *[]recordedRequest) {
	t.Helper()
	var recorded []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		recorded = append(recorded, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, time.Second)
	require.NoError(t, err)
	return c, &recorded
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "valid", baseURL: "http://localhost:8080"},
		{name: "trailing slash", baseURL: "http://localhost:8080/"},
		{name: "missing scheme", baseURL: "localhost:8080", wantErr: true},
		{name: "empty", baseURL: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := client.New(tt.baseURL, 0)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestResource_Get(t *testing.T) {
	c, recorded := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.Task{ID: 3, Title: "t", Description: "d"})
	})

	task, err := c.Tasks().Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &domain.Task{ID: 3, Title: "t", Description: "d"}, task)
	require.Len(t, *recorded, 1)
	assert.Equal(t, http.MethodGet, (*recorded)[0].Method)
	assert.Equal(t, "/api/tasks/3", (*recorded)[0].Path)
}

func TestResource_List(t *testing.T) {
	t.Run("reads total count header", func(t *testing.T) {
		c, recorded := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Total-Count", "12")
			writeJSON(w, http.StatusOK, []domain.Job{{ID: 1, JobTitle: "a"}})
		})

		jobs, total, err := c.Jobs().List(context.Background(), client.Query{
			Page:  1,
			Size:  5,
			Sort:  []string{"jobTitle,desc"},
			Eager: true,
		})
		require.NoError(t, err)
		assert.Len(t, jobs, 1)
		assert.Equal(t, int64(12), total)
		assert.Equal(t, "/api/jobs", (*recorded)[0].Path)
		assert.Equal(t, "eagerload=true&page=1&size=5&sort=jobTitle%2Cdesc", (*recorded)[0].Query)
	})

	t.Run("falls back to result length", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []domain.Task{{ID: 1}, {ID: 2}})
		})

		tasks, total, err := c.Tasks().List(context.Background(), client.Query{})
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
		assert.Equal(t, int64(2), total)
	})

	t.Run("search endpoint", func(t *testing.T) {
		c, recorded := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []domain.Task{})
		})

		_, _, err := c.Tasks().List(context.Background(), client.Query{Search: "title:report"})
		require.NoError(t, err)
		assert.Equal(t, "/api/_search/tasks", (*recorded)[0].Path)
		assert.Equal(t, "query=title%3Areport", (*recorded)[0].Query)
	})

	t.Run("bad total count", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Total-Count", "many")
			writeJSON(w, http.StatusOK, []domain.Task{})
		})

		_, _, err := c.Tasks().List(context.Background(), client.Query{})
		assert.Error(t, err)
	})
}

func TestResource_Writes(t *testing.T) {
	c, recorded := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			writeJSON(w, http.StatusCreated, domain.Task{ID: 7, Title: "new"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusOK, domain.Task{ID: 7, Title: "changed"})
		}
	})
	ctx := context.Background()
	tasks := c.Tasks()

	created, err := tasks.Create(ctx, domain.Task{Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)

	updated, err := tasks.Update(ctx, domain.Task{ID: 7, Title: "changed"})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Title)

	_, err = tasks.Patch(ctx, domain.Task{ID: 7, Title: "changed"})
	require.NoError(t, err)

	require.NoError(t, tasks.Delete(ctx, 7))

	require.Len(t, *recorded, 4)
	assert.Equal(t, http.MethodPost, (*recorded)[0].Method)
	assert.Equal(t, "/api/tasks", (*recorded)[0].Path)
	assert.JSONEq(t, `{"title":"new","description":""}`, (*recorded)[0].Body)
	assert.Equal(t, http.MethodPut, (*recorded)[1].Method)
	assert.Equal(t, "/api/tasks/7", (*recorded)[1].Path)
	assert.Equal(t, http.MethodPatch, (*recorded)[2].Method)
	assert.Equal(t, http.MethodDelete, (*recorded)[3].Method)
	assert.Equal(t, "/api/tasks/7", (*recorded)[3].Path)
}

func TestResource_WritesRequireID(t *testing.T) {
	c, recorded := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	_, err := c.Tasks().Update(ctx, domain.Task{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrIDMissing)
	_, err = c.Jobs().Patch(ctx, domain.Job{JobTitle: "x"})
	assert.ErrorIs(t, err, domain.ErrIDMissing)
	assert.ErrorIs(t, c.Tasks().Delete(ctx, 0), domain.ErrIDMissing)
	assert.Empty(t, *recorded)
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantTrace   string
		notFound    bool
	}{
		{
			name:        "json error body",
			status:      http.StatusNotFound,
			body:        `{"error":"Task not found","trace_id":"abc"}`,
			wantMessage: "Task not found",
			wantTrace:   "abc",
			notFound:    true,
		},
		{
			name:        "bad request",
			status:      http.StatusBadRequest,
			body:        `{"error":"A new entity cannot already have an ID"}`,
			wantMessage: "A new entity cannot already have an ID",
		},
		{
			name:   "non json body",
			status: http.StatusBadGateway,
			body:   "upstream down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Tasks().Get(context.Background(), 1)
			require.Error(t, err)

			var apiErr *client.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantTrace, apiErr.TraceID)
			assert.Equal(t, tt.notFound, client.IsNotFound(err))
			assert.Contains(t, err.Error(), "api error")
		})
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.Task{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Tasks().Get(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
