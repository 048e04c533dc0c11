package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/phrazzld/taskdesk/internal/domain"
)

// Task and Job are the wire types of the two resources.
type (
	Task = domain.Task
	Job  = domain.Job
)

// Entity is any resource type addressed by a numeric ID.
type Entity interface {
	EntityID() int64
}

// Query narrows a list or search call. Zero values are omitted.
type Query struct {
	Page  int
	Size  int
	Sort  []string
	Eager bool
	// Search switches List to the /api/_search endpoint.
	Search string
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	for _, s := range q.Sort {
		v.Add("sort", s)
	}
	if q.Eager {
		v.Set("eagerload", "true")
	}
	if q.Search != "" {
		v.Set("query", q.Search)
	}
	return v
}

// Resource exposes the REST verbs of one entity collection.
type Resource[T Entity] struct {
	client *Client
	name   string
}

// NewResource binds c to /api/{name}.
func NewResource[T Entity](c *Client, name string) *Resource[T] {
	return &Resource[T]{client: c, name: name}
}

func (r *Resource[T]) path(id int64) string {
	if id == 0 {
		return "/api/" + r.name
	}
	return fmt.Sprintf("/api/%s/%d", r.name, id)
}

// Get fetches one entity.
func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	var out T
	if _, err := r.client.do(ctx, http.MethodGet, r.path(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches one page and the total count from X-Total-Count. When the
// header is absent the total is the number of entities returned.
func (r *Resource[T]) List(ctx context.Context, q Query) ([]T, int64, error) {
	path := r.path(0)
	if q.Search != "" {
		path = "/api/_search/" + r.name
	}

	var out []T
	header, err := r.client.do(ctx, http.MethodGet, path, q.values(), nil, &out)
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(out))
	if raw := header.Get("X-Total-Count"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid X-Total-Count %q: %w", raw, err)
		}
		total = n
	}
	return out, total, nil
}

// Create posts a new entity. The entity must not carry an ID.
func (r *Resource[T]) Create(ctx context.Context, entity T) (*T, error) {
	var out T
	if _, err := r.client.do(ctx, http.MethodPost, r.path(0), nil, entity, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the entity identified by its own ID.
func (r *Resource[T]) Update(ctx context.Context, entity T) (*T, error) {
	return r.write(ctx, http.MethodPut, entity)
}

// Patch sends entity as a merge patch to the entity identified by its ID.
func (r *Resource[T]) Patch(ctx context.Context, entity T) (*T, error) {
	return r.write(ctx, http.MethodPatch, entity)
}

func (r *Resource[T]) write(ctx context.Context, method string, entity T) (*T, error) {
	id := entity.EntityID()
	if id == 0 {
		return nil, fmt.Errorf("%s %s: %w", method, r.name, domain.ErrIDMissing)
	}
	var out T
	if _, err := r.client.do(ctx, method, r.path(id), nil, entity, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes one entity.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	if id == 0 {
		return fmt.Errorf("DELETE %s: %w", r.name, domain.ErrIDMissing)
	}
	_, err := r.client.do(ctx, http.MethodDelete, r.path(id), nil, nil, nil)
	return err
}
