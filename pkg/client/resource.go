// Package client exposes typed CRUD access to every restaurant API resource.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/marshallshelly/bistro/pkg/runtime"
)

// Resource is the uniform CRUD surface of one API collection.
type Resource[T any] struct {
	transport *runtime.Transport
	path      string
}

// NewResource binds a record type to a collection path such as "/dishes".
func NewResource[T any](transport *runtime.Transport, path string) *Resource[T] {
	return &Resource[T]{transport: transport, path: path}
}

// Path returns the collection path.
func (r *Resource[T]) Path() string {
	return r.path
}

// GetAll lists the collection. params are sent as query parameters.
func (r *Resource[T]) GetAll(ctx context.Context, params url.Values) ([]T, error) {
	var items []T
	if err := r.transport.Do(ctx, http.MethodGet, r.path, params, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// GetByID fetches a single record. A missing record matches runtime.ErrNotFound.
func (r *Resource[T]) GetByID(ctx context.Context, id int) (T, error) {
	var item T
	err := r.transport.Do(ctx, http.MethodGet, r.itemPath(id), nil, nil, &item)
	return item, err
}

// Create posts a full or partial record and returns what the server echoed.
// Servers that answer with a status message yield a zero record.
func (r *Resource[T]) Create(ctx context.Context, partial any) (T, error) {
	var item T
	err := r.transport.Do(ctx, http.MethodPost, r.path, nil, partial, &item)
	return item, err
}

// Update sends a partial record for id.
func (r *Resource[T]) Update(ctx context.Context, id int, partial any) (T, error) {
	var item T
	err := r.transport.Do(ctx, http.MethodPut, r.itemPath(id), nil, partial, &item)
	return item, err
}

// Delete removes the record with id.
func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	return r.transport.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
}

func (r *Resource[T]) itemPath(id int) string {
	return fmt.Sprintf("%s/%s", r.path, strconv.Itoa(id))
}
