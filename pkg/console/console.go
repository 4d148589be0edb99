// Package console assembles the admin list pages: it fetches a primary
// collection together with its reference collections and joins them into
// display rows.
//
// Every page issues its requests concurrently and joins only after all of
// them succeeded. The first failure cancels the rest and is returned; no
// partially joined page is ever produced. Supplementary data that only an
// admin may read, such as dish rating averages or the dashboard report, is
// left out on failure instead.
package console

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/marshallshelly/bistro/pkg/client"
)

// Console builds pages from API data.
type Console struct {
	api *client.Client
}

// New creates a Console over api.
func New(api *client.Client) *Console {
	return &Console{api: api}
}

// Client returns the underlying API client.
func (c *Console) Client() *client.Client {
	return c.api
}

type listFunc[T any] func(ctx context.Context) ([]T, error)

func listAll[T any](r *client.Resource[T]) listFunc[T] {
	return func(ctx context.Context) ([]T, error) {
		return r.GetAll(ctx, nil)
	}
}

// fetch schedules list on g and stores its result in dst. dst is only
// safe to read after g.Wait returned nil.
func fetch[T any](ctx context.Context, g *errgroup.Group, dst *[]T, list listFunc[T]) {
	g.Go(func() error {
		items, err := list(ctx)
		if err != nil {
			return err
		}
		*dst = items
		return nil
	})
}
