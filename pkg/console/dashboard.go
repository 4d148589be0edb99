package console

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/marshallshelly/bistro/pkg/runtime"
	"github.com/marshallshelly/bistro/pkg/schema"
)

const (
	// DashboardMinRating is the minimum average for the top-rated list.
	DashboardMinRating = 4
	// DashboardListSize caps the top-rated and recent-order lists.
	DashboardListSize = 5
)

// Dashboard summarizes the restaurant.
type Dashboard struct {
	TotalDishes  int                        `json:"totalDishes"`
	TotalUsers   int                        `json:"totalUsers"`
	TotalRatings int                        `json:"totalRatings"`
	TotalOrders  int                        `json:"totalOrders"`
	TopRated     []schema.DishRatingSummary `json:"topRatedDishes"`
	RecentOrders []schema.OrderRow          `json:"recentOrders"`

	// TopRatedErr is set when the ratings report failed; TopRated is then
	// empty and the rest of the dashboard still holds.
	TopRatedErr   error  `json:"-"`
	TopRatedError string `json:"topRatedError,omitempty"`
}

// Dashboard loads the four counted collections and the ratings report. Only
// a failure of the collections fails the dashboard.
func (c *Console) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		dishes    []schema.Dish
		users     []schema.Human
		ratings   []schema.DishRating
		orders    []schema.Order
		report    []schema.DishRatingSummary
		reportErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(gctx, g, &dishes, listAll(c.api.Dishes.Resource))
	fetch(gctx, g, &users, listAll(c.api.Users))
	fetch(gctx, g, &ratings, listAll(c.api.Ratings))
	fetch(gctx, g, &orders, listAll(c.api.Orders))
	g.Go(func() error {
		report, reportErr = c.api.Reports.DishRatings(gctx, DashboardMinRating)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	d := &Dashboard{
		TotalDishes:  len(dishes),
		TotalUsers:   len(users),
		TotalRatings: len(ratings),
		TotalOrders:  len(orders),
		TopRated:     []schema.DishRatingSummary{},
		RecentOrders: head(recentOrders(orders, users, dishes), DashboardListSize),
	}
	if reportErr != nil {
		d.TopRatedErr = fmt.Errorf("load ratings report: %w", reportErr)
		d.TopRatedError = runtime.UserMessage(reportErr, "Failed to load the ratings report")
		return d, nil
	}
	d.TopRated = head(report, DashboardListSize)
	return d, nil
}

// recentOrders returns enriched orders, newest first. Dates are ISO
// strings, so they compare lexically; ties keep the higher ID first.
func recentOrders(orders []schema.Order, users []schema.Human, dishes []schema.Dish) []schema.OrderRow {
	rows := orderRows(orders, userNames(users), dishNames(dishes))
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].ID > rows[j].ID
	})
	return rows
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
