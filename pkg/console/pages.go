package console

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/marshallshelly/bistro/pkg/enrich"
	"github.com/marshallshelly/bistro/pkg/schema"
)

// dishRefs holds the reference collections a dish points at.
type dishRefs struct {
	seasons   []schema.Season
	countries []schema.Country
	types     []schema.DishType
	chiefs    []schema.Chief
}

func (r *dishRefs) fetch(ctx context.Context, g *errgroup.Group, c *Console) {
	fetch(ctx, g, &r.seasons, listAll(c.api.Seasons))
	fetch(ctx, g, &r.countries, listAll(c.api.Countries))
	fetch(ctx, g, &r.types, listAll(c.api.DishTypes))
	fetch(ctx, g, &r.chiefs, listAll(c.api.Chiefs))
}

type dishLookups struct {
	season   enrich.Lookup[int]
	country  enrich.Lookup[int]
	dishType enrich.Lookup[int]
	chief    enrich.Lookup[int]
}

func (r *dishRefs) lookups() dishLookups {
	return dishLookups{
		season:   enrich.Names(r.seasons, func(s schema.Season) int { return s.ID }, func(s schema.Season) string { return s.Name }),
		country:  countryNames(r.countries),
		dishType: enrich.Names(r.types, func(t schema.DishType) int { return t.ID }, func(t schema.DishType) string { return t.Type }),
		chief:    enrich.Names(r.chiefs, func(c schema.Chief) int { return c.ID }, func(c schema.Chief) string { return c.Name }),
	}
}

func countryNames(countries []schema.Country) enrich.Lookup[int] {
	return enrich.Names(countries, func(c schema.Country) int { return c.ID }, func(c schema.Country) string { return c.Name })
}

func userNames(users []schema.Human) enrich.Lookup[int] {
	return enrich.Names(users, func(u schema.Human) int { return u.ID }, func(u schema.Human) string { return u.Name })
}

func dishNames(dishes []schema.Dish) enrich.Lookup[int] {
	return enrich.Names(dishes, func(d schema.Dish) int { return d.ID }, func(d schema.Dish) string { return d.Name })
}

// Dishes loads the dish list. Server-side filters go in the query, the
// name filter is applied after joining. Unresolved references are "".
// AvgRating is nil for every row when the ratings cannot be listed.
func (c *Console) Dishes(ctx context.Context, filter schema.DishFilter) ([]schema.DishRow, error) {
	var (
		dishes  []schema.Dish
		ratings []schema.DishRating
		refs    dishRefs
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(gctx, g, &dishes, func(ctx context.Context) ([]schema.Dish, error) {
		return c.api.Dishes.GetAll(ctx, filter.Values())
	})
	refs.fetch(gctx, g, c)
	g.Go(func() error {
		ratings = c.optionalRatings(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dishes: %w", err)
	}

	names := refs.lookups()
	averages := averageRatings(ratings)
	rows := enrich.Map(dishes, func(d schema.Dish) schema.DishRow {
		row := schema.DishRow{
			Dish:        d,
			SeasonName:  names.season.Name(d.SeasonID),
			CountryName: names.country.Name(d.CountryID),
			TypeName:    names.dishType.Name(d.GroupID),
			ChiefName:   names.chief.Name(d.ChiefID),
		}
		if avg, ok := averages[d.ID]; ok {
			row.AvgRating = &avg
		}
		return row
	})

	if needle := strings.ToLower(strings.TrimSpace(filter.Name)); needle != "" {
		rows = enrich.Filter(rows, func(r schema.DishRow) bool {
			return strings.Contains(strings.ToLower(r.Name), needle)
		})
	}
	return rows, nil
}

// SeasonalDishes loads the dishes of a season for the reports view.
// Unresolved references show the raw ID.
func (c *Console) SeasonalDishes(ctx context.Context, season string) ([]schema.ReportDishRow, error) {
	return c.reportDishes(ctx, "load seasonal dishes", func(ctx context.Context) ([]schema.Dish, error) {
		return c.api.Dishes.Seasonal(ctx, season)
	})
}

// SearchDishes runs a dish search for the reports view.
// Unresolved references show the raw ID.
func (c *Console) SearchDishes(ctx context.Context, search schema.DishSearch) ([]schema.ReportDishRow, error) {
	return c.reportDishes(ctx, "search dishes", func(ctx context.Context) ([]schema.Dish, error) {
		return c.api.Dishes.Search(ctx, search)
	})
}

func (c *Console) reportDishes(ctx context.Context, op string, list listFunc[schema.Dish]) ([]schema.ReportDishRow, error) {
	var (
		dishes []schema.Dish
		refs   dishRefs
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(gctx, g, &dishes, list)
	refs.fetch(gctx, g, c)
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	names := refs.lookups()
	return enrich.Map(dishes, func(d schema.Dish) schema.ReportDishRow {
		return schema.ReportDishRow{
			Dish:        d,
			SeasonName:  names.season.NameOrKey(d.SeasonID),
			CountryName: names.country.NameOrKey(d.CountryID),
			ChiefName:   names.chief.NameOrKey(d.ChiefID),
			DishType:    names.dishType.NameOrKey(d.GroupID),
		}
	}), nil
}

// Chiefs loads chiefs with their country names.
func (c *Console) Chiefs(ctx context.Context) ([]schema.ChiefRow, error) {
	var (
		chiefs    []schema.Chief
		countries []schema.Country
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(gctx, g, &chiefs, listAll(c.api.Chiefs))
	fetch(gctx, g, &countries, listAll(c.api.Countries))
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load chiefs: %w", err)
	}

	country := countryNames(countries)
	return enrich.Map(chiefs, func(ch schema.Chief) schema.ChiefRow {
		return schema.ChiefRow{Chief: ch, CountryName: country.Name(ch.CountryID)}
	}), nil
}

// Users loads users with their country names.
func (c *Console) Users(ctx context.Context) ([]schema.HumanRow, error) {
	var (
		users     []schema.Human
		countries []schema.Country
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(gctx, g, &users, listAll(c.api.Users))
	fetch(gctx, g, &countries, listAll(c.api.Countries))
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	country := countryNames(countries)
	return enrich.Map(users, func(u schema.Human) schema.HumanRow {
		return schema.HumanRow{Human: u, CountryName: country.Name(u.CountryID)}
	}), nil
}

// Recipes loads recipe lines with dish and product details. A missing
// product leaves its name empty and its numbers zero.
func (c *Console) Recipes(ctx context.Context) ([]schema.RecipeRow, error) {
	var (
		recipes  []schema.Recipe
		products []schema.Product
		dishes   []schema.Dish
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(gctx, g, &recipes, listAll(c.api.Recipes.Resource))
	fetch(gctx, g, &products, listAll(c.api.Products))
	fetch(gctx, g, &dishes, listAll(c.api.Dishes.Resource))
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}

	productsByID := enrich.Index(products, func(p schema.Product) int { return p.ID })
	dish := dishNames(dishes)
	return enrich.Map(recipes, func(r schema.Recipe) schema.RecipeRow {
		row := schema.RecipeRow{Recipe: r, DishName: dish.Name(r.DishID)}
		if p, ok := productsByID.Get(r.ProductID); ok {
			row.ProductName = p.Name
			row.Calories = p.Calories
			row.Cost = p.Cost
		}
		return row
	}), nil
}

// Ratings loads ratings with user and dish names.
func (c *Console) Ratings(ctx context.Context) ([]schema.RatingRow, error) {
	var (
		ratings []schema.DishRating
		users   []schema.Human
		dishes  []schema.Dish
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(gctx, g, &ratings, listAll(c.api.Ratings))
	fetch(gctx, g, &users, listAll(c.api.Users))
	fetch(gctx, g, &dishes, listAll(c.api.Dishes.Resource))
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	user, dish := userNames(users), dishNames(dishes)
	return enrich.Map(ratings, func(r schema.DishRating) schema.RatingRow {
		return schema.RatingRow{DishRating: r, UserName: user.Name(r.UserID), DishName: dish.Name(r.DishID)}
	}), nil
}

// Orders loads orders with user and dish names.
func (c *Console) Orders(ctx context.Context) ([]schema.OrderRow, error) {
	var (
		orders []schema.Order
		users  []schema.Human
		dishes []schema.Dish
	)

	g, gctx := errgroup.WithContext(ctx)
	fetch(gctx, g, &orders, listAll(c.api.Orders))
	fetch(gctx, g, &users, listAll(c.api.Users))
	fetch(gctx, g, &dishes, listAll(c.api.Dishes.Resource))
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	return orderRows(orders, userNames(users), dishNames(dishes)), nil
}

func orderRows(orders []schema.Order, user, dish enrich.Lookup[int]) []schema.OrderRow {
	return enrich.Map(orders, func(o schema.Order) schema.OrderRow {
		return schema.OrderRow{Order: o, DishName: dish.Name(o.DishID), UserName: user.Name(o.UserID)}
	})
}

// optionalRatings lists all ratings for the average column. Listing them
// needs an admin session, so any failure yields none instead of an error.
func (c *Console) optionalRatings(ctx context.Context) []schema.DishRating {
	ratings, err := c.api.Ratings.GetAll(ctx, nil)
	if err != nil {
		return nil
	}
	return ratings
}

func averageRatings(ratings []schema.DishRating) map[int]float64 {
	type acc struct{ sum, n int }
	totals := make(map[int]*acc)
	for _, r := range ratings {
		a, ok := totals[r.DishID]
		if !ok {
			a = &acc{}
			totals[r.DishID] = a
		}
		a.sum += r.Rate
		a.n++
	}

	out := make(map[int]float64, len(totals))
	for id, a := range totals {
		out[id] = float64(a.sum) / float64(a.n)
	}
	return out
}
