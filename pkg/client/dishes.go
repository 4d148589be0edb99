package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/marshallshelly/bistro/pkg/schema"
)

// Dishes adds the dish procedures to the generic resource.
type Dishes struct {
	*Resource[schema.Dish]
}

// Seasonal lists dishes of a season. season is passed through as a path
// segment; the server accepts a season name or ID.
func (d *Dishes) Seasonal(ctx context.Context, season string) ([]schema.Dish, error) {
	var dishes []schema.Dish
	path := d.path + "/seasonal/" + url.PathEscape(season)
	if err := d.transport.Do(ctx, http.MethodGet, path, nil, nil, &dishes); err != nil {
		return nil, err
	}
	if dishes == nil {
		dishes = []schema.Dish{}
	}
	return dishes, nil
}

// Cost returns the server-computed cost of a dish.
func (d *Dishes) Cost(ctx context.Context, id int) (schema.DishCost, error) {
	var cost schema.DishCost
	err := d.transport.Do(ctx, http.MethodGet, fmt.Sprintf("%s/%d/cost", d.path, id), nil, nil, &cost)
	return cost, err
}

// ChangeChef reassigns a dish to another chief.
func (d *Dishes) ChangeChef(ctx context.Context, id, newChefID int) (schema.ProcedureResult, error) {
	var result schema.ProcedureResult
	body := schema.ChangeChefRequest{NewChefID: newChefID}
	err := d.transport.Do(ctx, http.MethodPost, fmt.Sprintf("%s/%d/change_chef", d.path, id), nil, body, &result)
	return result, err
}

// Search filters dishes by country, season and group. Unset filters are
// not sent.
func (d *Dishes) Search(ctx context.Context, search schema.DishSearch) ([]schema.Dish, error) {
	var dishes []schema.Dish
	if err := d.transport.Do(ctx, http.MethodGet, d.path+"/search", search.Values(), nil, &dishes); err != nil {
		return nil, err
	}
	if dishes == nil {
		dishes = []schema.Dish{}
	}
	return dishes, nil
}
