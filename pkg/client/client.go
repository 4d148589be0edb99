package client

import (
	"github.com/marshallshelly/bistro/pkg/runtime"
	"github.com/marshallshelly/bistro/pkg/schema"
)

// Collection paths relative to the API base URL.
const (
	PathCountries = "/countries"
	PathUsers     = "/users"
	PathSeasons   = "/seasons"
	PathChiefs    = "/chiefs"
	PathDishTypes = "/dishtypes"
	PathDishes    = "/dishes"
	PathRatings   = "/ratings"
	PathProducts  = "/products"
	PathRecipes   = "/recipes"
	PathOrders    = "/orders"
)

// Client groups one accessor per API resource over a shared transport.
type Client struct {
	transport *runtime.Transport

	Countries *Resource[schema.Country]
	Users     *Resource[schema.Human]
	Seasons   *Resource[schema.Season]
	Chiefs    *Resource[schema.Chief]
	DishTypes *Resource[schema.DishType]
	Dishes    *Dishes
	Ratings   *Resource[schema.DishRating]
	Products  *Resource[schema.Product]
	Recipes   *Recipes
	Orders    *Resource[schema.Order]
	Reports   *Reports
	Auth      *Auth
}

// New builds a Client on top of transport.
func New(transport *runtime.Transport) *Client {
	return &Client{
		transport: transport,
		Countries: NewResource[schema.Country](transport, PathCountries),
		Users:     NewResource[schema.Human](transport, PathUsers),
		Seasons:   NewResource[schema.Season](transport, PathSeasons),
		Chiefs:    NewResource[schema.Chief](transport, PathChiefs),
		DishTypes: NewResource[schema.DishType](transport, PathDishTypes),
		Dishes:    &Dishes{Resource: NewResource[schema.Dish](transport, PathDishes)},
		Ratings:   NewResource[schema.DishRating](transport, PathRatings),
		Products:  NewResource[schema.Product](transport, PathProducts),
		Recipes:   &Recipes{Resource: NewResource[schema.Recipe](transport, PathRecipes)},
		Orders:    NewResource[schema.Order](transport, PathOrders),
		Reports:   &Reports{transport: transport},
		Auth:      &Auth{transport: transport},
	}
}

// Session returns the session shared by all resources.
func (c *Client) Session() *runtime.Session {
	return c.transport.Session()
}
