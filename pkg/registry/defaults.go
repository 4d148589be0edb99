package registry

import (
	"reflect"

	"github.com/marshallshelly/bistro/pkg/client"
	"github.com/marshallshelly/bistro/pkg/schema"
)

func defaultResources() []Resource {
	return []Resource{
		{
			Name: "countries", Aliases: []string{"country"}, Path: client.PathCountries,
			Record:    reflect.TypeOf(schema.Country{}),
			Columns:   []Column{{"ID", "id_country"}, {"Name", "name_country"}},
			AdminOnly: true, Gettable: true, Updatable: true, Deletable: true,
		},
		{
			Name: "users", Aliases: []string{"user", "humans"}, Path: client.PathUsers,
			Record: reflect.TypeOf(schema.Human{}),
			Columns: []Column{
				{"ID", "id_user"}, {"Name", "name_user"}, {"Email", "email"},
				{"Born", "age"}, {"Sex", "sex"}, {"Country", "countryName"}, {"Admin", "is_admin"},
			},
			AdminOnly: true, Gettable: true, Updatable: true, Deletable: true,
		},
		{
			Name: "seasons", Aliases: []string{"season"}, Path: client.PathSeasons,
			Record:    reflect.TypeOf(schema.Season{}),
			Columns:   []Column{{"ID", "id_season"}, {"Name", "name_season"}},
			AdminOnly: true, Gettable: true, Updatable: true, Deletable: true,
		},
		{
			Name: "chiefs", Aliases: []string{"chief", "chefs", "chef"}, Path: client.PathChiefs,
			Record: reflect.TypeOf(schema.Chief{}),
			Columns: []Column{
				{"ID", "id_chief"}, {"Name", "name_chief"}, {"Country", "countryName"}, {"Experience", "exp_years"},
			},
			AdminOnly: true, Gettable: true, Updatable: true, Deletable: false,
		},
		{
			Name: "dishtypes", Aliases: []string{"dishtype", "types", "groups"}, Path: client.PathDishTypes,
			Record:    reflect.TypeOf(schema.DishType{}),
			Columns:   []Column{{"ID", "id_group"}, {"Type", "type"}},
			AdminOnly: true, Gettable: true, Updatable: true, Deletable: true,
		},
		{
			Name: "dishes", Aliases: []string{"dish"}, Path: client.PathDishes,
			Record: reflect.TypeOf(schema.Dish{}),
			Columns: []Column{
				{"ID", "id_dish"}, {"Name", "name_dish"}, {"Season", "seasonName"}, {"Country", "countryName"},
				{"Type", "typeName"}, {"Chief", "chiefName"}, {"Rating", "avgRating"},
			},
			AdminOnly: true, Gettable: true, Updatable: true, Deletable: true,
		},
		{
			Name: "ratings", Aliases: []string{"rating"}, Path: client.PathRatings,
			Record: reflect.TypeOf(schema.DishRating{}),
			Columns: []Column{
				{"ID", "id_rate"}, {"User", "userName"}, {"Dish", "dishName"}, {"Rate", "rate"},
				{"Comment", "comment"}, {"Date", "date"},
			},
			AdminOnly: false, Deletable: true,
		},
		{
			Name: "products", Aliases: []string{"product"}, Path: client.PathProducts,
			Record: reflect.TypeOf(schema.Product{}),
			Columns: []Column{
				{"ID", "id_prod"}, {"Name", "name_product"}, {"Calories", "calories"}, {"Cost", "cost_product"},
			},
			AdminOnly: true, Gettable: true, Updatable: true, Deletable: true,
		},
		{
			Name: "recipes", Aliases: []string{"recipe"}, Path: client.PathRecipes,
			Record: reflect.TypeOf(schema.Recipe{}),
			Columns: []Column{
				{"Dish", "dishName"}, {"Product", "productName"}, {"Grams", "gramms"},
				{"Calories", "calories"}, {"Cost", "cost_product"},
			},
			AdminOnly: true, Gettable: true, Updatable: true, Deletable: true, CompositeKey: true,
		},
		{
			Name: "orders", Aliases: []string{"order"}, Path: client.PathOrders,
			Record: reflect.TypeOf(schema.Order{}),
			Columns: []Column{
				{"ID", "id_order"}, {"Dish", "dishName"}, {"User", "userName"}, {"Date", "date"},
			},
			AdminOnly: false, Deletable: true,
		},
	}
}

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, res := range defaultResources() {
		if err := r.Register(res); err != nil {
			panic(err)
		}
	}
	return r
}
