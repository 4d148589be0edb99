package schema

// Display rows: a record decorated with names resolved from reference
// collections. Rows are built fresh on every load and never written back.

// DishRow is a dish as shown in the dish list.
type DishRow struct {
	Dish
	SeasonName  string   `json:"seasonName"`
	CountryName string   `json:"countryName"`
	TypeName    string   `json:"typeName"`
	ChiefName   string   `json:"chiefName"`
	AvgRating   *float64 `json:"avgRating,omitempty"`
}

// ReportDishRow is a dish as shown on the reports page. Unresolved
// references show the raw ID instead of an empty string.
type ReportDishRow struct {
	Dish
	SeasonName  string `json:"season_name"`
	CountryName string `json:"country_name"`
	ChiefName   string `json:"chief_name"`
	DishType    string `json:"dish_type"`
}

// RecipeRow is a recipe line with its product details.
type RecipeRow struct {
	Recipe
	DishName    string  `json:"dishName"`
	ProductName string  `json:"productName"`
	Calories    int     `json:"calories"`
	Cost        float64 `json:"cost_product"`
}

// Key identifies a recipe row by its composite key.
func (r RecipeRow) Key() string {
	return RecipeKey(r.DishID, r.ProductID)
}

// OrderRow is an order with dish and user names.
type OrderRow struct {
	Order
	DishName string `json:"dishName"`
	UserName string `json:"userName"`
}

// RatingRow is a rating with dish and user names.
type RatingRow struct {
	DishRating
	UserName string `json:"userName"`
	DishName string `json:"dishName"`
}

// ChiefRow is a chief with the country name.
type ChiefRow struct {
	Chief
	CountryName string `json:"countryName"`
}

// HumanRow is a user with the country name.
type HumanRow struct {
	Human
	CountryName string `json:"countryName"`
}
