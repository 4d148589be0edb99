// Package schema defines the records exchanged with the restaurant API.
package schema

// Country is a reference record.
type Country struct {
	ID   int    `json:"id_country,omitempty"`
	Name string `json:"name_country" validate:"required,max=100"`
}

// Season is a reference record.
type Season struct {
	ID   int    `json:"id_season,omitempty"`
	Name string `json:"name_season" validate:"required,max=50"`
}

// DishType is a reference record. The server calls it a group.
type DishType struct {
	ID   int    `json:"id_group,omitempty"`
	Type string `json:"type" validate:"required,max=50"`
}

// Chief is a cook working in the restaurant.
type Chief struct {
	ID        int    `json:"id_chief,omitempty"`
	Name      string `json:"name_chief" validate:"required,max=100"`
	CountryID int    `json:"id_country" validate:"required,gt=0"`
	ExpYears  int    `json:"exp_years" validate:"gte=0,lte=80"`
}

// Product is an ingredient.
type Product struct {
	ID       int     `json:"id_prod,omitempty"`
	Name     string  `json:"name_product" validate:"required,max=100"`
	Calories int     `json:"calories" validate:"gte=0"`
	Cost     float64 `json:"cost_product" validate:"gte=0"`
	SeasonID int     `json:"id_season,omitempty"`
}

// Dish is the primary record of the console.
type Dish struct {
	ID        int    `json:"id_dish,omitempty"`
	Name      string `json:"name_dish" validate:"required,max=100"`
	SeasonID  int    `json:"id_season" validate:"required,gt=0"`
	CountryID int    `json:"id_country" validate:"required,gt=0"`
	GroupID   int    `json:"id_group" validate:"required,gt=0"`
	RateID    *int   `json:"id_rate,omitempty"`
	ChiefID   int    `json:"id_chief" validate:"required,gt=0"`
}

// Recipe links a dish to a product. It has no surrogate key.
type Recipe struct {
	DishID    int `json:"id_dish" validate:"required,gt=0"`
	ProductID int `json:"id_product" validate:"required,gt=0"`
	Grams     int `json:"gramms" validate:"gt=0"`
}

// DishRating is a user's score for a dish.
type DishRating struct {
	ID      int    `json:"id_rate,omitempty"`
	UserID  int    `json:"id_user" validate:"required,gt=0"`
	DishID  int    `json:"id_dish" validate:"required,gt=0"`
	Rate    int    `json:"rate" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=500"`
	Date    string `json:"date,omitempty"`
}

// Order is a dish ordered by a user.
type Order struct {
	ID     int    `json:"id_order,omitempty"`
	DishID int    `json:"id_dish" validate:"required,gt=0"`
	UserID int    `json:"id_user" validate:"required,gt=0"`
	Date   string `json:"date,omitempty"`
}

// Human is a registered user.
type Human struct {
	ID        int    `json:"id_user,omitempty"`
	Name      string `json:"name_user" validate:"required,max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Age       string `json:"age,omitempty" validate:"omitempty,datetime=2006-01-02"` // date of birth
	CountryID int    `json:"id_country,omitempty"`
	Sex       string `json:"sex,omitempty" validate:"omitempty,oneof=M F"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}
