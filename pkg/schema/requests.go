package schema

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the answer of POST /login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	IsAdmin     bool   `json:"is_admin"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
	Name     string `json:"name_user" validate:"required,max=100"`
	IsAdmin  bool   `json:"is_admin"`
}

// ProcedureResult is returned by server-side procedures such as chef
// reassignment, order and rating creation.
type ProcedureResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// Extra holds any procedure-specific fields (old_chef_id, order_id, ...).
	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps unknown fields in Extra.
func (r *ProcedureResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["success"]; ok {
		if err := json.Unmarshal(v, &r.Success); err != nil {
			return err
		}
		delete(raw, "success")
	}
	if v, ok := raw["message"]; ok {
		if err := json.Unmarshal(v, &r.Message); err != nil {
			return err
		}
		delete(raw, "message")
	}
	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}

// ChangeChefRequest is the body of POST /dishes/{id}/change_chef.
type ChangeChefRequest struct {
	NewChefID int `json:"new_chef_id" validate:"required,gt=0"`
}

// DishCost is the answer of GET /dishes/{id}/cost. How the server computes
// it is opaque to the client.
type DishCost struct {
	Cost float64 `json:"cost"`
}

// DishRatingSummary is one row of the dish ratings report.
type DishRatingSummary struct {
	DishID    int     `json:"dish_id"`
	DishName  string  `json:"dish_name"`
	AvgRating float64 `json:"avg_rating"`
	Comments  string  `json:"comments"`
}

// DishSearch holds the optional filters of GET /dishes/search.
// Zero means "not set".
type DishSearch struct {
	CountryID int `json:"country_id,omitempty"`
	SeasonID  int `json:"season_id,omitempty"`
	GroupID   int `json:"group_id,omitempty"`
}

// Values encodes the set filters as query parameters.
func (s DishSearch) Values() url.Values {
	v := url.Values{}
	setPositive(v, "country_id", s.CountryID)
	setPositive(v, "season_id", s.SeasonID)
	setPositive(v, "group_id", s.GroupID)
	return v
}

// DishFilter holds the server-side filters of GET /dishes plus a client-side
// name filter.
type DishFilter struct {
	SeasonID  int
	CountryID int
	TypeID    int
	Name      string
}

// Values encodes the server-side filters as query parameters.
func (f DishFilter) Values() url.Values {
	v := url.Values{}
	setPositive(v, "season", f.SeasonID)
	setPositive(v, "country", f.CountryID)
	setPositive(v, "type", f.TypeID)
	return v
}

func setPositive(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}
