package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bistro/pkg/runtime"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		wantField string
	}{
		{name: "valid country", value: Country{Name: "Italy"}},
		{name: "missing country name", value: Country{}, wantField: "name_country"},
		{name: "rating above scale", value: DishRating{UserID: 1, DishID: 1, Rate: 6}, wantField: "rate"},
		{name: "rating below scale", value: DishRating{UserID: 1, DishID: 1, Rate: 0}, wantField: "rate"},
		{name: "valid rating", value: DishRating{UserID: 1, DishID: 1, Rate: 5, Comment: "great"}},
		{name: "bad email", value: Human{Name: "Ann", Email: "nope"}, wantField: "email"},
		{name: "bad birth date", value: Human{Name: "Ann", Age: "01.02.1990"}, wantField: "age"},
		{name: "bad sex", value: Human{Name: "Ann", Sex: "X"}, wantField: "sex"},
		{name: "valid human", value: Human{Name: "Ann", Email: "ann@example.com", Age: "1990-02-01", Sex: "F"}},
		{name: "dish needs references", value: Dish{Name: "Pasta"}, wantField: "id_season"},
		{name: "recipe grams", value: Recipe{DishID: 1, ProductID: 2}, wantField: "gramms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.value)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *runtime.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
			assert.NotEmpty(t, validationErr.Message)
		})
	}
}

func TestValidatePartial(t *testing.T) {
	// Only the rate is sent, so missing references are not reported.
	err := ValidatePartial(DishRating{Rate: 4}, []string{"rate"})
	assert.NoError(t, err)

	err = ValidatePartial(DishRating{Rate: 9}, []string{"rate"})
	var validationErr *runtime.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "rate", validationErr.Field)

	assert.NoError(t, ValidatePartial(&Dish{}, []string{"unknown"}))
}

func TestProcedureResult_UnmarshalJSON(t *testing.T) {
	var result ProcedureResult
	err := json.Unmarshal([]byte(`{"success":true,"message":"Chef changed successfully","old_chef_id":1,"new_chef_id":2}`), &result)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Chef changed successfully", result.Message)
	assert.JSONEq(t, `2`, string(result.Extra["new_chef_id"]))
	assert.NotContains(t, result.Extra, "success")
}

func TestDishSearch_Values(t *testing.T) {
	assert.Equal(t, "", DishSearch{}.Values().Encode())
	assert.Equal(t, "country_id=7&group_id=3", DishSearch{CountryID: 7, GroupID: 3}.Values().Encode())
	assert.Equal(t, "season=2", DishFilter{SeasonID: 2, Name: "pasta"}.Values().Encode())
}

func TestRecipeRow_Key(t *testing.T) {
	row := RecipeRow{Recipe: Recipe{DishID: 3, ProductID: 14}}
	assert.Equal(t, "3-14", row.Key())
}
