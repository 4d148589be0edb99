package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/marshallshelly/bistro/pkg/runtime"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names so messages match what the user typed.
		validate.RegisterTagNameFunc(jsonName)
	})
	return validate
}

// Validate checks a full record before it is created.
func Validate(v any) error {
	return toValidationError(validatorInstance().Struct(v))
}

// ValidatePartial checks only the fields named by jsonKeys, for updates that
// send a partial record. Unknown keys are ignored.
func ValidatePartial(v any, jsonKeys []string) error {
	fields := fieldNames(reflect.TypeOf(v), jsonKeys)
	if len(fields) == 0 {
		return nil
	}
	return toValidationError(validatorInstance().StructPartial(v, fields...))
}

// RecipeKey formats the composite key of a recipe.
func RecipeKey(dishID, productID int) string {
	return strconv.Itoa(dishID) + "-" + strconv.Itoa(productID)
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	first := errs[0]
	return &runtime.ValidationError{
		Field:   first.Field(),
		Message: describe(first),
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// fieldNames maps JSON keys to the Go field names StructPartial expects.
func fieldNames(t reflect.Type, jsonKeys []string) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	wanted := make(map[string]bool, len(jsonKeys))
	for _, k := range jsonKeys {
		wanted[k] = true
	}

	var fields []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if wanted[jsonName(f)] {
			fields = append(fields, f.Name)
		}
	}
	return fields
}
