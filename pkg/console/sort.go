package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marshallshelly/bistro/pkg/schema"
)

// SortDishes orders rows in place by "id" or "name". A leading "-"
// reverses the order. An empty key leaves rows untouched.
func SortDishes(rows []schema.DishRow, by string) error {
	if by == "" {
		return nil
	}

	desc := strings.HasPrefix(by, "-")
	key := strings.TrimPrefix(by, "-")

	var less func(a, b schema.DishRow) bool
	switch key {
	case "id":
		less = func(a, b schema.DishRow) bool { return a.ID < b.ID }
	case "name":
		less = func(a, b schema.DishRow) bool {
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
			return a.ID < b.ID
		}
	default:
		return fmt.Errorf("unknown sort key %q (want id or name)", key)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
	return nil
}
