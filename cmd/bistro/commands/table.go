package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/marshallshelly/bistro/cmd/bistro/output"
	"github.com/marshallshelly/bistro/pkg/registry"
)

// render prints rows as JSON or as a table over the resource's columns.
func render(res *registry.Resource, rows any) error {
	if jsonOutput {
		return output.JSON(rows)
	}
	header, records, err := tableRows(res.Columns, rows)
	if err != nil {
		return err
	}
	output.Table(header, records)
	return nil
}

// tableRows flattens rows through their JSON form so any row type can be
// shown by column key.
func tableRows(columns []registry.Column, rows any) ([]string, [][]string, error) {
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode rows: %w", err)
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		// A single record.
		var item map[string]any
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, nil, fmt.Errorf("failed to decode rows: %w", err)
		}
		items = []map[string]any{item}
	}

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}

	records := make([][]string, 0, len(items))
	for _, item := range items {
		record := make([]string, len(columns))
		for i, c := range columns {
			record[i] = formatCell(item[c.Key])
		}
		records = append(records, record)
	}
	return header, records, nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', 2, 64)
	default:
		return fmt.Sprint(val)
	}
}
