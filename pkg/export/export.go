// Package export writes report rows as CSV or JSON to a local file or an
// S3 object.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/marshallshelly/bistro/pkg/schema"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file name; anything but .json is CSV.
func FormatFor(name string) Format {
	if strings.EqualFold(path.Ext(name), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Table is a header plus string records.
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV writes header and rows as CSV.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// RatingsTable converts the dish ratings report into a Table.
func RatingsTable(rows []schema.DishRatingSummary) Table {
	t := Table{Header: []string{"dish_id", "dish_name", "avg_rating", "comments"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.DishID),
			r.DishName,
			strconv.FormatFloat(r.AvgRating, 'f', 2, 64),
			r.Comments,
		})
	}
	return t
}

// Encode renders rows in format. JSON output is the rows value itself.
func Encode(format Format, table Table, rows any) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
	default:
		if err := WriteCSV(&buf, table.Header, table.Rows); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Sink is a destination for an exported document.
type Sink interface {
	Put(ctx context.Context, body []byte, contentType string) error
	Location() string
}

// Ratings exports the ratings report to sink, encoded by the sink's name.
func Ratings(ctx context.Context, sink Sink, rows []schema.DishRatingSummary) error {
	format := FormatFor(sink.Location())
	data, err := Encode(format, RatingsTable(rows), rows)
	if err != nil {
		return err
	}
	return sink.Put(ctx, data, format.ContentType())
}

// Open returns the sink for target: "s3://bucket/key" uploads to S3,
// anything else is a local file path.
func Open(ctx context.Context, target string) (Sink, error) {
	if rest, ok := strings.CutPrefix(target, "s3://"); ok {
		bucket, key, found := strings.Cut(rest, "/")
		if !found || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid s3 target %q, want s3://bucket/key", target)
		}
		return NewS3Sink(ctx, bucket, key)
	}
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("export target is required")
	}
	return &FileSink{Path: target}, nil
}
