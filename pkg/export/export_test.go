package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/bistro/pkg/schema"
)

var report = []schema.DishRatingSummary{
	{DishID: 1, DishName: "Pasta", AvgRating: 4.5, Comments: "great, again"},
	{DishID: 2, DishName: "Ramen", AvgRating: 4, Comments: ""},
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	table := RatingsTable(report)
	require.NoError(t, WriteCSV(&buf, table.Header, table.Rows))

	want := "dish_id,dish_name,avg_rating,comments\n" +
		"1,Pasta,4.50,\"great, again\"\n" +
		"2,Ramen,4.00,\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"report.csv", FormatCSV},
		{"report.JSON", FormatJSON},
		{"s3://bucket/reports/today.json", FormatJSON},
		{"report", FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFor(tt.name))
		})
	}
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
}

func TestRatings_FileSink(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	csvPath := filepath.Join(dir, "out", "ratings.csv")
	sink, err := Open(ctx, csvPath)
	require.NoError(t, err)
	require.NoError(t, Ratings(ctx, sink, report))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,Pasta,4.50")

	jsonPath := filepath.Join(dir, "ratings.json")
	sink, err = Open(ctx, jsonPath)
	require.NoError(t, err)
	require.NoError(t, Ratings(ctx, sink, report))

	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded []schema.DishRatingSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report, decoded)
}

func TestRatings_S3Sink(t *testing.T) {
	fake := &fakeS3{}
	sink := NewS3SinkWithClient(fake, "reports", "daily/ratings.csv")

	require.NoError(t, Ratings(context.Background(), sink, report))
	require.NotNil(t, fake.input)
	assert.Equal(t, "reports", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "daily/ratings.csv", aws.ToString(fake.input.Key))
	assert.Equal(t, "text/csv", aws.ToString(fake.input.ContentType))
	assert.Contains(t, string(fake.body), "2,Ramen,4.00")
	assert.Equal(t, "s3://reports/daily/ratings.csv", sink.Location())
}

func TestRatings_S3Failure(t *testing.T) {
	denied := errors.New("access denied")
	sink := NewS3SinkWithClient(&fakeS3{err: denied}, "reports", "r.csv")

	err := Ratings(context.Background(), sink, report)
	assert.ErrorIs(t, err, denied)
}

func TestOpen_InvalidTargets(t *testing.T) {
	for _, target := range []string{"", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		t.Run(target, func(t *testing.T) {
			_, err := Open(context.Background(), target)
			assert.Error(t, err)
		})
	}
}
