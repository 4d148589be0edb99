package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/marshallshelly/bistro/pkg/runtime"
	"github.com/marshallshelly/bistro/pkg/schema"
)

// DefaultMinRating is used when no positive minimum is given.
const DefaultMinRating = 3

// Reports exposes the server-side reports.
type Reports struct {
	transport *runtime.Transport
}

type ratingsEnvelope struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message"`
	Data    []schema.DishRatingSummary `json:"data"`
}

// DishRatings returns dishes whose average rating is at least minRating.
// Both a bare array and a {success, data} envelope are accepted.
func (r *Reports) DishRatings(ctx context.Context, minRating int) ([]schema.DishRatingSummary, error) {
	if minRating <= 0 {
		minRating = DefaultMinRating
	}

	const path = "/reports/dish_ratings"
	query := url.Values{"min_rating": {strconv.Itoa(minRating)}}

	var raw json.RawMessage
	if err := r.transport.Do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, err
	}

	rows, err := decodeRatings(raw)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w: %v", path, runtime.ErrInvalidResponse, err)
	}
	return rows, nil
}

func decodeRatings(raw json.RawMessage) ([]schema.DishRatingSummary, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []schema.DishRatingSummary{}, nil
	}

	if trimmed[0] == '[' {
		var rows []schema.DishRatingSummary
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}

	var envelope ratingsEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success && envelope.Message != "" {
		return nil, fmt.Errorf("report failed: %s", envelope.Message)
	}
	if envelope.Data == nil {
		return []schema.DishRatingSummary{}, nil
	}
	return envelope.Data, nil
}
