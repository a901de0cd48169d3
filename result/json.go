package result

import (
	"context"

	gojson "github.com/goccy/go-json"
)

// encodeJSON emits an array of row objects keyed by output column name,
// the shape JavaScript hosts consume directly.
func encodeJSON(ctx context.Context, s *Set) ([]byte, error) {
	schema := s.Schema()
	names := make([]string, schema.NumFields())
	for i := range names {
		names[i] = schema.Field(i).Name
	}

	data, err := rows(ctx, s)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, len(data))
	for i, row := range data {
		obj := make(map[string]any, len(row))
		for j, v := range row {
			obj[names[j]] = v.Any()
		}
		out[i] = obj
	}
	return gojson.Marshal(out)
}
