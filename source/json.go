package source

import (
	"bytes"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	gojson "github.com/goccy/go-json"

	"github.com/quillql/quill-wasm/errors"
)

// decodeJSON turns a JSON array into one record batch. Two shapes are
// accepted: an array of scalars, which becomes a single "value" column, and
// an array of objects, whose sorted key union becomes the columns. Column
// types are inferred; integers widen to float when a column mixes the two,
// anything else mixed is rejected.
func decodeJSON(data []byte, mem memory.Allocator) (*arrow.Schema, []arrow.Record, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []any
	if err := dec.Decode(&rows); err != nil {
		return nil, nil, errors.New(errors.KindSource).
			Op("register-source").
			Cause(err).
			Detail("payload is not a JSON array").
			Build()
	}
	if len(rows) == 0 {
		return nil, nil, errors.Source("register-source", "cannot infer a schema from an empty array")
	}

	if _, ok := rows[0].(map[string]any); ok {
		return decodeObjects(rows, mem)
	}
	return decodeScalars(rows, mem)
}

func decodeScalars(rows []any, mem memory.Allocator) (*arrow.Schema, []arrow.Record, error) {
	cells := make([]any, len(rows))
	for i, r := range rows {
		if _, ok := r.(map[string]any); ok {
			return nil, nil, errors.Source("register-source", "row %d: mixed scalars and objects", i)
		}
		cells[i] = r
	}
	typ, err := inferColumnType("value", cells)
	if err != nil {
		return nil, nil, err
	}
	schema := arrow.NewSchema([]arrow.Field{{Name: "value", Type: typ, Nullable: true}}, nil)
	rec, err := buildRecord(schema, [][]any{cells}, mem)
	if err != nil {
		return nil, nil, err
	}
	return schema, []arrow.Record{rec}, nil
}

func decodeObjects(rows []any, mem memory.Allocator) (*arrow.Schema, []arrow.Record, error) {
	keySet := map[string]bool{}
	objs := make([]map[string]any, len(rows))
	for i, r := range rows {
		obj, ok := r.(map[string]any)
		if !ok {
			return nil, nil, errors.Source("register-source", "row %d: mixed scalars and objects", i)
		}
		objs[i] = obj
		for k := range obj {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]arrow.Field, len(keys))
	columns := make([][]any, len(keys))
	for c, key := range keys {
		cells := make([]any, len(objs))
		for i, obj := range objs {
			cells[i] = obj[key] // missing keys read as nil → NULL
		}
		typ, err := inferColumnType(key, cells)
		if err != nil {
			return nil, nil, err
		}
		fields[c] = arrow.Field{Name: key, Type: typ, Nullable: true}
		columns[c] = cells
	}

	schema := arrow.NewSchema(fields, nil)
	rec, err := buildRecord(schema, columns, mem)
	if err != nil {
		return nil, nil, err
	}
	return schema, []arrow.Record{rec}, nil
}

// inferColumnType scans a column's cells for a consistent type.
func inferColumnType(name string, cells []any) (arrow.DataType, error) {
	var (
		seenInt, seenFloat, seenStr, seenBool bool
	)
	for i, cell := range cells {
		switch v := cell.(type) {
		case nil:
		case gojson.Number:
			if _, err := v.Int64(); err == nil {
				seenInt = true
			} else {
				seenFloat = true
			}
		case string:
			seenStr = true
		case bool:
			seenBool = true
		default:
			return nil, errors.New(errors.KindSource).
				Op("register-source").
				Path(name).
				Detail("row %d: nested values are not supported", i).
				Build()
		}
	}

	numeric := seenInt || seenFloat
	kinds := 0
	for _, seen := range []bool{numeric, seenStr, seenBool} {
		if seen {
			kinds++
		}
	}
	if kinds > 1 {
		return nil, errors.New(errors.KindSource).
			Op("register-source").
			Path(name).
			Detail("column mixes incompatible types").
			Build()
	}

	switch {
	case seenFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case seenInt:
		return arrow.PrimitiveTypes.Int64, nil
	case seenBool:
		return arrow.FixedWidthTypes.Boolean, nil
	default:
		// all strings, or all NULL
		return arrow.BinaryTypes.String, nil
	}
}

func buildRecord(schema *arrow.Schema, columns [][]any, mem memory.Allocator) (arrow.Record, error) {
	rb := array.NewRecordBuilder(mem, schema)
	defer rb.Release()

	for c, cells := range columns {
		for _, cell := range cells {
			if cell == nil {
				rb.Field(c).AppendNull()
				continue
			}
			switch b := rb.Field(c).(type) {
			case *array.Int64Builder:
				n := cell.(gojson.Number)
				v, err := n.Int64()
				if err != nil {
					return nil, errors.Source("register-source", "value %s overflows int64", n)
				}
				b.Append(v)
			case *array.Float64Builder:
				n, ok := cell.(gojson.Number)
				if !ok {
					return nil, errors.Source("register-source", "expected number, got %T", cell)
				}
				f, err := n.Float64()
				if err != nil {
					return nil, errors.Source("register-source", "value %s is not a float", n)
				}
				b.Append(f)
			case *array.StringBuilder:
				b.Append(cell.(string))
			case *array.BooleanBuilder:
				b.Append(cell.(bool))
			}
		}
	}
	return rb.NewRecord(), nil
}
