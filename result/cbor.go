package result

import (
	"context"

	"github.com/fxamacker/cbor/v2"

	"github.com/quillql/quill-wasm/errors"
)

// cborEnvelope is the columnar binary transfer shape: field descriptors plus
// one value array per column. Columnar keeps repeated keys out of the
// payload, which matters when results cross the boundary as bytes.
type cborEnvelope struct {
	Fields  []cborField `cbor:"fields"`
	Columns [][]any     `cbor:"columns"`
	Rows    int         `cbor:"rows"`
}

type cborField struct {
	Name string `cbor:"name"`
	Type string `cbor:"type"`
}

func encodeCBOR(ctx context.Context, s *Set) ([]byte, error) {
	schema := s.Schema()
	env := cborEnvelope{
		Fields:  make([]cborField, schema.NumFields()),
		Columns: make([][]any, schema.NumFields()),
	}
	for i := range env.Fields {
		f := schema.Field(i)
		env.Fields[i] = cborField{Name: f.Name, Type: f.Type.Name()}
	}

	data, err := rows(ctx, s)
	if err != nil {
		return nil, err
	}
	env.Rows = len(data)
	for j := range env.Columns {
		col := make([]any, len(data))
		for i, row := range data {
			col[i] = row[j].Any()
		}
		env.Columns[j] = col
	}

	b, err := cbor.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(errors.KindExecution, "query", err, "cbor encoding failed")
	}
	return b, nil
}

// DecodeCBOR is the inverse of the cbor encoding, for hosts and tests that
// consume the envelope in Go.
func DecodeCBOR(data []byte) (fields []string, columns [][]any, err error) {
	var env cborEnvelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, nil, errors.Wrap(errors.KindExecution, "query", err, "malformed cbor envelope")
	}
	fields = make([]string, len(env.Fields))
	for i, f := range env.Fields {
		fields[i] = f.Name
	}
	return fields, env.Columns, nil
}
