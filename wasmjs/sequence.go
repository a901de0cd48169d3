//go:build js && wasm

package wasmjs

import (
	"context"
	"strings"
	"syscall/js"

	"github.com/quillql/quill-wasm/engine"
	"github.com/quillql/quill-wasm/fault"
	"github.com/quillql/quill-wasm/result"
)

// newSequence wires a lazy result set to a JS object:
//
//	seq.schema                → [{name, type}]
//	seq.next()                → Promise<rowObject[] | null>
//	seq.restart()             → void
//	seq.format(kind)          → Promise<string | Uint8Array>
//	seq.close()               → void
//
// next pulls one engine batch per call, so large results stream across the
// boundary instead of materializing at once.
func newSequence(set *result.Set) js.Value {
	obj := js.Global().Get("Object").New()
	obj.Set("schema", schemaValue(set))

	obj.Set("next", js.FuncOf(func(js.Value, []js.Value) any {
		return promise("query", func() (js.Value, error) {
			return nextBatch(set)
		})
	}))
	obj.Set("restart", js.FuncOf(func(js.Value, []js.Value) any {
		set.Restart()
		return js.Undefined()
	}))
	obj.Set("format", js.FuncOf(func(_ js.Value, args []js.Value) any {
		kind := string(result.FormatJSON)
		if len(args) > 0 && args[0].Type() == js.TypeString {
			kind = strings.ToLower(args[0].String())
		}
		return promise("query", func() (js.Value, error) {
			return formatRemainder(set, kind)
		})
	}))
	obj.Set("close", js.FuncOf(func(js.Value, []js.Value) any {
		set.Close()
		return js.Undefined()
	}))
	return obj
}

func schemaValue(set *result.Set) js.Value {
	schema := set.Schema()
	fields := make([]any, schema.NumFields())
	for i := range fields {
		f := schema.Field(i)
		fields[i] = map[string]any{"name": f.Name, "type": f.Type.Name()}
	}
	return js.ValueOf(fields)
}

// nextBatch pulls one batch and converts it to an array of row objects, or
// null once the sequence is exhausted.
func nextBatch(set *result.Set) (js.Value, error) {
	var out js.Value
	err := fault.Capture("query", func() error {
		rec, err := set.Next(context.Background())
		if err != nil {
			return err
		}
		if rec == nil {
			out = js.Null()
			return nil
		}
		defer rec.Release()

		schema := set.Schema()
		rows := make([]any, rec.NumRows())
		for i := range rows {
			row := make(map[string]any, rec.NumCols())
			for j := 0; j < int(rec.NumCols()); j++ {
				row[schema.Field(j).Name] = engine.ValueAt(rec.Column(j), i).Any()
			}
			rows[i] = row
		}
		out = js.ValueOf(rows)
		return nil
	})
	if err != nil {
		return js.Value{}, err
	}
	return out, nil
}

// formatRemainder drains what is left of the sequence into the named
// encoding. Text encodings resolve to strings, binary ones to Uint8Array.
func formatRemainder(set *result.Set, kind string) (js.Value, error) {
	f, err := result.ParseFormat(kind)
	if err != nil {
		return js.Value{}, err
	}
	var b []byte
	err = fault.Capture("query", func() error {
		enc, err := result.Encode(context.Background(), set, f)
		if err != nil {
			return err
		}
		b = enc
		return nil
	})
	if err != nil {
		return js.Value{}, err
	}
	switch f {
	case result.FormatCBOR, result.FormatIPC:
		return bytesToJS(b), nil
	}
	return js.ValueOf(string(b)), nil
}
