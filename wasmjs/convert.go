//go:build js && wasm

package wasmjs

import (
	"syscall/js"
)

// optionsFromJS flattens a plain JS object into the closed option-map shape
// the bridge parsers accept. Nested values stay as js.Value and fail the
// parsers' type checks, which is the behavior we want for shapes outside the
// contract.
func optionsFromJS(v js.Value) map[string]any {
	if v.IsUndefined() || v.IsNull() {
		return nil
	}
	out := make(map[string]any)
	keys := js.Global().Get("Object").Call("keys", v)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		val := v.Get(k)
		switch val.Type() {
		case js.TypeString:
			out[k] = val.String()
		case js.TypeBoolean:
			out[k] = val.Bool()
		case js.TypeNumber:
			out[k] = val.Float()
		default:
			out[k] = val
		}
	}
	return out
}

// bytesFromJS copies a Uint8Array into Go memory.
func bytesFromJS(v js.Value) []byte {
	b := make([]byte, v.Length())
	js.CopyBytesToGo(b, v)
	return b
}

// bytesToJS copies Go bytes into a fresh Uint8Array.
func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}
