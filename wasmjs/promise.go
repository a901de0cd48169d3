//go:build js && wasm

package wasmjs

import (
	"syscall/js"

	"github.com/quillql/quill-wasm/errors"
)

// promise runs fn on its own goroutine and settles a JS Promise with the
// outcome. The goroutine hop is the suspension point: the exported function
// returns immediately and the event loop resumes while fn works.
func promise(op string, fn func() (js.Value, error)) js.Value {
	executor := js.FuncOf(func(_ js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go func() {
			defer func() {
				// fn is expected to capture its own panics; this guard keeps
				// a fault in the conversion layer from killing the runtime.
				if r := recover(); r != nil {
					reject.Invoke(errorValue(errors.Internal(op)))
				}
			}()
			v, err := fn()
			if err != nil {
				reject.Invoke(errorValue(err))
				return
			}
			resolve.Invoke(v)
		}()
		return nil
	})
	// The executor runs synchronously inside New, so it can be released
	// as soon as the Promise exists.
	p := js.Global().Get("Promise").New(executor)
	executor.Release()
	return p
}

// errorValue converts a boundary error into a JS Error carrying the taxonomy
// member on the kind property.
func errorValue(err error) js.Value {
	e := js.Global().Get("Error").New(err.Error())
	e.Set("kind", string(errors.KindOf(err)))
	return e
}
