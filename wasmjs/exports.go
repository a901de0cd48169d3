//go:build js && wasm

package wasmjs

import (
	"context"
	"syscall/js"

	"github.com/quillql/quill-wasm/bridge"
	"github.com/quillql/quill-wasm/errors"
)

// Install publishes the global Quill object. Call once from main before
// handing control to the event loop.
func Install() {
	js.Global().Set("Quill", js.ValueOf(map[string]any{
		"create": js.FuncOf(create),
	}))
}

// create implements Quill.create(options?) -> Promise<handle>.
func create(_ js.Value, args []js.Value) any {
	var raw map[string]any
	if len(args) > 0 {
		raw = optionsFromJS(args[0])
	}
	return promise("create", func() (js.Value, error) {
		opts, err := bridge.ParseOptions(raw)
		if err != nil {
			return js.Value{}, err
		}
		c, err := bridge.New(opts)
		if err != nil {
			return js.Value{}, err
		}
		return newHandle(c), nil
	})
}

// handle wires one bridge context to a JS object. The js.Func values are
// never released; a handful of small callbacks per handle is the price of
// not releasing a function that may be mid-call.
type handle struct {
	c *bridge.Context
}

func newHandle(c *bridge.Context) js.Value {
	h := &handle{c: c}
	obj := js.Global().Get("Object").New()
	obj.Set("id", c.ID())
	h.export(obj, "state", h.state)
	h.export(obj, "registerSource", h.registerSource)
	h.export(obj, "registerUdf", h.registerUDF)
	h.export(obj, "query", h.query)
	h.export(obj, "dispose", h.dispose)
	return obj
}

func (h *handle) export(obj js.Value, name string, fn func(js.Value, []js.Value) any) {
	obj.Set(name, js.FuncOf(fn))
}

// state() -> string, synchronous.
func (h *handle) state(js.Value, []js.Value) any {
	return h.c.State().String()
}

// registerSource(name, locator, formatOptions?) -> Promise<undefined>.
func (h *handle) registerSource(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return promise("register-source", func() (js.Value, error) {
			return js.Value{}, errors.Source("register-source", "registerSource requires name and locator")
		})
	}
	name := args[0].String()
	locator := args[1].String()
	var opts map[string]any
	if len(args) > 2 {
		opts = optionsFromJS(args[2])
	}
	return promise("register-source", func() (js.Value, error) {
		if err := h.c.RegisterSource(context.Background(), name, locator, opts); err != nil {
			return js.Value{}, err
		}
		return js.Undefined(), nil
	})
}

// registerUdf(name, moduleBytes) -> Promise<undefined>.
func (h *handle) registerUDF(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return promise("register-udf", func() (js.Value, error) {
			return js.Value{}, errors.Init("register-udf", "registerUdf requires name and module bytes")
		})
	}
	name := args[0].String()
	wasmBytes := bytesFromJS(args[1])
	return promise("register-udf", func() (js.Value, error) {
		if err := h.c.RegisterUDF(context.Background(), name, wasmBytes); err != nil {
			return js.Value{}, err
		}
		return js.Undefined(), nil
	})
}

// query(sql) -> Promise<resultSequence>. Planning happens before the promise
// resolves; execution is deferred to the sequence's next and format calls.
func (h *handle) query(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return promise("query", func() (js.Value, error) {
			return js.Value{}, errors.Parse("query", "query requires a query string")
		})
	}
	query := args[0].String()
	return promise("query", func() (js.Value, error) {
		set, err := h.c.Query(context.Background(), query)
		if err != nil {
			return js.Value{}, err
		}
		return newSequence(set), nil
	})
}

// dispose() -> undefined, synchronous and idempotent.
func (h *handle) dispose(js.Value, []js.Value) any {
	h.c.Dispose()
	return js.Undefined()
}
