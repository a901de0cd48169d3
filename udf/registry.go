package udf

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/quillql/quill-wasm/diag"
	"github.com/quillql/quill-wasm/engine"
	"github.com/quillql/quill-wasm/errors"
)

// Registry instantiates UDF modules and resolves them for the engine. It
// implements engine.FuncResolver. Not safe for concurrent use.
type Registry struct {
	runtime wazero.Runtime
	funcs   map[string]*engine.Function
	mods    map[string]api.Module
}

// NewRegistry creates an empty registry backed by an interpreter runtime.
func NewRegistry(ctx context.Context) *Registry {
	runtimeCfg := wazero.NewRuntimeConfigInterpreter()
	return &Registry{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		funcs:   make(map[string]*engine.Function),
		mods:    make(map[string]api.Module),
	}
}

// Register instantiates wasmBytes and binds its exported function name as a
// scalar function. Re-registering a name replaces the previous module.
func (r *Registry) Register(ctx context.Context, name string, wasmBytes []byte) error {
	if name == "" {
		return errors.Init("register-udf", "udf name must not be empty")
	}

	// Anonymous instantiation keeps re-registered names out of the runtime's
	// module namespace, where a second instantiation would collide.
	modConfig := wazero.NewModuleConfig().WithName("")
	mod, err := r.runtime.InstantiateWithConfig(ctx, wasmBytes, modConfig)
	if err != nil {
		return errors.New(errors.KindInit).
			Op("register-udf").
			Path(name).
			Cause(err).
			Detail("module failed to instantiate").
			Build()
	}

	fn := mod.ExportedFunction(name)
	if fn == nil {
		mod.Close(ctx)
		return errors.New(errors.KindInit).
			Op("register-udf").
			Path(name).
			Detail("module does not export a function named %q", name).
			Build()
	}

	ef, err := bind(name, fn)
	if err != nil {
		mod.Close(ctx)
		return err
	}

	if old, ok := r.mods[name]; ok {
		old.Close(ctx)
	}
	r.mods[name] = mod
	r.funcs[name] = ef
	diag.Emitf(diag.Debug, "udf %q registered: %d params", name, len(ef.Params))
	return nil
}

// Resolve implements engine.FuncResolver.
func (r *Registry) Resolve(name string) (*engine.Function, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Close tears down the runtime and every registered module.
func (r *Registry) Close(ctx context.Context) {
	r.funcs = map[string]*engine.Function{}
	r.mods = map[string]api.Module{}
	if err := r.runtime.Close(ctx); err != nil {
		diag.Emitf(diag.Warn, "udf runtime close: %v", err)
	}
}

// bind validates the export's signature against the engine lattice and wraps
// it as a scalar function. NULL arguments short-circuit to NULL without
// entering the guest.
func bind(name string, fn api.Function) (*engine.Function, error) {
	def := fn.Definition()

	params := make([]engine.Type, len(def.ParamTypes()))
	for i, vt := range def.ParamTypes() {
		t, ok := typeOf(vt)
		if !ok {
			return nil, badSignature(name, "parameter %d has unsupported type %s", i, api.ValueTypeName(vt))
		}
		params[i] = t
	}

	results := def.ResultTypes()
	if len(results) != 1 {
		return nil, badSignature(name, "must return exactly one value, returns %d", len(results))
	}
	result, ok := typeOf(results[0])
	if !ok {
		return nil, badSignature(name, "result has unsupported type %s", api.ValueTypeName(results[0]))
	}

	return &engine.Function{
		Params: params,
		Result: result,
		Call: func(ctx context.Context, args []engine.Value) (engine.Value, error) {
			raw := make([]uint64, len(args))
			for i, a := range args {
				if a.IsNull() {
					return engine.Null(), nil
				}
				if params[i] == engine.TypeInt {
					raw[i] = api.EncodeI64(a.IntVal())
				} else {
					raw[i] = api.EncodeF64(a.FloatVal())
				}
			}

			out, err := fn.Call(ctx, raw...)
			if err != nil {
				return engine.Null(), errors.New(errors.KindExecution).
					Op("query").
					Path(name).
					Cause(err).
					Detail("udf trapped").
					Build()
			}
			if result == engine.TypeInt {
				return engine.Int(int64(out[0])), nil
			}
			return engine.Float(api.DecodeF64(out[0])), nil
		},
	}, nil
}

func typeOf(vt api.ValueType) (engine.Type, bool) {
	switch vt {
	case api.ValueTypeI64:
		return engine.TypeInt, true
	case api.ValueTypeF64:
		return engine.TypeFloat, true
	}
	return engine.TypeAny, false
}

func badSignature(name, detail string, args ...any) *errors.Error {
	return errors.New(errors.KindInit).
		Op("register-udf").
		Path(name).
		Detail(detail, args...).
		Build()
}
