package engine

import (
	"context"
	"strings"

	"github.com/quillql/quill-wasm/errors"
)

// Function is one scalar function callable from query expressions.
type Function struct {
	Params []Type
	Result Type
	Call   func(ctx context.Context, args []Value) (Value, error)
}

// FuncResolver supplies scalar functions by name. The UDF registry
// implements this; builtins are consulted first.
type FuncResolver interface {
	Resolve(name string) (*Function, bool)
}

var builtins = map[string]*Function{
	"upper": {
		Params: []Type{TypeString},
		Result: TypeString,
		Call: func(_ context.Context, args []Value) (Value, error) {
			if args[0].IsNull() {
				return Null(), nil
			}
			return Str(strings.ToUpper(args[0].StrVal())), nil
		},
	},
	"lower": {
		Params: []Type{TypeString},
		Result: TypeString,
		Call: func(_ context.Context, args []Value) (Value, error) {
			if args[0].IsNull() {
				return Null(), nil
			}
			return Str(strings.ToLower(args[0].StrVal())), nil
		},
	},
	"length": {
		Params: []Type{TypeString},
		Result: TypeInt,
		Call: func(_ context.Context, args []Value) (Value, error) {
			if args[0].IsNull() {
				return Null(), nil
			}
			return Int(int64(len(args[0].StrVal()))), nil
		},
	},
	"abs": {
		Params: []Type{TypeFloat},
		Result: TypeFloat,
		Call: func(_ context.Context, args []Value) (Value, error) {
			if args[0].IsNull() {
				return Null(), nil
			}
			f := args[0].FloatVal()
			if f < 0 {
				f = -f
			}
			return Float(f), nil
		},
	},
}

// resolveFunction looks up a builtin, then the session's resolver.
func (s *Session) resolveFunction(name string) (*Function, error) {
	if fn, ok := builtins[name]; ok {
		return fn, nil
	}
	if s.funcs != nil {
		if fn, ok := s.funcs.Resolve(name); ok {
			return fn, nil
		}
	}
	return nil, errors.Plan("query", "function %q not found", name)
}
