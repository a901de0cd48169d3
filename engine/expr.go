package engine

import (
	"context"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/quillql/quill-wasm/errors"
	"github.com/quillql/quill-wasm/sql"
)

// rowCursor points at one row of the record currently flowing through the
// pipeline.
type rowCursor struct {
	rec arrow.Record
	row int
}

// compiledExpr is a type-checked expression bound to column indexes of the
// input schema.
type compiledExpr struct {
	typ  Type
	eval func(ctx context.Context, cur *rowCursor) (Value, error)
}

// compile type-checks e against schema and produces an evaluator. All
// resolution and typing failures are plan errors; only data-dependent
// failures (division by zero) are deferred to execution.
func (s *Session) compile(e sql.Expr, schema *arrow.Schema) (compiledExpr, error) {
	switch node := e.(type) {
	case *sql.ColumnRef:
		idx := fieldIndex(schema, node.Name)
		if idx < 0 {
			return compiledExpr{}, errors.New(errors.KindPlan).
				Op("query").
				Path(node.Name).
				Detail("column %q not found", node.Name).
				Build()
		}
		typ, err := typeOfArrow(schema.Field(idx).Type)
		if err != nil {
			return compiledExpr{}, err
		}
		return compiledExpr{
			typ: typ,
			eval: func(_ context.Context, cur *rowCursor) (Value, error) {
				return valueAt(cur.rec.Column(idx), cur.row), nil
			},
		}, nil

	case *sql.IntLit:
		v := Int(node.Value)
		return constExpr(TypeInt, v), nil
	case *sql.FloatLit:
		v := Float(node.Value)
		return constExpr(TypeFloat, v), nil
	case *sql.StringLit:
		v := Str(node.Value)
		return constExpr(TypeString, v), nil
	case *sql.BoolLit:
		v := Bool(node.Value)
		return constExpr(TypeBool, v), nil
	case *sql.NullLit:
		return constExpr(TypeAny, Null()), nil

	case *sql.Unary:
		return s.compileUnary(node, schema)
	case *sql.Binary:
		return s.compileBinary(node, schema)
	case *sql.Call:
		return s.compileCall(node, schema)
	}
	return compiledExpr{}, errors.Plan("query", "unsupported expression %s", e)
}

func constExpr(t Type, v Value) compiledExpr {
	return compiledExpr{
		typ:  t,
		eval: func(context.Context, *rowCursor) (Value, error) { return v, nil },
	}
}

// fieldIndex resolves a column name case-insensitively, first-match-wins.
func fieldIndex(schema *arrow.Schema, name string) int {
	for i, f := range schema.Fields() {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

func isNumeric(t Type) bool {
	return t == TypeInt || t == TypeFloat || t == TypeAny
}

func (s *Session) compileUnary(node *sql.Unary, schema *arrow.Schema) (compiledExpr, error) {
	x, err := s.compile(node.X, schema)
	if err != nil {
		return compiledExpr{}, err
	}
	switch node.Op {
	case "-":
		if !isNumeric(x.typ) {
			return compiledExpr{}, errors.Plan("query", "cannot negate %s value %s", x.typ, node.X)
		}
		return compiledExpr{
			typ: x.typ,
			eval: func(ctx context.Context, cur *rowCursor) (Value, error) {
				v, err := x.eval(ctx, cur)
				if err != nil || v.IsNull() {
					return v, err
				}
				if v.Type() == TypeInt {
					return Int(-v.IntVal()), nil
				}
				return Float(-v.FloatVal()), nil
			},
		}, nil
	case "NOT":
		if x.typ != TypeBool && x.typ != TypeAny {
			return compiledExpr{}, errors.Plan("query", "NOT requires a boolean, got %s", x.typ)
		}
		return compiledExpr{
			typ: TypeBool,
			eval: func(ctx context.Context, cur *rowCursor) (Value, error) {
				v, err := x.eval(ctx, cur)
				if err != nil || v.IsNull() {
					return v, err
				}
				return Bool(!v.BoolVal()), nil
			},
		}, nil
	}
	return compiledExpr{}, errors.Plan("query", "unsupported operator %q", node.Op)
}

func (s *Session) compileBinary(node *sql.Binary, schema *arrow.Schema) (compiledExpr, error) {
	l, err := s.compile(node.L, schema)
	if err != nil {
		return compiledExpr{}, err
	}
	r, err := s.compile(node.R, schema)
	if err != nil {
		return compiledExpr{}, err
	}

	switch node.Op {
	case "+", "-", "*", "/":
		return compileArith(node.Op, l, r, node)
	case "=", "!=", "<", "<=", ">", ">=":
		return compileCompare(node.Op, l, r, node)
	case "AND", "OR":
		return compileLogic(node.Op, l, r, node)
	}
	return compiledExpr{}, errors.Plan("query", "unsupported operator %q", node.Op)
}

func compileArith(op string, l, r compiledExpr, node *sql.Binary) (compiledExpr, error) {
	if !isNumeric(l.typ) || !isNumeric(r.typ) {
		return compiledExpr{}, errors.Plan("query", "operator %q requires numeric operands in %s", op, node)
	}
	out := TypeInt
	if l.typ == TypeFloat || r.typ == TypeFloat {
		out = TypeFloat
	} else if l.typ == TypeAny && r.typ == TypeAny {
		out = TypeAny
	}

	return compiledExpr{
		typ: out,
		eval: func(ctx context.Context, cur *rowCursor) (Value, error) {
			lv, err := l.eval(ctx, cur)
			if err != nil {
				return Value{}, err
			}
			rv, err := r.eval(ctx, cur)
			if err != nil {
				return Value{}, err
			}
			if lv.IsNull() || rv.IsNull() {
				return Null(), nil
			}
			if lv.Type() == TypeFloat || rv.Type() == TypeFloat {
				a, b := lv.FloatVal(), rv.FloatVal()
				switch op {
				case "+":
					return Float(a + b), nil
				case "-":
					return Float(a - b), nil
				case "*":
					return Float(a * b), nil
				default:
					return Float(a / b), nil
				}
			}
			a, b := lv.IntVal(), rv.IntVal()
			switch op {
			case "+":
				return Int(a + b), nil
			case "-":
				return Int(a - b), nil
			case "*":
				return Int(a * b), nil
			default:
				if b == 0 {
					return Value{}, errors.Execution("query", "division by zero in %s", node)
				}
				return Int(a / b), nil
			}
		},
	}, nil
}

func compileCompare(op string, l, r compiledExpr, node *sql.Binary) (compiledExpr, error) {
	comparable := isNumeric(l.typ) && isNumeric(r.typ) ||
		unify(l.typ, r.typ, TypeString) ||
		unify(l.typ, r.typ, TypeBool) && (op == "=" || op == "!=")
	if !comparable {
		return compiledExpr{}, errors.Plan("query", "cannot compare %s with %s in %s", l.typ, r.typ, node)
	}

	return compiledExpr{
		typ: TypeBool,
		eval: func(ctx context.Context, cur *rowCursor) (Value, error) {
			lv, err := l.eval(ctx, cur)
			if err != nil {
				return Value{}, err
			}
			rv, err := r.eval(ctx, cur)
			if err != nil {
				return Value{}, err
			}
			if lv.IsNull() || rv.IsNull() {
				return Null(), nil
			}
			c, err := compareValues(lv, rv, node)
			if err != nil {
				return Value{}, err
			}
			switch op {
			case "=":
				return Bool(c == 0), nil
			case "!=":
				return Bool(c != 0), nil
			case "<":
				return Bool(c < 0), nil
			case "<=":
				return Bool(c <= 0), nil
			case ">":
				return Bool(c > 0), nil
			default:
				return Bool(c >= 0), nil
			}
		},
	}, nil
}

// unify reports whether both operand types can be t (TypeAny unifies).
func unify(a, b, t Type) bool {
	return (a == t || a == TypeAny) && (b == t || b == TypeAny)
}

// compareValues orders two non-null values of a unified type.
func compareValues(a, b Value, node *sql.Binary) (int, error) {
	switch {
	case a.Type() == TypeString && b.Type() == TypeString:
		return strings.Compare(a.StrVal(), b.StrVal()), nil
	case a.Type() == TypeBool && b.Type() == TypeBool:
		switch {
		case a.BoolVal() == b.BoolVal():
			return 0, nil
		case b.BoolVal():
			return -1, nil
		default:
			return 1, nil
		}
	case isNumeric(a.Type()) && isNumeric(b.Type()):
		if a.Type() == TypeInt && b.Type() == TypeInt {
			switch {
			case a.IntVal() < b.IntVal():
				return -1, nil
			case a.IntVal() > b.IntVal():
				return 1, nil
			default:
				return 0, nil
			}
		}
		af, bf := a.FloatVal(), b.FloatVal()
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, errors.Execution("query", "cannot compare %s with %s in %s", a.Type(), b.Type(), node)
}

func compileLogic(op string, l, r compiledExpr, node *sql.Binary) (compiledExpr, error) {
	for _, side := range []compiledExpr{l, r} {
		if side.typ != TypeBool && side.typ != TypeAny {
			return compiledExpr{}, errors.Plan("query", "operator %s requires boolean operands in %s", op, node)
		}
	}

	return compiledExpr{
		typ: TypeBool,
		eval: func(ctx context.Context, cur *rowCursor) (Value, error) {
			lv, err := l.eval(ctx, cur)
			if err != nil {
				return Value{}, err
			}
			rv, err := r.eval(ctx, cur)
			if err != nil {
				return Value{}, err
			}
			// SQL three-valued logic: NULL is unknown.
			if op == "AND" {
				if (!lv.IsNull() && !lv.BoolVal()) || (!rv.IsNull() && !rv.BoolVal()) {
					return Bool(false), nil
				}
				if lv.IsNull() || rv.IsNull() {
					return Null(), nil
				}
				return Bool(true), nil
			}
			if (!lv.IsNull() && lv.BoolVal()) || (!rv.IsNull() && rv.BoolVal()) {
				return Bool(true), nil
			}
			if lv.IsNull() || rv.IsNull() {
				return Null(), nil
			}
			return Bool(false), nil
		},
	}, nil
}

func (s *Session) compileCall(node *sql.Call, schema *arrow.Schema) (compiledExpr, error) {
	fn, err := s.resolveFunction(node.Name)
	if err != nil {
		return compiledExpr{}, err
	}
	if len(node.Args) != len(fn.Params) {
		return compiledExpr{}, errors.Plan("query", "%s expects %d arguments, got %d", node.Name, len(fn.Params), len(node.Args))
	}

	args := make([]compiledExpr, len(node.Args))
	for i, a := range node.Args {
		c, err := s.compile(a, schema)
		if err != nil {
			return compiledExpr{}, err
		}
		if !argAssignable(c.typ, fn.Params[i]) {
			return compiledExpr{}, errors.Plan("query", "%s argument %d: want %s, got %s", node.Name, i+1, fn.Params[i], c.typ)
		}
		args[i] = c
	}

	call := fn.Call
	return compiledExpr{
		typ: fn.Result,
		eval: func(ctx context.Context, cur *rowCursor) (Value, error) {
			vals := make([]Value, len(args))
			for i, a := range args {
				v, err := a.eval(ctx, cur)
				if err != nil {
					return Value{}, err
				}
				vals[i] = v
			}
			v, err := call(ctx, vals)
			if err != nil {
				return Value{}, errors.Wrap(errors.KindExecution, "query", err, node.Name+" failed")
			}
			return v, nil
		},
	}, nil
}

// argAssignable allows exact matches, int→float widening, and TypeAny on
// either side.
func argAssignable(got, want Type) bool {
	if got == want || got == TypeAny || want == TypeAny {
		return true
	}
	return got == TypeInt && want == TypeFloat
}
