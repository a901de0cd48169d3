package sql

import (
	"fmt"
	"strconv"
	"strings"
)

// Select is the root of every parsed statement.
type Select struct {
	Star    bool
	Items   []SelectItem // empty when Star
	From    string
	Joins   []string // joined table names; parsed but never planned
	Where   Expr     // nil when absent
	GroupBy []string
	OrderBy []OrderKey
	Limit   int64 // -1 when absent
}

// SelectItem is one projected expression with an optional alias.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// Name returns the output column name for the item.
func (it SelectItem) Name() string {
	if it.Alias != "" {
		return it.Alias
	}
	if col, ok := it.Expr.(*ColumnRef); ok {
		return col.Name
	}
	return it.Expr.String()
}

// OrderKey is one ORDER BY key.
type OrderKey struct {
	Column string
	Desc   bool
}

// Expr is a node in an expression tree.
type Expr interface {
	fmt.Stringer
	exprNode()
}

// ColumnRef references a column by name.
type ColumnRef struct {
	Name string
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Value float64
}

// StringLit is a single-quoted string literal.
type StringLit struct {
	Value string
}

// BoolLit is TRUE or FALSE.
type BoolLit struct {
	Value bool
}

// NullLit is NULL.
type NullLit struct{}

// Unary is NOT x or -x.
type Unary struct {
	Op string
	X  Expr
}

// Binary is a two-operand expression.
type Binary struct {
	Op   string // + - * / = != < <= > >= AND OR
	L, R Expr
}

// Call is a function invocation: builtin or registered UDF.
type Call struct {
	Name string
	Args []Expr
}

func (*ColumnRef) exprNode() {}
func (*IntLit) exprNode()    {}
func (*FloatLit) exprNode()  {}
func (*StringLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*NullLit) exprNode()   {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*Call) exprNode()      {}

func (e *ColumnRef) String() string { return e.Name }
func (e *IntLit) String() string    { return strconv.FormatInt(e.Value, 10) }
func (e *FloatLit) String() string  { return strconv.FormatFloat(e.Value, 'g', -1, 64) }
func (e *StringLit) String() string { return "'" + strings.ReplaceAll(e.Value, "'", "''") + "'" }
func (e *BoolLit) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}
func (e *NullLit) String() string { return "null" }
func (e *Unary) String() string   { return e.Op + " " + e.X.String() }
func (e *Binary) String() string {
	return "(" + e.L.String() + " " + e.Op + " " + e.R.String() + ")"
}
func (e *Call) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Name + "(" + strings.Join(args, ", ") + ")"
}
