package sql

import (
	"strconv"
	"strings"

	"github.com/quillql/quill-wasm/errors"
)

// Parse parses one SELECT statement. Trailing input after an optional
// semicolon is rejected.
func Parse(input string) (*Select, error) {
	p := &parser{lex: &lexer{input: input}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	sel, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokSymbol && p.tok.text == ";" {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected trailing input %q", p.tok.text)
	}
	return sel, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	// A bare semicolon terminates the statement; treat it as a symbol so
	// Parse can consume it.
	p.lex.skipSpace()
	if p.lex.pos < len(p.lex.input) && p.lex.input[p.lex.pos] == ';' {
		p.tok = token{kind: tokSymbol, text: ";", pos: p.lex.pos}
		p.lex.pos++
		return nil
	}
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) *errors.Error {
	return errors.New(errors.KindParse).
		Op("query").
		Detail(format+" at offset %d", append(args, p.tok.pos)...).
		Build()
}

func (p *parser) expectKeyword(kw string) error {
	if p.tok.kind != tokKeyword || p.tok.text != kw {
		return p.errorf("expected %s, found %q", kw, p.tok.text)
	}
	return p.advance()
}

func (p *parser) parseSelect() (*Select, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}

	sel := &Select{Limit: -1}

	if p.tok.kind == tokSymbol && p.tok.text == "*" {
		sel.Star = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	} else {
		for {
			item, err := p.parseSelectItem()
			if err != nil {
				return nil, err
			}
			sel.Items = append(sel.Items, item)
			if p.tok.kind == tokSymbol && p.tok.text == "," {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected table name, found %q", p.tok.text)
	}
	sel.From = p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}

	// Join syntax parses structurally so the planner can report it as an
	// unsupported construct rather than a syntax error.
	for p.atJoin() {
		joined, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		sel.Joins = append(sel.Joins, joined)
	}

	if p.atKeyword("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Where = where
	}

	if p.atKeyword("GROUP") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			if p.tok.kind != tokIdent {
				return nil, p.errorf("expected column name in GROUP BY, found %q", p.tok.text)
			}
			sel.GroupBy = append(sel.GroupBy, p.tok.text)
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind == tokSymbol && p.tok.text == "," {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}

	if p.atKeyword("ORDER") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			if p.tok.kind != tokIdent {
				return nil, p.errorf("expected column name in ORDER BY, found %q", p.tok.text)
			}
			key := OrderKey{Column: p.tok.text}
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.atKeyword("ASC") || p.atKeyword("DESC") {
				key.Desc = p.tok.text == "DESC"
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			sel.OrderBy = append(sel.OrderBy, key)
			if p.tok.kind == tokSymbol && p.tok.text == "," {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}

	if p.atKeyword("LIMIT") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokInt {
			return nil, p.errorf("expected integer after LIMIT, found %q", p.tok.text)
		}
		n, err := strconv.ParseInt(p.tok.text, 10, 64)
		if err != nil {
			return nil, p.errorf("limit %q out of range", p.tok.text)
		}
		sel.Limit = n
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	return sel, nil
}

func (p *parser) atKeyword(kw string) bool {
	return p.tok.kind == tokKeyword && p.tok.text == kw
}

func (p *parser) atJoin() bool {
	if p.tok.kind == tokSymbol && p.tok.text == "," {
		return true
	}
	for _, kw := range []string{"JOIN", "INNER", "LEFT", "RIGHT", "CROSS"} {
		if p.atKeyword(kw) {
			return true
		}
	}
	return false
}

// parseJoin consumes one join clause ("," t | [qualifier] JOIN t [ON expr])
// and returns the joined table name.
func (p *parser) parseJoin() (string, error) {
	if p.tok.kind == tokSymbol && p.tok.text == "," {
		if err := p.advance(); err != nil {
			return "", err
		}
	} else {
		for p.atKeyword("INNER") || p.atKeyword("LEFT") || p.atKeyword("RIGHT") ||
			p.atKeyword("CROSS") || p.atKeyword("OUTER") {
			if err := p.advance(); err != nil {
				return "", err
			}
		}
		if err := p.expectKeyword("JOIN"); err != nil {
			return "", err
		}
	}
	if p.tok.kind != tokIdent {
		return "", p.errorf("expected table name in join, found %q", p.tok.text)
	}
	name := p.tok.text
	if err := p.advance(); err != nil {
		return "", err
	}
	if p.atKeyword("ON") {
		if err := p.advance(); err != nil {
			return "", err
		}
		if _, err := p.parseExpr(); err != nil {
			return "", err
		}
	}
	return name, nil
}

func (p *parser) parseSelectItem() (SelectItem, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return SelectItem{}, err
	}
	item := SelectItem{Expr: expr}
	if p.atKeyword("AS") {
		if err := p.advance(); err != nil {
			return SelectItem{}, err
		}
		if p.tok.kind != tokIdent {
			return SelectItem{}, p.errorf("expected alias after AS, found %q", p.tok.text)
		}
		item.Alias = p.tok.text
		if err := p.advance(); err != nil {
			return SelectItem{}, err
		}
	} else if p.tok.kind == tokIdent {
		// implicit alias: SELECT x y FROM t
		item.Alias = p.tok.text
		if err := p.advance(); err != nil {
			return SelectItem{}, err
		}
	}
	return item, nil
}

// Expression precedence, loosest first: OR, AND, NOT, comparison,
// additive, multiplicative, unary minus, primary.

func (p *parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("OR") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "OR", L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("AND") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "AND", L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.atKeyword("NOT") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "NOT", X: x}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokSymbol {
		switch p.tok.text {
		case "=", "!=", "<", "<=", ">", ">=":
			op := p.tok.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &Binary{Op: op, L: left, R: right}, nil
		}
	}
	return left, nil
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokSymbol && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokSymbol && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.tok.kind == tokSymbol && p.tok.text == "-" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "-", X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.tok.kind {
	case tokInt:
		v, err := strconv.ParseInt(p.tok.text, 10, 64)
		if err != nil {
			// Too large for int64; fall back to float like most dialects.
			f, ferr := strconv.ParseFloat(p.tok.text, 64)
			if ferr != nil {
				return nil, p.errorf("malformed number %q", p.tok.text)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &FloatLit{Value: f}, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &IntLit{Value: v}, nil

	case tokFloat:
		f, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, p.errorf("malformed number %q", p.tok.text)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &FloatLit{Value: f}, nil

	case tokString:
		s := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &StringLit{Value: s}, nil

	case tokKeyword:
		switch p.tok.text {
		case "TRUE", "FALSE":
			v := p.tok.text == "TRUE"
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &BoolLit{Value: v}, nil
		case "NULL":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &NullLit{}, nil
		}
		return nil, p.errorf("unexpected keyword %q in expression", p.tok.text)

	case tokIdent:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokSymbol && p.tok.text == "(" {
			return p.parseCallArgs(name)
		}
		return &ColumnRef{Name: name}, nil

	case tokSymbol:
		if p.tok.text == "(" {
			if err := p.advance(); err != nil {
				return nil, err
			}
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if p.tok.kind != tokSymbol || p.tok.text != ")" {
				return nil, p.errorf("expected ), found %q", p.tok.text)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, p.errorf("unexpected token %q in expression", p.tok.text)
}

func (p *parser) parseCallArgs(name string) (Expr, error) {
	// caller consumed the name; current token is "("
	if err := p.advance(); err != nil {
		return nil, err
	}
	call := &Call{Name: strings.ToLower(name)}
	if p.tok.kind == tokSymbol && p.tok.text == ")" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return call, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		if p.tok.kind == tokSymbol && p.tok.text == "," {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.tok.kind != tokSymbol || p.tok.text != ")" {
		return nil, p.errorf("expected ) to close %s(...), found %q", name, p.tok.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return call, nil
}
