package sql

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quillql/quill-wasm/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokKeyword
	tokInt
	tokFloat
	tokString
	tokSymbol // ( ) , * = != < <= > >= + - /
)

type token struct {
	kind tokenKind
	text string // keywords uppercased, symbols canonical
	pos  int    // byte offset in input
}

var keywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true,
	"AND": true, "OR": true, "NOT": true,
	"ORDER": true, "BY": true, "ASC": true, "DESC": true,
	"LIMIT": true, "AS": true, "GROUP": true,
	"JOIN": true, "INNER": true, "LEFT": true, "RIGHT": true,
	"OUTER": true, "CROSS": true, "ON": true,
	"TRUE": true, "FALSE": true, "NULL": true,
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) errorf(pos int, format string, args ...any) *errors.Error {
	return errors.New(errors.KindParse).
		Op("query").
		Detail(format+" at offset %d", append(args, pos)...).
		Build()
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == '\'':
		return l.lexString()
	case c >= '0' && c <= '9':
		return l.lexNumber()
	case isIdentStart(rune(c)):
		return l.lexWord()
	}

	switch c {
	case '(', ')', ',', '*', '+', '-', '/', '=':
		l.pos++
		return token{kind: tokSymbol, text: string(c), pos: start}, nil
	case '<':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return token{kind: tokSymbol, text: "<=", pos: start}, nil
		}
		if l.peek() == '>' {
			l.pos++
			return token{kind: tokSymbol, text: "!=", pos: start}, nil
		}
		return token{kind: tokSymbol, text: "<", pos: start}, nil
	case '>':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return token{kind: tokSymbol, text: ">=", pos: start}, nil
		}
		return token{kind: tokSymbol, text: ">", pos: start}, nil
	case '!':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return token{kind: tokSymbol, text: "!=", pos: start}, nil
		}
		return token{}, l.errorf(start, "unexpected character %q", '!')
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return token{}, l.errorf(start, "unexpected character %q", r)
}

func (l *lexer) peek() byte {
	if l.pos < len(l.input) {
		return l.input[l.pos]
	}
	return 0
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}
		break
	}
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\'' {
			// '' escapes a quote inside the literal
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				b.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			return token{kind: tokString, text: b.String(), pos: start}, nil
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{}, l.errorf(start, "unterminated string literal")
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	kind := tokInt
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c >= '0' && c <= '9' {
			l.pos++
			continue
		}
		if c == '.' && kind == tokInt {
			kind = tokFloat
			l.pos++
			continue
		}
		if c == 'e' || c == 'E' {
			kind = tokFloat
			l.pos++
			if l.peek() == '+' || l.peek() == '-' {
				l.pos++
			}
			continue
		}
		break
	}
	text := l.input[start:l.pos]
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "e") || strings.HasSuffix(text, "E") {
		return token{}, l.errorf(start, "malformed number %q", text)
	}
	return token{kind: kind, text: text, pos: start}, nil
}

func (l *lexer) lexWord() (token, error) {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	word := l.input[start:l.pos]
	upper := strings.ToUpper(word)
	if keywords[upper] {
		return token{kind: tokKeyword, text: upper, pos: start}, nil
	}
	return token{kind: tokIdent, text: word, pos: start}, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
