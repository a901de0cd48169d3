package source

import (
	"strings"

	"github.com/quillql/quill-wasm/errors"
)

// Scheme identifies a locator's transport.
type Scheme string

const (
	SchemeMem   Scheme = "mem"
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeFile  Scheme = "file"
)

// Locator is a parsed source locator.
type Locator struct {
	Scheme Scheme
	Raw    string // full original text
	Rest   string // everything after "<scheme>://"
}

// ParseLocator splits and validates a locator string. Unknown schemes and
// shapeless input are source errors; the payload itself is not touched here
// except for mem, whose payload is part of the locator.
func ParseLocator(s string) (Locator, error) {
	idx := strings.Index(s, "://")
	if idx <= 0 {
		return Locator{}, errors.Source("register-source", "malformed locator %q: expected <scheme>://...", s)
	}
	scheme := Scheme(strings.ToLower(s[:idx]))
	rest := s[idx+len("://"):]

	switch scheme {
	case SchemeMem, SchemeHTTP, SchemeHTTPS, SchemeFile:
	default:
		return Locator{}, errors.Source("register-source", "unsupported locator scheme %q", string(scheme))
	}
	if rest == "" {
		return Locator{}, errors.Source("register-source", "locator %q has an empty payload", s)
	}
	return Locator{Scheme: scheme, Raw: s, Rest: rest}, nil
}

// Permit is the set of transports a context allows, derived from its
// io_backend option. mem is always allowed.
type Permit struct {
	HTTP bool
	File bool
}

func (p Permit) allows(s Scheme) bool {
	switch s {
	case SchemeMem:
		return true
	case SchemeHTTP, SchemeHTTPS:
		return p.HTTP
	case SchemeFile:
		return p.File
	}
	return false
}
