package bridge

import (
	"runtime"

	"github.com/quillql/quill-wasm/errors"
	"github.com/quillql/quill-wasm/source"
)

// Mode selects where the engine keeps its working state. Only the in-memory
// engine exists today; the option stays explicit so hosts pin the behavior
// they get.
type Mode string

const ModeMemory Mode = "memory"

// IOBackend selects which locator schemes a context may resolve.
type IOBackend string

const (
	// IONone permits only inline mem sources.
	IONone IOBackend = "none"
	// IOFetch permits http and https locators. The default.
	IOFetch IOBackend = "fetch"
	// IOFS additionally permits file locators. Native builds only.
	IOFS IOBackend = "fs"
)

// Options configures a context handle.
type Options struct {
	Mode        Mode
	IOBackend   IOBackend
	MemoryLimit uint64 // bytes; 0 means unlimited
}

// ParseOptions converts the host-supplied option map into typed options.
// The key set is closed; unknown keys and ill-typed values are init errors
// so a misspelled option never silently changes behavior.
func ParseOptions(raw map[string]any) (Options, error) {
	opts := Options{Mode: ModeMemory, IOBackend: IOFetch}
	for key, val := range raw {
		switch key {
		case "mode":
			s, ok := val.(string)
			if !ok {
				return Options{}, badCreateOption(key, "string", val)
			}
			if Mode(s) != ModeMemory {
				return Options{}, errors.New(errors.KindInit).
					Op("create").
					Path(key).
					Detail("unknown mode %q (want memory)", s).
					Build()
			}
		case "io_backend":
			s, ok := val.(string)
			if !ok {
				return Options{}, badCreateOption(key, "string", val)
			}
			switch IOBackend(s) {
			case IONone, IOFetch, IOFS:
				opts.IOBackend = IOBackend(s)
			default:
				return Options{}, errors.New(errors.KindInit).
					Op("create").
					Path(key).
					Detail("unknown io backend %q (want none, fetch or fs)", s).
					Build()
			}
		case "memory_limit":
			n, ok := toUint64(val)
			if !ok {
				return Options{}, badCreateOption(key, "non-negative integer", val)
			}
			opts.MemoryLimit = n
		default:
			return Options{}, errors.New(errors.KindInit).
				Op("create").
				Path(key).
				Detail("unknown option %q", key).
				Build()
		}
	}
	return opts, opts.validate()
}

// withDefaults fills empty fields with the defaults ParseOptions uses, so
// the zero Options value behaves for Go embedders like a create call with
// no options.
func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeMemory
	}
	if o.IOBackend == "" {
		o.IOBackend = IOFetch
	}
	return o
}

func (o Options) validate() error {
	if o.Mode != ModeMemory {
		return errors.Init("create", "unknown mode %q (want memory)", string(o.Mode))
	}
	switch o.IOBackend {
	case IONone, IOFetch, IOFS:
	default:
		return errors.Init("create", "unknown io backend %q (want none, fetch or fs)", string(o.IOBackend))
	}
	if o.IOBackend == IOFS && runtime.GOOS == "js" {
		return errors.Init("create", "io backend fs is not available on js hosts")
	}
	return nil
}

// permit maps the io backend onto the source layer's transport permit.
func (o Options) permit() source.Permit {
	switch o.IOBackend {
	case IOFetch:
		return source.Permit{HTTP: true}
	case IOFS:
		return source.Permit{HTTP: true, File: true}
	}
	return source.Permit{}
}

func toUint64(val any) (uint64, bool) {
	switch n := val.(type) {
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return n, true
	case float64:
		if n < 0 || n != float64(uint64(n)) {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

func badCreateOption(key, want string, got any) *errors.Error {
	return errors.New(errors.KindInit).
		Op("create").
		Path(key).
		Detail("option %q must be a %s, got %T", key, want, got).
		Build()
}
