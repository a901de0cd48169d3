package bridge

import (
	"context"
	"sync"

	"github.com/google/uuid"

	quillwasm "github.com/quillql/quill-wasm"
	"github.com/quillql/quill-wasm/diag"
	"github.com/quillql/quill-wasm/engine"
	"github.com/quillql/quill-wasm/errors"
	"github.com/quillql/quill-wasm/fault"
	"github.com/quillql/quill-wasm/result"
	"github.com/quillql/quill-wasm/source"
	"github.com/quillql/quill-wasm/sql"
	"github.com/quillql/quill-wasm/udf"
)

// State tracks a context handle through its lifecycle.
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	default:
		return "uninitialized"
	}
}

// releaser is implemented by providers that cache decoded data.
type releaser interface {
	Release()
}

// Context is one live engine handle. Operations are serialized; see the
// package comment for the threading model.
type Context struct {
	id   uuid.UUID
	opts Options

	mu      sync.Mutex
	state   State
	sources map[string]quillwasm.TableProvider
	sets    []*result.Set
	udfs    *udf.Registry
	sess    *engine.Session
	cancel  context.CancelFunc
	runCtx  context.Context
}

// registryCatalog adapts the source map to the engine's catalog contract.
type registryCatalog struct{ c *Context }

func (r registryCatalog) Resolve(name string) (quillwasm.TableProvider, bool) {
	p, ok := r.c.sources[name]
	return p, ok
}

// New constructs a ready context. The panic interceptor is installed on the
// first construction; every later context reuses it.
func New(opts Options) (*Context, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	fault.Install()

	runCtx, cancel := context.WithCancel(context.Background())
	c := &Context{
		id:      uuid.New(),
		opts:    opts,
		state:   StateUninitialized,
		sources: make(map[string]quillwasm.TableProvider),
		udfs:    udf.NewRegistry(runCtx),
		cancel:  cancel,
		runCtx:  runCtx,
	}
	c.sess = engine.NewSession(registryCatalog{c}, engine.Options{
		Funcs:       c.udfs,
		MemoryLimit: opts.MemoryLimit,
	})
	c.state = StateReady

	diag.Emitf(diag.Debug, "context %s created: mode=%s io=%s limit=%d",
		c.id, opts.Mode, opts.IOBackend, opts.MemoryLimit)
	return c, nil
}

// ID returns the handle's stable identity.
func (c *Context) ID() string { return c.id.String() }

// State returns the lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RegisterSource binds name to a locator. Registering an existing name
// replaces it; the old provider's cache is released.
func (c *Context) RegisterSource(ctx context.Context, name, locator string, formatOpts map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready("register-source"); err != nil {
		return err
	}
	return fault.Capture("register-source", func() error {
		if name == "" {
			return errors.Source("register-source", "source name must not be empty")
		}
		p, err := source.New(name, locator, formatOpts, c.opts.permit(), c.sess.Allocator())
		if err != nil {
			return err
		}
		c.replaceSource(name, p)
		diag.Emitf(diag.Debug, "context %s: source %q -> %s", c.id, name, locator)
		return nil
	})
}

// RegisterProvider binds name to a caller-supplied table provider. This is
// the embedding hook: Go hosts can serve tables the locator schemes cannot
// express.
func (c *Context) RegisterProvider(name string, p quillwasm.TableProvider) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready("register-source"); err != nil {
		return err
	}
	if name == "" {
		return errors.Source("register-source", "source name must not be empty")
	}
	if p == nil {
		return errors.Source("register-source", "provider must not be nil")
	}
	c.replaceSource(name, p)
	return nil
}

// RegisterUDF instantiates a wasm module and binds its export as a scalar
// function.
func (c *Context) RegisterUDF(ctx context.Context, name string, wasmBytes []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready("register-udf"); err != nil {
		return err
	}
	return fault.Capture("register-udf", func() error {
		return c.udfs.Register(ctx, name, wasmBytes)
	})
}

// Query parses, plans and wraps query as a lazy result set. Parsing happens
// before any source is touched, so malformed text fails without I/O; the
// returned set has executed nothing yet.
func (c *Context) Query(ctx context.Context, query string) (*result.Set, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ready("query"); err != nil {
		return nil, err
	}

	var set *result.Set
	err := fault.Capture("query", func() error {
		sel, err := sql.Parse(query)
		if err != nil {
			return err
		}
		plan, err := c.sess.Prepare(ctx, sel)
		if err != nil {
			return err
		}
		set = result.NewSet(plan)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.track(set)
	return set, nil
}

// track remembers an issued set so Dispose can fail its pending pulls.
// Sets the host already closed are dropped on the way.
func (c *Context) track(s *result.Set) {
	kept := c.sets[:0]
	for _, old := range c.sets {
		if !old.Closed() {
			kept = append(kept, old)
		}
	}
	c.sets = append(kept, s)
}

// QueryEncoded runs query to completion and returns the rows in the named
// transfer encoding. This is the one-shot surface the js host uses.
func (c *Context) QueryEncoded(ctx context.Context, query, format string) ([]byte, error) {
	f, err := result.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	set, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer set.Close()

	var out []byte
	err = fault.Capture("query", func() error {
		b, err := result.Encode(ctx, set, f)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Dispose releases every source and the UDF runtime and marks the handle
// dead. Idempotent; the second and later calls do nothing.
func (c *Context) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisposed {
		return
	}
	c.state = StateDisposed
	c.cancel()

	// Close outstanding result sets first so a pending pull resolves to a
	// disposed error instead of scanning a released source.
	for _, s := range c.sets {
		s.Close()
	}
	c.sets = nil

	for name, p := range c.sources {
		if r, ok := p.(releaser); ok {
			r.Release()
		}
		delete(c.sources, name)
	}
	c.udfs.Close(context.Background())
	diag.Emitf(diag.Debug, "context %s disposed", c.id)
}

func (c *Context) ready(op string) error {
	switch c.state {
	case StateReady:
		return nil
	case StateDisposed:
		return errors.Disposed(op)
	}
	return errors.Init(op, "context is not initialized")
}

func (c *Context) replaceSource(name string, p quillwasm.TableProvider) {
	if old, ok := c.sources[name]; ok {
		if r, ok := old.(releaser); ok {
			r.Release()
		}
	}
	c.sources[name] = p
}
