package source

import (
	"context"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	quillwasm "github.com/quillql/quill-wasm"
	"github.com/quillql/quill-wasm/diag"
	"github.com/quillql/quill-wasm/errors"
)

// Provider is a lazily resolved table. It implements the root TableProvider
// contract; the bridge's registry maps source names to these.
type Provider struct {
	name   string
	loc    Locator
	format Format
	opts   FormatOptions
	alloc  memory.Allocator

	mu       sync.Mutex
	resolved bool
	schema   *arrow.Schema
	recs     []arrow.Record
}

// New validates the locator and options and returns an unresolved provider.
// mem locators carry their payload inline, so they are decoded eagerly and
// malformed payloads fail registration; remote locators defer I/O to the
// first scan.
func New(name, locator string, rawOpts map[string]any, permit Permit, alloc memory.Allocator) (*Provider, error) {
	loc, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}
	if !permit.allows(loc.Scheme) {
		return nil, errors.Source("register-source",
			"scheme %q is not allowed by the configured io backend", string(loc.Scheme))
	}
	opts, err := ParseFormatOptions(rawOpts)
	if err != nil {
		return nil, err
	}

	format := FormatJSON
	if loc.Scheme != SchemeMem {
		format, err = inferFormat(loc, opts)
		if err != nil {
			return nil, err
		}
	}
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}

	p := &Provider{name: name, loc: loc, format: format, opts: opts, alloc: alloc}

	if loc.Scheme == SchemeMem {
		if err := p.decode([]byte(loc.Rest)); err != nil {
			return nil, err
		}
		p.resolved = true
	}
	return p, nil
}

// Schema resolves the source if needed and returns its schema.
func (p *Provider) Schema(ctx context.Context) (*arrow.Schema, error) {
	if err := p.resolve(ctx); err != nil {
		return nil, err
	}
	return p.schema, nil
}

// Scan resolves the source if needed and returns a fresh iterator over its
// cached batches.
func (p *Provider) Scan(ctx context.Context) (quillwasm.BatchIterator, error) {
	if err := p.resolve(ctx); err != nil {
		return nil, err
	}
	p.mu.Lock()
	recs := make([]arrow.Record, len(p.recs))
	for i, r := range p.recs {
		r.Retain()
		recs[i] = r
	}
	p.mu.Unlock()
	return &cachedIter{recs: recs}, nil
}

// Release drops the cached batches. The provider must not be scanned again.
func (p *Provider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.recs {
		r.Release()
	}
	p.recs = nil
	p.resolved = true // resolved-but-empty; scans see an empty table
}

func (p *Provider) resolve(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved {
		return nil
	}

	var data []byte
	var err error
	switch p.loc.Scheme {
	case SchemeHTTP, SchemeHTTPS:
		data, err = fetch(ctx, p.loc.Raw)
	case SchemeFile:
		data, err = readFile(p.loc.Rest)
	default:
		err = errors.Source("query", "unresolvable locator %q", p.loc.Raw)
	}
	if err != nil {
		return err
	}

	if err := p.decode(data); err != nil {
		return err
	}
	p.resolved = true
	diag.Emitf(diag.Debug, "source %q resolved: %d batches", p.name, len(p.recs))
	return nil
}

// decode parses data per the provider format and caches schema + batches.
// Callers hold the lock except during New.
func (p *Provider) decode(data []byte) error {
	var (
		schema *arrow.Schema
		recs   []arrow.Record
		err    error
	)
	switch p.format {
	case FormatJSON:
		schema, recs, err = decodeJSON(data, p.alloc)
	case FormatCSV:
		schema, recs, err = decodeCSV(data, p.opts, p.alloc)
	case FormatIPC:
		schema, recs, err = decodeIPC(data, p.alloc)
	default:
		err = errors.Source("register-source", "no decoder for format %q", string(p.format))
	}
	if err != nil {
		return err
	}
	p.schema = schema
	p.recs = recs
	return nil
}

type cachedIter struct {
	recs []arrow.Record
	pos  int
}

func (it *cachedIter) Next(context.Context) (arrow.Record, error) {
	if it.pos >= len(it.recs) {
		return nil, nil
	}
	rec := it.recs[it.pos]
	it.recs[it.pos] = nil
	it.pos++
	return rec, nil
}

func (it *cachedIter) Close() {
	for _, r := range it.recs {
		if r != nil {
			r.Release()
		}
	}
	it.recs = nil
}
