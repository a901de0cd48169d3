package engine

import (
	"context"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	quillwasm "github.com/quillql/quill-wasm"
	"github.com/quillql/quill-wasm/diag"
	"github.com/quillql/quill-wasm/errors"
	"github.com/quillql/quill-wasm/sql"
)

// Catalog resolves registered source names to table providers. The bridge's
// source registry is the production implementation.
type Catalog interface {
	Resolve(name string) (quillwasm.TableProvider, bool)
}

// Options configures a session.
type Options struct {
	// Funcs resolves scalar functions beyond the builtins (UDFs). Optional.
	Funcs FuncResolver

	// MemoryLimit is the allocation budget in bytes for batches flowing
	// through this session. 0 means unlimited.
	MemoryLimit uint64
}

// Session executes queries against one catalog on one logical thread.
// A Session is not safe for concurrent use.
type Session struct {
	catalog Catalog
	funcs   FuncResolver
	alloc   *limitAllocator
}

// NewSession creates a session over catalog.
func NewSession(catalog Catalog, opts Options) *Session {
	return &Session{
		catalog: catalog,
		funcs:   opts.Funcs,
		alloc:   newLimitAllocator(opts.MemoryLimit),
	}
}

// Allocator exposes the session's accounting allocator so sources decode
// into the same budget.
func (s *Session) Allocator() memory.Allocator {
	return s.alloc
}

// Plan is a prepared query: resolved, type-checked, ready to execute any
// number of times (each Execute starts a fresh pull pipeline, which is what
// makes result sequences restartable).
type Plan struct {
	sess     *Session
	provider quillwasm.TableProvider
	inSchema *arrow.Schema
	out      *arrow.Schema
	projs    []compiledExpr // nil for pure passthrough
	names    []string
	filter   *compiledExpr
	orderBy  []sortKey
	limit    int64
}

type sortKey struct {
	idx  int
	desc bool
}

// Schema returns the output schema.
func (p *Plan) Schema() *arrow.Schema { return p.out }

// Prepare resolves and type-checks sel. Unknown tables and columns, type
// mismatches, and constructs the engine does not execute (GROUP BY) are all
// plan errors here; no source data is read beyond schema resolution.
func (s *Session) Prepare(ctx context.Context, sel *sql.Select) (*Plan, error) {
	if len(sel.GroupBy) > 0 {
		return nil, errors.Plan("query", "GROUP BY is not supported")
	}
	if len(sel.Joins) > 0 {
		return nil, errors.Plan("query", "joins are not supported")
	}

	provider, ok := s.catalog.Resolve(sel.From)
	if !ok {
		return nil, errors.New(errors.KindPlan).
			Op("query").
			Path(sel.From).
			Detail("table %q not found", sel.From).
			Build()
	}

	inSchema, err := provider.Schema(ctx)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		sess:     s,
		provider: provider,
		inSchema: inSchema,
		limit:    sel.Limit,
	}

	if sel.Star {
		// Validate every column maps onto the engine lattice even for
		// passthrough, so unsupported types fail at plan time.
		for _, f := range inSchema.Fields() {
			if _, err := typeOfArrow(f.Type); err != nil {
				return nil, err
			}
			p.names = append(p.names, f.Name)
		}
		if sel.Where == nil && len(sel.OrderBy) == 0 {
			p.out = inSchema
		} else {
			// Filtering and sorting rebuild batches, normalizing onto
			// output types.
			for _, f := range inSchema.Fields() {
				ref := &sql.ColumnRef{Name: f.Name}
				c, err := s.compile(ref, inSchema)
				if err != nil {
					return nil, err
				}
				p.projs = append(p.projs, c)
			}
			p.out = outputSchema(p.names, p.projs)
		}
	} else {
		for _, item := range sel.Items {
			c, err := s.compile(item.Expr, inSchema)
			if err != nil {
				return nil, err
			}
			p.projs = append(p.projs, c)
			p.names = append(p.names, item.Name())
		}
		p.out = outputSchema(p.names, p.projs)
	}

	if sel.Where != nil {
		f, err := s.compile(sel.Where, inSchema)
		if err != nil {
			return nil, err
		}
		if f.typ != TypeBool && f.typ != TypeAny {
			return nil, errors.Plan("query", "WHERE requires a boolean predicate, got %s", f.typ)
		}
		p.filter = &f
	}

	for _, key := range sel.OrderBy {
		idx := -1
		for i, name := range p.names {
			if strings.EqualFold(name, key.Column) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, errors.New(errors.KindPlan).
				Op("query").
				Path(key.Column).
				Detail("ORDER BY column %q is not in the result", key.Column).
				Build()
		}
		p.orderBy = append(p.orderBy, sortKey{idx: idx, desc: key.Desc})
	}

	diag.Emitf(diag.Debug, "prepared query on %q: %d columns, filter=%t, order=%d, limit=%d",
		sel.From, len(p.names), p.filter != nil, len(p.orderBy), p.limit)

	return p, nil
}

// Execute starts a fresh pull pipeline for the plan.
func (p *Plan) Execute(ctx context.Context) (quillwasm.BatchIterator, error) {
	scan, err := p.provider.Scan(ctx)
	if err != nil {
		return nil, err
	}

	var it quillwasm.BatchIterator = scan
	if p.projs != nil || p.filter != nil {
		it = &transformIter{
			plan:  p,
			inner: it,
		}
	}
	if len(p.orderBy) > 0 {
		it = &sortIter{plan: p, inner: it}
	}
	if p.limit >= 0 {
		it = &limitIter{inner: it, remaining: p.limit}
	}
	return it, nil
}

func outputSchema(names []string, projs []compiledExpr) *arrow.Schema {
	fields := make([]arrow.Field, len(projs))
	for i, c := range projs {
		fields[i] = arrow.Field{Name: names[i], Type: arrowOf(c.typ), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

