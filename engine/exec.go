package engine

import (
	"context"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/quillql/quill-wasm/errors"
)

// ValueAt reads one cell from an arrow column as an engine value. Exposed
// for the result package, which renders batches cell by cell.
func ValueAt(col arrow.Array, i int) Value {
	return valueAt(col, i)
}

// transformIter applies the filter predicate and projections row-wise,
// emitting one rebuilt record per input batch that yields any rows.
type transformIter struct {
	plan   *Plan
	inner  batchIter
	closed bool
}

type batchIter interface {
	Next(ctx context.Context) (arrow.Record, error)
	Close()
}

func (t *transformIter) Next(ctx context.Context) (arrow.Record, error) {
	if t.closed {
		return nil, nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.KindExecution, "query", err, "query canceled")
		}
		in, err := t.inner.Next(ctx)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return nil, nil
		}

		out, n, err := t.transform(ctx, in)
		in.Release()
		if err != nil {
			return nil, err
		}
		if t.plan.sess.alloc.exceeded() {
			if out != nil {
				out.Release()
			}
			return nil, errors.Execution("query", "memory limit exceeded")
		}
		if n == 0 {
			if out != nil {
				out.Release()
			}
			continue // every row filtered out; pull the next batch
		}
		return out, nil
	}
}

func (t *transformIter) transform(ctx context.Context, in arrow.Record) (arrow.Record, int, error) {
	rb := array.NewRecordBuilder(t.plan.sess.alloc, t.plan.out)
	defer rb.Release()

	rows := int(in.NumRows())
	kept := 0
	cur := &rowCursor{rec: in}
	for i := 0; i < rows; i++ {
		cur.row = i
		if t.plan.filter != nil {
			v, err := t.plan.filter.eval(ctx, cur)
			if err != nil {
				return nil, 0, err
			}
			if v.IsNull() || !v.BoolVal() {
				continue
			}
		}
		for j, proj := range t.plan.projs {
			v, err := proj.eval(ctx, cur)
			if err != nil {
				return nil, 0, err
			}
			appendValue(rb.Field(j), v)
		}
		kept++
	}
	if kept == 0 {
		return nil, 0, nil
	}
	return rb.NewRecord(), kept, nil
}

func (t *transformIter) Close() {
	if !t.closed {
		t.closed = true
		t.inner.Close()
	}
}

// appendValue writes v into the builder for its output column. Output
// columns are always int64/float64/string/bool per arrowOf.
func appendValue(b array.Builder, v Value) {
	if v.IsNull() {
		b.AppendNull()
		return
	}
	switch fb := b.(type) {
	case *array.Int64Builder:
		fb.Append(v.IntVal())
	case *array.Float64Builder:
		fb.Append(v.FloatVal())
	case *array.StringBuilder:
		fb.Append(v.StrVal())
	case *array.BooleanBuilder:
		fb.Append(v.BoolVal())
	default:
		b.AppendNull()
	}
}

// sortIter materializes the whole input, orders it, and re-emits it in
// bounded chunks. ORDER BY is the one pipeline stage that cannot stream.
const sortChunkRows = 4096

type sortIter struct {
	plan   *Plan
	inner  batchIter
	rows   [][]Value
	loaded bool
	pos    int
	closed bool
}

func (s *sortIter) Next(ctx context.Context) (arrow.Record, error) {
	if s.closed {
		return nil, nil
	}
	if !s.loaded {
		if err := s.load(ctx); err != nil {
			return nil, err
		}
	}
	if s.pos >= len(s.rows) {
		return nil, nil
	}
	end := s.pos + sortChunkRows
	if end > len(s.rows) {
		end = len(s.rows)
	}

	rb := array.NewRecordBuilder(s.plan.sess.alloc, s.plan.out)
	defer rb.Release()
	for _, row := range s.rows[s.pos:end] {
		for j, v := range row {
			appendValue(rb.Field(j), v)
		}
	}
	s.pos = end
	return rb.NewRecord(), nil
}

func (s *sortIter) load(ctx context.Context) error {
	defer s.inner.Close()
	s.loaded = true
	for {
		rec, err := s.inner.Next(ctx)
		if err != nil {
			return err
		}
		if rec == nil {
			break
		}
		rows := int(rec.NumRows())
		cols := int(rec.NumCols())
		for i := 0; i < rows; i++ {
			row := make([]Value, cols)
			for j := 0; j < cols; j++ {
				row[j] = valueAt(rec.Column(j), i)
			}
			s.rows = append(s.rows, row)
		}
		rec.Release()
		if s.plan.sess.alloc.exceeded() {
			return errors.Execution("query", "memory limit exceeded while sorting")
		}
	}

	keys := s.plan.orderBy
	sort.SliceStable(s.rows, func(a, b int) bool {
		for _, k := range keys {
			c := orderValues(s.rows[a][k.idx], s.rows[b][k.idx])
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return nil
}

func (s *sortIter) Close() {
	if !s.closed {
		s.closed = true
		s.rows = nil
		s.inner.Close()
	}
}

// orderValues gives a total order for sorting: NULLs first, then by value;
// mixed types order by type id so sorting never fails mid-query.
func orderValues(a, b Value) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}
	if isNumeric(a.Type()) && isNumeric(b.Type()) {
		af, bf := a.FloatVal(), b.FloatVal()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	if a.Type() != b.Type() {
		return int(a.Type()) - int(b.Type())
	}
	switch a.Type() {
	case TypeString:
		switch {
		case a.StrVal() < b.StrVal():
			return -1
		case a.StrVal() > b.StrVal():
			return 1
		default:
			return 0
		}
	case TypeBool:
		switch {
		case a.BoolVal() == b.BoolVal():
			return 0
		case b.BoolVal():
			return -1
		default:
			return 1
		}
	}
	return 0
}

// limitIter truncates the stream after n rows, slicing the final record.
type limitIter struct {
	inner     batchIter
	remaining int64
	closed    bool
}

func (l *limitIter) Next(ctx context.Context) (arrow.Record, error) {
	if l.closed || l.remaining <= 0 {
		return nil, nil
	}
	rec, err := l.inner.Next(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.NumRows() <= l.remaining {
		l.remaining -= rec.NumRows()
		return rec, nil
	}
	sliced := rec.NewSlice(0, l.remaining)
	rec.Release()
	l.remaining = 0
	return sliced, nil
}

func (l *limitIter) Close() {
	if !l.closed {
		l.closed = true
		l.inner.Close()
	}
}
