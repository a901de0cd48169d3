package result

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"

	quillwasm "github.com/quillql/quill-wasm"
	"github.com/quillql/quill-wasm/engine"
	"github.com/quillql/quill-wasm/errors"
)

// Set is a lazy, restartable sequence of result batches over one prepared
// plan. It is not safe for concurrent use; the bridge serializes access.
type Set struct {
	plan   *engine.Plan
	it     quillwasm.BatchIterator
	err    error
	closed bool
}

// NewSet wraps plan without executing it.
func NewSet(plan *engine.Plan) *Set {
	return &Set{plan: plan}
}

// Schema returns the plan's output schema. Available before execution.
func (s *Set) Schema() *arrow.Schema {
	return s.plan.Schema()
}

// Next returns the next batch, starting execution on the first call. It
// returns (nil, nil) once the sequence is exhausted; the caller releases
// each returned record. A pull error is sticky until Restart.
func (s *Set) Next(ctx context.Context) (arrow.Record, error) {
	if s.closed {
		return nil, errors.Disposed("next")
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.it == nil {
		it, err := s.plan.Execute(ctx)
		if err != nil {
			s.err = err
			return nil, err
		}
		s.it = it
	}
	rec, err := s.it.Next(ctx)
	if err != nil {
		s.err = err
		s.it.Close()
		s.it = nil
		return nil, err
	}
	return rec, nil
}

// Restart abandons the current run. The next Next re-executes the plan from
// the beginning.
func (s *Set) Restart() {
	if s.closed {
		return
	}
	if s.it != nil {
		s.it.Close()
		s.it = nil
	}
	s.err = nil
}

// Closed reports whether the set has been closed.
func (s *Set) Closed() bool {
	return s.closed
}

// Close releases the underlying pipeline. Further calls to Next report a
// disposed error.
func (s *Set) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.it != nil {
		s.it.Close()
		s.it = nil
	}
}

// rows drains the remainder of the set into row-wise values.
func rows(ctx context.Context, s *Set) ([][]engine.Value, error) {
	var out [][]engine.Value
	for {
		rec, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return out, nil
		}
		n := int(rec.NumRows())
		cols := int(rec.NumCols())
		for i := 0; i < n; i++ {
			row := make([]engine.Value, cols)
			for j := 0; j < cols; j++ {
				row[j] = engine.ValueAt(rec.Column(j), i)
			}
			out = append(out, row)
		}
		rec.Release()
	}
}
