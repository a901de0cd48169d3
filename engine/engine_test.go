package engine

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	quillwasm "github.com/quillql/quill-wasm"
	"github.com/quillql/quill-wasm/errors"
	"github.com/quillql/quill-wasm/sql"
)

// staticProvider serves pre-built records for tests.
type staticProvider struct {
	schema *arrow.Schema
	recs   []arrow.Record
}

func (p *staticProvider) Schema(context.Context) (*arrow.Schema, error) {
	return p.schema, nil
}

func (p *staticProvider) Scan(context.Context) (quillwasm.BatchIterator, error) {
	return &staticIter{recs: p.recs}, nil
}

type staticIter struct {
	recs []arrow.Record
	pos  int
}

func (it *staticIter) Next(context.Context) (arrow.Record, error) {
	if it.pos >= len(it.recs) {
		return nil, nil
	}
	rec := it.recs[it.pos]
	it.pos++
	rec.Retain()
	return rec, nil
}

func (it *staticIter) Close() {}

type mapCatalog map[string]quillwasm.TableProvider

func (c mapCatalog) Resolve(name string) (quillwasm.TableProvider, bool) {
	p, ok := c[name]
	return p, ok
}

// playersProvider builds the fixture table used across tests:
//
//	id int64 | name string | score float64 | retired bool
func playersProvider(t *testing.T) *staticProvider {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "retired", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
	}, nil)

	rb := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer rb.Release()

	ids := []int64{1, 2, 3, 4}
	names := []string{"ada", "grace", "edsger", "barbara"}
	scores := []float64{10, 30, 20, 40}
	retired := []bool{false, true, false, true}
	for i := range ids {
		rb.Field(0).(*array.Int64Builder).Append(ids[i])
		rb.Field(1).(*array.StringBuilder).Append(names[i])
		rb.Field(2).(*array.Float64Builder).Append(scores[i])
		rb.Field(3).(*array.BooleanBuilder).Append(retired[i])
	}
	rec := rb.NewRecord()
	t.Cleanup(func() { rec.Release() })

	return &staticProvider{schema: schema, recs: []arrow.Record{rec}}
}

func run(t *testing.T, sess *Session, query string) [][]Value {
	t.Helper()
	sel, err := sql.Parse(query)
	if err != nil {
		t.Fatalf("parse %q: %v", query, err)
	}
	plan, err := sess.Prepare(context.Background(), sel)
	if err != nil {
		t.Fatalf("prepare %q: %v", query, err)
	}
	it, err := plan.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute %q: %v", query, err)
	}
	defer it.Close()

	var rows [][]Value
	for {
		rec, err := it.Next(context.Background())
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if rec == nil {
			return rows
		}
		for i := 0; i < int(rec.NumRows()); i++ {
			row := make([]Value, rec.NumCols())
			for j := range row {
				row[j] = ValueAt(rec.Column(j), i)
			}
			rows = append(rows, row)
		}
		rec.Release()
	}
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	return NewSession(mapCatalog{"players": playersProvider(t)}, opts)
}

func TestSession_SelectStar(t *testing.T) {
	sess := newTestSession(t, Options{})
	rows := run(t, sess, "select * from players")
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0][1].StrVal() != "ada" || rows[3][1].StrVal() != "barbara" {
		t.Errorf("unexpected name column: %v, %v", rows[0][1], rows[3][1])
	}
}

func TestSession_ProjectionAndArithmetic(t *testing.T) {
	sess := newTestSession(t, Options{})
	rows := run(t, sess, "select id, score * 2 as doubled, upper(name) from players limit 2")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][1].FloatVal() != 20 {
		t.Errorf("doubled[0] = %v", rows[0][1])
	}
	if rows[1][2].StrVal() != "GRACE" {
		t.Errorf("upper(name)[1] = %v", rows[1][2])
	}
}

func TestSession_FilterAndOrder(t *testing.T) {
	sess := newTestSession(t, Options{})
	rows := run(t, sess, "select name from players where not retired order by score desc")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0].StrVal() != "edsger" || rows[1][0].StrVal() != "ada" {
		t.Errorf("order = %v, %v", rows[0][0], rows[1][0])
	}
}

func TestSession_StarWithOrderBy(t *testing.T) {
	sess := newTestSession(t, Options{})
	rows := run(t, sess, "select * from players order by id desc limit 1")
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0][0].IntVal() != 4 {
		t.Errorf("id = %v, want 4", rows[0][0])
	}
}

func TestSession_OutputSchemaNames(t *testing.T) {
	sess := newTestSession(t, Options{})
	sel, err := sql.Parse("select id, score + 1 bumped from players")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	plan, err := sess.Prepare(context.Background(), sel)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	schema := plan.Schema()
	if schema.NumFields() != 2 {
		t.Fatalf("fields = %d", schema.NumFields())
	}
	if schema.Field(0).Name != "id" || schema.Field(1).Name != "bumped" {
		t.Errorf("names = %q, %q", schema.Field(0).Name, schema.Field(1).Name)
	}
	if schema.Field(1).Type.ID() != arrow.FLOAT64 {
		t.Errorf("bumped type = %s, want float64", schema.Field(1).Type)
	}
}

func TestSession_PlanErrors(t *testing.T) {
	sess := newTestSession(t, Options{})
	tests := []struct {
		name  string
		query string
	}{
		{"unknown table", "select * from missing"},
		{"unknown column", "select nope from players"},
		{"unknown column in where", "select id from players where nope = 1"},
		{"group by unsupported", "select id from players group by id"},
		{"join unsupported", "select * from players join players"},
		{"comma join unsupported", "select * from players, players"},
		{"type mismatch arithmetic", "select name + 1 from players"},
		{"type mismatch comparison", "select id from players where name > 5"},
		{"where not boolean", "select id from players where id + 1"},
		{"unknown function", "select frobnicate(id) from players"},
		{"wrong arity", "select upper(name, name) from players"},
		{"order by missing column", "select id from players order by nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := sql.Parse(tt.query)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			_, err = sess.Prepare(context.Background(), sel)
			if err == nil {
				t.Fatal("expected plan error")
			}
			if !errors.IsKind(err, errors.KindPlan) {
				t.Errorf("kind = %q, want plan: %v", errors.KindOf(err), err)
			}
		})
	}
}

func TestSession_DivisionByZeroIsExecutionError(t *testing.T) {
	sess := newTestSession(t, Options{})
	sel, err := sql.Parse("select id / 0 from players")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	plan, err := sess.Prepare(context.Background(), sel)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	it, err := plan.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	defer it.Close()
	_, err = it.Next(context.Background())
	if !errors.IsKind(err, errors.KindExecution) {
		t.Errorf("kind = %q, want execution: %v", errors.KindOf(err), err)
	}
}

func TestSession_UDFResolver(t *testing.T) {
	double := &Function{
		Params: []Type{TypeInt},
		Result: TypeInt,
		Call: func(_ context.Context, args []Value) (Value, error) {
			return Int(args[0].IntVal() * 2), nil
		},
	}
	sess := NewSession(
		mapCatalog{"players": playersProvider(t)},
		Options{Funcs: funcMap{"double": double}},
	)
	rows := run(t, sess, "select double(id) from players where id = 3")
	if len(rows) != 1 || rows[0][0].IntVal() != 6 {
		t.Fatalf("rows = %v, want [[6]]", rows)
	}
}

type funcMap map[string]*Function

func (m funcMap) Resolve(name string) (*Function, bool) {
	fn, ok := m[name]
	return fn, ok
}

func TestSession_MemoryLimit(t *testing.T) {
	sess := newTestSession(t, Options{MemoryLimit: 1})
	sel, err := sql.Parse("select id from players where id > 0")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	plan, err := sess.Prepare(context.Background(), sel)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	it, err := plan.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	defer it.Close()
	_, err = it.Next(context.Background())
	if !errors.IsKind(err, errors.KindExecution) {
		t.Errorf("kind = %q, want execution: %v", errors.KindOf(err), err)
	}
}

func TestPlan_RestartableExecution(t *testing.T) {
	sess := newTestSession(t, Options{})
	sel, err := sql.Parse("select id from players limit 2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	plan, err := sess.Prepare(context.Background(), sel)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	for round := 0; round < 2; round++ {
		it, err := plan.Execute(context.Background())
		if err != nil {
			t.Fatalf("execute round %d: %v", round, err)
		}
		n := int64(0)
		for {
			rec, err := it.Next(context.Background())
			if err != nil {
				t.Fatalf("next: %v", err)
			}
			if rec == nil {
				break
			}
			n += rec.NumRows()
			rec.Release()
		}
		it.Close()
		if n != 2 {
			t.Fatalf("round %d rows = %d, want 2", round, n)
		}
	}
}
