package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/quillql/quill-wasm/errors"
)

var openPermit = Permit{HTTP: true, File: true}

func TestParseLocator(t *testing.T) {
	loc, err := ParseLocator("mem://[1,2,3]")
	if err != nil {
		t.Fatalf("ParseLocator: %v", err)
	}
	if loc.Scheme != SchemeMem || loc.Rest != "[1,2,3]" {
		t.Fatalf("unexpected locator: %+v", loc)
	}

	for _, bad := range []string{"", "nums", "://x", "ftp://host/x", "mem://"} {
		if _, err := ParseLocator(bad); !errors.IsKind(err, errors.KindSource) {
			t.Errorf("ParseLocator(%q) = %v, want source error", bad, err)
		}
	}
}

func TestFormatOptionsClosedSet(t *testing.T) {
	opts, err := ParseFormatOptions(map[string]any{"format": "csv", "delimiter": ";", "header": false})
	if err != nil {
		t.Fatalf("ParseFormatOptions: %v", err)
	}
	if opts.Format != FormatCSV || opts.Delimiter != ';' || opts.Header {
		t.Fatalf("unexpected options: %+v", opts)
	}

	cases := []map[string]any{
		{"format": "parquet"},
		{"format": 7},
		{"delimiter": ";;"},
		{"header": "yes"},
		{"compression": "zstd"},
	}
	for _, raw := range cases {
		if _, err := ParseFormatOptions(raw); !errors.IsKind(err, errors.KindSource) {
			t.Errorf("ParseFormatOptions(%v) = %v, want source error", raw, err)
		}
	}
}

func TestInferFormat(t *testing.T) {
	cases := []struct {
		locator string
		want    Format
	}{
		{"https://host/data.csv", FormatCSV},
		{"https://host/data.json?v=2", FormatJSON},
		{"file:///tmp/data.arrow", FormatIPC},
		{"file:///tmp/data.ipc", FormatIPC},
	}
	for _, tc := range cases {
		loc, err := ParseLocator(tc.locator)
		if err != nil {
			t.Fatalf("ParseLocator(%q): %v", tc.locator, err)
		}
		got, err := inferFormat(loc, FormatOptions{})
		if err != nil {
			t.Fatalf("inferFormat(%q): %v", tc.locator, err)
		}
		if got != tc.want {
			t.Errorf("inferFormat(%q) = %q, want %q", tc.locator, got, tc.want)
		}
	}

	loc, _ := ParseLocator("https://host/data.bin")
	if _, err := inferFormat(loc, FormatOptions{}); !errors.IsKind(err, errors.KindSource) {
		t.Fatalf("inferFormat without extension = %v, want source error", err)
	}
}

func TestMemScalars(t *testing.T) {
	p, err := New("nums", "mem://[1,2,3]", nil, Permit{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Release()

	schema, err := p.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if schema.NumFields() != 1 || schema.Field(0).Name != "value" {
		t.Fatalf("unexpected schema: %v", schema)
	}
	if schema.Field(0).Type.ID() != arrow.INT64 {
		t.Fatalf("value column type = %v, want int64", schema.Field(0).Type)
	}

	got := collectInt64(t, p, "value")
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rows = %v, want %v", got, want)
		}
	}
}

func TestMemObjects(t *testing.T) {
	p, err := New("users", `mem://[{"name":"ada","age":36},{"name":"grace"}]`, nil, Permit{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Release()

	schema, err := p.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if schema.NumFields() != 2 {
		t.Fatalf("field count = %d, want 2", schema.NumFields())
	}
	// keys come out sorted
	if schema.Field(0).Name != "age" || schema.Field(1).Name != "name" {
		t.Fatalf("unexpected field order: %v", schema)
	}

	it, err := p.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer it.Close()
	rec, err := it.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	defer rec.Release()
	if rec.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", rec.NumRows())
	}
	// grace has no age; the cell must be NULL, not zero
	if !rec.Column(0).IsNull(1) {
		t.Fatal("missing key should read as NULL")
	}
}

func TestMemMalformedFailsRegistration(t *testing.T) {
	cases := []string{
		"mem://{not json",
		"mem://[1,\"two\",3]",
		"mem://[[1],[2]]",
		"mem://[]",
		`mem://[{"a":1},2]`,
	}
	for _, locator := range cases {
		if _, err := New("bad", locator, nil, Permit{}, nil); !errors.IsKind(err, errors.KindSource) {
			t.Errorf("New(%q) = %v, want source error", locator, err)
		}
	}
}

func TestMemIntWidensToFloat(t *testing.T) {
	p, err := New("mixed", "mem://[1,2.5,3]", nil, Permit{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Release()
	schema, err := p.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if schema.Field(0).Type.ID() != arrow.FLOAT64 {
		t.Fatalf("column type = %v, want float64", schema.Field(0).Type)
	}
}

func TestPermitDenied(t *testing.T) {
	if _, err := New("t", "https://host/x.csv", nil, Permit{}, nil); !errors.IsKind(err, errors.KindSource) {
		t.Fatalf("http without permit = %v, want source error", err)
	}
	if _, err := New("t", "file:///tmp/x.csv", nil, Permit{HTTP: true}, nil); !errors.IsKind(err, errors.KindSource) {
		t.Fatalf("file without permit = %v, want source error", err)
	}
}

func TestHTTPSourceLazy(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("id,name\n1,ada\n2,grace\n"))
	}))
	defer srv.Close()

	p, err := New("people", srv.URL+"/people.csv", nil, openPermit, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Release()
	if hits != 0 {
		t.Fatal("registration must not touch the network")
	}

	got := collectInt64(t, p, "id")
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("ids = %v, want [1 2]", got)
	}
	if hits != 1 {
		t.Fatalf("fetch count = %d, want 1", hits)
	}

	// second scan replays the cache
	collectInt64(t, p, "id")
	if hits != 1 {
		t.Fatalf("fetch count after rescan = %d, want 1", hits)
	}
}

func TestHTTPStatusIsIOError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	p, err := New("t", srv.URL+"/missing.csv", nil, openPermit, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Scan(context.Background()); !errors.IsKind(err, errors.KindIO) {
		t.Fatalf("Scan = %v, want io error", err)
	}
}

func TestCSVDelimiterOption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("id;score\n1;9.5\n2;8.25\n"))
	}))
	defer srv.Close()

	p, err := New("scores", srv.URL+"/scores.csv", map[string]any{"delimiter": ";"}, openPermit, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Release()

	schema, err := p.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if schema.NumFields() != 2 {
		t.Fatalf("field count = %d, want 2: %v", schema.NumFields(), schema)
	}
}

func collectInt64(t *testing.T, p *Provider, col string) []int64 {
	t.Helper()
	ctx := context.Background()
	schema, err := p.Schema(ctx)
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	idx := -1
	for i := 0; i < schema.NumFields(); i++ {
		if schema.Field(i).Name == col {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatalf("column %q not in schema %v", col, schema)
	}

	it, err := p.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer it.Close()

	var out []int64
	for {
		rec, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if rec == nil {
			return out
		}
		data := rec.Column(idx)
		for i := 0; i < int(rec.NumRows()); i++ {
			out = append(out, anyToInt64(t, data.GetOneForMarshal(i)))
		}
		rec.Release()
	}
}

func anyToInt64(t *testing.T, v any) int64 {
	t.Helper()
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		t.Fatalf("unexpected cell %T", v)
		return 0
	}
}
