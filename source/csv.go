package source

import (
	"bytes"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/quillql/quill-wasm/errors"
)

const csvChunkRows = 4096

// decodeCSV reads the whole payload through arrow's inferring CSV reader.
func decodeCSV(data []byte, opts FormatOptions, mem memory.Allocator) (*arrow.Schema, []arrow.Record, error) {
	ropts := []csv.Option{
		csv.WithAllocator(mem),
		csv.WithChunk(csvChunkRows),
		csv.WithHeader(opts.Header),
	}
	if opts.Delimiter != 0 {
		ropts = append(ropts, csv.WithComma(opts.Delimiter))
	}

	r := csv.NewInferringReader(bytes.NewReader(data), ropts...)
	defer r.Release()

	var recs []arrow.Record
	for r.Next() {
		rec := r.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := r.Err(); err != nil {
		releaseAll(recs)
		return nil, nil, errors.New(errors.KindSource).
			Op("register-source").
			Cause(err).
			Detail("malformed csv").
			Build()
	}
	if len(recs) == 0 {
		return nil, nil, errors.Source("register-source", "csv payload has no rows")
	}
	return recs[0].Schema(), recs, nil
}

func releaseAll(recs []arrow.Record) {
	for _, r := range recs {
		r.Release()
	}
}
