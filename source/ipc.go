package source

import (
	"bytes"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/quillql/quill-wasm/errors"
)

// decodeIPC reads an arrow IPC stream.
func decodeIPC(data []byte, mem memory.Allocator) (*arrow.Schema, []arrow.Record, error) {
	r, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, nil, errors.New(errors.KindSource).
			Op("register-source").
			Cause(err).
			Detail("not an arrow ipc stream").
			Build()
	}
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
			Detail("truncated arrow ipc stream").
			Build()
	}
	return r.Schema(), recs, nil
}
