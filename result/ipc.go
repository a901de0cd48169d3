package result

import (
	"bytes"
	"context"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/quillql/quill-wasm/errors"
)

// encodeIPC emits the batches as an arrow IPC stream, preserving the
// columnar layout end to end.
func encodeIPC(ctx context.Context, s *Set) ([]byte, error) {
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(s.Schema()), ipc.WithAllocator(memory.DefaultAllocator))

	for {
		rec, err := s.Next(ctx)
		if err != nil {
			w.Close()
			return nil, err
		}
		if rec == nil {
			break
		}
		werr := w.Write(rec)
		rec.Release()
		if werr != nil {
			w.Close()
			return nil, errors.Wrap(errors.KindExecution, "query", werr, "ipc encoding failed")
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(errors.KindExecution, "query", err, "ipc encoding failed")
	}
	return buf.Bytes(), nil
}
