package source

import (
	"os"

	"github.com/quillql/quill-wasm/errors"
)

// readFile loads a local payload. Only reachable when the context's io
// backend permits the file scheme, which the bridge refuses under js/wasm.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO("query", err)
	}
	return data, nil
}
