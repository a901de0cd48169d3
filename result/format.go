package result

import (
	"context"
	"strings"

	"github.com/quillql/quill-wasm/errors"
)

// Format names a transfer encoding for result rows.
type Format string

const (
	FormatTable Format = "table" // bordered text table
	FormatJSON  Format = "json"  // array of row objects
	FormatCBOR  Format = "cbor"  // columnar binary envelope
	FormatIPC   Format = "ipc"   // arrow IPC stream
)

// ParseFormat validates a host-supplied format name. A bad name is an
// argument-validation failure, not a property of the query, so it reports
// as an init error.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCBOR:
		return FormatCBOR, nil
	case FormatIPC:
		return FormatIPC, nil
	}
	return "", errors.Init("query", "unknown result format %q (want table, json, cbor or ipc)", s)
}

// Encode drains the remainder of s into the named encoding.
func Encode(ctx context.Context, s *Set, f Format) ([]byte, error) {
	switch f {
	case FormatTable:
		return encodeTable(ctx, s)
	case FormatJSON:
		return encodeJSON(ctx, s)
	case FormatCBOR:
		return encodeCBOR(ctx, s)
	case FormatIPC:
		return encodeIPC(ctx, s)
	}
	return nil, errors.Init("query", "unknown result format %q", string(f))
}
