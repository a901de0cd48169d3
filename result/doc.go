// Package result turns executed query plans into lazy result sequences and
// encodes them for transfer.
//
// A Set wraps a prepared plan without executing it. The first Next starts a
// fresh pull through the engine pipeline; Restart discards the run so the
// next pull starts over from the source. Nothing is buffered inside the Set,
// so a restarted sequence observes re-resolved data if the source cache was
// dropped in between.
//
// Four transfer encodings are supported: a bordered text table for humans,
// a JSON array of row objects, a columnar CBOR envelope for compact binary
// transfer, and the arrow IPC stream for zero-conversion interop.
package result
