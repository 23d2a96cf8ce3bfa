// Package gallerycache persists decoded grayscale buffers in SQLite so that
// repeated matches against the same gallery skip image decoding.
//
// Entries are keyed by absolute file path and are valid only while the file's
// size and modification time are unchanged. Only normalized pixels are
// stored; verdicts are never cached. Writers hold an exclusive file lock next
// to the database so concurrent invocations do not interleave their updates.
package gallerycache
