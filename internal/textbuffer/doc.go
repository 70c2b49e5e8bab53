// Package textbuffer provides the public-facing text buffer built on top
// of the piece-table engine in internal/piece. It is the primary
// interface editor-facing code uses to manipulate document text.
//
// The package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - O(log n) positional queries through the underlying piece table
//   - Coordinate conversion between byte offsets and line/column positions
//   - UTF-16 coordinate support for LSP-style clients
//   - Read-only snapshots that stay valid across later edits
//   - Line-ending detection, normalization, and on-demand rewriting
//
// Basic usage:
//
//	buf := textbuffer.NewBufferFromBytes([]byte("Hello, World!"))
//	buf.Insert(7, "Beautiful ", true) // "Hello, Beautiful World!"
//	buf.Delete(0, 7)                  // "Beautiful World!"
//
//	snap := buf.Snapshot(false)
//	buf.Insert(0, "Hello, ", true) // "Hello, Beautiful World!"
//	text := snap.Bytes()           // still "Beautiful World!"
//
// Indexing conventions: Point and Range use 1-based line and column
// numbers, matching typical editor surfaces. LineContent, LineLength,
// and LineCharCode are the deliberate exception: they take a 0-based
// line index. Byte offsets passed to Insert, Delete, PositionAt, and
// OffsetAt are always 0-based.
//
// Thread Safety:
//
// Every Buffer method is thread-safe; reads take a read lock and writes
// take the exclusive lock. A goroutine that needs a consistent view
// across multiple reads, undisturbed by concurrent edits, should take a
// Snapshot instead of calling read methods repeatedly. A Snapshot's Read
// and Bytes take no lock and share storage with the Buffer, so they must
// not run at the same time as an edit of it.
package textbuffer
