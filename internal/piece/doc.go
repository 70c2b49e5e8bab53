// Package piece implements the piece-table storage engine that backs a
// text buffer: an append-only pool of immutable character buffers overlaid
// with a red-black tree of pieces, each describing a slice of one buffer.
//
// The tree augments ordinary in-order layout with two subtree aggregates,
// total byte length and total line-feed count of the left subtree, so
// that offset and line lookups, insertion, and deletion all run in time
// proportional to the number of pieces rather than the size of the
// document.
//
// Responsibilities split across files the way the teacher splits its rope
// engine into focused units:
//
//   - pool.go      the character pool: buffer 0 (append-only change
//     buffer) plus frozen buffers (original content and
//     large inserts), each with a precomputed line-start table.
//   - piece.go     the immutable Piece value and buffer-cursor arithmetic.
//   - node.go      red-black tree nodes with sizeLeft/lfLeft aggregates
//     and the shared per-tree sentinel.
//   - tree.go      tree maintenance: rotations, metadata propagation,
//     structural insert/delete.
//   - position.go  offset<->(line,column) resolution and the search cache.
//   - builder.go   chunk ingestion, BOM/EOL detection, and the initial
//     tree construction (the factory of the original design).
//   - edit.go      the Table façade: Insert, Delete, and CRLF boundary
//     repair.
//   - snapshot.go  point-in-time readers over a frozen piece list.
//
// Everything in this package is single-owner and synchronous: no method
// blocks, spawns a goroutine, or retains a lock across a call boundary.
// Callers that need concurrent access must serialize it themselves (see
// package textbuffer, which adds a sync.RWMutex around a Table).
package piece
