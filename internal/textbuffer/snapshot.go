package textbuffer

import "github.com/inkwell-editor/piecetable/internal/piece"

// Snapshot is a read-only, point-in-time view of a Buffer's content. It
// shares the underlying character buffers with the live document, safe
// because those buffers are append-only and a snapshot's pieces are
// never mutated by subsequent edits, so taking one allocates nothing but
// the piece list itself.
type Snapshot struct {
	inner *piece.Snapshot
}

// Snapshot captures b's current content. If includeBOM is true and the
// document had a byte-order mark, the first call to Read returns it.
func (b *Buffer) Snapshot(includeBOM bool) *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &Snapshot{inner: b.table.Snapshot(includeBOM)}
}

// Read returns the snapshot's next chunk of content, starting with the
// byte-order mark if one was requested, then one piece's bytes per call,
// and finally an empty, non-nil slice once exhausted.
func (s *Snapshot) Read() []byte {
	return s.inner.Read()
}

// Bytes drains the snapshot and returns its full content as one slice.
// Intended for tests and small documents; large documents should prefer
// repeated Read calls to avoid a second full-size allocation.
func (s *Snapshot) Bytes() []byte {
	return s.inner.Bytes()
}
