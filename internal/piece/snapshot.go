package piece

// Snapshot is a read-only, point-in-time view of a document's content,
// captured as the ordered list of pieces live at the moment of capture.
// Because pieces are never mutated in place (the append fast path aside,
// which only ever grows a piece a snapshot has already captured a
// shorter End for), a Snapshot keeps returning the bytes as they stood
// at capture time even as the source Table is edited afterward.
type Snapshot struct {
	pool   *Pool
	pieces []Piece
	bom    []byte

	bomSent bool
	next    int
}

// Snapshot captures the document's current pieces into a Snapshot. If
// includeBOM is true and the document had a byte-order mark, Read's
// first call returns it.
func (tb *Table) Snapshot(includeBOM bool) *Snapshot {
	pieces := make([]Piece, 0, tb.tree.Len())
	tb.forEachPiece(func(p Piece) {
		pieces = append(pieces, p)
	})
	s := &Snapshot{pool: tb.pool, pieces: pieces}
	if includeBOM {
		s.bom = tb.bom
	}
	return s
}

// Read returns the snapshot's next chunk of content: the byte-order
// mark on the first call if one was requested, then one piece's bytes
// per call, and finally an empty, non-nil slice once every piece has
// been returned.
func (s *Snapshot) Read() []byte {
	if !s.bomSent {
		s.bomSent = true
		if len(s.bom) > 0 {
			return s.bom
		}
	}
	if s.next >= len(s.pieces) {
		return []byte{}
	}
	p := s.pieces[s.next]
	s.next++
	return p.Content(s.pool)
}

// Bytes drains the snapshot and returns its full content as one slice.
// Intended for tests and small documents.
func (s *Snapshot) Bytes() []byte {
	var out []byte
	for {
		chunk := s.Read()
		if len(chunk) == 0 {
			return out
		}
		out = append(out, chunk...)
	}
}
