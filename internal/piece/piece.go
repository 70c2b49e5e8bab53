package piece

// Piece is an immutable descriptor of a contiguous slice of one character
// buffer. Edits never mutate a piece referenced by a live tree node or a
// snapshot; they replace it with a new value (the sole exception is the
// append-to-change-buffer fast path inside Table.Insert).
type Piece struct {
	BufferID   int
	Start, End Cursor
	ByteLength int
	LFCount    int
}

// IsEmpty reports whether the piece spans zero bytes.
func (p Piece) IsEmpty() bool {
	return p.ByteLength == 0
}

// Content returns the bytes this piece denotes.
func (p Piece) Content(pool *Pool) []byte {
	return pool.Get(p.BufferID).Slice(p.Start, p.End)
}

// makePiece builds a Piece from a buffer id and a cursor range, computing
// ByteLength and LFCount from the owning buffer's line-start table.
func makePiece(bufferID int, buf *CharBuffer, start, end Cursor) Piece {
	return Piece{
		BufferID:   bufferID,
		Start:      start,
		End:        end,
		ByteLength: buf.ByteOffset(end) - buf.ByteOffset(start),
		LFCount:    lineFeedCount(buf, start, end),
	}
}

// lineFeedCount returns the number of line breaks in [start, end) per the
// positional engine's edge-case rule: a split CRLF whose '\r' falls at the
// very end of the slice counts once, crediting the break to this slice
// when its '\n' partner immediately follows in the same buffer.
func lineFeedCount(buf *CharBuffer, start, end Cursor) int {
	if end.Column == 0 {
		return end.Line - start.Line
	}
	base := end.Line - start.Line
	endOffset := buf.ByteOffset(end)
	if endOffset > 0 && endOffset <= len(buf.Bytes) && buf.Bytes[endOffset-1] == '\r' {
		if endOffset < len(buf.Bytes) && buf.Bytes[endOffset] == '\n' {
			base++
		}
	}
	return base
}

// accumulatedValue returns the byte offset, relative to piece's start, of
// the end of the index-th line (0-based, counted from piece.Start) within
// piece. It is clamped to the piece's own byte length so a piece that
// ends mid-CRLF (its last line break is a '\r' whose '\n' partner lies in
// a different, later piece) never reports a value past its own content.
func accumulatedValue(buf *CharBuffer, p Piece, index int) int {
	lineIdx := p.Start.Line + index + 1
	pieceStartOffset := buf.ByteOffset(p.Start)
	if lineIdx >= len(buf.LineStarts) {
		return p.ByteLength
	}
	value := buf.LineStarts[lineIdx] - pieceStartOffset
	if value > p.ByteLength {
		return p.ByteLength
	}
	return value
}

// cursorBefore returns the cursor immediately preceding c within buf,
// stepping back over a line break (to the end of the previous line) when
// c sits at column 0 of a line other than the first.
func cursorBefore(buf *CharBuffer, c Cursor) Cursor {
	if c.Column > 0 {
		return Cursor{Line: c.Line, Column: c.Column - 1}
	}
	prevLine := c.Line - 1
	prevLineStart := buf.LineStarts[prevLine]
	return Cursor{Line: prevLine, Column: buf.LineStarts[c.Line] - 1 - prevLineStart}
}
