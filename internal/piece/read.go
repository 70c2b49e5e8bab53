package piece

import "bytes"

// forEachPiece visits every piece in document order.
func (tb *Table) forEachPiece(fn func(Piece)) {
	for n := tb.tree.firstNode(); n != tb.tree.nilN; n = tb.tree.successor(n) {
		fn(n.piece)
	}
}

// Value returns the full document content.
func (tb *Table) Value() []byte {
	out := make([]byte, 0, tb.length)
	tb.forEachPiece(func(p Piece) {
		out = append(out, p.Content(tb.pool)...)
	})
	return out
}

// ValueInRange returns the bytes in [start, end), clamped to the
// document's bounds.
func (tb *Table) ValueInRange(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > tb.length {
		end = tb.length
	}
	if end <= start {
		return nil
	}

	n, nodeStartOffset, _ := tb.tree.nodeAtOffset(start)
	if n == tb.tree.nilN {
		return nil
	}
	remainder := start - nodeStartOffset

	out := make([]byte, 0, end-start)
	for n != tb.tree.nilN && nodeStartOffset < end {
		buf := tb.pool.Get(n.piece.BufferID)

		pieceStart := n.piece.Start
		if remainder > 0 {
			pieceStart = splitCursorAt(buf, n.piece, remainder)
		}

		pieceEnd := n.piece.End
		nodeEndOffset := nodeStartOffset + n.piece.ByteLength
		if nodeEndOffset > end {
			pieceEnd = splitCursorAt(buf, n.piece, end-nodeStartOffset)
		}

		out = append(out, buf.Slice(pieceStart, pieceEnd)...)

		nodeStartOffset += n.piece.ByteLength
		remainder = 0
		n = tb.tree.successor(n)
	}
	return out
}

// lineBounds returns the byte range of line (0-based), including its
// trailing line break except on the document's last line, which has
// none.
func (tb *Table) lineBounds(line int) (start, end int, ok bool) {
	if line < 0 || line >= tb.lineCount {
		return 0, 0, false
	}
	start = tb.OffsetAt(line, 0)
	if line == tb.lineCount-1 {
		return start, tb.length, true
	}
	return start, tb.OffsetAt(line+1, 0), true
}

// LineContent returns line's text, excluding its trailing line break.
func (tb *Table) LineContent(line int) ([]byte, error) {
	start, end, ok := tb.lineBounds(line)
	if !ok {
		return nil, newInvalidArgument("LineContent", line, "line out of range")
	}
	return trimTrailingBreak(tb.ValueInRange(start, end)), nil
}

func trimTrailingBreak(raw []byte) []byte {
	n := len(raw)
	if n >= 2 && raw[n-2] == '\r' && raw[n-1] == '\n' {
		return raw[:n-2]
	}
	if n >= 1 && (raw[n-1] == '\r' || raw[n-1] == '\n') {
		return raw[:n-1]
	}
	return raw
}

// LineLength returns the byte length of line, excluding its trailing
// line break.
func (tb *Table) LineLength(line int) (int, error) {
	content, err := tb.LineContent(line)
	if err != nil {
		return 0, err
	}
	return len(content), nil
}

// LineCharCode returns the byte at index i within line's content.
func (tb *Table) LineCharCode(line, i int) (byte, error) {
	content, err := tb.LineContent(line)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(content) {
		return 0, newInvalidArgument("LineCharCode", i, "byte index out of range")
	}
	return content[i], nil
}

// Equal reports whether tb and other contain byte-identical content,
// walking both piece lists in lockstep rather than materializing either
// document fully.
func (tb *Table) Equal(other *Table) bool {
	if tb.length != other.length {
		return false
	}
	an := tb.tree.firstNode()
	bn := other.tree.firstNode()
	var aBuf, bBuf []byte

	for {
		for len(aBuf) == 0 && an != tb.tree.nilN {
			aBuf = an.piece.Content(tb.pool)
			an = tb.tree.successor(an)
		}
		for len(bBuf) == 0 && bn != other.tree.nilN {
			bBuf = bn.piece.Content(other.pool)
			bn = other.tree.successor(bn)
		}
		if len(aBuf) == 0 || len(bBuf) == 0 {
			return len(aBuf) == len(bBuf)
		}
		n := len(aBuf)
		if len(bBuf) < n {
			n = len(bBuf)
		}
		if !bytes.Equal(aBuf[:n], bBuf[:n]) {
			return false
		}
		aBuf = aBuf[n:]
		bBuf = bBuf[n:]
	}
}
