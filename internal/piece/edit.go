package piece

// Table is the piece-table edit engine: a character pool plus the
// red-black tree of pieces it backs, together with the small amount of
// state the insert/delete algorithms need to stay consistent: whether
// the document is known to use a single, normalized EOL, the cursor at
// the tail of the change buffer, cached document-wide totals, and the
// bounded search cache.
type Table struct {
	pool  *Pool
	tree  *Tree
	cache *searchCache

	eolNormalized  bool
	chunkThreshold int

	lastChangeBufferPos Cursor

	length    int
	lineCount int

	eol string
	bom []byte
}

// DefaultChunkThreshold is the byte size at or above which newly created
// content goes into dedicated buffers instead of growing the change
// buffer (split across several when longer than the threshold), and at
// or above which the append-to-change-buffer fast path is skipped.
const DefaultChunkThreshold = 64 * 1024

func newTable(pool *Pool, tree *Tree, eolNormalized bool, chunkThreshold int, cacheSize int) *Table {
	if chunkThreshold <= 0 {
		chunkThreshold = DefaultChunkThreshold
	}
	tb := &Table{
		pool:                 pool,
		tree:                 tree,
		cache:                newSearchCache(cacheSize),
		eolNormalized:        eolNormalized,
		chunkThreshold:       chunkThreshold,
		lastChangeBufferPos:  pool.ChangeBufferEndCursor(),
	}
	tb.recomputeDocumentMetadata()
	return tb
}

// Len returns the cached document byte length.
func (tb *Table) Len() int { return tb.length }

// LineCount returns the cached document line count (>= 1).
func (tb *Table) LineCount() int { return tb.lineCount }

// EOLNormalized reports whether every line ending still in the document
// is known to be uniform, letting CRLF-repair checks be skipped entirely.
func (tb *Table) EOLNormalized() bool { return tb.eolNormalized }

// EOL returns the document's chosen line ending, "\n" or "\r\n".
func (tb *Table) EOL() string { return tb.eol }

// BOM returns the byte-order mark captured when the document was built,
// or nil if none was present.
func (tb *Table) BOM() []byte { return tb.bom }

// BufferCount reports how many character buffers back the document,
// including the change buffer.
func (tb *Table) BufferCount() int { return tb.pool.BufferCount() }

// Height reports the tree's height, for balance introspection in tests
// and debug builds.
func (tb *Table) Height() int { return tb.tree.Height() }

// BlackHeight reports the tree's black-height, or -1 if unbalanced.
func (tb *Table) BlackHeight() int { return tb.tree.BlackHeight() }

// SetEOL rewrites the document to use newEOL uniformly. It materializes
// the current value, substitutes every line ending, and reloads it as a
// single normalized insert; this is simple rather than piecewise-fast,
// matching how rarely callers change a document's line ending mid-session.
func (tb *Table) SetEOL(newEOL string) error {
	if newEOL != "\n" && newEOL != "\r\n" {
		return newInvalidArgument("SetEOL", newEOL, `must be "\n" or "\r\n"`)
	}
	if newEOL == tb.eol && tb.eolNormalized {
		return nil
	}
	value := tb.Value()
	normalized := eolPattern.ReplaceAll(value, []byte(newEOL))

	tb.pool = NewPool()
	tb.tree = newTree()
	tb.cache.clear()
	tb.lastChangeBufferPos = tb.pool.ChangeBufferEndCursor()
	tb.eolNormalized = true
	tb.eol = newEOL

	if len(normalized) > 0 {
		tb.insertIntoEmpty(normalized)
	}
	tb.recomputeDocumentMetadata()
	tb.debugCheckInvariants()
	return nil
}

// PositionAt converts a byte offset to a (line, column) pair, both
// 0-based.
func (tb *Table) PositionAt(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > tb.length {
		offset = tb.length
	}
	return positionAt(tb.tree, tb.pool, offset)
}

// OffsetAt converts a (line, column) pair, both 0-based, to a byte
// offset.
func (tb *Table) OffsetAt(line, column int) int {
	if line < 0 {
		line = 0
	}
	return offsetAt(tb.tree, tb.pool, line, column)
}

func (tb *Table) locate(offset int) (n *node, remainder, nodeStartOffset int) {
	if e, ok := tb.cache.get(offset); ok {
		return e.n, offset - e.nodeStartOffset, e.nodeStartOffset
	}
	n, nodeStartOffset, nodeStartLine := tb.tree.nodeAtOffset(offset)
	if n != tb.tree.nilN {
		tb.cache.put(searchCacheEntry{n: n, nodeStartOffset: nodeStartOffset, nodeStartLine: nodeStartLine})
	}
	return n, offset - nodeStartOffset, nodeStartOffset
}

// Insert splices text into the document at offset. An empty text is a
// no-op; offset is clamped to [0, Len()].
func (tb *Table) Insert(offset int, text []byte, eolNormalized bool) {
	if len(text) == 0 {
		return
	}
	docLen := tb.tree.Len()
	if offset < 0 {
		offset = 0
	}
	if offset > docLen {
		offset = docLen
	}

	tb.eolNormalized = tb.eolNormalized && eolNormalized
	tb.cache.invalidateFrom(offset)

	if tb.tree.isEmpty() {
		tb.insertIntoEmpty(text)
		tb.recomputeDocumentMetadata()
		tb.debugCheckInvariants()
		return
	}

	n, remainder, nodeStartOffset := tb.locate(offset)
	if n == tb.tree.nilN {
		n = tb.tree.lastNode()
		nodeStartOffset = docLen - n.piece.ByteLength
		remainder = n.piece.ByteLength
	}

	switch {
	case tb.canAppendFast(n, nodeStartOffset, offset, len(text)):
		tb.appendFast(n, text)
	case nodeStartOffset == offset:
		tb.insertAtHead(n, text)
	case remainder == n.piece.ByteLength:
		tb.insertAtTail(n, text)
	default:
		tb.insertInside(n, remainder, text)
	}

	tb.recomputeDocumentMetadata()
	tb.debugCheckInvariants()
}

func (tb *Table) canAppendFast(n *node, nodeStartOffset, offset, textLen int) bool {
	if n.piece.BufferID != ChangeBufferID {
		return false
	}
	if n.piece.End != tb.lastChangeBufferPos {
		return false
	}
	if nodeStartOffset+n.piece.ByteLength != offset {
		return false
	}
	return textLen < tb.chunkThreshold
}

func (tb *Table) appendFast(n *node, text []byte) {
	buf := tb.pool.Get(ChangeBufferID)
	tb.pool.AppendToChangeBuffer(text)
	newEnd := buf.EndCursor()
	tb.tree.resizePiece(n, makePiece(ChangeBufferID, buf, n.piece.Start, newEnd))
	tb.lastChangeBufferPos = newEnd
	tb.maybeFixCRLF(n)
}

func (tb *Table) insertAtHead(n *node, text []byte) {
	pieces := tb.createPiecesForInsert(text)
	var first, prevInserted *node
	for i, p := range pieces {
		nn := tb.tree.insertLeft(n, p)
		if i == 0 {
			first = nn
		}
		prevInserted = nn
	}
	tb.maybeFixCRLF(tb.tree.predecessor(first))
	tb.maybeFixCRLF(prevInserted)
}

func (tb *Table) insertAtTail(n *node, text []byte) {
	pieces := tb.createPiecesForInsert(text)
	prev := n
	for _, p := range pieces {
		prev = tb.tree.insertRight(prev, p)
	}
	tb.maybeFixCRLF(n)
	tb.maybeFixCRLF(prev)
}

func (tb *Table) insertInside(n *node, remainder int, text []byte) {
	buf := tb.pool.Get(n.piece.BufferID)
	splitCur := splitCursorAt(buf, n.piece, remainder)
	leftPiece := makePiece(n.piece.BufferID, buf, n.piece.Start, splitCur)
	rightPiece := makePiece(n.piece.BufferID, buf, splitCur, n.piece.End)

	tb.tree.resizePiece(n, leftPiece)

	pieces := tb.createPiecesForInsert(text)
	pieces = append(pieces, rightPiece)

	prev := n
	for _, p := range pieces {
		prev = tb.tree.insertRight(prev, p)
	}

	tb.maybeFixCRLF(n)
	tb.maybeFixCRLF(prev)
}

func (tb *Table) insertIntoEmpty(text []byte) {
	pieces := tb.createPiecesForInsert(text)
	var prev *node
	for i, p := range pieces {
		if i == 0 {
			prev = tb.tree.insertLeft(tb.tree.nilN, p)
		} else {
			prev = tb.tree.insertRight(prev, p)
		}
	}
}

// createPiecesForInsert materializes text into the pool, returning one
// piece per resulting buffer slice. Text under the chunk threshold grows
// the change buffer in place (so later tail-adjacent inserts can use the
// append fast path); larger text is split at UTF-8/CRLF-safe boundaries
// into dedicated frozen buffers, one piece per slice.
func (tb *Table) createPiecesForInsert(text []byte) []Piece {
	if len(text) < tb.chunkThreshold {
		buf := tb.pool.Get(ChangeBufferID)
		start := tb.pool.AppendToChangeBuffer(text)
		end := buf.EndCursor()
		tb.lastChangeBufferPos = end
		return []Piece{makePiece(ChangeBufferID, buf, start, end)}
	}

	slices := splitForPieces(text, tb.chunkThreshold)
	pieces := make([]Piece, 0, len(slices))
	for _, s := range slices {
		buf := newCharBuffer(s)
		id := tb.pool.AddBuffer(buf)
		pieces = append(pieces, makePiece(id, buf, Cursor{}, buf.EndCursor()))
	}
	return pieces
}

func (tb *Table) makeLiteralPiece(lit []byte) Piece {
	buf := tb.pool.Get(ChangeBufferID)
	start := tb.pool.AppendToChangeBuffer(lit)
	end := buf.EndCursor()
	tb.lastChangeBufferPos = end
	return makePiece(ChangeBufferID, buf, start, end)
}

// splitCursorAt returns the cursor within buf that lies remainder bytes
// into piece's content.
func splitCursorAt(buf *CharBuffer, p Piece, remainder int) Cursor {
	target := buf.ByteOffset(p.Start) + remainder
	lo, hi := p.Start.Line, p.End.Line
	best := lo
	for lo <= hi {
		mid := (lo + hi) / 2
		if buf.LineStarts[mid] <= target {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return Cursor{Line: best, Column: target - buf.LineStarts[best]}
}

// Delete removes count bytes starting at offset. count is clamped so the
// range never runs past the document end; count <= 0 after clamping is a
// no-op.
func (tb *Table) Delete(offset, count int) {
	docLen := tb.tree.Len()
	if offset < 0 {
		offset = 0
	}
	if offset > docLen {
		offset = docLen
	}
	if offset+count > docLen {
		count = docLen - offset
	}
	if count <= 0 {
		return
	}

	tb.cache.invalidateFrom(offset)

	startNode, startRemainder, _ := tb.locate(offset)
	endNode, endRemainder, _ := tb.locate(offset + count)
	if startNode == tb.tree.nilN || endNode == tb.tree.nilN {
		return
	}

	var seamLeft, seamRight *node

	if startNode == endNode {
		seamLeft, seamRight = tb.deleteWithinNode(startNode, startRemainder, endRemainder)
	} else {
		origPred := tb.tree.predecessor(startNode)
		origSucc := tb.tree.successor(endNode)

		var toDelete []*node
		n := tb.tree.successor(startNode)
		for n != tb.tree.nilN && n != endNode {
			next := tb.tree.successor(n)
			toDelete = append(toDelete, n)
			n = next
		}

		startBuf := tb.pool.Get(startNode.piece.BufferID)
		newStartPiece := makePiece(startNode.piece.BufferID, startBuf, startNode.piece.Start, splitCursorAt(startBuf, startNode.piece, startRemainder))
		tb.tree.resizePiece(startNode, newStartPiece)
		if newStartPiece.IsEmpty() {
			toDelete = append(toDelete, startNode)
			seamLeft = origPred
		} else {
			seamLeft = startNode
		}

		endBuf := tb.pool.Get(endNode.piece.BufferID)
		newEndPiece := makePiece(endNode.piece.BufferID, endBuf, splitCursorAt(endBuf, endNode.piece, endRemainder), endNode.piece.End)
		tb.tree.resizePiece(endNode, newEndPiece)
		if newEndPiece.IsEmpty() {
			toDelete = append(toDelete, endNode)
			seamRight = origSucc
		} else {
			seamRight = endNode
		}

		for _, d := range toDelete {
			tb.tree.deleteNode(d)
		}
	}

	tb.fixCRLFPair(seamLeft, seamRight)
	tb.recomputeDocumentMetadata()
	tb.debugCheckInvariants()
}

// deleteWithinNode handles a delete range fully contained in one piece,
// returning the nodes bounding the surviving seam (the tree's sentinel if
// the document boundary was reached).
func (tb *Table) deleteWithinNode(n *node, startRemainder, endRemainder int) (seamLeft, seamRight *node) {
	buf := tb.pool.Get(n.piece.BufferID)
	startCur := splitCursorAt(buf, n.piece, startRemainder)
	endCur := splitCursorAt(buf, n.piece, endRemainder)

	leftEmpty := startCur == n.piece.Start
	rightEmpty := endCur == n.piece.End

	origPred := tb.tree.predecessor(n)
	origSucc := tb.tree.successor(n)

	switch {
	case leftEmpty && rightEmpty:
		tb.tree.deleteNode(n)
		return origPred, origSucc
	case leftEmpty:
		tb.tree.resizePiece(n, makePiece(n.piece.BufferID, buf, endCur, n.piece.End))
		return origPred, n
	case rightEmpty:
		tb.tree.resizePiece(n, makePiece(n.piece.BufferID, buf, n.piece.Start, startCur))
		return n, origSucc
	default:
		leftPiece := makePiece(n.piece.BufferID, buf, n.piece.Start, startCur)
		rightPiece := makePiece(n.piece.BufferID, buf, endCur, n.piece.End)
		tb.tree.resizePiece(n, leftPiece)
		tb.tree.insertRight(n, rightPiece)
		return n, tb.tree.successor(n)
	}
}

// maybeFixCRLF checks prev against its successor.
func (tb *Table) maybeFixCRLF(prev *node) {
	if prev == nil || prev == tb.tree.nilN {
		return
	}
	tb.fixCRLFPair(prev, tb.tree.successor(prev))
}

// fixCRLFPair runs the repair protocol when prev ends with '\r' and next
// starts with '\n': it shrinks both pieces by one byte, splices a fresh
// literal "\r\n" piece between them, and removes any piece left empty.
// Skipped outright when the document is known EOL-normalized, since no
// mixed line ending can appear.
func (tb *Table) fixCRLFPair(prev, next *node) {
	if tb.eolNormalized {
		return
	}
	if prev == nil || next == nil || prev == tb.tree.nilN || next == tb.tree.nilN {
		return
	}

	prevBuf := tb.pool.Get(prev.piece.BufferID)
	prevEndAbs := prevBuf.ByteOffset(prev.piece.End)
	if prevEndAbs == 0 || prevBuf.Bytes[prevEndAbs-1] != '\r' {
		return
	}

	nextBuf := tb.pool.Get(next.piece.BufferID)
	nextStartAbs := nextBuf.ByteOffset(next.piece.Start)
	if nextStartAbs >= len(nextBuf.Bytes) || nextBuf.Bytes[nextStartAbs] != '\n' {
		return
	}

	var toDelete []*node

	newPrevEnd := cursorBefore(prevBuf, prev.piece.End)
	newPrevPiece := makePiece(prev.piece.BufferID, prevBuf, prev.piece.Start, newPrevEnd)
	tb.tree.resizePiece(prev, newPrevPiece)
	if newPrevPiece.IsEmpty() {
		toDelete = append(toDelete, prev)
	}

	newNextStart := Cursor{Line: next.piece.Start.Line + 1, Column: 0}
	newNextPiece := makePiece(next.piece.BufferID, nextBuf, newNextStart, next.piece.End)
	tb.tree.resizePiece(next, newNextPiece)
	if newNextPiece.IsEmpty() {
		toDelete = append(toDelete, next)
	}

	crlf := tb.makeLiteralPiece([]byte("\r\n"))
	tb.tree.insertRight(prev, crlf)

	for _, d := range toDelete {
		tb.tree.deleteNode(d)
	}
}

// recomputeDocumentMetadata refreshes the cached document length and
// line count. Line count starts at 1 for the implicit last line.
func (tb *Table) recomputeDocumentMetadata() {
	tb.length = tb.tree.Len()
	tb.lineCount = 1 + tb.tree.LineFeedCount()
}
