package piece

// Cursor is a position within one character buffer: Line indexes that
// buffer's line-start table and Column is a byte offset measured from the
// start of that line. Two cursors in the same buffer have a well-defined
// byte distance via the line-start table.
type Cursor struct {
	Line   int
	Column int
}

// Compare orders two cursors; it is only meaningful for cursors in the
// same buffer.
func (c Cursor) Compare(other Cursor) int {
	if c.Line != other.Line {
		if c.Line < other.Line {
			return -1
		}
		return 1
	}
	switch {
	case c.Column < other.Column:
		return -1
	case c.Column > other.Column:
		return 1
	default:
		return 0
	}
}

// CharBuffer is one immutable-after-construction slab of bytes in the
// pool, together with its line-start table and summary counts. Buffer 0
// (the change buffer) is the exception: its Bytes and LineStarts grow as
// edits append to it, but nothing ever rewrites or removes a byte already
// committed.
type CharBuffer struct {
	Bytes      []byte
	LineStarts []int // strictly increasing; LineStarts[0] == 0

	CRCount      int
	LFCount      int
	CRLFCount    int
	IsBasicASCII bool
}

// ByteOffset resolves a cursor within this buffer to an absolute byte
// offset.
func (b *CharBuffer) ByteOffset(c Cursor) int {
	return b.LineStarts[c.Line] + c.Column
}

// EndCursor returns the cursor at the current end of the buffer's bytes.
func (b *CharBuffer) EndCursor() Cursor {
	last := len(b.LineStarts) - 1
	return Cursor{Line: last, Column: len(b.Bytes) - b.LineStarts[last]}
}

// LineCount returns the number of lines recorded in the line-start table.
func (b *CharBuffer) LineCount() int {
	return len(b.LineStarts)
}

// Slice returns the bytes between two cursors in this buffer.
func (b *CharBuffer) Slice(start, end Cursor) []byte {
	return b.Bytes[b.ByteOffset(start):b.ByteOffset(end)]
}

// newCharBuffer builds a frozen buffer from a complete byte slice,
// computing its line-start table and summary counts in one pass.
func newCharBuffer(data []byte) *CharBuffer {
	b := &CharBuffer{Bytes: data, LineStarts: []int{0}, IsBasicASCII: true}
	scanLineStarts(b, data, 0)
	return b
}

// scanLineStarts appends line-start entries and updates summary counters
// for data, a slice physically located at absolute byte position base
// within the buffer (data itself need not be the buffer's whole content;
// this is also used incrementally when appending to buffer 0).
func scanLineStarts(b *CharBuffer, data []byte, base int) {
	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c == '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				b.CRLFCount++
				i += 2
			} else {
				b.CRCount++
				i++
			}
			b.LineStarts = append(b.LineStarts, base+i)
		case c == '\n':
			b.LFCount++
			i++
			b.LineStarts = append(b.LineStarts, base+i)
		default:
			if !isBasicASCIIByte(c) {
				b.IsBasicASCII = false
			}
			i++
		}
	}
}

func isBasicASCIIByte(c byte) bool {
	return c == '\t' || (c >= 0x20 && c <= 0x7E)
}

// Pool is the ordered collection of character buffers backing a document:
// buffer 0 is the append-only change buffer; buffers at index 1 and above
// are frozen: original-content chunks produced by the builder, and the
// dedicated buffers that inserts at or above the chunk threshold create.
type Pool struct {
	buffers []*CharBuffer
}

// ChangeBufferID is the fixed index of the append-only change buffer.
const ChangeBufferID = 0

// NewPool returns a pool with an empty change buffer at index 0.
func NewPool() *Pool {
	return &Pool{buffers: []*CharBuffer{newCharBuffer(nil)}}
}

// Get returns the buffer at id. Callers never mutate the returned value
// directly except via AppendToChangeBuffer.
func (p *Pool) Get(id int) *CharBuffer {
	return p.buffers[id]
}

// AddBuffer registers a frozen, fully-built buffer and returns its id.
func (p *Pool) AddBuffer(b *CharBuffer) int {
	p.buffers = append(p.buffers, b)
	return len(p.buffers) - 1
}

// BufferCount returns the number of buffers in the pool, including the
// change buffer.
func (p *Pool) BufferCount() int {
	return len(p.buffers)
}

// ChangeBufferEndCursor returns the current end-of-content cursor of
// buffer 0, used by the edit engine's append fast path to detect
// tail-adjacent inserts.
func (p *Pool) ChangeBufferEndCursor() Cursor {
	return p.buffers[ChangeBufferID].EndCursor()
}

// AppendToChangeBuffer writes text to the tail of buffer 0 and returns the
// cursor at which the appended text begins.
//
// If text begins with '\n' and the buffer's last committed byte is '\r',
// the '\n' completes a CRLF whose '\r' already opened a (so far empty)
// line in the line-start table. Reusing that line-start entry as the
// start cursor keeps the '\n' inside the new piece's content instead of
// discarding it, while the second pass over text skips re-counting that
// same break.
func (p *Pool) AppendToChangeBuffer(text []byte) Cursor {
	buf := p.buffers[ChangeBufferID]
	startOffset := len(buf.Bytes)

	joined := len(text) > 0 && text[0] == '\n' && len(buf.Bytes) > 0 && buf.Bytes[len(buf.Bytes)-1] == '\r'

	var start Cursor
	if joined {
		start = Cursor{Line: len(buf.LineStarts) - 1, Column: 0}
	} else {
		start = buf.EndCursor()
	}

	buf.Bytes = append(buf.Bytes, text...)

	scanFrom := 0
	if joined {
		scanFrom = 1
		buf.CRCount--
		buf.CRLFCount++
	}
	scanLineStarts(buf, text[scanFrom:], startOffset+scanFrom)

	return start
}

// AddOriginalChunk registers a frozen chunk of original content and
// returns the buffer id the builder should reference from its pieces.
func (p *Pool) AddOriginalChunk(data []byte) int {
	return p.AddBuffer(newCharBuffer(data))
}
