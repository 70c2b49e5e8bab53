package textbuffer

import (
	"bufio"
	"io"
	"regexp"
	"sync"

	"github.com/inkwell-editor/piecetable/internal/piece"
)

// readChunkSize is how much is pulled from a reader per Builder.AddChunk
// call; it has no bearing on the piece engine's own chunk threshold.
const readChunkSize = 64 * 1024

// Buffer is the public-facing text buffer: a piece.Table guarded by a
// mutex so concurrent editors can share one document the way they would
// share any other in-process data structure. All methods are
// thread-safe. Snapshot hands out a view whose content stays fixed
// across later edits; its Read and Bytes take no lock and read the same
// character buffers that edits append to, so they must not run
// concurrently with an edit of the Buffer.
type Buffer struct {
	mu    sync.RWMutex
	table *piece.Table
}

// NewBuffer returns an empty Buffer.
func NewBuffer(opts ...Option) *Buffer {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	b := piece.NewBuilder(cfg.builderOpts...)
	table, _ := b.Build()
	return &Buffer{table: table}
}

// NewBufferFromBytes returns a Buffer seeded with data as its initial
// content.
func NewBufferFromBytes(data []byte, opts ...Option) *Buffer {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	b := piece.NewBuilder(cfg.builderOpts...)
	b.AddChunk(data)
	table, _ := b.Build()
	return &Buffer{table: table}
}

// NewBufferFromReader streams r in fixed-size chunks into a Builder,
// preserving the hold-back rule for a '\r' spanning two reads, and
// returns the resulting Buffer.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	builder := piece.NewBuilder(cfg.builderOpts...)

	br := bufio.NewReaderSize(r, readChunkSize)
	chunk := make([]byte, readChunkSize)
	for {
		n, err := br.Read(chunk)
		if n > 0 {
			builder.AddChunk(append([]byte(nil), chunk[:n]...))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	table, _ := builder.Build()
	return &Buffer{table: table}, nil
}

// Len returns the buffer's total byte length.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.Len()
}

// LineCount returns the number of lines (>= 1).
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LineCount()
}

// EOL returns the buffer's chosen line ending, "\n" or "\r\n".
func (b *Buffer) EOL() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.EOL()
}

// SetEOL rewrites the buffer to use newEOL uniformly.
func (b *Buffer) SetEOL(newEOL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.table.SetEOL(newEOL)
}

// LineContent returns line's text (0-based), excluding its trailing line
// break. This accessor and its two siblings below are 0-based by design,
// even though Point and Range elsewhere in this package are 1-based; see
// the package doc comment.
func (b *Buffer) LineContent(line int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	content, err := b.table.LineContent(line)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// LineLength returns the byte length of line (0-based), excluding its
// trailing line break.
func (b *Buffer) LineLength(line int) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LineLength(line)
}

// LineCharCode returns the byte at index i within line's content
// (0-based).
func (b *Buffer) LineCharCode(line, i int) (byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LineCharCode(line, i)
}

// Value returns the buffer's full content.
func (b *Buffer) Value() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.table.Value())
}

var eolPattern = regexp.MustCompile(`\r\n|\r|\n`)

// ValueInRange returns the text in [r.Start, r.End). If eol is non-empty,
// every line ending within the slice is rewritten to it first; eol must
// be "\n" or "\r\n" when supplied.
func (b *Buffer) ValueInRange(r Range, eol string) (string, error) {
	if eol != "" && eol != "\n" && eol != "\r\n" {
		return "", newInvalidArgument("ValueInRange", eol, `must be "\n" or "\r\n"`)
	}
	if !r.IsValid() {
		return "", newInvalidArgument("ValueInRange", r, "start must not come after end")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	start := b.offsetAtLocked(r.Start)
	end := b.offsetAtLocked(r.End)
	raw := b.table.ValueInRange(start, end)
	if eol == "" {
		return string(raw), nil
	}
	return string(eolPattern.ReplaceAll(raw, []byte(eol))), nil
}

// PositionAt converts a byte offset to a 1-based Point.
func (b *Buffer) PositionAt(offset int) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	line, col := b.table.PositionAt(offset)
	return Point{Line: line + 1, Column: col + 1}
}

// OffsetAt converts a 1-based Point to a byte offset.
func (b *Buffer) OffsetAt(p Point) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offsetAtLocked(p)
}

func (b *Buffer) offsetAtLocked(p Point) int {
	line, col := p.Line-1, p.Column-1
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	return b.table.OffsetAt(line, col)
}

// Insert splices text into the buffer at offset.
func (b *Buffer) Insert(offset int, text string, eolNormalized bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.table.Insert(offset, []byte(text), eolNormalized)
}

// Delete removes count bytes starting at offset.
func (b *Buffer) Delete(offset, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.table.Delete(offset, count)
}

// Equal reports whether b and other hold byte-identical content.
func (b *Buffer) Equal(other *Buffer) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()
	return b.table.Equal(other.table)
}

// BufferCount reports how many character buffers back the document.
func (b *Buffer) BufferCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.BufferCount()
}

// Height reports the backing tree's height, for tests asserting balance.
func (b *Buffer) Height() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.Height()
}

// BlackHeight reports the backing tree's black-height, or -1 if
// unbalanced.
func (b *Buffer) BlackHeight() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.BlackHeight()
}

// OffsetToPointUTF16 converts a byte offset to a line/column position
// where Column counts UTF-16 code units instead of bytes, for LSP-style
// clients.
func (b *Buffer) OffsetToPointUTF16(offset int) PointUTF16 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	line, col := b.table.PositionAt(offset)
	content, err := b.table.LineContent(line)
	if err != nil {
		return PointUTF16{Line: line + 1, Column: 0}
	}
	upTo := col
	if upTo > len(content) {
		upTo = len(content)
	}
	return PointUTF16{Line: line + 1, Column: utf16ColumnFromBytes(content[:upTo])}
}

// PointUTF16ToOffset converts a UTF-16 line/column position to a byte
// offset.
func (b *Buffer) PointUTF16ToOffset(p PointUTF16) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	line := p.Line - 1
	if line < 0 {
		line = 0
	}
	content, err := b.table.LineContent(line)
	if err != nil {
		return b.table.Len()
	}
	byteCol := byteOffsetFromUTF16Column(content, p.Column)
	return b.table.OffsetAt(line, byteCol)
}
