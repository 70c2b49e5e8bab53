package piece

import (
	"regexp"

	"github.com/rivo/uniseg"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// BuilderOption configures a Builder the way functional options configure
// the textbuffer façade: small, composable, defaults left untouched.
type BuilderOption func(*Builder)

// WithNormalizeEOL rewrites every ingested buffer to the chosen line
// ending when Build runs, instead of leaving mixed endings in place.
func WithNormalizeEOL(normalize bool) BuilderOption {
	return func(b *Builder) { b.normalizeEOL = normalize }
}

// WithDefaultEOL pins the document's line ending instead of deciding it
// by majority vote across ingested chunks. eol must be "\n" or "\r\n".
func WithDefaultEOL(eol string) BuilderOption {
	return func(b *Builder) { b.pinnedEOL = eol }
}

// WithChunkThreshold overrides the byte size at or above which newly
// created content goes into dedicated buffers instead of the change
// buffer and the append fast path is skipped.
func WithChunkThreshold(n int) BuilderOption {
	return func(b *Builder) { b.chunkThreshold = n }
}

// WithSearchCacheSize overrides the number of entries the positional
// engine's search cache retains.
func WithSearchCacheSize(n int) BuilderOption {
	return func(b *Builder) { b.cacheSize = n }
}

// Builder accepts an ordered sequence of byte chunks, typically a
// streamed file load, and turns them into a populated Table: it sniffs
// and strips a leading UTF-8 BOM, holds back a chunk-trailing '\r' so a
// CRLF spanning two chunks is never miscounted, tallies line-ending
// kinds for the EOL majority vote, and constructs the initial tree.
type Builder struct {
	bufs []*CharBuffer
	bom  []byte
	seen bool

	pending []byte

	crCount, lfCount, crlfCount int

	normalizeEOL   bool
	pinnedEOL      string
	chunkThreshold int
	cacheSize      int
}

// NewBuilder returns a Builder ready to accept chunks via AddChunk.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{chunkThreshold: DefaultChunkThreshold, cacheSize: 1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func detectAndStripBOM(chunk []byte) (bom, rest []byte) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), chunk)
	if err != nil || len(out) == len(chunk) {
		return nil, chunk
	}
	return chunk[:len(chunk)-len(out)], out
}

// AddChunk ingests one chunk of raw document bytes. Chunks must be
// supplied in document order.
func (b *Builder) AddChunk(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	if !b.seen {
		b.seen = true
		if bom, rest := detectAndStripBOM(chunk); bom != nil {
			b.bom = bom
			chunk = rest
		}
	}
	if len(b.pending) > 0 {
		joined := make([]byte, 0, len(b.pending)+len(chunk))
		joined = append(joined, b.pending...)
		joined = append(joined, chunk...)
		chunk = joined
		b.pending = nil
	}
	if len(chunk) > 0 && chunk[len(chunk)-1] == '\r' {
		b.pending = []byte{'\r'}
		chunk = chunk[:len(chunk)-1]
	}
	if len(chunk) == 0 {
		return
	}
	b.commitChunk(chunk)
}

func (b *Builder) commitChunk(chunk []byte) {
	buf := newCharBuffer(chunk)
	b.crCount += buf.CRCount
	b.lfCount += buf.LFCount
	b.crlfCount += buf.CRLFCount
	b.bufs = append(b.bufs, buf)
}

// ChunkCount reports how many non-empty buffers have been committed so
// far (excluding any still-held trailing '\r').
func (b *Builder) ChunkCount() int { return len(b.bufs) }

var eolPattern = regexp.MustCompile(`\r\n|\r|\n`)

// Build flushes any held-back byte, decides the document's EOL by
// majority vote (or the pinned policy), optionally normalizes every
// buffer to that EOL, and constructs the initial tree. It returns the
// resulting Table together with the detected BOM, if any.
func (b *Builder) Build() (*Table, []byte) {
	if len(b.pending) > 0 {
		b.commitChunk(b.pending)
		b.pending = nil
	}

	eol := b.pinnedEOL
	if eol == "" {
		if b.crlfCount > b.crCount+b.lfCount {
			eol = "\r\n"
		} else {
			eol = "\n"
		}
	}

	uniform := (eol == "\n" && b.crCount == 0 && b.crlfCount == 0) ||
		(eol == "\r\n" && b.crCount == 0 && b.lfCount == 0)

	if b.normalizeEOL && !uniform {
		for i, buf := range b.bufs {
			rewritten := eolPattern.ReplaceAll(buf.Bytes, []byte(eol))
			b.bufs[i] = newCharBuffer(rewritten)
		}
		uniform = true
	}

	pool := NewPool()
	tree := newTree()
	var prev *node
	for i, buf := range b.bufs {
		id := pool.AddBuffer(buf)
		p := makePiece(id, buf, Cursor{}, buf.EndCursor())
		if i == 0 {
			prev = tree.insertLeft(tree.nilN, p)
		} else {
			prev = tree.insertRight(prev, p)
		}
	}

	tb := newTable(pool, tree, uniform, b.chunkThreshold, b.cacheSize)
	tb.eol = eol
	tb.bom = b.bom
	return tb, b.bom
}

// splitForPieces splits text into slices of about threshold bytes,
// cutting only at grapheme-cluster boundaries: each cut is the first
// cluster boundary at or past threshold, so a slice can exceed threshold
// by less than one grapheme cluster. A grapheme cluster never
// straddles a multi-byte UTF-8 sequence or a CRLF pair, so this satisfies
// both safety requirements for large-insert splitting in one mechanism.
func splitForPieces(text []byte, threshold int) [][]byte {
	if len(text) <= threshold {
		return [][]byte{text}
	}
	var out [][]byte
	start := 0
	for start < len(text) {
		if len(text)-start <= threshold {
			out = append(out, text[start:])
			break
		}
		end := safeSplitPoint(text, start, start+threshold)
		if end <= start {
			end = len(text)
		}
		out = append(out, text[start:end])
		start = end
	}
	return out
}

func safeSplitPoint(text []byte, from, proposed int) int {
	pos := from
	state := -1
	for pos < proposed && pos < len(text) {
		cluster, _, _, newState := uniseg.FirstGraphemeCluster(text[pos:], state)
		if len(cluster) == 0 {
			break
		}
		pos += len(cluster)
		state = newState
	}
	return pos
}
