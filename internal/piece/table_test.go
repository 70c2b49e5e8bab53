package piece

import (
	"strings"
	"testing"
	"testing/quick"

	"github.com/google/go-cmp/cmp"
)

func newTableFromString(s string) *Table {
	b := NewBuilder()
	b.AddChunk([]byte(s))
	tb, _ := b.Build()
	return tb
}

func (tb *Table) value() string { return string(tb.Value()) }

// S1: basic insert.
func TestScenarioBasicInsert(t *testing.T) {
	tb := newTableFromString("")
	tb.Insert(0, []byte("Hello"), true)
	if got := tb.value(); got != "Hello" {
		t.Fatalf("value = %q, want %q", got, "Hello")
	}
	if tb.Len() != 5 || tb.LineCount() != 1 {
		t.Fatalf("Len/LineCount = %d/%d, want 5/1", tb.Len(), tb.LineCount())
	}

	tb.Insert(5, []byte(" World"), true)
	if got := tb.value(); got != "Hello World" {
		t.Fatalf("value = %q, want %q", got, "Hello World")
	}

	tb.Insert(5, []byte(","), true)
	if got := tb.value(); got != "Hello, World" {
		t.Fatalf("value = %q, want %q", got, "Hello, World")
	}
}

// S2: cross-line delete.
func TestScenarioCrossLineDelete(t *testing.T) {
	tb := newTableFromString("Line1\nLine2\nLine3")
	tb.Delete(5, 1)
	if got := tb.value(); got != "Line1Line2\nLine3" {
		t.Fatalf("value = %q, want %q", got, "Line1Line2\nLine3")
	}
	if tb.LineCount() != 2 {
		t.Fatalf("LineCount = %d, want 2", tb.LineCount())
	}
}

// S3: CRLF repair on insert.
func TestScenarioCRLFRepairOnInsert(t *testing.T) {
	tb := newTableFromString("A\r")
	tb.Insert(2, []byte("\nB"), false)
	if got := tb.value(); got != "A\r\nB" {
		t.Fatalf("value = %q, want %q", got, "A\r\nB")
	}
	if tb.LineCount() != 2 {
		t.Fatalf("LineCount = %d, want 2", tb.LineCount())
	}

	tb2 := newTableFromString("B")
	tb2.Insert(0, []byte("A\r\n"), false)
	tb2.Delete(1, 1)
	if got := tb2.value(); got != "A\nB" {
		t.Fatalf("value = %q, want %q", got, "A\nB")
	}
	if tb2.LineCount() != 2 {
		t.Fatalf("LineCount = %d, want 2", tb2.LineCount())
	}
}

// S4: snapshot independence.
func TestScenarioSnapshotIndependence(t *testing.T) {
	tb := newTableFromString("Initial")
	snap := tb.Snapshot(false)

	tb.Insert(0, []byte("X"), true)
	tb.Delete(3, 2)

	if got := string(snap.Bytes()); got != "Initial" {
		t.Fatalf("snapshot = %q, want %q", got, "Initial")
	}
	if got := tb.value(); got != "XIniial" {
		t.Fatalf("value = %q, want %q", got, "XIniial")
	}
}

// S5: round-trip offsets.
func TestScenarioRoundTripOffsets(t *testing.T) {
	tb := newTableFromString("Line1\nLine2\nLine3")
	for o := 0; o <= tb.Len(); o++ {
		line, col := tb.PositionAt(o)
		if got := tb.OffsetAt(line, col); got != o {
			t.Fatalf("offsetAt(positionAt(%d)) = %d, want %d", o, got, o)
		}
	}
}

// S6: EOL normalization.
func TestScenarioEOLNormalization(t *testing.T) {
	b := NewBuilder(WithNormalizeEOL(true), WithDefaultEOL("\n"))
	b.AddChunk([]byte("Line1\r\nLine2\rLine3\nLine4"))
	tb, _ := b.Build()

	want := "Line1\nLine2\nLine3\nLine4"
	if got := tb.value(); got != want {
		t.Fatalf("value = %q, want %q", got, want)
	}
	if tb.LineCount() != 4 {
		t.Fatalf("LineCount = %d, want 4", tb.LineCount())
	}
}

// Property 1/2: aggregate correctness and red-black correctness.
func TestPropertyAggregatesAndBalance(t *testing.T) {
	tb := newTableFromString("")
	text := "the quick brown fox\njumps over\nthe lazy dog\n"
	for i := 0; i < 20; i++ {
		tb.Insert(tb.Len()/2, []byte(text), false)
		if tb.Len()%7 == 0 && tb.Len() > 10 {
			tb.Delete(3, 4)
		}
	}

	assertAggregates(t, tb.tree, tb.tree.root)

	if tb.tree.root != tb.tree.nilN && tb.tree.root.color != black {
		t.Fatal("root is not black")
	}
	if bh := tb.tree.BlackHeight(); bh < 0 {
		t.Fatal("unequal black-heights")
	}
}

func assertAggregates(t *testing.T, tr *Tree, n *node) {
	t.Helper()
	if n == tr.nilN {
		return
	}
	if got, want := n.sizeLeft, tr.subtreeSize(n.left); got != want {
		t.Errorf("sizeLeft = %d, want %d", got, want)
	}
	if got, want := n.lfLeft, tr.subtreeLF(n.left); got != want {
		t.Errorf("lfLeft = %d, want %d", got, want)
	}
	if n.color == red && (n.left.color != black || n.right.color != black) {
		t.Error("red node has a red child")
	}
	assertAggregates(t, tr, n.left)
	assertAggregates(t, tr, n.right)
}

// Property 3: position/offset round trip, property-based.
func TestPropertyOffsetPositionRoundTrip(t *testing.T) {
	tb := newTableFromString("alpha\nbeta\r\ngamma\rdelta\nepsilon")
	f := func(raw uint16) bool {
		o := int(raw) % (tb.Len() + 1)
		line, col := tb.PositionAt(o)
		return tb.OffsetAt(line, col) == o
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// Property 4: concatenation property.
func TestPropertyConcatenation(t *testing.T) {
	tb := newTableFromString("one\ntwo\nthree")
	tb.Insert(3, []byte(" uno"), true)

	var want []byte
	tb.forEachPiece(func(p Piece) {
		want = append(want, p.Content(tb.pool)...)
	})

	if diff := cmp.Diff(string(want), tb.value()); diff != "" {
		t.Errorf("concatenation mismatch (-want +got):\n%s", diff)
	}
}

// Property 6: idempotent no-ops.
func TestPropertyIdempotentNoOps(t *testing.T) {
	tb := newTableFromString("stable content\nacross lines")
	before := tb.value()
	beforeLen, beforeLines := tb.Len(), tb.LineCount()

	tb.Insert(4, nil, true)
	tb.Insert(4, []byte{}, true)
	tb.Delete(4, 0)
	tb.Delete(4, -3)

	if got := tb.value(); got != before {
		t.Fatalf("value changed by no-op: %q != %q", got, before)
	}
	if tb.Len() != beforeLen || tb.LineCount() != beforeLines {
		t.Fatalf("aggregates changed by no-op")
	}
}

// Property 5: line decomposition.
func TestPropertyLineDecomposition(t *testing.T) {
	text := "alpha\nbeta\ngamma"
	tb := newTableFromString(text)

	want := strings.Split(text, "\n")
	if len(want) != tb.LineCount() {
		t.Fatalf("LineCount = %d, want %d", tb.LineCount(), len(want))
	}
	for i, line := range want {
		got, err := tb.LineContent(i)
		if err != nil {
			t.Fatalf("LineContent(%d): %v", i, err)
		}
		if string(got) != line {
			t.Errorf("LineContent(%d) = %q, want %q", i, got, line)
		}
	}
}

func TestEqual(t *testing.T) {
	a := newTableFromString("identical content across pieces")
	b := newTableFromString("")
	b.Insert(0, []byte("identical "), true)
	b.Insert(b.Len(), []byte("content "), true)
	b.Insert(b.Len(), []byte("across "), true)
	b.Insert(b.Len(), []byte("pieces"), true)

	if !a.Equal(b) {
		t.Fatalf("expected documents built from different piece layouts to compare equal: %q vs %q", a.value(), b.value())
	}

	c := newTableFromString("identical content across pieced")
	if a.Equal(c) {
		t.Fatal("expected differing documents to compare unequal")
	}
}
