package piece

import "testing"

// FuzzInsert exercises the edit engine's insert dispatch (append fast
// path, head, tail, and middle splits) across arbitrary offsets and
// payloads, including payloads that straddle CRLF boundaries.
func FuzzInsert(f *testing.F) {
	f.Add("hello", 0, "x")
	f.Add("hello", 5, "x")
	f.Add("hello", 3, "world")
	f.Add("", 0, "test")
	f.Add("A\r", 2, "\nB")
	f.Add("日本語", 3, "x")
	f.Add("line1\nline2", 6, "\r")

	f.Fuzz(func(t *testing.T, initial string, offset int, insert string) {
		tb := newTableFromString(initial)
		tb.Insert(offset, []byte(insert), false)

		checkInvariants(t, tb)

		wantLen := len(initial) + len(insert)
		if tb.Len() != wantLen {
			t.Errorf("Len() = %d, want %d", tb.Len(), wantLen)
		}
	})
}

// FuzzDelete exercises the edit engine's delete dispatch (single-node
// and multi-node cases) across arbitrary ranges.
func FuzzDelete(f *testing.F) {
	f.Add("hello world", 0, 5)
	f.Add("hello world", 6, 11)
	f.Add("hello world", 5, 6)
	f.Add("A\r\nB", 1, 2)
	f.Add("日本語", 0, 3)

	f.Fuzz(func(t *testing.T, initial string, offset, count int) {
		tb := newTableFromString(initial)
		tb.Delete(offset, count)

		checkInvariants(t, tb)
	})
}

// checkInvariants asserts the universal properties spec.md §8 names:
// aggregate correctness, red-black correctness, and the concatenation
// property.
func checkInvariants(t *testing.T, tb *Table) {
	t.Helper()

	assertAggregates(t, tb.tree, tb.tree.root)
	if tb.tree.root != tb.tree.nilN && tb.tree.root.color != black {
		t.Error("root is not black")
	}
	if bh := tb.tree.BlackHeight(); bh < 0 {
		t.Error("unequal black-heights")
	}

	var concat []byte
	tb.forEachPiece(func(p Piece) {
		concat = append(concat, p.Content(tb.pool)...)
	})
	if string(concat) != tb.value() {
		t.Errorf("concatenation mismatch: pieces = %q, Value() = %q", concat, tb.value())
	}
	if len(concat) != tb.Len() {
		t.Errorf("Len() = %d, want %d", tb.Len(), len(concat))
	}
	if tb.LineCount() != 1+tb.tree.LineFeedCount() {
		t.Errorf("LineCount() = %d, want %d", tb.LineCount(), 1+tb.tree.LineFeedCount())
	}
}
