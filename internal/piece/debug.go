//go:build piecetable_debug

package piece

import "fmt"

// debugCheckInvariants walks the tree verifying the red-black properties
// and the sizeLeft/lfLeft aggregates against a full recount. Built only
// under the piecetable_debug tag; callers pay nothing for it otherwise.
// A violation panics with an *InternalError, the same type §7's internal-
// error path constructs, since there is nothing a caller can recover from.
func (tb *Table) debugCheckInvariants() {
	t := tb.tree
	if t.root != t.nilN && t.root.color != black {
		panic(newInternalError("debugCheckInvariants", "root is not black"))
	}
	if t.nilN.color != black {
		panic(newInternalError("debugCheckInvariants", "sentinel is not black"))
	}
	if bh := t.BlackHeight(); bh < 0 {
		panic(newInternalError("debugCheckInvariants", "unequal black-heights"))
	}
	debugCheckNode(t, t.root)

	if got, want := t.Len(), tb.length; got != want {
		panic(newInternalError("debugCheckInvariants", fmt.Sprintf("cached length %d != tree length %d", want, got)))
	}
	if got, want := t.LineFeedCount(), tb.lineCount-1; got != want {
		panic(newInternalError("debugCheckInvariants", fmt.Sprintf("cached line-feed count %d != tree count %d", want, got)))
	}
}

func debugCheckNode(t *Tree, n *node) {
	if n == t.nilN {
		return
	}
	if n.color == red {
		if n.left.color != black || n.right.color != black {
			panic(newInternalError("debugCheckInvariants", "red node with red child"))
		}
	}
	if gotSize, wantSize := n.sizeLeft, t.subtreeSize(n.left); gotSize != wantSize {
		panic(newInternalError("debugCheckInvariants", fmt.Sprintf("sizeLeft %d != recount %d", gotSize, wantSize)))
	}
	if gotLF, wantLF := n.lfLeft, t.subtreeLF(n.left); gotLF != wantLF {
		panic(newInternalError("debugCheckInvariants", fmt.Sprintf("lfLeft %d != recount %d", gotLF, wantLF)))
	}
	if n.piece.IsEmpty() {
		panic(newInternalError("debugCheckInvariants", "empty piece left in tree"))
	}
	debugCheckNode(t, n.left)
	debugCheckNode(t, n.right)
}
