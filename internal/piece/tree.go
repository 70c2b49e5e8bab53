package piece

// Tree is a red-black tree whose in-order traversal yields a document's
// pieces in document order. Each node augments its piece with sizeLeft
// and lfLeft: the total byte length and line-feed count of its left
// subtree. Every leaf position references the tree's own sentinel so
// comparisons never need a nil check.
type Tree struct {
	root *node
	nilN *node
}

func newTree() *Tree {
	s := newSentinel()
	return &Tree{root: s, nilN: s}
}

// Len reports the document's total byte length.
func (t *Tree) Len() int {
	if t.root == t.nilN {
		return 0
	}
	return t.root.sizeLeft + t.root.piece.ByteLength + t.subtreeSize(t.root.right)
}

// LineFeedCount reports the document's total line-feed count across every
// piece.
func (t *Tree) LineFeedCount() int {
	if t.root == t.nilN {
		return 0
	}
	return t.root.lfLeft + t.root.piece.LFCount + t.subtreeLF(t.root.right)
}

func (t *Tree) subtreeSize(n *node) int {
	if n == t.nilN {
		return 0
	}
	return n.sizeLeft + n.piece.ByteLength + t.subtreeSize(n.right)
}

func (t *Tree) subtreeLF(n *node) int {
	if n == t.nilN {
		return 0
	}
	return n.lfLeft + n.piece.LFCount + t.subtreeLF(n.right)
}

func (t *Tree) isEmpty() bool { return t.root == t.nilN }

func (t *Tree) firstNode() *node {
	if t.root == t.nilN {
		return t.nilN
	}
	return t.minimum(t.root)
}

func (t *Tree) lastNode() *node {
	if t.root == t.nilN {
		return t.nilN
	}
	return t.maximum(t.root)
}

func (t *Tree) minimum(n *node) *node {
	for n.left != t.nilN {
		n = n.left
	}
	return n
}

func (t *Tree) maximum(n *node) *node {
	for n.right != t.nilN {
		n = n.right
	}
	return n
}

func (t *Tree) successor(n *node) *node {
	if n.right != t.nilN {
		return t.minimum(n.right)
	}
	p := n.parent
	for p != t.nilN && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *Tree) predecessor(n *node) *node {
	if n.left != t.nilN {
		return t.maximum(n.left)
	}
	p := n.parent
	for p != t.nilN && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

// updateMetadataPath walks from n to the root, adjusting sizeLeft/lfLeft
// only on ancestors for which n's subtree lies in their left subtree.
func (t *Tree) updateMetadataPath(n *node, dSize, dLF int) {
	if dSize == 0 && dLF == 0 {
		return
	}
	cur := n
	for cur.parent != t.nilN {
		if cur == cur.parent.left {
			cur.parent.sizeLeft += dSize
			cur.parent.lfLeft += dLF
		}
		cur = cur.parent
	}
}

// recomputeMetadata recomputes n's sizeLeft/lfLeft from scratch by
// summing n's entire left subtree, then propagates the resulting delta
// up the root path. Used after structural repairs (transplant during
// delete) where n's left child identity changed outright, rather than
// after rotations, which update the two rotated nodes directly without a
// subtree walk.
func (t *Tree) recomputeMetadata(n *node) {
	if n == t.nilN {
		return
	}
	oldSize, oldLF := n.sizeLeft, n.lfLeft
	newSize := t.subtreeSize(n.left)
	newLF := t.subtreeLF(n.left)
	n.sizeLeft, n.lfLeft = newSize, newLF
	t.updateMetadataPath(n, newSize-oldSize, newLF-oldLF)
}

// resizePiece replaces n's piece in place and propagates the resulting
// byte-length/line-feed delta to ancestors whose left subtree contains n.
func (t *Tree) resizePiece(n *node, newPiece Piece) {
	dSize := newPiece.ByteLength - n.piece.ByteLength
	dLF := newPiece.LFCount - n.piece.LFCount
	n.piece = newPiece
	t.updateMetadataPath(n, dSize, dLF)
}

// rotateLeft and rotateRight update sizeLeft/lfLeft for exactly the two
// rotated nodes, deriving the new values from the two nodes' own
// pre-rotation fields so no subtree walk and no ancestor touch is needed:
// rotation never changes the total contents of the subtree rooted at x,
// only which node sits on top of it.
func (t *Tree) rotateLeft(x *node) {
	y := x.right

	newYSizeLeft := x.sizeLeft + x.piece.ByteLength + y.sizeLeft
	newYLfLeft := x.lfLeft + x.piece.LFCount + y.lfLeft

	x.right = y.left
	if y.left != t.nilN {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nilN {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y

	y.sizeLeft, y.lfLeft = newYSizeLeft, newYLfLeft
}

func (t *Tree) rotateRight(x *node) {
	y := x.left

	newXSizeLeft := x.sizeLeft - y.sizeLeft - y.piece.ByteLength
	newXLfLeft := x.lfLeft - y.lfLeft - y.piece.LFCount

	x.left = y.right
	if y.right != t.nilN {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nilN {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.right = x
	x.parent = y

	x.sizeLeft, x.lfLeft = newXSizeLeft, newXLfLeft
}

// insertLeft splices a new node carrying p immediately before after in
// document order (or becomes the root if the tree is empty).
func (t *Tree) insertLeft(after *node, p Piece) *node {
	n := &node{color: red, left: t.nilN, right: t.nilN, piece: p}
	if t.root == t.nilN {
		n.parent = t.nilN
		n.color = black
		t.root = n
		return n
	}
	if after.left == t.nilN {
		after.left = n
		n.parent = after
	} else {
		prev := t.maximum(after.left)
		prev.right = n
		n.parent = prev
	}
	t.updateMetadataPath(n, p.ByteLength, p.LFCount)
	t.insertFixup(n)
	return n
}

// insertRight splices a new node carrying p immediately after after in
// document order (or becomes the root if the tree is empty).
func (t *Tree) insertRight(after *node, p Piece) *node {
	n := &node{color: red, left: t.nilN, right: t.nilN, piece: p}
	if t.root == t.nilN {
		n.parent = t.nilN
		n.color = black
		t.root = n
		return n
	}
	if after.right == t.nilN {
		after.right = n
		n.parent = after
	} else {
		succ := t.minimum(after.right)
		succ.left = n
		n.parent = succ
	}
	t.updateMetadataPath(n, p.ByteLength, p.LFCount)
	t.insertFixup(n)
	return n
}

func (t *Tree) insertFixup(z *node) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
				continue
			}
			if z == z.parent.right {
				z = z.parent
				t.rotateLeft(z)
			}
			z.parent.color = black
			z.parent.parent.color = red
			t.rotateRight(z.parent.parent)
			break
		}
		y := z.parent.parent.left
		if y.color == red {
			z.parent.color = black
			y.color = black
			z.parent.parent.color = red
			z = z.parent.parent
			continue
		}
		if z == z.parent.left {
			z = z.parent
			t.rotateRight(z)
		}
		z.parent.color = black
		z.parent.parent.color = red
		t.rotateLeft(z.parent.parent)
		break
	}
	t.root.color = black
}

func (t *Tree) transplant(u, v *node) {
	p := u.parent
	wasLeft := p != t.nilN && u == p.left
	var oldSize, oldLF int
	if p != t.nilN && !wasLeft {
		oldSize, oldLF = t.subtreeSize(u), t.subtreeLF(u)
	}
	if p == t.nilN {
		t.root = v
	} else if wasLeft {
		p.left = v
	} else {
		p.right = v
	}
	v.parent = p
	if wasLeft {
		t.recomputeMetadata(p)
	} else if p != t.nilN {
		t.updateMetadataPath(p, t.subtreeSize(v)-oldSize, t.subtreeLF(v)-oldLF)
	}
}

// deleteNode removes z from the tree, preserving red-black and aggregate
// invariants.
func (t *Tree) deleteNode(z *node) {
	y := z
	yOriginalColor := y.color
	var x *node

	switch {
	case z.left == t.nilN:
		x = z.right
		t.transplant(z, z.right)
	case z.right == t.nilN:
		x = z.left
		t.transplant(z, z.left)
	default:
		y = t.minimum(z.right)
		yOriginalColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
		t.recomputeMetadata(y)
	}

	if yOriginalColor == black {
		t.deleteFixup(x)
	}
	t.nilN.parent = t.nilN
	t.nilN.left = t.nilN
	t.nilN.right = t.nilN
}

func (t *Tree) deleteFixup(x *node) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateLeft(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
				continue
			}
			if w.right.color == black {
				w.left.color = black
				w.color = red
				t.rotateRight(w)
				w = x.parent.right
			}
			w.color = x.parent.color
			x.parent.color = black
			w.right.color = black
			t.rotateLeft(x.parent)
			x = t.root
			break
		}
		w := x.parent.left
		if w.color == red {
			w.color = black
			x.parent.color = red
			t.rotateRight(x.parent)
			w = x.parent.left
		}
		if w.right.color == black && w.left.color == black {
			w.color = red
			x = x.parent
			continue
		}
		if w.left.color == black {
			w.right.color = black
			w.color = red
			t.rotateLeft(w)
			w = x.parent.left
		}
		w.color = x.parent.color
		x.parent.color = black
		w.left.color = black
		t.rotateRight(x.parent)
		x = t.root
		break
	}
	x.color = black
}

// Height returns the tree's height (root = height 1; empty tree = 0).
func (t *Tree) Height() int {
	return t.heightOf(t.root)
}

func (t *Tree) heightOf(n *node) int {
	if n == t.nilN {
		return 0
	}
	l, r := t.heightOf(n.left), t.heightOf(n.right)
	if l > r {
		return l + 1
	}
	return r + 1
}

// BlackHeight returns the number of black nodes on any root-to-leaf path,
// not counting the leaf sentinel, or -1 if black-heights are unequal.
func (t *Tree) BlackHeight() int {
	return t.blackHeightOf(t.root)
}

func (t *Tree) blackHeightOf(n *node) int {
	if n == t.nilN {
		return 0
	}
	l := t.blackHeightOf(n.left)
	if l < 0 {
		return -1
	}
	r := t.blackHeightOf(n.right)
	if r < 0 || l != r {
		return -1
	}
	if n.color == black {
		return l + 1
	}
	return l
}
