package forestry

// node is the tagged variant at the heart of the trie: every node is
// one of *leaf, *branch, or hashRef (an unresolved reference,
// materialized from Store on descent). A nil node denotes an empty
// child slot.
type node interface {
	nodeHash() Hash
	nodeSize() int
}

// leaf holds (prefix, key, value). Size is always 1.
type leaf struct {
	prefix []byte // nibbles
	key    []byte
	value  []byte

	hash  Hash
	dirty bool
}

func (l *leaf) nodeHash() Hash { return l.hash }
func (l *leaf) nodeSize() int  { return 1 }

// branch holds (prefix, children[0..15]). Every non-nil entry of
// children is a *leaf, *branch, or hashRef; at least 2 must be non-nil
// — a branch left with one child collapses into that child instead.
type branch struct {
	prefix   []byte // nibbles
	children [16]node
	size     int

	hash  Hash
	dirty bool
}

func (b *branch) nodeHash() Hash { return b.hash }
func (b *branch) nodeSize() int  { return b.size }

// hashRef is a child known only by its hash — not yet materialized
// into a *leaf or *branch. Resolved on demand via Store by resolve().
type hashRef struct {
	hash Hash
	size int
}

func (r hashRef) nodeHash() Hash { return r.hash }
func (r hashRef) nodeSize() int  { return r.size }

// nonEmptyCount returns how many of a branch's 16 slots are occupied.
func (b *branch) nonEmptyCount() int {
	n := 0
	for _, c := range b.children {
		if c != nil {
			n++
		}
	}
	return n
}

// soleChild returns the index and node of the one occupied slot, when
// exactly one slot is occupied. Used by delete's collapse step.
func (b *branch) soleChild() (int, node, bool) {
	idx, found := -1, node(nil)
	count := 0
	for i, c := range b.children {
		if c != nil {
			idx, found = i, c
			count++
		}
	}
	return idx, found, count == 1
}

// concatNibbles returns a new nibble slice containing a followed by b.
func concatNibbles(a, b []byte) []byte {
	out := make([]byte, len(a)+len(b))
	copy(out, a)
	copy(out[len(a):], b)
	return out
}
