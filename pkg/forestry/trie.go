package forestry

import "bytes"

// Trie is the top-level handle onto a Merkle Patricia Forestry.
type Trie struct {
	root  node
	store Store
}

// New returns an empty Trie. store may be nil for a purely in-memory
// trie that never round-trips nodes through a Store.
func New(store Store) *Trie {
	return &Trie{store: store}
}

// Hash returns the trie's root digest; NullHash for the empty trie.
func (t *Trie) Hash() Hash {
	if t.root == nil {
		return NullHash
	}
	return t.root.nodeHash()
}

// Size returns the number of key/value pairs stored.
func (t *Trie) Size() int {
	if t.root == nil {
		return 0
	}
	return t.root.nodeSize()
}

// IsEmpty reports whether the trie holds no entries.
func (t *Trie) IsEmpty() bool { return t.root == nil }

// Insert adds (key, value), failing with ErrAlreadyPresent if key's
// path already leads to an existing Leaf. On failure the trie is left
// unchanged.
func (t *Trie) Insert(key, value []byte) error {
	path := KeyPath(key)
	newRoot, err := insertNode(t.store, t.root, path, key, value)
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

// Delete removes key, failing with ErrNotPresent if it is absent. On
// failure the trie is left unchanged.
func (t *Trie) Delete(key []byte) error {
	path := KeyPath(key)
	newRoot, err := deleteNode(t.store, t.root, path)
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

// ChildAt navigates from the root along the given nibble path and
// returns the sub-trie of the node where the path ends; a path that
// ends partway through a node's prefix yields that node. Returns
// (nil, false) if the path runs past a Leaf, disagrees with a node's
// prefix, or reaches an empty branch slot.
func (t *Trie) ChildAt(pathNibbles []byte) (*Trie, bool) {
	n, err := childAtNode(t.store, t.root, pathNibbles)
	if err != nil || n == nil {
		return nil, false
	}
	return &Trie{root: n, store: t.store}, true
}

func childAtNode(store Store, n node, remaining []byte) (node, error) {
	if n == nil {
		if len(remaining) == 0 {
			return nil, nil
		}
		return nil, nil
	}
	resolved, err := resolve(store, n)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case *leaf:
		if len(remaining) > len(v.prefix) {
			return nil, nil
		}
		if !bytes.Equal(v.prefix[:len(remaining)], remaining) {
			return nil, nil
		}
		return v, nil
	case *branch:
		p := commonPrefix(v.prefix, remaining)
		if p < len(v.prefix) {
			if p == len(remaining) {
				return v, nil
			}
			return nil, nil
		}
		if len(remaining) == p {
			return v, nil
		}
		nb := remaining[p]
		return childAtNode(store, v.children[nb], remaining[p+1:])
	default:
		return nil, nil
	}
}

// insertNode inserts (key, value) at remaining path below n, returning
// the replacement for n's slot: mutation always replaces a node in its
// parent's child-slot array rather than mutating it in place. n may be
// nil (empty slot), a hashRef (resolved on demand), a *leaf, or a
// *branch.
func insertNode(store Store, n node, remaining, key, value []byte) (node, error) {
	if n == nil {
		nl := &leaf{prefix: append([]byte(nil), remaining...), key: key, value: value, dirty: true}
		rehashLeaf(nl)
		indexNode(store, nl, Hash{})
		return nl, nil
	}
	resolved, err := resolve(store, n)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case *leaf:
		return insertIntoLeaf(store, v, remaining, key, value)
	case *branch:
		return insertIntoBranch(store, v, remaining, key, value)
	default:
		panic("forestry: insertNode: unexpected node type")
	}
}

// insertIntoLeaf implements the split case applied at a Leaf: the only
// possible outcome of inserting below a Leaf is a split, since a Leaf
// never has descendants of its own.
func insertIntoLeaf(store Store, l *leaf, remaining, key, value []byte) (node, error) {
	p := commonPrefix(l.prefix, remaining)
	if p == len(l.prefix) {
		// Same length (paths are always a fixed 64 nibbles) and equal
		// content: this is the same key's path. Comparing by path rather
		// than by key identity is what correctly rejects duplicates.
		return nil, ErrAlreadyPresent
	}
	oldHash := l.hash
	existingNibble, newNibble := l.prefix[p], remaining[p]

	existingLeaf := &leaf{
		prefix: append([]byte(nil), l.prefix[p+1:]...),
		key:    l.key,
		value:  l.value,
		dirty:  true,
	}
	rehashLeaf(existingLeaf)

	newLeaf := &leaf{
		prefix: append([]byte(nil), remaining[p+1:]...),
		key:    key,
		value:  value,
		dirty:  true,
	}
	rehashLeaf(newLeaf)

	b := &branch{prefix: append([]byte(nil), l.prefix[:p]...), dirty: true}
	b.children[existingNibble] = existingLeaf
	b.children[newNibble] = newLeaf
	rehashBranch(b)

	indexNode(store, existingLeaf, oldHash)
	indexNode(store, newLeaf, Hash{})
	indexNode(store, b, Hash{})
	return b, nil
}

// insertIntoBranch implements both cases: splitting the branch itself
// when the new path diverges before its prefix ends, or descending
// into one of its 16 children when the prefix is fully consumed.
func insertIntoBranch(store Store, b *branch, remaining, key, value []byte) (node, error) {
	oldHash := b.hash
	p := commonPrefix(b.prefix, remaining)

	if p < len(b.prefix) {
		// Case A: push the whole branch one level deeper.
		existingNibble, newNibble := b.prefix[p], remaining[p]

		shifted := &branch{
			prefix:   append([]byte(nil), b.prefix[p+1:]...),
			children: b.children,
			size:     b.size,
			dirty:    true,
		}
		rehashBranch(shifted)

		newLeaf := &leaf{prefix: append([]byte(nil), remaining[p+1:]...), key: key, value: value, dirty: true}
		rehashLeaf(newLeaf)

		nb := &branch{prefix: append([]byte(nil), b.prefix[:p]...), dirty: true}
		nb.children[existingNibble] = shifted
		nb.children[newNibble] = newLeaf
		rehashBranch(nb)

		indexNode(store, shifted, oldHash)
		indexNode(store, newLeaf, Hash{})
		indexNode(store, nb, Hash{})
		return nb, nil
	}

	// Case B: descend.
	rest := remaining[p:]
	n := rest[0]
	newChild, err := insertNode(store, b.children[n], rest[1:], key, value)
	if err != nil {
		return nil, err
	}
	nb := &branch{prefix: b.prefix, children: b.children, size: b.size, dirty: true}
	nb.children[n] = newChild
	rehashBranch(nb)
	indexNode(store, nb, oldHash)
	return nb, nil
}

// deleteNode removes the leaf at remaining path below n, returning the
// replacement for n's slot (nil if n itself was the removed leaf) and
// collapsing any branch left with a single remaining child.
func deleteNode(store Store, n node, remaining []byte) (node, error) {
	if n == nil {
		return nil, ErrNotPresent
	}
	resolved, err := resolve(store, n)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case *leaf:
		if len(v.prefix) != len(remaining) || !bytes.Equal(v.prefix, remaining) {
			return nil, ErrNotPresent
		}
		if store != nil {
			store.Delete(v.hash)
		}
		return nil, nil
	case *branch:
		oldHash := v.hash
		p := commonPrefix(v.prefix, remaining)
		if p != len(v.prefix) || len(remaining) == p {
			return nil, ErrNotPresent
		}
		rest := remaining[p:]
		nb := rest[0]
		// Resolve the sibling that would survive a collapse before
		// recursing, so a Store miss is reported before any Store write.
		var sibling node
		if v.children[nb] != nil && v.nonEmptyCount() == 2 {
			for i, c := range v.children {
				if i != int(nb) && c != nil {
					if sibling, err = resolve(store, c); err != nil {
						return nil, err
					}
				}
			}
		}
		newChild, err := deleteNode(store, v.children[nb], rest[1:])
		if err != nil {
			return nil, err
		}
		next := &branch{prefix: v.prefix, children: v.children, size: v.size, dirty: true}
		next.children[nb] = newChild

		if idx, _, isSole := next.soleChild(); isSole {
			resolvedSole := sibling
			if store != nil {
				store.Delete(oldHash)
			}
			return collapseBranch(store, next.prefix, byte(idx), resolvedSole)
		}

		rehashBranch(next)
		indexNode(store, next, oldHash)
		return next, nil
	default:
		panic("forestry: deleteNode: unexpected node type")
	}
}

// collapseBranch merges a branch's prefix and selector nibble into its
// one remaining child (mirrors how a Branch with one child is never
// reachable by FromList's construction in the first place).
func collapseBranch(store Store, branchPrefix []byte, nibble byte, child node) (node, error) {
	switch c := child.(type) {
	case *leaf:
		oldHash := c.hash
		merged := &leaf{
			prefix: concatNibbles(concatNibbles(branchPrefix, []byte{nibble}), c.prefix),
			key:    c.key,
			value:  c.value,
			dirty:  true,
		}
		rehashLeaf(merged)
		indexNode(store, merged, oldHash)
		return merged, nil
	case *branch:
		oldHash := c.hash
		merged := &branch{
			prefix:   concatNibbles(concatNibbles(branchPrefix, []byte{nibble}), c.prefix),
			children: c.children,
			size:     c.size,
			dirty:    true,
		}
		rehashBranch(merged)
		indexNode(store, merged, oldHash)
		return merged, nil
	default:
		panic("forestry: collapseBranch: unexpected node type")
	}
}
