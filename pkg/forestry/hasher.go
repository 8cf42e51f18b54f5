package forestry

import "github.com/colll78/merkle-patricia-forestry/pkg/log"

var hasherLog = log.Default().Module("forestry")

// hasher.go implements bottom-up hash computation, grounded on the
// teacher's pkg/trie/hasher.go collapse-and-cache pattern: a node's
// hash is a pure function of its prefix and children, so it is only
// ever recomputed when dirty, and the result is cached on the node
// itself.

// leafHash computes digest(packNibbles(prefix) || valueHash).
// packNibbles alone realizes the odd-length head/tail split: for an
// odd-length prefix its first output byte is exactly the lone leading
// nibble, and the remaining bytes are the packed even remainder.
func leafHash(prefix []byte, valueHash Hash) Hash {
	return Digest(packNibbles(prefix), valueHash[:])
}

// branchHash computes digest(packNibbles(prefix) || merkleRoot).
func branchHash(prefix []byte, merkleRoot Hash) Hash {
	return Digest(packNibbles(prefix), merkleRoot[:])
}

// rehashLeaf recomputes and caches l's hash from its current value.
func rehashLeaf(l *leaf) Hash {
	if !l.dirty {
		return l.hash
	}
	l.hash = leafHash(l.prefix, Digest(l.value))
	l.dirty = false
	return l.hash
}

// rehashBranch recomputes and caches b's hash, assuming every non-nil
// child already carries its own up-to-date hash (callers rehash
// bottom-up, never top-down: a node must not be re-indexed in the
// Store before its children are final).
func rehashBranch(b *branch) Hash {
	if !b.dirty {
		return b.hash
	}
	var slots [16]Hash
	size := 0
	nonEmpty := 0
	for i, c := range b.children {
		if c == nil {
			slots[i] = NullHash
			continue
		}
		slots[i] = c.nodeHash()
		size += c.nodeSize()
		nonEmpty++
	}
	if nonEmpty < 2 {
		hasherLog.Error("branch has fewer than 2 non-empty children", "nonEmpty", nonEmpty)
		panic(ErrStructuralInvariant)
	}
	b.size = size
	b.hash = branchHash(b.prefix, merkle16Root(slots))
	b.dirty = false
	return b.hash
}

// rehash recomputes n's cached hash if it is dirty; a no-op for hashRef
// (already hashed, nothing to recompute) or nil.
func rehash(n node) Hash {
	switch v := n.(type) {
	case nil:
		return NullHash
	case *leaf:
		return rehashLeaf(v)
	case *branch:
		return rehashBranch(v)
	case hashRef:
		return v.hash
	default:
		panic("forestry: rehash: unknown node type")
	}
}

// indexNode writes n's current (already-hashed) encoding into store
// under its hash, first deleting oldHash if it differs and is
// non-zero (delete-then-set). A nil store is a legal no-op (an
// in-memory-only trie).
func indexNode(store Store, n node, oldHash Hash) {
	if store == nil {
		return
	}
	newHash := n.nodeHash()
	if !oldHash.IsZero() && oldHash != newHash {
		store.Delete(oldHash)
	}
	if oldHash == newHash {
		return
	}
	enc, err := encodeNode(n)
	if err != nil {
		// Only hashRef would fail to encode, and hashRef is never freshly
		// produced by a mutation (it only ever arrives via decode); a
		// mutation path always rehashes a concrete *leaf/*branch first.
		panic(err)
	}
	store.Set(newHash, enc)
}
