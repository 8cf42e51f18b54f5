package forestry

// Sparse Merkle-16 aggregation: a branch's 16 children are aggregated
// into a single 32-byte root via a balanced binary Merkle tree of
// depth 4. Empty slots contribute NullHash.

// h computes digest(x || y), the pairing primitive every level of the
// sparse-Merkle-16 tree is built from.
func h(x, y Hash) Hash {
	return Digest(x[:], y[:])
}

// merkle16Root computes the sparse Merkle-16 root over 16 child hashes
// (NullHash for empty slots).
func merkle16Root(children [16]Hash) Hash {
	level := children[:]
	for len(level) > 1 {
		next := make([]Hash, len(level)/2)
		for i := range next {
			next[i] = h(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0]
}

// twoSlotRoot computes the sparse Merkle-16 root of a branch with
// exactly two known non-empty slots (everything else NullHash) — used
// to reconstruct a root from a Fork or Leaf proof step.
func twoSlotRoot(nibbleA int, valA Hash, nibbleB int, valB Hash) Hash {
	var children [16]Hash
	children[nibbleA] = valA
	children[nibbleB] = valB
	return merkle16Root(children)
}

// merkleProof16 returns the 4 sibling digests (lvl1 farthest, lvl4
// nearest) needed to prove the child at position i against the other
// 15.
func merkleProof16(children [16]Hash, i int) (lvl1, lvl2, lvl3, lvl4 Hash) {
	level := children[:]
	idx := i
	siblings := make([]Hash, 0, 4)
	for len(level) > 1 {
		sibIdx := idx ^ 1
		siblings = append(siblings, level[sibIdx])
		next := make([]Hash, len(level)/2)
		for j := range next {
			next[j] = h(level[2*j], level[2*j+1])
		}
		level = next
		idx /= 2
	}
	// siblings[0] is depth-4 (nearest), siblings[3] is depth-1 (farthest);
	// the tuple (lvl1, lvl2, lvl3, lvl4) is ordered with lvl1 farthest.
	lvl4, lvl3, lvl2, lvl1 = siblings[0], siblings[1], siblings[2], siblings[3]
	return
}

// reconstructBranchRoot rebuilds a branch's sparse-Merkle-16 root given
// the branch nibble (0..15), the sub-root "me" at that position (or
// NullHash if absent, for exclusion verification), and the 4 sibling
// digests from a BranchStep. Each nibble selects a distinct path
// through the depth-4 tree, hence the 16-way switch below.
func reconstructBranchRoot(branch int, me, lvl1, lvl2, lvl3, lvl4 Hash) Hash {
	switch branch {
	case 0:
		return h(h(h(h(me, lvl4), lvl3), lvl2), lvl1)
	case 1:
		return h(h(h(h(lvl4, me), lvl3), lvl2), lvl1)
	case 2:
		return h(h(h(lvl3, h(me, lvl4)), lvl2), lvl1)
	case 3:
		return h(h(h(lvl3, h(lvl4, me)), lvl2), lvl1)
	case 4:
		return h(h(lvl2, h(h(me, lvl4), lvl3)), lvl1)
	case 5:
		return h(h(lvl2, h(h(lvl4, me), lvl3)), lvl1)
	case 6:
		return h(h(lvl2, h(lvl3, h(me, lvl4))), lvl1)
	case 7:
		return h(h(lvl2, h(lvl3, h(lvl4, me))), lvl1)
	case 8:
		return h(lvl1, h(h(h(me, lvl4), lvl3), lvl2))
	case 9:
		return h(lvl1, h(h(h(lvl4, me), lvl3), lvl2))
	case 10:
		return h(lvl1, h(h(lvl3, h(me, lvl4)), lvl2))
	case 11:
		return h(lvl1, h(h(lvl3, h(lvl4, me)), lvl2))
	case 12:
		return h(lvl1, h(lvl2, h(h(me, lvl4), lvl3)))
	case 13:
		return h(lvl1, h(lvl2, h(h(lvl4, me), lvl3)))
	case 14:
		return h(lvl1, h(lvl2, h(lvl3, h(me, lvl4))))
	case 15:
		return h(lvl1, h(lvl2, h(lvl3, h(lvl4, me))))
	default:
		panic("forestry: branch nibble out of range")
	}
}
