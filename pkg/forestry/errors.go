package forestry

import "errors"

// Sentinel errors returned by the trie's mutation and proof operations.
var (
	// ErrAlreadyPresent is returned by Insert when the key's path already
	// leads to an existing Leaf. The trie is left unchanged.
	ErrAlreadyPresent = errors.New("forestry: key already present")

	// ErrNotPresent is returned by Prove or Delete when the key's path
	// does not lead to an existing Leaf.
	ErrNotPresent = errors.New("forestry: key not present")

	// ErrInvalidProof is an unused sentinel reserved for a future caller
	// that wants proof rejection as an error: today an invalid proof is
	// not detected as such — Verify simply recomputes a root that will
	// not match the trie's actual root.
	ErrInvalidProof = errors.New("forestry: invalid proof")

	// ErrInvalidDigest is an unused sentinel reserved for a future caller
	// that wants to reject a malformed hash/value length as an error,
	// rather than the current behavior of BytesToHash/HexToHash, which
	// silently pad or truncate to DigestLength.
	ErrInvalidDigest = errors.New("forestry: invalid digest length")

	// ErrStructuralInvariant signals a violated trie invariant: a branch
	// with fewer than 2 non-empty children (the children array is a fixed
	// [16]node, so its length cannot be wrong). This indicates a
	// programmer error, not a normal runtime condition.
	ErrStructuralInvariant = errors.New("forestry: structural invariant violated")
)
