// Package forestry implements a Merkle Patricia Forestry: an authenticated
// key/value trie combining a radix-16 Patricia trie with a sparse Merkle
// tree of 16 children at every branch.
package forestry

import (
	"encoding/hex"
	"fmt"
)

// DigestLength is the size, in bytes, of every node hash and digest.
const DigestLength = 32

// Hash is a 32-byte digest, identifying a node, a key, or a value.
type Hash [DigestLength]byte

// NullHash is the digest used for the empty trie and for empty slots
// inside a sparse Merkle-16 aggregation.
var NullHash Hash

// BytesToHash converts b to a Hash, left-padding with zeros if shorter
// than DigestLength and truncating from the left if longer.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > DigestLength {
		b = b[len(b)-DigestLength:]
	}
	copy(h[DigestLength-len(b):], b)
	return h
}

// HexToHash decodes a hex string (with or without "0x" prefix) into a Hash.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

// Bytes returns the big-endian byte representation of h.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the "0x"-prefixed hex representation of h.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// IsZero reports whether h is the all-zero (NullHash) digest.
func (h Hash) IsZero() bool { return h == Hash{} }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

func fromHex(s string) []byte {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// mustHash decodes a hex literal (no "0x" prefix) of exactly
// DigestLength bytes into a Hash, panicking on any other input.
func mustHash(s string) Hash {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != DigestLength {
		panic(fmt.Sprintf("forestry: invalid hash literal %q", s))
	}
	return BytesToHash(b)
}
