package forestry

import "golang.org/x/crypto/blake2b"

// Digest computes blake2b-256 over the concatenation of all the given
// byte slices.
func Digest(data ...[]byte) Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for a bad key length, and we pass nil.
		panic("forestry: blake2b.New256: " + err.Error())
	}
	for _, d := range data {
		h.Write(d)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// DigestBytes computes digest(b), returning a 32-byte digest as a slice.
func DigestBytes(b []byte) []byte {
	h := Digest(b)
	return h[:]
}

// KeyPath computes the 64-nibble path of a key: hex(digest(key)).
func KeyPath(key []byte) []byte {
	h := Digest(key)
	return bytesToNibbles(h[:])
}
