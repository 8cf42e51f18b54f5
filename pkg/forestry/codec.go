package forestry

import (
	"encoding/binary"
	"fmt"
)

// Internal binary encoding of trie nodes for Store entries. Children
// of an encoded branch are always written as hash references: by the
// time a node is indexed in the Store its children are already
// indexed under their own hashes (rehashing proceeds strictly
// bottom-up), so there is nothing to gain by inlining them.

const (
	tagLeaf   byte = 1
	tagBranch byte = 2
)

func putBytes(buf []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, b...)
}

func takeBytes(buf []byte) (b []byte, rest []byte, err error) {
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("forestry: codec: truncated length")
	}
	n := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]
	if uint32(len(buf)) < n {
		return nil, nil, fmt.Errorf("forestry: codec: truncated payload")
	}
	return buf[:n], buf[n:], nil
}

func encodeNode(n node) ([]byte, error) {
	switch v := n.(type) {
	case *leaf:
		buf := []byte{tagLeaf}
		buf = putBytes(buf, v.prefix)
		buf = putBytes(buf, v.key)
		buf = putBytes(buf, v.value)
		return buf, nil
	case *branch:
		buf := []byte{tagBranch}
		buf = putBytes(buf, v.prefix)
		var sizeBuf [8]byte
		binary.BigEndian.PutUint64(sizeBuf[:], uint64(v.size))
		buf = append(buf, sizeBuf[:]...)
		for _, c := range v.children {
			if c == nil {
				buf = append(buf, 0)
				continue
			}
			buf = append(buf, 1)
			ch := c.nodeHash()
			buf = append(buf, ch[:]...)
			var szBuf [8]byte
			binary.BigEndian.PutUint64(szBuf[:], uint64(c.nodeSize()))
			buf = append(buf, szBuf[:]...)
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("forestry: codec: unsupported node type %T", n)
	}
}

func decodeNode(hash Hash, buf []byte) (node, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("forestry: codec: empty entry")
	}
	tag, buf := buf[0], buf[1:]
	switch tag {
	case tagLeaf:
		prefix, buf, err := takeBytes(buf)
		if err != nil {
			return nil, err
		}
		key, buf, err := takeBytes(buf)
		if err != nil {
			return nil, err
		}
		value, _, err := takeBytes(buf)
		if err != nil {
			return nil, err
		}
		return &leaf{
			prefix: append([]byte(nil), prefix...),
			key:    append([]byte(nil), key...),
			value:  append([]byte(nil), value...),
			hash:   hash,
		}, nil
	case tagBranch:
		prefix, buf, err := takeBytes(buf)
		if err != nil {
			return nil, err
		}
		if len(buf) < 8 {
			return nil, fmt.Errorf("forestry: codec: truncated branch size")
		}
		size := int(binary.BigEndian.Uint64(buf[:8]))
		buf = buf[8:]
		b := &branch{prefix: append([]byte(nil), prefix...), size: size, hash: hash}
		for i := 0; i < 16; i++ {
			if len(buf) < 1 {
				return nil, fmt.Errorf("forestry: codec: truncated branch children")
			}
			present := buf[0]
			buf = buf[1:]
			if present == 0 {
				continue
			}
			if len(buf) < DigestLength+8 {
				return nil, fmt.Errorf("forestry: codec: truncated branch child")
			}
			childHash := BytesToHash(buf[:DigestLength])
			buf = buf[DigestLength:]
			childSize := int(binary.BigEndian.Uint64(buf[:8]))
			buf = buf[8:]
			b.children[i] = hashRef{hash: childHash, size: childSize}
		}
		return b, nil
	default:
		return nil, fmt.Errorf("forestry: codec: unknown tag %d", tag)
	}
}
