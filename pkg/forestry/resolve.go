package forestry

import (
	"fmt"

	"github.com/colll78/merkle-patricia-forestry/pkg/log"
)

var resolveLog = log.Default().Module("forestry")

// resolve materializes n into a concrete *leaf/*branch, fetching and
// decoding it from store if n is still only a hashRef — children are
// resolved lazily, on descent, rather than eagerly. A nil or
// already-concrete n is returned unchanged.
func resolve(store Store, n node) (node, error) {
	ref, ok := n.(hashRef)
	if !ok {
		return n, nil
	}
	if store == nil {
		resolveLog.Error("resolve: no store attached", "hash", ref.hash)
		return nil, fmt.Errorf("forestry: cannot resolve %s: no Store attached", ref.hash)
	}
	raw, ok := store.Get(ref.hash)
	if !ok {
		resolveLog.Warn("resolve: node not found in store", "hash", ref.hash)
		return nil, fmt.Errorf("forestry: node %s not found in store", ref.hash)
	}
	n, err := decodeNode(ref.hash, raw)
	if err != nil {
		resolveLog.Error("resolve: decode failed", "hash", ref.hash, "err", err)
		return nil, err
	}
	return n, nil
}
