package forestry

import (
	"errors"
	"fmt"
	"testing"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewEmptyTrie(t *testing.T) {
	tr := New(nil)
	if !tr.IsEmpty() {
		t.Fatalf("IsEmpty() = false, want true")
	}
	if tr.Hash() != NullHash {
		t.Fatalf("Hash() = %x, want NullHash", tr.Hash())
	}
	if tr.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", tr.Size())
	}
}

// Inserting the first key into an empty trie produces a single-leaf
// root.
func TestInsertSingleLeaf(t *testing.T) {
	tr := New(nil)
	must(t, tr.Insert([]byte("apple"), []byte("A")))

	if tr.IsEmpty() {
		t.Fatalf("IsEmpty() = true after insert")
	}
	if tr.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", tr.Size())
	}
	if tr.Hash() == NullHash {
		t.Fatalf("Hash() still NullHash after insert")
	}
	if _, ok := tr.root.(*leaf); !ok {
		t.Fatalf("root is %T, want *leaf", tr.root)
	}
}

// Two leaves sharing a prefix collapse into a Branch.
func TestInsertTwoLeavesFormsBranch(t *testing.T) {
	tr := New(nil)
	must(t, tr.Insert([]byte("apple"), []byte("A")))
	must(t, tr.Insert([]byte("apricot"), []byte("B")))

	if tr.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", tr.Size())
	}
	b, ok := tr.root.(*branch)
	if !ok {
		t.Fatalf("root is %T, want *branch", tr.root)
	}
	if n := b.nonEmptyCount(); n != 2 {
		t.Fatalf("root branch has %d non-empty children, want 2 (a branch with fewer collapses)", n)
	}
}

// Inserting a duplicate key fails and leaves the trie unchanged.
func TestInsertDuplicateRejected(t *testing.T) {
	tr := New(nil)
	must(t, tr.Insert([]byte("apple"), []byte("A")))
	root := tr.Hash()

	err := tr.Insert([]byte("apple"), []byte("A-different-value"))
	if !errors.Is(err, ErrAlreadyPresent) {
		t.Fatalf("err = %v, want ErrAlreadyPresent", err)
	}
	if tr.Hash() != root {
		t.Fatalf("trie mutated by a rejected duplicate insert")
	}
	if tr.Size() != 1 {
		t.Fatalf("Size() = %d after rejected insert, want 1", tr.Size())
	}
}

// Building a trie from a batch and inserting the same pairs one at a
// time, in any order, must produce the same root.
func TestFromListMatchesSequentialInsertInAnyOrder(t *testing.T) {
	pairs := []KV{
		{Key: []byte("apple"), Value: []byte("A")},
		{Key: []byte("apricot"), Value: []byte("B")},
		{Key: []byte("banana"), Value: []byte("C")},
		{Key: []byte("cherry"), Value: []byte("D")},
		{Key: []byte("date"), Value: []byte("E")},
	}
	batch, err := FromList(pairs, nil)
	if err != nil {
		t.Fatalf("FromList: %v", err)
	}

	orders := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 3, 0, 4, 2},
	}
	for _, order := range orders {
		tr := New(nil)
		for _, i := range order {
			must(t, tr.Insert(pairs[i].Key, pairs[i].Value))
		}
		if tr.Hash() != batch.Hash() {
			t.Errorf("order %v: Hash() = %x, want %x (FromList)", order, tr.Hash(), batch.Hash())
		}
		if tr.Size() != batch.Size() {
			t.Errorf("order %v: Size() = %d, want %d", order, tr.Size(), batch.Size())
		}
	}
}

func TestFromListEmpty(t *testing.T) {
	tr, err := FromList(nil, nil)
	if err != nil {
		t.Fatalf("FromList(nil): %v", err)
	}
	if !tr.IsEmpty() || tr.Hash() != NullHash {
		t.Fatalf("FromList(nil) is not empty")
	}
}

func TestFromListRejectsDuplicateKeys(t *testing.T) {
	pairs := []KV{
		{Key: []byte("apple"), Value: []byte("A")},
		{Key: []byte("apple"), Value: []byte("A2")},
	}
	if _, err := FromList(pairs, nil); !errors.Is(err, ErrAlreadyPresent) {
		t.Fatalf("FromList duplicate err = %v, want ErrAlreadyPresent", err)
	}
}

func TestDeleteLastLeafEmptiesTrie(t *testing.T) {
	tr := New(nil)
	must(t, tr.Insert([]byte("apple"), []byte("A")))
	must(t, tr.Delete([]byte("apple")))

	if !tr.IsEmpty() {
		t.Fatalf("IsEmpty() = false after deleting the only leaf")
	}
	if tr.Hash() != NullHash {
		t.Fatalf("Hash() = %x after deleting the only leaf, want NullHash", tr.Hash())
	}
}

// Deleting one of two siblings must collapse the branch back to
// exactly the hash a fresh single-leaf trie would have.
func TestDeleteCollapsesBranch(t *testing.T) {
	tr := New(nil)
	must(t, tr.Insert([]byte("apple"), []byte("A")))
	must(t, tr.Insert([]byte("apricot"), []byte("B")))
	must(t, tr.Delete([]byte("apple")))

	if tr.Size() != 1 {
		t.Fatalf("Size() = %d after delete, want 1", tr.Size())
	}

	fresh := New(nil)
	must(t, fresh.Insert([]byte("apricot"), []byte("B")))

	if tr.Hash() != fresh.Hash() {
		t.Fatalf("post-delete Hash() = %x, want %x (collapsed single-leaf trie)", tr.Hash(), fresh.Hash())
	}
}

func TestDeleteNotPresent(t *testing.T) {
	tr := New(nil)
	must(t, tr.Insert([]byte("apple"), []byte("A")))
	if err := tr.Delete([]byte("banana")); !errors.Is(err, ErrNotPresent) {
		t.Fatalf("err = %v, want ErrNotPresent", err)
	}
}

func TestDeleteFromEmptyTrie(t *testing.T) {
	tr := New(nil)
	if err := tr.Delete([]byte("apple")); !errors.Is(err, ErrNotPresent) {
		t.Fatalf("err = %v, want ErrNotPresent", err)
	}
}

func TestInsertThenDeleteAllRestoresEmpty(t *testing.T) {
	keys := make([]KV, 20)
	for i := range keys {
		keys[i] = KV{Key: []byte(fmt.Sprintf("key-%02d", i)), Value: []byte(fmt.Sprintf("value-%02d", i))}
	}

	tr := New(nil)
	for _, kv := range keys {
		must(t, tr.Insert(kv.Key, kv.Value))
	}
	if tr.Size() != len(keys) {
		t.Fatalf("Size() = %d, want %d", tr.Size(), len(keys))
	}
	for _, kv := range keys {
		must(t, tr.Delete(kv.Key))
	}
	if !tr.IsEmpty() || tr.Hash() != NullHash {
		t.Fatalf("trie not empty after deleting every key")
	}
}

func TestChildAtRootPrefixReturnsSameNode(t *testing.T) {
	tr := New(nil)
	must(t, tr.Insert([]byte("apple"), []byte("A")))
	must(t, tr.Insert([]byte("apricot"), []byte("B")))

	root := tr.root.(*branch)
	sub, ok := tr.ChildAt(root.prefix)
	if !ok {
		t.Fatalf("ChildAt(root.prefix) not found")
	}
	if sub.Hash() != tr.Hash() {
		t.Fatalf("ChildAt(root.prefix).Hash() = %x, want %x", sub.Hash(), tr.Hash())
	}
}

func TestChildAtDescendsToLeaf(t *testing.T) {
	tr := New(nil)
	must(t, tr.Insert([]byte("apple"), []byte("A")))
	must(t, tr.Insert([]byte("apricot"), []byte("B")))

	root := tr.root.(*branch)
	var nb byte
	for i, c := range root.children {
		if c != nil {
			nb = byte(i)
			break
		}
	}
	path := concatNibbles(root.prefix, []byte{nb})
	sub, ok := tr.ChildAt(path)
	if !ok {
		t.Fatalf("ChildAt did not find the occupied child")
	}
	if sub.Size() != 1 {
		t.Fatalf("ChildAt descended to a node of size %d, want 1 (a leaf)", sub.Size())
	}
}

func TestChildAtEmptySlotNotFound(t *testing.T) {
	tr := New(nil)
	must(t, tr.Insert([]byte("apple"), []byte("A")))
	must(t, tr.Insert([]byte("apricot"), []byte("B")))

	root := tr.root.(*branch)
	var empty byte = 255
	for i := 0; i < 16; i++ {
		if root.children[i] == nil {
			empty = byte(i)
			break
		}
	}
	if empty == 255 {
		t.Skip("root branch happens to have no empty slot; nothing to test")
	}
	path := concatNibbles(root.prefix, []byte{empty})
	if _, ok := tr.ChildAt(path); ok {
		t.Fatalf("ChildAt found a node at an empty branch slot")
	}
}

func TestStoreRoundTripThroughMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	tr := New(store)
	keys := []KV{
		{Key: []byte("apple"), Value: []byte("A")},
		{Key: []byte("apricot"), Value: []byte("B")},
		{Key: []byte("banana"), Value: []byte("C")},
	}
	for _, kv := range keys {
		must(t, tr.Insert(kv.Key, kv.Value))
	}
	if store.Len() == 0 {
		t.Fatalf("no nodes were indexed in the store")
	}

	// A fresh Trie wrapping only a hashRef to the root, resolved lazily
	// through the same store, must reproduce every value.
	lazy := &Trie{root: hashRef{hash: tr.root.nodeHash(), size: tr.root.nodeSize()}, store: store}
	for _, kv := range keys {
		proof, err := lazy.Prove(kv.Key)
		if err != nil {
			t.Fatalf("Prove(%q) via store: %v", kv.Key, err)
		}
		if string(proof.Value()) != string(kv.Value) {
			t.Fatalf("Prove(%q).Value() = %q, want %q", kv.Key, proof.Value(), kv.Value)
		}
		if proof.Verify(true) != tr.Hash() {
			t.Fatalf("Prove(%q).Verify(true) != trie root", kv.Key)
		}
	}
}
