package memory

import (
	"container/heap"

	"github.com/evilsocket/meepo/storage"
)

// victims adapts the table order to container/heap: a min-heap of slot
// ids on (score, key). It must only be used with the table locked.
type victims[K storage.Key, V storage.Value, S storage.Score] struct {
	t *Table[K, V, S]
}

func (h victims[K, V, S]) Len() int {
	return len(h.t.order)
}

func (h victims[K, V, S]) Less(i, j int) bool {
	a, b := &h.t.slots[h.t.order[i]], &h.t.slots[h.t.order[j]]
	return before(a.score, a.key, b.score, b.key)
}

func (h victims[K, V, S]) Swap(i, j int) {
	order := h.t.order
	order[i], order[j] = order[j], order[i]
	h.t.slots[order[i]].pos = i
	h.t.slots[order[j]].pos = j
}

func (h victims[K, V, S]) Push(x interface{}) {
	slot := x.(int)
	h.t.slots[slot].pos = len(h.t.order)
	h.t.order = append(h.t.order, slot)
}

func (h victims[K, V, S]) Pop() interface{} {
	last := len(h.t.order) - 1
	slot := h.t.order[last]
	h.t.order = h.t.order[:last]
	return slot
}

// before returns true if entry a is evicted before entry b.
func before[K storage.Key, S storage.Score](scoreA S, keyA K, scoreB S, keyB K) bool {
	if scoreA != scoreB {
		return scoreA < scoreB
	}
	return keyA < keyB
}

func (t *Table[K, V, S]) row(slot int) []V {
	return t.values[slot*t.dim : (slot+1)*t.dim : (slot+1)*t.dim]
}

func (t *Table[K, V, S]) lookup(key K) (int, bool) {
	slot, found := t.index[key]
	return slot, found
}

// insert appends a new entry, the caller checked capacity and absence.
func (t *Table[K, V, S]) insert(key K, row []V, score S) int {
	slot := len(t.slots)
	t.slots = append(t.slots, entry[K, S]{key: key, score: score})
	t.values = append(t.values, row...)
	t.index[key] = slot
	heap.Push(victims[K, V, S]{t}, slot)
	return slot
}

// update overwrites the row (if not nil) and the score of a slot.
func (t *Table[K, V, S]) update(slot int, row []V, score S) {
	if row != nil {
		copy(t.row(slot), row)
	}
	if e := &t.slots[slot]; e.score != score {
		e.score = score
		heap.Fix(victims[K, V, S]{t}, e.pos)
	}
}

// remove deletes a slot, moving the last one in its place.
func (t *Table[K, V, S]) remove(slot int) {
	heap.Remove(victims[K, V, S]{t}, t.slots[slot].pos)
	delete(t.index, t.slots[slot].key)

	last := len(t.slots) - 1
	if slot != last {
		moved := t.slots[last]
		t.slots[slot] = moved
		copy(t.row(slot), t.row(last))
		t.index[moved.key] = slot
		t.order[moved.pos] = slot
	}

	t.slots = t.slots[:last]
	t.values = t.values[:last*t.dim]
}

// victim returns the slot evicted next, the table must not be empty.
func (t *Table[K, V, S]) victim() int {
	return t.order[0]
}

func (t *Table[K, V, S]) reset() {
	for key := range t.index {
		delete(t.index, key)
	}
	t.slots = t.slots[:0]
	t.values = t.values[:0]
	t.order = t.order[:0]
}

// missing counts the distinct keys of a batch that are not stored.
func (t *Table[K, V, S]) missing(keys []K) int {
	seen := make(map[K]struct{})
	for _, key := range keys {
		if _, found := t.index[key]; !found {
			seen[key] = struct{}{}
		}
	}
	return len(seen)
}

// checkRoom fails with CodeCapacityExceeded if the batch would insert
// more entries than the table has room for.
func (t *Table[K, V, S]) checkRoom(op storage.Op, keys []K) error {
	if n := t.missing(keys); len(t.slots)+n > t.limit {
		return storage.Errorf(storage.CodeCapacityExceeded, op,
			"%d new keys, %d of %d slots in use", n, len(t.slots), t.limit)
	}
	return nil
}
