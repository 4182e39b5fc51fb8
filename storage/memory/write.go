package memory

import (
	"github.com/evilsocket/meepo/compute"
	"github.com/evilsocket/meepo/storage"
)

// checkWrite validates a write batch, scores are optional.
func (t *Table[K, V, S]) checkWrite(op storage.Op, keys []K, values *storage.Values[V], scores []S) error {
	n := len(keys)
	if err := t.checkReady(op); err != nil {
		return err
	} else if values != nil {
		if err = storage.CheckValues(op, n, t.dim, *values); err != nil {
			return err
		}
	}
	return storage.CheckLen(op, "scores", n, len(scores), scores == nil)
}

// assign writes the stored keys of a batch and skips the others. A nil
// values buffer leaves rows untouched.
func (t *Table[K, V, S]) assign(op storage.Op, keys []K, values *storage.Values[V], scores []S) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if err := t.checkWrite(op, keys, values, scores); err != nil {
		return err
	}

	for i, key := range keys {
		slot, found := t.lookup(key)
		if !found {
			continue
		}

		var row []V
		if values != nil {
			row = values.Row(i)
		}
		t.update(slot, row, t.scoreFor(true, t.slots[slot].score, scores, i))
	}

	return nil
}

// Assign overwrites rows and scores of the stored keys, absent keys are
// skipped. Scores may be nil, leaving the score policy in charge.
func (t *Table[K, V, S]) Assign(keys []K, values storage.Values[V], scores []S) error {
	return t.assign(storage.OpAssign, keys, &values, scores)
}

func (t *Table[K, V, S]) AssignValues(keys []K, values storage.Values[V]) error {
	return t.assign(storage.OpAssignValues, keys, &values, nil)
}

// AssignScores sets the scores of the stored keys as given, whatever the
// score policy.
func (t *Table[K, V, S]) AssignScores(keys []K, scores []S) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if err := t.checkWrite(storage.OpAssignScores, keys, nil, scores); err != nil {
		return err
	} else if scores == nil && len(keys) > 0 {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpAssignScores, "scores buffer is required")
	}

	for i, key := range keys {
		if slot, found := t.lookup(key); found {
			t.update(slot, nil, scores[i])
		}
	}

	return nil
}

// upsert writes one entry, the caller checked there's room for it.
func (t *Table[K, V, S]) upsert(key K, row []V, scores []S, i int) {
	if slot, found := t.lookup(key); found {
		t.update(slot, row, t.scoreFor(true, t.slots[slot].score, scores, i))
	} else {
		t.insert(key, row, t.scoreFor(false, 0, scores, i))
	}
}

// InsertOrAssign upserts the batch. If the new keys don't fit in the
// remaining capacity nothing is written and CodeCapacityExceeded is
// returned: use InsertAndEvict to make room.
func (t *Table[K, V, S]) InsertOrAssign(keys []K, values storage.Values[V], scores []S) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if err := t.checkWrite(storage.OpInsertOrAssign, keys, &values, scores); err != nil {
		return err
	} else if err = t.checkRoom(storage.OpInsertOrAssign, keys); err != nil {
		return err
	}

	for i, key := range keys {
		t.upsert(key, values.Row(i), scores, i)
	}

	return nil
}

// InsertAndEvict upserts the batch. When a new key finds the table full,
// the lowest (score, key) pair between the stored victim and the new
// entry is written to evicted, so an entry whose score is below every
// stored one bounces right back. evicted must hold len(keys) entries.
func (t *Table[K, V, S]) InsertAndEvict(keys []K, values storage.Values[V], scores []S, evicted storage.Batch[K, V, S]) (int, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	op := storage.OpInsertAndEvict
	if err := t.checkWrite(op, keys, &values, scores); err != nil {
		return 0, err
	} else if err = storage.CheckBatch(op, len(keys), t.dim, evicted); err != nil {
		return 0, err
	}

	numEvicted := 0
	for i, key := range keys {
		row := values.Row(i)
		if slot, found := t.lookup(key); found {
			t.update(slot, row, t.scoreFor(true, t.slots[slot].score, scores, i))
			continue
		}

		score := t.scoreFor(false, 0, scores, i)
		if len(t.slots) < t.limit {
			t.insert(key, row, score)
			continue
		}

		victim := t.victim()
		if v := t.slots[victim]; before(score, key, v.score, v.key) {
			evicted.Put(numEvicted, key, row, score)
		} else {
			evicted.Put(numEvicted, v.key, t.row(victim), v.score)
			t.remove(victim)
			t.insert(key, row, score)
		}
		numEvicted++
	}

	if numEvicted > 0 {
		t.log.Debugf("%s: %d of %d keys evicted", op, numEvicted, len(keys))
	}

	return numEvicted, nil
}

// AccumOrAssign adds each row to the stored one where accum is true and
// replaces it otherwise, absent keys are inserted with their row either
// way. Capacity is enforced as in InsertOrAssign.
func (t *Table[K, V, S]) AccumOrAssign(keys []K, values storage.Values[V], accum []bool, scores []S) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	op := storage.OpAccumOrAssign
	if err := t.checkWrite(op, keys, &values, scores); err != nil {
		return err
	} else if err = storage.CheckLen(op, "accum flags", len(keys), len(accum), false); err != nil {
		return err
	} else if err = t.checkRoom(op, keys); err != nil {
		return err
	}

	for i, key := range keys {
		row := values.Row(i)
		slot, found := t.lookup(key)
		if found && accum[i] {
			compute.Accumulate(t.row(slot), row)
			t.update(slot, nil, t.scoreFor(true, t.slots[slot].score, scores, i))
		} else {
			t.upsert(key, row, scores, i)
		}
	}

	return nil
}
