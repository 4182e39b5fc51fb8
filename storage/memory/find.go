package memory

import (
	"github.com/evilsocket/meepo/storage"
)

// lookupArgs carries the optional outputs of the find family, nil
// buffers are not reported.
type lookupArgs[K storage.Key, S storage.Score] struct {
	exists        []bool
	scores        []S
	missedKeys    []K
	missedIndices []int
}

func (t *Table[K, V, S]) find(op storage.Op, keys []K, values storage.Values[V], args lookupArgs[K, S]) (int, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	n := len(keys)
	if err := t.checkReady(op); err != nil {
		return 0, err
	} else if err = storage.CheckValues(op, n, t.dim, values); err != nil {
		return 0, err
	} else if err = storage.CheckLen(op, "exists", n, len(args.exists), args.exists == nil); err != nil {
		return 0, err
	} else if err = storage.CheckLen(op, "scores", n, len(args.scores), args.scores == nil); err != nil {
		return 0, err
	} else if err = storage.CheckLen(op, "missed keys", n, len(args.missedKeys), args.missedKeys == nil); err != nil {
		return 0, err
	} else if err = storage.CheckLen(op, "missed indices", n, len(args.missedIndices), args.missedIndices == nil); err != nil {
		return 0, err
	}

	missed := 0
	for i, key := range keys {
		slot, found := t.lookup(key)
		if args.exists != nil {
			args.exists[i] = found
		}

		if found {
			copy(values.Row(i), t.row(slot))
			if args.scores != nil {
				args.scores[i] = t.slots[slot].score
			}
			continue
		}

		if args.missedKeys != nil {
			args.missedKeys[missed] = key
		}
		if args.missedIndices != nil {
			args.missedIndices[missed] = i
		}
		missed++
	}

	return missed, nil
}

// Find copies the rows of the stored keys into values, the rows of
// missing keys are left untouched.
func (t *Table[K, V, S]) Find(keys []K, values storage.Values[V]) error {
	_, err := t.find(storage.OpFind, keys, values, lookupArgs[K, S]{})
	return err
}

// FindMissing is Find also reporting the missing keys and their positions.
func (t *Table[K, V, S]) FindMissing(keys []K, values storage.Values[V], missedKeys []K, missedIndices []int) (int, error) {
	if missedKeys == nil || missedIndices == nil {
		return 0, storage.Errorf(storage.CodeInvalidArgument, storage.OpFindMissing, "missed keys and indices buffers are required")
	}
	return t.find(storage.OpFindMissing, keys, values, lookupArgs[K, S]{
		missedKeys:    missedKeys,
		missedIndices: missedIndices,
	})
}

func (t *Table[K, V, S]) FindMissingScores(keys []K, values storage.Values[V], missedKeys []K, missedIndices []int, scores []S) (int, error) {
	if missedKeys == nil || missedIndices == nil || scores == nil {
		return 0, storage.Errorf(storage.CodeInvalidArgument, storage.OpFindMissingScores, "missed keys, indices and scores buffers are required")
	}
	return t.find(storage.OpFindMissingScores, keys, values, lookupArgs[K, S]{
		missedKeys:    missedKeys,
		missedIndices: missedIndices,
		scores:        scores,
	})
}

func (t *Table[K, V, S]) FindExists(keys []K, values storage.Values[V], exists []bool) error {
	if exists == nil {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpFindExists, "exists buffer is required")
	}
	_, err := t.find(storage.OpFindExists, keys, values, lookupArgs[K, S]{exists: exists})
	return err
}

func (t *Table[K, V, S]) FindScores(keys []K, values storage.Values[V], scores []S) error {
	if scores == nil {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpFindScores, "scores buffer is required")
	}
	_, err := t.find(storage.OpFindScores, keys, values, lookupArgs[K, S]{scores: scores})
	return err
}

func (t *Table[K, V, S]) FindExistsScores(keys []K, values storage.Values[V], exists []bool, scores []S) error {
	if exists == nil || scores == nil {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpFindExistsScores, "exists and scores buffers are required")
	}
	_, err := t.find(storage.OpFindExistsScores, keys, values, lookupArgs[K, S]{exists: exists, scores: scores})
	return err
}

// Contains fills exists without touching any row.
func (t *Table[K, V, S]) Contains(keys []K, exists []bool) error {
	t.lock.RLock()
	defer t.lock.RUnlock()

	if err := t.checkReady(storage.OpContains); err != nil {
		return err
	} else if err = storage.CheckLen(storage.OpContains, "exists", len(keys), len(exists), false); err != nil {
		return err
	}

	for i, key := range keys {
		_, exists[i] = t.lookup(key)
	}

	return nil
}

func (t *Table[K, V, S]) findOrInsert(op storage.Op, keys []K, values storage.Values[V], exists []bool, scores []S) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	n := len(keys)
	if err := t.checkReady(op); err != nil {
		return err
	} else if err = storage.CheckValues(op, n, t.dim, values); err != nil {
		return err
	} else if err = storage.CheckLen(op, "exists", n, len(exists), exists == nil); err != nil {
		return err
	} else if err = storage.CheckLen(op, "scores", n, len(scores), scores == nil); err != nil {
		return err
	} else if err = t.checkRoom(op, keys); err != nil {
		return err
	}

	inserted := 0
	for i, key := range keys {
		slot, found := t.lookup(key)
		if found {
			copy(values.Row(i), t.row(slot))
		} else {
			slot = t.insert(key, values.Row(i), t.scoreFor(false, 0, scores, i))
			inserted++
		}

		if exists != nil {
			exists[i] = found
		}
		if scores != nil {
			scores[i] = t.slots[slot].score
		}
	}

	if inserted > 0 {
		t.log.Debugf("%s: %d of %d keys inserted", op, inserted, n)
	}

	return nil
}

// FindOrInsert returns the stored rows of present keys and inserts the
// missing ones using the row the caller placed in their slot.
func (t *Table[K, V, S]) FindOrInsert(keys []K, values storage.Values[V]) error {
	return t.findOrInsert(storage.OpFindOrInsert, keys, values, nil, nil)
}

// FindOrInsertScores uses scores both ways: the slots of missing keys
// provide their insertion score, then every slot receives the stored one.
func (t *Table[K, V, S]) FindOrInsertScores(keys []K, values storage.Values[V], scores []S) error {
	if scores == nil {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpFindOrInsertScores, "scores buffer is required")
	}
	return t.findOrInsert(storage.OpFindOrInsertScores, keys, values, nil, scores)
}

// FindOrInsertExists reports which keys were stored before the call.
// Repeated keys of a batch see the insertion of their first occurrence.
func (t *Table[K, V, S]) FindOrInsertExists(keys []K, values storage.Values[V], exists []bool) error {
	if exists == nil {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpFindOrInsertExists, "exists buffer is required")
	}
	return t.findOrInsert(storage.OpFindOrInsertExists, keys, values, exists, nil)
}

func (t *Table[K, V, S]) FindOrInsertExistsScores(keys []K, values storage.Values[V], exists []bool, scores []S) error {
	if exists == nil || scores == nil {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpFindOrInsertExistsScores, "exists and scores buffers are required")
	}
	return t.findOrInsert(storage.OpFindOrInsertExistsScores, keys, values, exists, scores)
}
