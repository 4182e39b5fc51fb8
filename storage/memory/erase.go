package memory

import (
	"github.com/evilsocket/meepo/storage"
)

// Erase removes the given keys, absent ones are ignored.
func (t *Table[K, V, S]) Erase(keys []K) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if err := t.checkReady(storage.OpErase); err != nil {
		return err
	}

	for _, key := range keys {
		if slot, found := t.lookup(key); found {
			t.remove(slot)
		}
	}

	return nil
}

// EraseIf removes every entry matched by storage.MaskFilter: keys
// carrying all the bits of pattern whose score is below threshold.
func (t *Table[K, V, S]) EraseIf(pattern K, threshold S) (int, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if err := t.checkReady(storage.OpEraseIf); err != nil {
		return 0, err
	}

	filter := storage.MaskFilter[K, S]{Pattern: pattern, Threshold: threshold}
	removed := 0
	// walking backwards, remove only moves already visited slots.
	for slot := len(t.slots) - 1; slot >= 0; slot-- {
		if e := t.slots[slot]; filter.Match(e.key, e.score) {
			t.remove(slot)
			removed++
		}
	}

	if removed > 0 {
		t.log.Debugf("%s: %d entries removed", storage.OpEraseIf, removed)
	}

	return removed, nil
}

func (t *Table[K, V, S]) export(op storage.Op, filter storage.Filter[K, S], maxBatch, offset int, out storage.Batch[K, V, S]) (int, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	if err := t.checkReady(op); err != nil {
		return 0, err
	} else if maxBatch < 0 || offset < 0 {
		return 0, storage.Errorf(storage.CodeInvalidArgument, op, "negative batch size %d or offset %d", maxBatch, offset)
	} else if err = storage.CheckBatch(op, maxBatch, t.dim, out); err != nil {
		return 0, err
	}

	exported, skipped, start := 0, 0, 0
	if filter == nil {
		// every slot matches, jump straight to the offset.
		start, skipped = offset, offset
	}

	for slot := start; slot < len(t.slots) && exported < maxBatch; slot++ {
		e := t.slots[slot]
		if filter != nil && !filter.Match(e.key, e.score) {
			continue
		} else if skipped < offset {
			skipped++
			continue
		}
		out.Put(exported, e.key, t.row(slot), e.score)
		exported++
	}

	return exported, nil
}

// ExportBatch copies up to maxBatch entries in slot order, skipping the
// first offset ones. The table must not be mutated between pages for the
// enumeration to be complete and without repetitions.
func (t *Table[K, V, S]) ExportBatch(maxBatch, offset int, out storage.Batch[K, V, S]) (int, error) {
	return t.export(storage.OpExportBatch, nil, maxBatch, offset, out)
}

// ExportBatchIf is ExportBatch restricted to the entries EraseIf would
// remove, offset counts matching entries only.
func (t *Table[K, V, S]) ExportBatchIf(pattern K, threshold S, maxBatch, offset int, out storage.Batch[K, V, S]) (int, error) {
	filter := storage.MaskFilter[K, S]{Pattern: pattern, Threshold: threshold}
	return t.export(storage.OpExportBatchIf, filter, maxBatch, offset, out)
}
