package memory

import (
	"github.com/evilsocket/meepo/storage"
	"github.com/evilsocket/meepo/storage/checkpoint"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

// options reads the checkpoint section of the configuration the table
// was initialized with, overridden by the one of cfg.
func (t *Table[K, V, S]) options(op storage.Op, cfg storage.Config) (checkpoint.Options, error) {
	opts, err := checkpoint.OptionsFrom(t.cfg, cfg)
	if err != nil {
		return opts, storage.Wrap(storage.CodeInvalidArgument, op, err)
	}
	return opts, nil
}

// Save writes every entry to the checkpoint file, atomically replacing
// a previous one.
func (t *Table[K, V, S]) Save(cfg storage.Config) error {
	t.lock.RLock()
	defer t.lock.RUnlock()

	if err := t.checkReady(storage.OpSave); err != nil {
		return err
	}

	opts, err := t.options(storage.OpSave, cfg)
	if err != nil {
		return err
	}

	w := checkpoint.NewWriter[K, V, S](t.dim, len(t.slots))
	for slot, e := range t.slots {
		if err := w.Append(e.key, t.row(slot), e.score); err != nil {
			return storage.Wrap(storage.CodePersistence, storage.OpSave, err)
		}
	}

	data, err := w.Bytes()
	if err != nil {
		return storage.Wrap(storage.CodePersistence, storage.OpSave, err)
	} else if err = checkpoint.Flush(data, opts.Path); err != nil {
		return storage.Wrap(storage.CodePersistence, storage.OpSave, err)
	}

	t.log.WithFields(log.Fields{
		"path":    opts.Path,
		"entries": len(t.slots),
		"size":    humanize.Bytes(uint64(len(data))),
	}).Info("checkpoint saved")

	return nil
}

// Load restores a checkpoint taken from a table of the same types and
// dimension. By default the current entries are replaced, with
// checkpoint.merge set the persisted ones are upserted with their
// persisted scores. Either way the table is left untouched on failure.
func (t *Table[K, V, S]) Load(cfg storage.Config) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	op := storage.OpLoad
	if err := t.checkReady(op); err != nil {
		return err
	}

	opts, err := t.options(op, cfg)
	if err != nil {
		return err
	}

	data, err := checkpoint.Load(opts.Path)
	if err != nil {
		return storage.Wrap(storage.CodePersistence, op, err)
	}

	r, err := checkpoint.NewReader[K, V, S](data)
	if err != nil {
		return storage.Wrap(storage.CodePersistence, op, err)
	} else if hdr := r.Header(); hdr.Dim != t.dim {
		return storage.Errorf(storage.CodeInvalidArgument, op, "checkpoint has dimension %d, table has %d", hdr.Dim, t.dim)
	}

	count := r.Header().Count
	keys := make([]K, count)
	scores := make([]S, count)
	values := storage.NewValues[V](count, t.dim)
	for i := 0; i < count; i++ {
		if keys[i], scores[i], err = r.Next(values.Row(i)); err != nil {
			return storage.Wrap(storage.CodePersistence, op, err)
		}
	}

	if !opts.Merge {
		if distinct := uniqueKeys(keys); distinct > t.limit {
			return storage.Errorf(storage.CodeCapacityExceeded, op, "checkpoint holds %d entries, capacity is %d", distinct, t.limit)
		}
		t.reset()
	} else if err = t.checkRoom(op, keys); err != nil {
		return err
	}

	for i, key := range keys {
		if slot, found := t.lookup(key); found {
			t.update(slot, values.Row(i), scores[i])
		} else {
			t.insert(key, values.Row(i), scores[i])
		}
	}

	t.log.WithFields(log.Fields{
		"path":    opts.Path,
		"entries": count,
		"merge":   opts.Merge,
		"size":    len(t.slots),
	}).Info("checkpoint loaded")

	return nil
}

func uniqueKeys[K storage.Key](keys []K) int {
	seen := make(map[K]struct{}, len(keys))
	for _, key := range keys {
		seen[key] = struct{}{}
	}
	return len(seen)
}
