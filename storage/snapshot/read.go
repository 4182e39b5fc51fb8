package snapshot

import (
	"github.com/evilsocket/meepo/storage"
)

func (s *Snapshot[K, V, S]) find(op storage.Op, keys []K, values storage.Values[V], exists []bool, scores []S, missedKeys []K, missedIndices []int) (int, error) {
	img, err := s.current(op)
	if err != nil {
		return 0, err
	}

	n := len(keys)
	if err = storage.CheckValues(op, n, img.dim, values); err != nil {
		return 0, err
	} else if err = storage.CheckLen(op, "exists", n, len(exists), exists == nil); err != nil {
		return 0, err
	} else if err = storage.CheckLen(op, "scores", n, len(scores), scores == nil); err != nil {
		return 0, err
	} else if err = storage.CheckLen(op, "missed keys", n, len(missedKeys), missedKeys == nil); err != nil {
		return 0, err
	} else if err = storage.CheckLen(op, "missed indices", n, len(missedIndices), missedIndices == nil); err != nil {
		return 0, err
	}

	missed := 0
	for i, key := range keys {
		at, found := img.index[key]
		if exists != nil {
			exists[i] = found
		}

		if found {
			copy(values.Row(i), img.values.Row(at))
			if scores != nil {
				scores[i] = img.scores[at]
			}
			continue
		}

		if missedKeys != nil {
			missedKeys[missed] = key
		}
		if missedIndices != nil {
			missedIndices[missed] = i
		}
		missed++
	}

	return missed, nil
}

func required(op storage.Op, buffers ...bool) error {
	for _, isNil := range buffers {
		if isNil {
			return storage.Errorf(storage.CodeInvalidArgument, op, "output buffers are required")
		}
	}
	return nil
}

func (s *Snapshot[K, V, S]) Find(keys []K, values storage.Values[V]) error {
	_, err := s.find(storage.OpFind, keys, values, nil, nil, nil, nil)
	return err
}

func (s *Snapshot[K, V, S]) FindMissing(keys []K, values storage.Values[V], missedKeys []K, missedIndices []int) (int, error) {
	if err := required(storage.OpFindMissing, missedKeys == nil, missedIndices == nil); err != nil {
		return 0, err
	}
	return s.find(storage.OpFindMissing, keys, values, nil, nil, missedKeys, missedIndices)
}

func (s *Snapshot[K, V, S]) FindMissingScores(keys []K, values storage.Values[V], missedKeys []K, missedIndices []int, scores []S) (int, error) {
	if err := required(storage.OpFindMissingScores, missedKeys == nil, missedIndices == nil, scores == nil); err != nil {
		return 0, err
	}
	return s.find(storage.OpFindMissingScores, keys, values, nil, scores, missedKeys, missedIndices)
}

func (s *Snapshot[K, V, S]) FindExists(keys []K, values storage.Values[V], exists []bool) error {
	if err := required(storage.OpFindExists, exists == nil); err != nil {
		return err
	}
	_, err := s.find(storage.OpFindExists, keys, values, exists, nil, nil, nil)
	return err
}

func (s *Snapshot[K, V, S]) FindScores(keys []K, values storage.Values[V], scores []S) error {
	if err := required(storage.OpFindScores, scores == nil); err != nil {
		return err
	}
	_, err := s.find(storage.OpFindScores, keys, values, nil, scores, nil, nil)
	return err
}

func (s *Snapshot[K, V, S]) FindExistsScores(keys []K, values storage.Values[V], exists []bool, scores []S) error {
	if err := required(storage.OpFindExistsScores, exists == nil, scores == nil); err != nil {
		return err
	}
	_, err := s.find(storage.OpFindExistsScores, keys, values, exists, scores, nil, nil)
	return err
}

func (s *Snapshot[K, V, S]) Contains(keys []K, exists []bool) error {
	img, err := s.current(storage.OpContains)
	if err != nil {
		return err
	} else if err = storage.CheckLen(storage.OpContains, "exists", len(keys), len(exists), false); err != nil {
		return err
	}

	for i, key := range keys {
		_, exists[i] = img.index[key]
	}

	return nil
}

func (s *Snapshot[K, V, S]) export(op storage.Op, filter storage.Filter[K, S], maxBatch, offset int, out storage.Batch[K, V, S]) (int, error) {
	img, err := s.current(op)
	if err != nil {
		return 0, err
	} else if maxBatch < 0 || offset < 0 {
		return 0, storage.Errorf(storage.CodeInvalidArgument, op, "negative batch size %d or offset %d", maxBatch, offset)
	} else if err = storage.CheckBatch(op, maxBatch, img.dim, out); err != nil {
		return 0, err
	}

	exported, skipped := 0, 0
	for i := 0; i < len(img.keys) && exported < maxBatch; i++ {
		if filter != nil && !filter.Match(img.keys[i], img.scores[i]) {
			continue
		} else if skipped < offset {
			skipped++
			continue
		}
		out.Put(exported, img.keys[i], img.values.Row(i), img.scores[i])
		exported++
	}

	return exported, nil
}

// ExportBatch pages through the entries in checkpoint order.
func (s *Snapshot[K, V, S]) ExportBatch(maxBatch, offset int, out storage.Batch[K, V, S]) (int, error) {
	return s.export(storage.OpExportBatch, nil, maxBatch, offset, out)
}

func (s *Snapshot[K, V, S]) ExportBatchIf(pattern K, threshold S, maxBatch, offset int, out storage.Batch[K, V, S]) (int, error) {
	filter := storage.MaskFilter[K, S]{Pattern: pattern, Threshold: threshold}
	return s.export(storage.OpExportBatchIf, filter, maxBatch, offset, out)
}
