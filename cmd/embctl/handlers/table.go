package handlers

import (
	"fmt"
	"strconv"

	"github.com/evilsocket/meepo/compute"
	"github.com/evilsocket/meepo/storage"

	"github.com/dustin/go-humanize"
	"github.com/x448/float16"
)

// Entry is a table entry as shown to the user.
type Entry struct {
	Key   string
	Row   []float64
	Score uint64
}

// Table is what the commands drive: a storage bound to concrete types,
// taking and returning keys and rows in their textual form.
type Table interface {
	Info() ([][]string, error)
	Supports(op storage.Op) bool
	FindOrInsert(keys []string, rows [][]float64, scores []uint64) ([]Entry, []bool, error)
	Upsert(keys []string, rows [][]float64, scores []uint64) error
	Evict(keys []string, rows [][]float64, scores []uint64) ([]Entry, error)
	Accum(keys []string, rows [][]float64) error
	Find(keys []string) ([]Entry, []bool, error)
	Contains(keys []string) ([]bool, error)
	Erase(keys []string) error
	Expire(pattern string, threshold uint64) (int, error)
	Clear() error
	Export(maxBatch, offset int) ([]Entry, error)
	Save(cfg storage.Config) error
	Load(cfg storage.Config) error
}

// Open creates and initializes the named backend for the given key and
// value types, scores are always uint64.
func Open(backend string, key, value storage.DType, cfg storage.Config) (Table, error) {
	switch key {
	case storage.DTypeInt64:
		return openWithKey[int64](backend, value, cfg)
	case storage.DTypeUint64:
		return openWithKey[uint64](backend, value, cfg)
	}
	return nil, fmt.Errorf("%s is not a valid key type", key)
}

func openWithKey[K storage.Key](backend string, value storage.DType, cfg storage.Config) (Table, error) {
	switch value {
	case storage.DTypeInt64:
		return open[K, int64](backend, cfg)
	case storage.DTypeInt32:
		return open[K, int32](backend, cfg)
	case storage.DTypeInt8:
		return open[K, int8](backend, cfg)
	case storage.DTypeFloat32:
		return open[K, float32](backend, cfg)
	case storage.DTypeFloat16:
		return open[K, float16.Float16](backend, cfg)
	case storage.DTypeBFloat16:
		return open[K, storage.BFloat16](backend, cfg)
	}
	return nil, fmt.Errorf("%s is not a valid value type", value)
}

func open[K storage.Key, V storage.Value](backend string, cfg storage.Config) (Table, error) {
	s, err := storage.Open[K, V, uint64](backend, cfg)
	if err != nil {
		return nil, err
	}

	dim, err := s.Dim()
	if err != nil {
		return nil, err
	}

	return &session[K, V]{backend: backend, s: s, dim: dim}, nil
}

type session[K storage.Key, V storage.Value] struct {
	backend string
	s       storage.Storage[K, V, uint64]
	dim     int
}

func (t *session[K, V]) key(s string) (K, error) {
	if storage.DTypeOf[K]() == storage.DTypeUint64 {
		n, err := strconv.ParseUint(s, 0, 64)
		return K(n), err
	}
	n, err := strconv.ParseInt(s, 0, 64)
	return K(n), err
}

func (t *session[K, V]) keys(strs []string) ([]K, error) {
	keys := make([]K, len(strs))
	for i, s := range strs {
		key, err := t.key(s)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q", s)
		}
		keys[i] = key
	}
	return keys, nil
}

func (t *session[K, V]) values(n int, rows [][]float64) (storage.Values[V], error) {
	values := storage.NewValues[V](n, t.dim)
	if rows == nil {
		return values, nil
	} else if len(rows) != n {
		return values, fmt.Errorf("%d rows given for %d keys", len(rows), n)
	}

	for i, row := range rows {
		if len(row) != t.dim {
			return values, fmt.Errorf("row %d has %d elements, table dimension is %d", i, len(row), t.dim)
		}
		for j, f := range row {
			values.Row(i)[j] = compute.FromFloat64[V](f)
		}
	}
	return values, nil
}

func (t *session[K, V]) entry(key K, row []V, score uint64) Entry {
	e := Entry{
		Key:   fmt.Sprintf("%d", key),
		Row:   make([]float64, len(row)),
		Score: score,
	}
	for i, v := range row {
		e.Row[i] = compute.ToFloat64(v)
	}
	return e
}

// batch parses the keys and the rows of a write.
func (t *session[K, V]) batch(strs []string, rows [][]float64, scores []uint64) ([]K, storage.Values[V], error) {
	keys, err := t.keys(strs)
	if err != nil {
		return nil, storage.Values[V]{}, err
	}
	values, err := t.values(len(keys), rows)
	if err != nil {
		return nil, values, err
	} else if scores != nil && len(scores) != len(keys) {
		return nil, values, fmt.Errorf("%d scores given for %d keys", len(scores), len(keys))
	}
	return keys, values, nil
}

func (t *session[K, V]) Info() ([][]string, error) {
	dev, err := t.s.Device()
	if err != nil {
		return nil, err
	}
	size, err := t.s.Size()
	if err != nil {
		return nil, err
	}
	capacity, err := t.s.Capacity()
	if err != nil {
		return nil, err
	}

	rowSize := uint64(t.dim * storage.DTypeOf[V]().Size())
	return [][]string{
		{"backend", t.backend},
		{"types", fmt.Sprintf("<%s,%s,%s>", storage.DTypeOf[K](), storage.DTypeOf[V](), storage.DTypeOf[uint64]())},
		{"device", dev.String()},
		{"compute", compute.Name()},
		{"dim", fmt.Sprintf("%d", t.dim)},
		{"size", humanize.Comma(int64(size))},
		{"capacity", humanize.Comma(int64(capacity))},
		{"rows", humanize.Bytes(uint64(size) * rowSize)},
	}, nil
}

func (t *session[K, V]) Supports(op storage.Op) bool {
	return t.s.Supports(op)
}

func (t *session[K, V]) FindOrInsert(strs []string, rows [][]float64, scores []uint64) ([]Entry, []bool, error) {
	keys, values, err := t.batch(strs, rows, scores)
	if err != nil {
		return nil, nil, err
	}

	exists := make([]bool, len(keys))
	if scores == nil {
		scores = make([]uint64, len(keys))
	}
	if err = t.s.FindOrInsertExistsScores(keys, values, exists, scores); err != nil {
		return nil, nil, err
	}

	entries := make([]Entry, len(keys))
	for i, key := range keys {
		entries[i] = t.entry(key, values.Row(i), scores[i])
	}
	return entries, exists, nil
}

func (t *session[K, V]) Upsert(strs []string, rows [][]float64, scores []uint64) error {
	keys, values, err := t.batch(strs, rows, scores)
	if err != nil {
		return err
	}
	return t.s.InsertOrAssign(keys, values, scores)
}

func (t *session[K, V]) Evict(strs []string, rows [][]float64, scores []uint64) ([]Entry, error) {
	keys, values, err := t.batch(strs, rows, scores)
	if err != nil {
		return nil, err
	}

	evicted := storage.NewBatch[K, V, uint64](len(keys), t.dim)
	n, err := t.s.InsertAndEvict(keys, values, scores, evicted)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = t.entry(evicted.Keys[i], evicted.Values.Row(i), evicted.Scores[i])
	}
	return entries, nil
}

func (t *session[K, V]) Accum(strs []string, rows [][]float64) error {
	keys, values, err := t.batch(strs, rows, nil)
	if err != nil {
		return err
	}

	accum := make([]bool, len(keys))
	for i := range accum {
		accum[i] = true
	}
	return t.s.AccumOrAssign(keys, values, accum, nil)
}

func (t *session[K, V]) Find(strs []string) ([]Entry, []bool, error) {
	keys, err := t.keys(strs)
	if err != nil {
		return nil, nil, err
	}

	values := storage.NewValues[V](len(keys), t.dim)
	exists := make([]bool, len(keys))
	scores := make([]uint64, len(keys))
	if err = t.s.FindExistsScores(keys, values, exists, scores); err != nil {
		return nil, nil, err
	}

	entries := make([]Entry, len(keys))
	for i, key := range keys {
		entries[i] = t.entry(key, values.Row(i), scores[i])
	}
	return entries, exists, nil
}

func (t *session[K, V]) Contains(strs []string) ([]bool, error) {
	keys, err := t.keys(strs)
	if err != nil {
		return nil, err
	}
	exists := make([]bool, len(keys))
	return exists, t.s.Contains(keys, exists)
}

func (t *session[K, V]) Erase(strs []string) error {
	keys, err := t.keys(strs)
	if err != nil {
		return err
	}
	return t.s.Erase(keys)
}

func (t *session[K, V]) Expire(pattern string, threshold uint64) (int, error) {
	mask, err := t.key(pattern)
	if err != nil {
		return 0, fmt.Errorf("invalid pattern %q", pattern)
	}
	return t.s.EraseIf(mask, threshold)
}

func (t *session[K, V]) Clear() error {
	return t.s.Clear()
}

func (t *session[K, V]) Export(maxBatch, offset int) ([]Entry, error) {
	out := storage.NewBatch[K, V, uint64](maxBatch, t.dim)
	n, err := t.s.ExportBatch(maxBatch, offset, out)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = t.entry(out.Keys[i], out.Values.Row(i), out.Scores[i])
	}
	return entries, nil
}

func (t *session[K, V]) Save(cfg storage.Config) error {
	return t.s.Save(cfg)
}

func (t *session[K, V]) Load(cfg storage.Config) error {
	return t.s.Load(cfg)
}
