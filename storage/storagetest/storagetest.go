// Package storagetest checks a storage backend against the behaviour every
// backend shares, whatever its capabilities. Backend packages call Run
// from their own tests; properties needing a capability the backend
// doesn't support are skipped.
package storagetest

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/evilsocket/meepo/compute"
	"github.com/evilsocket/meepo/storage"

	. "github.com/stretchr/testify/require"
)

// Opener returns a fresh, initialized backend of dimension Dim holding the
// seed entries, with room for capacity entries at least.
type Opener[K storage.Key, V storage.Value, S storage.Score] func(t *testing.T, capacity int, seed storage.Batch[K, V, S]) storage.Storage[K, V, S]

// Dim is the dimension every opened backend must have.
const Dim = 3

// RowFor returns the row the suite associates to key.
func RowFor[K storage.Key, V storage.Value](key K) []V {
	row := make([]V, Dim)
	for i := range row {
		row[i] = compute.FromFloat64[V](float64(int64(key)%100 + int64(i)))
	}
	return row
}

// Seed builds a batch holding keys, their RowFor rows and the given scores.
func Seed[K storage.Key, V storage.Value, S storage.Score](keys []K, scores []S) storage.Batch[K, V, S] {
	b := storage.NewBatch[K, V, S](len(keys), Dim)
	for i, key := range keys {
		b.Put(i, key, RowFor[K, V](key), scores[i])
	}
	return b
}

func keyRange[K storage.Key](from, to int) []K {
	keys := make([]K, 0, to-from+1)
	for k := from; k <= to; k++ {
		keys = append(keys, K(k))
	}
	return keys
}

func sameScores[S storage.Score](n int, score S) []S {
	scores := make([]S, n)
	for i := range scores {
		scores[i] = score
	}
	return scores
}

func requireOps[K storage.Key, V storage.Value, S storage.Score](t *testing.T, s storage.Storage[K, V, S], ops ...storage.Op) {
	t.Helper()
	for _, op := range ops {
		if !s.Supports(op) {
			t.Skipf("backend doesn't support %s", op)
		}
	}
}

// dump exports every entry, failing on overlapping pages.
func dump[K storage.Key, V storage.Value, S storage.Score](t *testing.T, s storage.Storage[K, V, S], page int) map[K][]V {
	t.Helper()

	entries := map[K][]V{}
	out := storage.NewBatch[K, V, S](page, Dim)
	for offset := 0; ; {
		n, err := s.ExportBatch(page, offset, out)
		NoError(t, err)
		for i := 0; i < n; i++ {
			key := out.Keys[i]
			_, dup := entries[key]
			False(t, dup, "key %d exported twice", key)
			entries[key] = append([]V(nil), out.Values.Row(i)...)
		}
		if offset += n; n < page {
			break
		}
	}

	return entries
}

// Run executes the whole suite.
func Run[K storage.Key, V storage.Value, S storage.Score](t *testing.T, open Opener[K, V, S]) {
	t.Run("Dim", func(t *testing.T) { testDim(t, open) })
	t.Run("FindPartition", func(t *testing.T) { testFindPartition(t, open) })
	t.Run("FindOrInsertPartition", func(t *testing.T) { testFindOrInsertPartition(t, open) })
	t.Run("SaveLoad", func(t *testing.T) { testSaveLoad(t, open) })
	t.Run("InsertAndEvictPreservesData", func(t *testing.T) { testInsertAndEvictPreservesData(t, open) })
	t.Run("InsertAndEvictLowestScore", func(t *testing.T) { testInsertAndEvictLowestScore(t, open) })
	t.Run("EraseIdempotence", func(t *testing.T) { testEraseIdempotence(t, open) })
	t.Run("ExportPagination", func(t *testing.T) { testExportPagination(t, open) })
	t.Run("Unsupported", func(t *testing.T) { testUnsupported(t, open) })
}

func testDim[K storage.Key, V storage.Value, S storage.Score](t *testing.T, open Opener[K, V, S]) {
	s := open(t, 4, storage.Batch[K, V, S]{})
	requireOps(t, s, storage.OpDim, storage.OpEmpty)

	dim, err := s.Dim()
	NoError(t, err)
	Equal(t, Dim, dim)

	empty, err := s.Empty()
	NoError(t, err)
	True(t, empty)
}

func testFindPartition[K storage.Key, V storage.Value, S storage.Score](t *testing.T, open Opener[K, V, S]) {
	stored := keyRange[K](1, 4)
	s := open(t, 16, Seed[K, V, S](stored, sameScores[S](len(stored), 1)))
	requireOps(t, s, storage.OpFindMissing, storage.OpFindExists, storage.OpContains)

	keys := []K{2, 6, 4, 8}
	values := storage.NewValues[V](len(keys), Dim)
	missedKeys := make([]K, len(keys))
	missedIndices := make([]int, len(keys))

	missed, err := s.FindMissing(keys, values, missedKeys, missedIndices)
	NoError(t, err)
	Equal(t, 2, missed)
	Equal(t, []K{6, 8}, missedKeys[:missed])
	Equal(t, []int{1, 3}, missedIndices[:missed])
	Equal(t, RowFor[K, V](2), values.Row(0))
	Equal(t, RowFor[K, V](4), values.Row(2))

	exists := make([]bool, len(keys))
	NoError(t, s.FindExists(keys, storage.NewValues[V](len(keys), Dim), exists))
	Equal(t, []bool{true, false, true, false}, exists)

	contains := make([]bool, len(keys))
	NoError(t, s.Contains(keys, contains))
	Equal(t, exists, contains)
}

func testFindOrInsertPartition[K storage.Key, V storage.Value, S storage.Score](t *testing.T, open Opener[K, V, S]) {
	stored := keyRange[K](1, 4)
	s := open(t, 16, Seed[K, V, S](stored, sameScores[S](len(stored), 1)))
	requireOps(t, s, storage.OpFindMissing, storage.OpFindOrInsertExists, storage.OpContains)

	keys := []K{3, 5, 1, 7}
	missedKeys := make([]K, len(keys))
	missedIndices := make([]int, len(keys))
	missed, err := s.FindMissing(keys, storage.NewValues[V](len(keys), Dim), missedKeys, missedIndices)
	NoError(t, err)

	values := storage.NewValues[V](len(keys), Dim)
	for i, key := range keys {
		copy(values.Row(i), RowFor[K, V](key))
	}
	exists := make([]bool, len(keys))
	NoError(t, s.FindOrInsertExists(keys, values, exists))

	// exists is the complement of the missing set
	isMissed := make([]bool, len(keys))
	for _, i := range missedIndices[:missed] {
		isMissed[i] = true
	}
	for i := range keys {
		Equal(t, !isMissed[i], exists[i], "key %d", keys[i])
	}

	contains := make([]bool, len(keys))
	NoError(t, s.Contains(keys, contains))
	for i := range contains {
		True(t, contains[i], "key %d", keys[i])
	}
}

func testSaveLoad[K storage.Key, V storage.Value, S storage.Score](t *testing.T, open Opener[K, V, S]) {
	stored := keyRange[K](10, 29)
	scores := make([]S, len(stored))
	for i := range scores {
		scores[i] = S(i * 3)
	}

	src := open(t, 32, Seed[K, V, S](stored, scores))
	requireOps(t, src, storage.OpSave, storage.OpLoad, storage.OpExportBatch)

	cfg, err := storage.ParseConfig([]byte(fmt.Sprintf("checkpoint:\n  path: %s\n", filepath.Join(t.TempDir(), "roundtrip.ckpt"))))
	NoError(t, err)
	NoError(t, src.Save(cfg))

	dst := open(t, 32, storage.Batch[K, V, S]{})
	NoError(t, dst.Load(cfg))

	Equal(t, dump(t, src, 7), dump(t, dst, 7))

	if dst.Supports(storage.OpFindScores) {
		got := make([]S, len(stored))
		NoError(t, dst.FindScores(stored, storage.NewValues[V](len(stored), Dim), got))
		Equal(t, scores, got)
	}
}

func testInsertAndEvictPreservesData[K storage.Key, V storage.Value, S storage.Score](t *testing.T, open Opener[K, V, S]) {
	s := open(t, 4, storage.Batch[K, V, S]{})
	requireOps(t, s, storage.OpInsertAndEvict, storage.OpExportBatch, storage.OpCapacity)

	capacity, err := s.Capacity()
	NoError(t, err)

	keys := keyRange[K](1, capacity+12)
	scores := make([]S, len(keys))
	for i := range scores {
		// interleave low and high scores
		scores[i] = S((i * 7) % 11)
	}
	in := Seed[K, V, S](keys, scores)
	evicted := storage.NewBatch[K, V, S](len(keys), Dim)

	n, err := s.InsertAndEvict(in.Keys, in.Values, in.Scores, evicted)
	NoError(t, err)

	all := dump(t, s, 5)
	for i := 0; i < n; i++ {
		key := evicted.Keys[i]
		_, dup := all[key]
		False(t, dup, "key %d both stored and evicted", key)
		all[key] = append([]V(nil), evicted.Values.Row(i)...)
	}

	Equal(t, len(keys), len(all))
	for _, key := range keys {
		Equal(t, RowFor[K, V](key), all[key], "key %d", key)
	}
}

func testInsertAndEvictLowestScore[K storage.Key, V storage.Value, S storage.Score](t *testing.T, open Opener[K, V, S]) {
	s := open(t, 2, storage.Batch[K, V, S]{})
	requireOps(t, s, storage.OpInsertAndEvict, storage.OpContains, storage.OpCapacity)

	if capacity, err := s.Capacity(); err != nil {
		t.Fatal(err)
	} else if capacity != 2 {
		t.Skipf("backend rounded capacity to %d", capacity)
	}

	evicted := storage.NewBatch[K, V, S](2, Dim)
	in := Seed[K, V, S]([]K{1, 2}, []S{10, 20})
	n, err := s.InsertAndEvict(in.Keys, in.Values, in.Scores, evicted)
	NoError(t, err)
	Equal(t, 0, n)

	in = Seed[K, V, S]([]K{3}, []S{30})
	n, err = s.InsertAndEvict(in.Keys, in.Values, in.Scores, evicted)
	NoError(t, err)
	Equal(t, 1, n)
	Equal(t, K(1), evicted.Keys[0])
	Equal(t, S(10), evicted.Scores[0])
	Equal(t, RowFor[K, V](1), evicted.Values.Row(0))

	exists := make([]bool, 3)
	NoError(t, s.Contains([]K{1, 2, 3}, exists))
	Equal(t, []bool{false, true, true}, exists)
}

func testEraseIdempotence[K storage.Key, V storage.Value, S storage.Score](t *testing.T, open Opener[K, V, S]) {
	stored := keyRange[K](1, 5)
	s := open(t, 8, Seed[K, V, S](stored, sameScores[S](len(stored), 1)))
	requireOps(t, s, storage.OpErase, storage.OpContains, storage.OpSize)

	NoError(t, s.Erase([]K{2, 4, 42}))
	first := make([]bool, len(stored))
	NoError(t, s.Contains(stored, first))

	NoError(t, s.Erase([]K{2, 4, 42}))
	second := make([]bool, len(stored))
	NoError(t, s.Contains(stored, second))

	Equal(t, first, second)
	Equal(t, []bool{true, false, true, false, true}, second)

	size, err := s.Size()
	NoError(t, err)
	Equal(t, 3, size)
}

func testExportPagination[K storage.Key, V storage.Value, S storage.Score](t *testing.T, open Opener[K, V, S]) {
	stored := keyRange[K](1, 23)
	s := open(t, 32, Seed[K, V, S](stored, sameScores[S](len(stored), 1)))
	requireOps(t, s, storage.OpExportBatch)

	for _, page := range []int{1, 4, 23, 50} {
		entries := dump(t, s, page)
		Equal(t, len(stored), len(entries), "page size %d", page)
		for _, key := range stored {
			Equal(t, RowFor[K, V](key), entries[key], "key %d", key)
		}
	}
}

func testUnsupported[K storage.Key, V storage.Value, S storage.Score](t *testing.T, open Opener[K, V, S]) {
	s := open(t, 4, storage.Batch[K, V, S]{})

	unsupported := 0
	for _, op := range storage.Ops() {
		if s.Supports(op) {
			continue
		}
		unsupported++
		for attempt := 0; attempt < 2; attempt++ {
			err := Call(s, op)
			True(t, storage.IsUnsupported(err), "%s returned %v", op, err)
			True(t, errors.Is(err, storage.ErrUnsupportedOp), "%s", op)
		}
	}

	if unsupported == 0 {
		t.Skip("backend supports every capability")
	}
}

// Call invokes op on s with empty arguments and returns its error.
func Call[K storage.Key, V storage.Value, S storage.Score](s storage.Storage[K, V, S], op storage.Op) error {
	var (
		keys   []K
		values = storage.NewValues[V](0, Dim)
		out    = storage.NewBatch[K, V, S](0, Dim)
		err    error
	)

	switch op {
	case storage.OpInit:
		err = s.Init(storage.Config{})
	case storage.OpDevice:
		_, err = s.Device()
	case storage.OpDim:
		_, err = s.Dim()
	case storage.OpSave:
		err = s.Save(storage.Config{})
	case storage.OpLoad:
		err = s.Load(storage.Config{})
	case storage.OpFind:
		err = s.Find(keys, values)
	case storage.OpFindMissing:
		_, err = s.FindMissing(keys, values, []K{}, []int{})
	case storage.OpFindMissingScores:
		_, err = s.FindMissingScores(keys, values, []K{}, []int{}, []S{})
	case storage.OpFindExists:
		err = s.FindExists(keys, values, []bool{})
	case storage.OpFindScores:
		err = s.FindScores(keys, values, []S{})
	case storage.OpFindExistsScores:
		err = s.FindExistsScores(keys, values, []bool{}, []S{})
	case storage.OpFindOrInsert:
		err = s.FindOrInsert(keys, values)
	case storage.OpFindOrInsertScores:
		err = s.FindOrInsertScores(keys, values, []S{})
	case storage.OpFindOrInsertExists:
		err = s.FindOrInsertExists(keys, values, []bool{})
	case storage.OpFindOrInsertExistsScores:
		err = s.FindOrInsertExistsScores(keys, values, []bool{}, []S{})
	case storage.OpContains:
		err = s.Contains(keys, []bool{})
	case storage.OpAssign:
		err = s.Assign(keys, values, nil)
	case storage.OpAssignValues:
		err = s.AssignValues(keys, values)
	case storage.OpAssignScores:
		err = s.AssignScores(keys, []S{})
	case storage.OpInsertOrAssign:
		err = s.InsertOrAssign(keys, values, nil)
	case storage.OpInsertAndEvict:
		_, err = s.InsertAndEvict(keys, values, nil, out)
	case storage.OpAccumOrAssign:
		err = s.AccumOrAssign(keys, values, []bool{}, nil)
	case storage.OpErase:
		err = s.Erase(keys)
	case storage.OpEraseIf:
		_, err = s.EraseIf(0, 0)
	case storage.OpClear:
		err = s.Clear()
	case storage.OpExportBatch:
		_, err = s.ExportBatch(0, 0, out)
	case storage.OpExportBatchIf:
		_, err = s.ExportBatchIf(0, 0, 0, 0, out)
	case storage.OpEmpty:
		_, err = s.Empty()
	case storage.OpSize:
		_, err = s.Size()
	case storage.OpCapacity:
		_, err = s.Capacity()
	case storage.OpReserve:
		err = s.Reserve(0)
	default:
		err = storage.Errorf(storage.CodeInvalidArgument, op, "unknown operation")
	}

	return err
}
