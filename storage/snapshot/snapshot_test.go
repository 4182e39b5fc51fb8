package snapshot

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/evilsocket/meepo/storage"
	"github.com/evilsocket/meepo/storage/checkpoint"
	"github.com/evilsocket/meepo/storage/storagetest"

	"github.com/x448/float16"
	"github.com/stretchr/testify/require"
)

func writeCheckpoint[K storage.Key, V storage.Value](t testing.TB, dim int, seed storage.Batch[K, V, uint64]) storage.Config {
	path := filepath.Join(t.TempDir(), "snapshot"+checkpoint.FileExt)

	n := len(seed.Keys)
	w := checkpoint.NewWriter[K, V, uint64](dim, n)
	for i := 0; i < n; i++ {
		if err := w.Append(seed.Keys[i], seed.Values.Row(i), seed.Scores[i]); err != nil {
			t.Fatal(err)
		}
	}

	if data, err := w.Bytes(); err != nil {
		t.Fatal(err)
	} else if err = checkpoint.Flush(data, path); err != nil {
		t.Fatal(err)
	}

	cfg, err := storage.ParseConfig([]byte(fmt.Sprintf("checkpoint:\n  path: %s\n", path)))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func openSnapshot[K storage.Key, V storage.Value](t *testing.T, capacity int, seed storage.Batch[K, V, uint64]) storage.Storage[K, V, uint64] {
	s, err := storage.Open[K, V, uint64](Name, writeCheckpoint(t, storagetest.Dim, seed))
	if err != nil {
		t.Fatalf("error opening snapshot: %v", err)
	}
	return s
}

func TestConformance(t *testing.T) {
	t.Run("int64/float32", func(t *testing.T) {
		storagetest.Run[int64, float32, uint64](t, openSnapshot[int64, float32])
	})
	t.Run("uint64/float16", func(t *testing.T) {
		storagetest.Run[uint64, float16.Float16, uint64](t, openSnapshot[uint64, float16.Float16])
	})
	t.Run("int64/int32", func(t *testing.T) {
		storagetest.Run[int64, int32, uint64](t, openSnapshot[int64, int32])
	})
}

func seed(keys ...int64) storage.Batch[int64, float32, uint64] {
	scores := make([]uint64, len(keys))
	for i := range scores {
		scores[i] = uint64(keys[i] * 10)
	}
	return storagetest.Seed[int64, float32, uint64](keys, scores)
}

func TestSupports(t *testing.T) {
	s := New[int64, float32, uint64]()
	for _, op := range []storage.Op{storage.OpSave, storage.OpInsertOrAssign, storage.OpErase, storage.OpClear, storage.OpReserve} {
		require.False(t, s.Supports(op), "%s", op)
	}
	for _, op := range []storage.Op{storage.OpLoad, storage.OpFind, storage.OpContains, storage.OpExportBatchIf} {
		require.True(t, s.Supports(op), "%s", op)
	}
}

func TestInitErrors(t *testing.T) {
	s := New[int64, float32, uint64]()

	_, err := s.Size()
	require.Equal(t, storage.CodeNotInitialized, storage.CodeOf(err))
	require.Equal(t, storage.CodeNotInitialized, storage.CodeOf(s.Load(storage.Config{})))

	require.Equal(t, storage.CodeInvalidArgument, storage.CodeOf(s.Init(storage.Config{})))

	cfg, err := storage.ParseConfig([]byte("checkpoint:\n  path: /lulzlulz.ckpt\n"))
	require.NoError(t, err)
	require.Equal(t, storage.CodePersistence, storage.CodeOf(s.Init(cfg)))

	cfg = writeCheckpoint(t, storagetest.Dim, seed(1, 2))
	merge, err := storage.ParseConfig([]byte(fmt.Sprintf("checkpoint:\n  path: %s\n  merge: true\n",
		cfg.Lookup("checkpoint", "path").Node().Value)))
	require.NoError(t, err)
	require.Equal(t, storage.CodeUnsupported, storage.CodeOf(s.Init(merge)))

	require.NoError(t, s.Init(cfg))
	require.Equal(t, storage.CodeInvalidArgument, storage.CodeOf(s.Init(cfg)))

	// same dimension, other types
	other := New[int64, int8, uint64]()
	require.Equal(t, storage.CodePersistence, storage.CodeOf(other.Init(cfg)))
}

func TestFindAndExport(t *testing.T) {
	s := New[int64, float32, uint64]()
	require.NoError(t, s.Init(writeCheckpoint(t, storagetest.Dim, seed(1, 2, 3, 4, 5))))

	size, err := s.Size()
	require.NoError(t, err)
	require.Equal(t, 5, size)

	capacity, err := s.Capacity()
	require.NoError(t, err)
	require.Equal(t, size, capacity)

	keys := []int64{4, 9}
	values := storage.NewValues[float32](len(keys), storagetest.Dim)
	exists := make([]bool, len(keys))
	scores := make([]uint64, len(keys))
	require.NoError(t, s.FindExistsScores(keys, values, exists, scores))
	require.Equal(t, []bool{true, false}, exists)
	require.Equal(t, uint64(40), scores[0])
	require.Equal(t, storagetest.RowFor[int64, float32](4), values.Row(0))

	// odd keys scoring below 45
	out := storage.NewBatch[int64, float32, uint64](5, storagetest.Dim)
	n, err := s.ExportBatchIf(1, 45, 5, 0, out)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 3}, out.Keys[:n])

	n, err = s.ExportBatchIf(1, 45, 5, 1, out)
	require.NoError(t, err)
	require.Equal(t, []int64{3}, out.Keys[:n])
}

func TestMutationsUnsupported(t *testing.T) {
	s := New[int64, float32, uint64]()
	require.NoError(t, s.Init(writeCheckpoint(t, storagetest.Dim, seed(1))))

	values := storage.NewValues[float32](1, storagetest.Dim)
	require.True(t, storage.IsUnsupported(s.InsertOrAssign([]int64{2}, values, nil)))
	require.True(t, storage.IsUnsupported(s.Erase([]int64{1})))
	require.True(t, storage.IsUnsupported(s.Save(storage.Config{})))

	// nothing changed
	exists := make([]bool, 2)
	require.NoError(t, s.Contains([]int64{1, 2}, exists))
	require.Equal(t, []bool{true, false}, exists)
}

func TestLoadReplaces(t *testing.T) {
	s := New[int64, float32, uint64]()
	require.NoError(t, s.Init(writeCheckpoint(t, storagetest.Dim, seed(1, 2))))
	require.NoError(t, s.Load(writeCheckpoint(t, storagetest.Dim, seed(7, 8, 9))))

	exists := make([]bool, 4)
	require.NoError(t, s.Contains([]int64{1, 7, 8, 9}, exists))
	require.Equal(t, []bool{false, true, true, true}, exists)

	err := s.Load(writeCheckpoint(t, storagetest.Dim+1, storage.Batch[int64, float32, uint64]{}))
	require.Equal(t, storage.CodeInvalidArgument, storage.CodeOf(err))

	size, err := s.Size()
	require.NoError(t, err)
	require.Equal(t, 3, size)
}

func BenchmarkFind(b *testing.B) {
	keys := make([]int64, 1024)
	for i := range keys {
		keys[i] = int64(i)
	}

	s := New[int64, float32, uint64]()
	if err := s.Init(writeCheckpoint(b, storagetest.Dim, seed(keys...))); err != nil {
		b.Fatal(err)
	}

	values := storage.NewValues[float32](len(keys), storagetest.Dim)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if err := s.Find(keys, values); err != nil {
			b.Fatal(err)
		}
	}
}
