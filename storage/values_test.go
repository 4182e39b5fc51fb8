package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValues(t *testing.T) {
	v := NewValues[float32](3, 2)
	require.Equal(t, 3, v.Rows())
	require.Len(t, v.Data, 6)

	v.Row(1)[0] = 42
	require.Equal(t, float32(42), v.Data[2])

	// rows can't grow into the next one
	row := v.Row(0)
	require.Equal(t, 2, cap(row))

	_, err := WrapValues([]int8{1, 2, 3}, 2)
	require.Equal(t, CodeInvalidArgument, CodeOf(err))
	_, err = WrapValues([]int8{1, 2}, 0)
	require.Equal(t, CodeInvalidArgument, CodeOf(err))

	w, err := WrapValues([]int8{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	require.Equal(t, []int8{3, 4}, w.Row(1))

	require.Equal(t, 0, Values[int8]{}.Rows())
}

func TestBatch(t *testing.T) {
	b := NewBatch[int64, float32, uint64](4, 2)
	require.Equal(t, 4, b.Cap())

	b.Put(1, 7, []float32{1, 2}, 70)
	require.Equal(t, int64(7), b.Keys[1])
	require.Equal(t, []float32{1, 2}, b.Values.Row(1))
	require.Equal(t, uint64(70), b.Scores[1])

	s := b.Slice(2)
	require.Equal(t, 2, s.Cap())
	require.Equal(t, []int64{0, 7}, s.Keys)

	// scores are optional
	b.Scores = nil
	require.Equal(t, 4, b.Cap())
	b.Put(0, 1, []float32{3, 4}, 10)
	require.Nil(t, b.Slice(1).Scores)

	b.Keys = b.Keys[:3]
	require.Equal(t, 3, b.Cap())
}

func TestMaskFilter(t *testing.T) {
	f := MaskFilter[uint64, uint64]{Pattern: 0x0f00, Threshold: 100}

	require.True(t, f.Match(0x1f00, 99))
	require.False(t, f.Match(0x1f00, 100))
	require.False(t, f.Match(0x1e00, 0))

	all := MaskFilter[int64, uint64]{Threshold: 1}
	require.True(t, all.Match(-1, 0))
	require.True(t, all.Match(12345, 0))
}

func TestCheck(t *testing.T) {
	v := NewValues[int32](2, 4)

	require.NoError(t, CheckValues(OpFind, 2, 4, v))
	require.NoError(t, CheckValues(OpFind, 0, 8, Values[int32]{}))
	require.Equal(t, CodeInvalidArgument, CodeOf(CheckValues(OpFind, 3, 4, v)))
	require.Equal(t, CodeInvalidArgument, CodeOf(CheckValues(OpFind, 1, 8, v)))

	require.NoError(t, CheckLen(OpFind, "scores", 3, 0, true))
	require.NoError(t, CheckLen(OpFind, "scores", 3, 5, false))
	require.Equal(t, CodeInvalidArgument, CodeOf(CheckLen(OpFind, "scores", 3, 0, false)))
	require.Equal(t, CodeInvalidArgument, CodeOf(CheckLen(OpFind, "scores", 3, 2, true)))

	b := NewBatch[int64, int32, uint64](2, 4)
	require.NoError(t, CheckBatch(OpExportBatch, 0, 4, Batch[int64, int32, uint64]{}))
	require.NoError(t, CheckBatch(OpExportBatch, 2, 4, b))
	require.Equal(t, CodeInvalidArgument, CodeOf(CheckBatch(OpExportBatch, 3, 4, b)))
	require.Equal(t, CodeInvalidArgument, CodeOf(CheckBatch(OpExportBatch, 1, 2, b)))
}
