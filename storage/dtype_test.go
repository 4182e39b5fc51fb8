package storage

import (
	"math"
	"testing"

	"github.com/x448/float16"
	"github.com/stretchr/testify/require"
)

type userID uint64

func TestDTypeOf(t *testing.T) {
	require.Equal(t, DTypeInt64, DTypeOf[int64]())
	require.Equal(t, DTypeUint64, DTypeOf[uint64]())
	require.Equal(t, DTypeInt32, DTypeOf[int32]())
	require.Equal(t, DTypeInt8, DTypeOf[int8]())
	require.Equal(t, DTypeFloat32, DTypeOf[float32]())
	require.Equal(t, DTypeFloat16, DTypeOf[float16.Float16]())
	require.Equal(t, DTypeBFloat16, DTypeOf[BFloat16]())
	require.Equal(t, DTypeUint64, DTypeOf[userID]())
	require.Equal(t, DTypeInvalid, DTypeOf[string]())
	require.Equal(t, DTypeInvalid, DTypeOf[error]())
}

func TestParseDType(t *testing.T) {
	for _, d := range ValueDTypes() {
		parsed, err := ParseDType(d.String())
		require.NoError(t, err)
		require.Equal(t, d, parsed)
		require.Greater(t, d.Size(), 0)
	}

	d, err := ParseDType("half")
	require.NoError(t, err)
	require.Equal(t, DTypeFloat16, d)

	_, err = ParseDType("invalid")
	require.Equal(t, CodeInvalidArgument, CodeOf(err))
	_, err = ParseDType("complex128")
	require.Equal(t, CodeInvalidArgument, CodeOf(err))
}

func TestBFloat16(t *testing.T) {
	for _, f := range []float32{0, 1, -2, 0.5, 3.75, 256} {
		require.Equal(t, f, BFloat16From(f).Float32())
	}

	// 1 + 2^-8 is halfway between 1 and the next bfloat16, rounds to even
	require.Equal(t, float32(1), BFloat16From(1+1.0/256).Float32())
	require.Equal(t, float32(1+1.0/64), BFloat16From(1+3.0/256).Float32())

	require.True(t, math.IsNaN(float64(BFloat16From(float32(math.NaN())).Float32())))

	require.Equal(t, "1.5", BFloat16From(1.5).String())
}
