package compute

import (
	"math/rand"
	"testing"
	"time"
)

func axpyWithSize(impl implementation, b *testing.B, size int) {
	x := make([]float32, size)
	y := make([]float32, size)

	s := rand.NewSource(time.Now().Unix())
	r := rand.New(s)

	for i := 0; i < size; i++ {
		x[i] = r.Float32()
		y[i] = r.Float32()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		impl.Axpy(0.001, x, y)
	}
}

func BenchmarkComputeNaiveAxpy128(b *testing.B) {
	axpyWithSize(naive{}, b, 128)
}

func BenchmarkComputeNaiveAxpy1024(b *testing.B) {
	axpyWithSize(naive{}, b, 1024)
}

func BenchmarkComputeBLAS32Axpy128(b *testing.B) {
	axpyWithSize(blas{}, b, 128)
}

func BenchmarkComputeBLAS32Axpy1024(b *testing.B) {
	axpyWithSize(blas{}, b, 1024)
}
