package compute

import (
	"github.com/pbnjay/memory"
	"gonum.org/v1/gonum/blas/blas32"
)

type blas struct {
}

func (impl blas) Name() string {
	return "blas32"
}

func (impl blas) Space() uint64 {
	return memory.TotalMemory()
}

func (impl blas) Axpy(alpha float32, x, y []float32) {
	blas32.Axpy(alpha,
		blas32.Vector{N: len(x), Inc: 1, Data: x},
		blas32.Vector{N: len(y), Inc: 1, Data: y})
}
