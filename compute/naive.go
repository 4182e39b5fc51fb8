package compute

import (
	"github.com/pbnjay/memory"
)

type naive struct {
}

func (impl naive) Name() string {
	return "naive"
}

func (impl naive) Space() uint64 {
	return memory.TotalMemory()
}

func (impl naive) Axpy(alpha float32, x, y []float32) {
	for i, vx := range x {
		y[i] += alpha * vx
	}
}
