package compute

import (
	"github.com/evilsocket/meepo/storage"

	"github.com/x448/float16"
)

// each implementation must provide these methods.
type implementation interface {
	Name() string
	Space() uint64
	// Axpy computes y += alpha * x.
	Axpy(alpha float32, x, y []float32)
}

var impl implementation = blas{}

// Name returns the name of the implementation in use.
func Name() string {
	return impl.Name()
}

// Space returns the memory available to the implementation, in bytes.
func Space() uint64 {
	return impl.Space()
}

// Accumulate adds src to dst element-wise. Half precision encodings are
// summed in float32 and rounded back, integer encodings wrap around on
// overflow.
func Accumulate[V storage.Value](dst, src []V) {
	switch d := any(dst).(type) {
	case []float32:
		impl.Axpy(1, any(src).([]float32), d)
	case []float16.Float16:
		s := any(src).([]float16.Float16)
		for i := range d {
			d[i] = float16.Fromfloat32(d[i].Float32() + s[i].Float32())
		}
	case []storage.BFloat16:
		s := any(src).([]storage.BFloat16)
		for i := range d {
			d[i] = storage.BFloat16From(d[i].Float32() + s[i].Float32())
		}
	default:
		for i := range dst {
			dst[i] += src[i]
		}
	}
}
