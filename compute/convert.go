package compute

import (
	"github.com/evilsocket/meepo/storage"

	"github.com/x448/float16"
)

// ToFloat64 widens an element for display and parsing purposes.
func ToFloat64[V storage.Value](v V) float64 {
	switch x := any(v).(type) {
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case int8:
		return float64(x)
	case float32:
		return float64(x)
	case float16.Float16:
		return float64(x.Float32())
	case storage.BFloat16:
		return float64(x.Float32())
	}
	return 0
}

// FromFloat64 narrows f into the V encoding, truncating towards zero for
// integer encodings.
func FromFloat64[V storage.Value](f float64) V {
	var v V
	switch any(v).(type) {
	case int64:
		return any(int64(f)).(V)
	case int32:
		return any(int32(f)).(V)
	case int8:
		return any(int8(f)).(V)
	case float32:
		return any(float32(f)).(V)
	case float16.Float16:
		return any(float16.Fromfloat32(float32(f))).(V)
	case storage.BFloat16:
		return any(storage.BFloat16From(float32(f))).(V)
	}
	return v
}
