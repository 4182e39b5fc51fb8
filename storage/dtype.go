package storage

import (
	"fmt"
	"math"
	"reflect"

	"github.com/x448/float16"
)

// Key is the constraint for embedding row identifiers.
type Key interface {
	~int64 | ~uint64
}

// Value is the constraint for embedding element encodings. The element
// type is fixed per table at creation, this layer never converts it.
type Value interface {
	int64 | int32 | int8 | float32 | float16.Float16 | BFloat16
}

// Score is the constraint for per key ranking values.
type Score interface {
	~uint64
}

// BFloat16 is the brain floating point format: the upper 16 bits of an
// IEEE 754 float32.
type BFloat16 uint16

// BFloat16From converts f rounding to nearest even, NaN stays NaN.
func BFloat16From(f float32) BFloat16 {
	bits := math.Float32bits(f)
	if f != f {
		return BFloat16(bits>>16 | 0x0040)
	}
	bits += 0x7fff + (bits>>16)&1
	return BFloat16(bits >> 16)
}

func (b BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(b) << 16)
}

func (b BFloat16) String() string {
	return fmt.Sprintf("%g", b.Float32())
}

// DType names the element type of keys, values or scores.
type DType int

const (
	DTypeInvalid DType = iota
	DTypeInt64
	DTypeUint64
	DTypeInt32
	DTypeInt8
	DTypeFloat32
	DTypeFloat16
	DTypeBFloat16
)

var dtypeNames = map[DType]string{
	DTypeInvalid:  "invalid",
	DTypeInt64:    "int64",
	DTypeUint64:   "uint64",
	DTypeInt32:    "int32",
	DTypeInt8:     "int8",
	DTypeFloat32:  "float32",
	DTypeFloat16:  "float16",
	DTypeBFloat16: "bfloat16",
}

var dtypeSizes = map[DType]int{
	DTypeInt64:    8,
	DTypeUint64:   8,
	DTypeInt32:    4,
	DTypeInt8:     1,
	DTypeFloat32:  4,
	DTypeFloat16:  2,
	DTypeBFloat16: 2,
}

func (d DType) String() string {
	if name, found := dtypeNames[d]; found {
		return name
	}
	return fmt.Sprintf("dtype(%d)", int(d))
}

// Size returns the width in bytes of one element.
func (d DType) Size() int {
	return dtypeSizes[d]
}

// ParseDType resolves a dtype by name, "half" and "float" are accepted
// as aliases.
func ParseDType(name string) (DType, error) {
	switch name {
	case "half":
		return DTypeFloat16, nil
	case "float":
		return DTypeFloat32, nil
	}
	for d, n := range dtypeNames {
		if n == name && d != DTypeInvalid {
			return d, nil
		}
	}
	return DTypeInvalid, Errorf(CodeInvalidArgument, OpUnknown, "unknown dtype %q", name)
}

// ValueDTypes lists the value encodings the matrix is expanded over.
func ValueDTypes() []DType {
	return []DType{
		DTypeInt64,
		DTypeInt32,
		DTypeInt8,
		DTypeFloat32,
		DTypeFloat16,
		DTypeBFloat16,
	}
}

// DTypeOf returns the dtype of T, DTypeInvalid if T is not part of the
// matrix. Named key and score types resolve through their kind.
func DTypeOf[T any]() DType {
	var zero T
	switch any(zero).(type) {
	case int64:
		return DTypeInt64
	case uint64:
		return DTypeUint64
	case int32:
		return DTypeInt32
	case int8:
		return DTypeInt8
	case float32:
		return DTypeFloat32
	case float16.Float16:
		return DTypeFloat16
	case BFloat16:
		return DTypeBFloat16
	}
	if t := reflect.TypeOf(zero); t != nil {
		switch t.Kind() {
		case reflect.Int64:
			return DTypeInt64
		case reflect.Uint64:
			return DTypeUint64
		}
	}
	return DTypeInvalid
}
