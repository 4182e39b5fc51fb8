package compute

import (
	"testing"

	"github.com/evilsocket/meepo/storage"

	"github.com/x448/float16"
)

func TestName(t *testing.T) {
	if name := Name(); name != "blas32" {
		t.Fatalf("unexpected implementation %s", name)
	}
}

func TestSpace(t *testing.T) {
	if Space() == 0 {
		t.Fatal("expected some memory to be reported")
	}
}

func TestAxpyImplementationsAgree(t *testing.T) {
	x := []float32{1, 2, 3, 4}
	a := []float32{0.5, 0.5, 0.5, 0.5}
	b := []float32{0.5, 0.5, 0.5, 0.5}

	naive{}.Axpy(2, x, a)
	blas{}.Axpy(2, x, b)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("implementations disagree at %d: %f vs %f", i, a[i], b[i])
		} else if expected := 0.5 + 2*x[i]; a[i] != expected {
			t.Fatalf("expected %f, got %f", expected, a[i])
		}
	}
}

func TestAccumulateFloat32(t *testing.T) {
	dst := []float32{1, 2, 3}
	Accumulate(dst, []float32{0.5, 0.5, 0.5})
	for i, expected := range []float32{1.5, 2.5, 3.5} {
		if dst[i] != expected {
			t.Fatalf("expected %f at %d, got %f", expected, i, dst[i])
		}
	}
}

func TestAccumulateIntegers(t *testing.T) {
	dst := []int8{1, 127}
	Accumulate(dst, []int8{2, 1})
	if dst[0] != 3 {
		t.Fatalf("expected 3, got %d", dst[0])
	} else if dst[1] != -128 {
		t.Fatalf("expected wrap around, got %d", dst[1])
	}

	wide := []int64{1 << 40}
	Accumulate(wide, []int64{1})
	if wide[0] != 1<<40+1 {
		t.Fatalf("unexpected %d", wide[0])
	}
}

func TestAccumulateHalf(t *testing.T) {
	dst := []float16.Float16{float16.Fromfloat32(1.5)}
	Accumulate(dst, []float16.Float16{float16.Fromfloat32(2.25)})
	if got := dst[0].Float32(); got != 3.75 {
		t.Fatalf("expected 3.75, got %f", got)
	}
}

func TestAccumulateBFloat16(t *testing.T) {
	dst := []storage.BFloat16{storage.BFloat16From(1)}
	Accumulate(dst, []storage.BFloat16{storage.BFloat16From(2)})
	if got := dst[0].Float32(); got != 3 {
		t.Fatalf("expected 3, got %f", got)
	}
}

func TestConversions(t *testing.T) {
	if v := FromFloat64[int32](3.9); v != 3 {
		t.Fatalf("expected truncation, got %d", v)
	} else if f := ToFloat64(FromFloat64[float16.Float16](0.5)); f != 0.5 {
		t.Fatalf("expected 0.5, got %f", f)
	} else if f := ToFloat64(FromFloat64[storage.BFloat16](-2)); f != -2 {
		t.Fatalf("expected -2, got %f", f)
	} else if f := ToFloat64(FromFloat64[int8](-7)); f != -7 {
		t.Fatalf("expected -7, got %f", f)
	}
}
