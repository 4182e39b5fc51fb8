package storage

// Values is a caller owned, row major 2-D buffer: one row per key of a
// batch, Dim elements per row. Backends read it on writes and fill it in
// place on reads, they never retain it past the call.
type Values[V Value] struct {
	Data []V
	Dim  int
}

// NewValues allocates a zeroed rows x dim buffer.
func NewValues[V Value](rows, dim int) Values[V] {
	return Values[V]{
		Data: make([]V, rows*dim),
		Dim:  dim,
	}
}

// WrapValues builds a buffer over data, which must hold whole rows.
func WrapValues[V Value](data []V, dim int) (Values[V], error) {
	if dim <= 0 || len(data)%dim != 0 {
		return Values[V]{}, Errorf(CodeInvalidArgument, OpUnknown, "%d elements can't be split in rows of %d", len(data), dim)
	}
	return Values[V]{Data: data, Dim: dim}, nil
}

// Rows returns how many whole rows the buffer holds.
func (v Values[V]) Rows() int {
	if v.Dim <= 0 {
		return 0
	}
	return len(v.Data) / v.Dim
}

// Row returns the i-th row, sharing memory with the buffer.
func (v Values[V]) Row(i int) []V {
	return v.Data[i*v.Dim : (i+1)*v.Dim : (i+1)*v.Dim]
}

// Batch is a (keys, values, scores) output triple, used to hand back
// evicted entries and exported pages.
type Batch[K Key, V Value, S Score] struct {
	Keys   []K
	Values Values[V]
	Scores []S
}

// NewBatch allocates an output batch able to hold rows entries.
func NewBatch[K Key, V Value, S Score](rows, dim int) Batch[K, V, S] {
	return Batch[K, V, S]{
		Keys:   make([]K, rows),
		Values: NewValues[V](rows, dim),
		Scores: make([]S, rows),
	}
}

// Cap returns how many entries the batch can receive, the minimum of its
// three buffers. A nil scores buffer doesn't limit the batch.
func (b Batch[K, V, S]) Cap() int {
	n := len(b.Keys)
	if rows := b.Values.Rows(); rows < n {
		n = rows
	}
	if b.Scores != nil && len(b.Scores) < n {
		n = len(b.Scores)
	}
	return n
}

// Put writes entry i of the batch.
func (b Batch[K, V, S]) Put(i int, key K, row []V, score S) {
	b.Keys[i] = key
	copy(b.Values.Row(i), row)
	if b.Scores != nil {
		b.Scores[i] = score
	}
}

// Slice returns the first n entries of the batch.
func (b Batch[K, V, S]) Slice(n int) Batch[K, V, S] {
	out := Batch[K, V, S]{
		Keys:   b.Keys[:n],
		Values: Values[V]{Data: b.Values.Data[:n*b.Values.Dim], Dim: b.Values.Dim},
	}
	if b.Scores != nil {
		out.Scores = b.Scores[:n]
	}
	return out
}

// Filter selects entries for EraseIf and ExportBatchIf. Backends define
// their own matching rule, MaskFilter is the one shipped ones use.
type Filter[K Key, S Score] interface {
	Match(key K, score S) bool
}

// MaskFilter matches keys carrying every bit of Pattern, whose score is
// strictly below Threshold. A zero Pattern matches every key.
type MaskFilter[K Key, S Score] struct {
	Pattern   K
	Threshold S
}

func (f MaskFilter[K, S]) Match(key K, score S) bool {
	return key&f.Pattern == f.Pattern && score < f.Threshold
}
