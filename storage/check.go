package storage

// CheckValues validates a value buffer against a batch of n keys on a
// table of the given dimension. Empty batches need no buffer at all.
func CheckValues[V Value](op Op, n, dim int, values Values[V]) error {
	if n == 0 {
		return nil
	} else if values.Dim != dim {
		return Errorf(CodeInvalidArgument, op, "values have dimension %d, table has %d", values.Dim, dim)
	} else if rows := values.Rows(); rows < n {
		return Errorf(CodeInvalidArgument, op, "values hold %d rows for %d keys", rows, n)
	}
	return nil
}

// CheckLen validates an auxiliary per key buffer (scores, exists,
// flags, missing lists). Optional buffers may be nil.
func CheckLen(op Op, what string, n, have int, optional bool) error {
	if optional && have == 0 {
		return nil
	} else if have < n {
		return Errorf(CodeInvalidArgument, op, "%s holds %d elements for %d keys", what, have, n)
	}
	return nil
}

// CheckBatch validates an output batch able to receive n entries.
func CheckBatch[K Key, V Value, S Score](op Op, n, dim int, b Batch[K, V, S]) error {
	if n == 0 {
		return nil
	} else if b.Values.Dim != dim {
		return Errorf(CodeInvalidArgument, op, "output values have dimension %d, table has %d", b.Values.Dim, dim)
	} else if have := b.Cap(); have < n {
		return Errorf(CodeInvalidArgument, op, "output batch holds %d entries, %d needed", have, n)
	}
	return nil
}
