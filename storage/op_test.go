package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpNames(t *testing.T) {
	seen := map[string]bool{}
	for _, op := range Ops() {
		name := op.String()
		require.False(t, seen[name], "%s used twice", name)
		seen[name] = true

		parsed, err := ParseOp(name)
		require.NoError(t, err)
		require.Equal(t, op, parsed)
	}

	require.Equal(t, "insert_and_evict", OpInsertAndEvict.String())
	require.Equal(t, "op(1000)", Op(1000).String())

	_, err := ParseOp("explode")
	require.Equal(t, CodeInvalidArgument, CodeOf(err))
}

func TestOpSet(t *testing.T) {
	set := NewOpSet(OpFind, OpContains)
	require.True(t, set.Has(OpFind))
	require.False(t, set.Has(OpErase))
	require.False(t, set.Has(OpUnknown))
	require.Equal(t, []Op{OpFind, OpContains}, set.Ops())

	all := AllOps()
	require.Equal(t, Ops(), all.Ops())

	without := all.Without(OpSave, OpLoad)
	require.False(t, without.Has(OpSave))
	require.False(t, without.Has(OpLoad))
	require.Equal(t, len(Ops())-2, len(without.Ops()))
}
