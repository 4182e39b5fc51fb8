package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	require.Equal(t, CodeOK, CodeOf(nil))
	require.Equal(t, CodeInternal, CodeOf(errors.New("lulz")))
	require.Equal(t, CodeCapacityExceeded, CodeOf(Errorf(CodeCapacityExceeded, OpInsertOrAssign, "full")))

	wrapped := fmt.Errorf("while seeding: %w", Errorf(CodePersistence, OpLoad, "bad crc"))
	require.Equal(t, CodePersistence, CodeOf(wrapped))
}

func TestErrorIs(t *testing.T) {
	err := Errorf(CodeInvalidArgument, OpFind, "values hold %d rows for %d keys", 1, 2)

	require.True(t, errors.Is(err, ErrInvalidArgument))
	require.False(t, errors.Is(err, ErrUnsupportedOp))
	// only sentinels match by code
	require.False(t, errors.Is(err, Errorf(CodeInvalidArgument, OpFind, "other")))

	require.True(t, errors.Is(ErrUnsupported(OpErase), ErrUnsupportedOp))
	require.True(t, IsUnsupported(ErrUnsupported(OpErase)))
	require.False(t, IsUnsupported(nil))
}

func TestErrorMessage(t *testing.T) {
	require.Equal(t, "storage: erase: unsupported operation", ErrUnsupported(OpErase).Error())
	require.Equal(t, "storage: invalid argument", ErrInvalidArgument.Error())

	cause := errors.New("no such file")
	err := Wrap(CodePersistence, OpSave, cause)
	require.Equal(t, "storage: save: persistence failure: no such file", err.Error())
	require.True(t, errors.Is(err, cause))
	require.Nil(t, Wrap(CodePersistence, OpSave, nil))
}

func TestCodeString(t *testing.T) {
	require.Equal(t, "capacity exceeded", CodeCapacityExceeded.String())
	require.Equal(t, "code(42)", Code(42).String())
}
