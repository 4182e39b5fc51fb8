package snapshot

import (
	"github.com/evilsocket/meepo/storage"

	"github.com/x448/float16"
)

func init() {
	register[int64, int64]()
	register[int64, int32]()
	register[int64, int8]()
	register[int64, float32]()
	register[int64, float16.Float16]()
	register[int64, storage.BFloat16]()

	register[uint64, int64]()
	register[uint64, int32]()
	register[uint64, int8]()
	register[uint64, float32]()
	register[uint64, float16.Float16]()
	register[uint64, storage.BFloat16]()
}

func register[K storage.Key, V storage.Value]() {
	storage.Register(Name, func() storage.Storage[K, V, uint64] {
		return New[K, V, uint64]()
	})
}
