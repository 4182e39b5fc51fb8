package storage

import "sync/atomic"

var conformance atomic.Bool

// SetConformanceMode makes every Unsupported stub panic with its error
// instead of returning it. Meant for backend conformance runs, where a
// missing capability is a bug that should abort loudly.
func SetConformanceMode(enabled bool) {
	conformance.Store(enabled)
}

// ConformanceMode returns true if stubs panic.
func ConformanceMode() bool {
	return conformance.Load()
}

func unsupported(op Op) error {
	err := ErrUnsupported(op)
	if conformance.Load() {
		panic(err)
	}
	return err
}

// Unsupported implements every capability of Storage by failing with a
// CodeUnsupported error naming it. Backends embed it and override what
// they implement.
type Unsupported[K Key, V Value, S Score] struct{}

func (Unsupported[K, V, S]) Supports(op Op) bool { return false }

func (Unsupported[K, V, S]) Init(cfg Config) error { return unsupported(OpInit) }
func (Unsupported[K, V, S]) Device() (Device, error) { return DeviceUnknown, unsupported(OpDevice) }
func (Unsupported[K, V, S]) Dim() (int, error) { return 0, unsupported(OpDim) }
func (Unsupported[K, V, S]) Save(cfg Config) error { return unsupported(OpSave) }
func (Unsupported[K, V, S]) Load(cfg Config) error { return unsupported(OpLoad) }

func (Unsupported[K, V, S]) Find(keys []K, values Values[V]) error {
	return unsupported(OpFind)
}

func (Unsupported[K, V, S]) FindMissing(keys []K, values Values[V], missedKeys []K, missedIndices []int) (int, error) {
	return 0, unsupported(OpFindMissing)
}

func (Unsupported[K, V, S]) FindMissingScores(keys []K, values Values[V], missedKeys []K, missedIndices []int, scores []S) (int, error) {
	return 0, unsupported(OpFindMissingScores)
}

func (Unsupported[K, V, S]) FindExists(keys []K, values Values[V], exists []bool) error {
	return unsupported(OpFindExists)
}

func (Unsupported[K, V, S]) FindScores(keys []K, values Values[V], scores []S) error {
	return unsupported(OpFindScores)
}

func (Unsupported[K, V, S]) FindExistsScores(keys []K, values Values[V], exists []bool, scores []S) error {
	return unsupported(OpFindExistsScores)
}

func (Unsupported[K, V, S]) Contains(keys []K, exists []bool) error {
	return unsupported(OpContains)
}

func (Unsupported[K, V, S]) FindOrInsert(keys []K, values Values[V]) error {
	return unsupported(OpFindOrInsert)
}

func (Unsupported[K, V, S]) FindOrInsertScores(keys []K, values Values[V], scores []S) error {
	return unsupported(OpFindOrInsertScores)
}

func (Unsupported[K, V, S]) FindOrInsertExists(keys []K, values Values[V], exists []bool) error {
	return unsupported(OpFindOrInsertExists)
}

func (Unsupported[K, V, S]) FindOrInsertExistsScores(keys []K, values Values[V], exists []bool, scores []S) error {
	return unsupported(OpFindOrInsertExistsScores)
}

func (Unsupported[K, V, S]) Assign(keys []K, values Values[V], scores []S) error {
	return unsupported(OpAssign)
}

func (Unsupported[K, V, S]) AssignValues(keys []K, values Values[V]) error {
	return unsupported(OpAssignValues)
}

func (Unsupported[K, V, S]) AssignScores(keys []K, scores []S) error {
	return unsupported(OpAssignScores)
}

func (Unsupported[K, V, S]) InsertOrAssign(keys []K, values Values[V], scores []S) error {
	return unsupported(OpInsertOrAssign)
}

func (Unsupported[K, V, S]) InsertAndEvict(keys []K, values Values[V], scores []S, evicted Batch[K, V, S]) (int, error) {
	return 0, unsupported(OpInsertAndEvict)
}

func (Unsupported[K, V, S]) AccumOrAssign(keys []K, values Values[V], accum []bool, scores []S) error {
	return unsupported(OpAccumOrAssign)
}

func (Unsupported[K, V, S]) Erase(keys []K) error {
	return unsupported(OpErase)
}

func (Unsupported[K, V, S]) EraseIf(pattern K, threshold S) (int, error) {
	return 0, unsupported(OpEraseIf)
}

func (Unsupported[K, V, S]) Clear() error {
	return unsupported(OpClear)
}

func (Unsupported[K, V, S]) ExportBatch(maxBatch, offset int, out Batch[K, V, S]) (int, error) {
	return 0, unsupported(OpExportBatch)
}

func (Unsupported[K, V, S]) ExportBatchIf(pattern K, threshold S, maxBatch, offset int, out Batch[K, V, S]) (int, error) {
	return 0, unsupported(OpExportBatchIf)
}

func (Unsupported[K, V, S]) Empty() (bool, error) { return false, unsupported(OpEmpty) }
func (Unsupported[K, V, S]) Size() (int, error) { return 0, unsupported(OpSize) }
func (Unsupported[K, V, S]) Capacity() (int, error) { return 0, unsupported(OpCapacity) }
func (Unsupported[K, V, S]) Reserve(newCapacity int) error { return unsupported(OpReserve) }

// compile time check: the stub alone satisfies the facade.
var _ Storage[int64, float32, uint64] = Unsupported[int64, float32, uint64]{}
