/*
Package storage defines the contract every embedding table backend
satisfies, so that the engine driving it can swap an in-memory hash table
for an accelerator resident or a distributed one without code changes.

Every operation is a capability: backends embed Unsupported and override
the ones they implement, the others fail with a CodeUnsupported error
naming the operation. Operations are generic over the key, value element
and score types, and Register/New expose that matrix at runtime.

The package performs no locking, scheduling or retries: each backend is
its own concurrency domain and results are passed through unchanged.
*/
package storage

// Lifecycle covers configuration, placement and persistence.
type Lifecycle interface {
	// Init must precede every other operation, it parses the backend
	// configuration and allocates its resources.
	Init(cfg Config) error
	Device() (Device, error)
	// Dim reports the embedding dimension of the table.
	Dim() (int, error)
	// Save persists the full table state.
	Save(cfg Config) error
	// Load restores (or merges, backend permitting) a persisted state.
	Load(cfg Config) error
}

// Finder looks up batches of keys. All variants write the same rows for
// the keys they find and leave the rows of missing keys untouched, only
// the auxiliary reporting differs.
type Finder[K Key, V Value, S Score] interface {
	Find(keys []K, values Values[V]) error
	// FindMissing reports absent keys and their positions in keys,
	// returning how many were missed.
	FindMissing(keys []K, values Values[V], missedKeys []K, missedIndices []int) (int, error)
	FindMissingScores(keys []K, values Values[V], missedKeys []K, missedIndices []int, scores []S) (int, error)
	FindExists(keys []K, values Values[V], exists []bool) error
	FindScores(keys []K, values Values[V], scores []S) error
	FindExistsScores(keys []K, values Values[V], exists []bool, scores []S) error
	Contains(keys []K, exists []bool) error
}

// Inserter looks keys up, inserting the ones that are missing using the
// row (and score) the caller placed in their slot.
type Inserter[K Key, V Value, S Score] interface {
	FindOrInsert(keys []K, values Values[V]) error
	FindOrInsertScores(keys []K, values Values[V], scores []S) error
	// FindOrInsertExists reports which keys were present before the call.
	FindOrInsertExists(keys []K, values Values[V], exists []bool) error
	FindOrInsertExistsScores(keys []K, values Values[V], exists []bool, scores []S) error
}

// Writer mutates rows and scores.
type Writer[K Key, V Value, S Score] interface {
	// Assign overwrites value and score of present keys, absent ones
	// are skipped.
	Assign(keys []K, values Values[V], scores []S) error
	AssignValues(keys []K, values Values[V]) error
	AssignScores(keys []K, scores []S) error
	// InsertOrAssign is an unconditional upsert bound by the capacity.
	InsertOrAssign(keys []K, values Values[V], scores []S) error
	// InsertAndEvict upserts, and when the table is full hands the
	// lowest scored victims back through evicted instead of dropping
	// them. It returns the number of victims.
	InsertAndEvict(keys []K, values Values[V], scores []S, evicted Batch[K, V, S]) (int, error)
	// AccumOrAssign adds rows to the stored ones where accum is true
	// and replaces them otherwise. Absent keys are assigned.
	AccumOrAssign(keys []K, values Values[V], accum []bool, scores []S) error
}

// Eraser removes entries.
type Eraser[K Key, S Score] interface {
	// Erase removes keys, absent ones are ignored.
	Erase(keys []K) error
	// EraseIf removes every entry selected by the backend filter rule
	// for pattern and threshold and returns how many were removed.
	EraseIf(pattern K, threshold S) (int, error)
	// Clear removes all entries, the capacity is unchanged.
	Clear() error
}

// Exporter dumps the table in pages. Callers start at offset 0 and
// advance by the returned count until it is smaller than maxBatch.
type Exporter[K Key, V Value, S Score] interface {
	ExportBatch(maxBatch, offset int, out Batch[K, V, S]) (int, error)
	ExportBatchIf(pattern K, threshold S, maxBatch, offset int, out Batch[K, V, S]) (int, error)
}

// Sizer introspects and pre-allocates occupancy.
type Sizer interface {
	Empty() (bool, error)
	Size() (int, error)
	Capacity() (int, error)
	// Reserve is an allocation hint for at least newCapacity entries.
	Reserve(newCapacity int) error
}

// Storage is the full capability facade.
type Storage[K Key, V Value, S Score] interface {
	Lifecycle
	Finder[K, V, S]
	Inserter[K, V, S]
	Writer[K, V, S]
	Eraser[K, S]
	Exporter[K, V, S]
	Sizer
	// Supports returns true if the backend implements op.
	Supports(op Op) bool
}
