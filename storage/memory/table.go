package memory

import (
	"sync"

	"github.com/evilsocket/meepo/compute"
	"github.com/evilsocket/meepo/storage"
	"github.com/evilsocket/meepo/storage/checkpoint"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Name is the name the backend registers with.
const Name = "memory"

// Config is the schema of the configuration node handed to Init:
//
//	dim: 16
//	capacity: 1000000
//	score_policy: lru
//	checkpoint:
//	  path: /var/lib/meepo/users.ckpt
type Config struct {
	Dim         int    `yaml:"dim"`
	Capacity    int    `yaml:"capacity"`
	ScorePolicy string `yaml:"score_policy"`
}

type entry[K storage.Key, S storage.Score] struct {
	key   K
	score S
	// position of the entry in the victims heap.
	pos int
}

// Table is an in-memory hash table implementing every capability of
// storage.Storage. Entries live in a dense slot array, so exports follow
// slot order, and a min-heap on (score, key) picks eviction victims: the
// lowest score goes first, ties are broken by the lowest key.
//
// A single RWMutex guards the table: lookups, exports and Save share it,
// every mutation (InsertAndEvict and Reserve included) is exclusive.
type Table[K storage.Key, V storage.Value, S storage.Score] struct {
	lock   sync.RWMutex
	id     uuid.UUID
	log    *log.Entry
	cfg    storage.Config
	ready  bool
	dim    int
	limit  int
	policy Policy
	clock  uint64
	index  map[K]int
	slots  []entry[K, S]
	values []V
	// slot ids ordered as a min-heap, see victims.
	order []int
}

// New creates an uninitialized table.
func New[K storage.Key, V storage.Value, S storage.Score]() *Table[K, V, S] {
	id := uuid.New()
	return &Table[K, V, S]{
		id: id,
		log: log.WithFields(log.Fields{
			"backend": Name,
			"table":   id.String(),
			"dtype":   storage.DTypeOf[V]().String(),
		}),
	}
}

// ID returns the unique identifier of this table instance.
func (t *Table[K, V, S]) ID() uuid.UUID {
	return t.id
}

// Supports returns true for every capability.
func (t *Table[K, V, S]) Supports(op storage.Op) bool {
	return storage.AllOps().Has(op)
}

func (t *Table[K, V, S]) footprint(capacity int) uint64 {
	var (
		entrySize = uint64(8 + 8 + 8 + 8)
		rowSize   = uint64(t.dim * storage.DTypeOf[V]().Size())
	)
	return uint64(capacity) * (entrySize + rowSize)
}

// Init parses the configuration and allocates the table. It fails if the
// table wouldn't fit in the memory available to the compute backend.
func (t *Table[K, V, S]) Init(cfg storage.Config) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.ready {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpInit, "table %s already initialized", t.id)
	}

	conf := Config{}
	if err := cfg.Decode(&conf); err != nil {
		return storage.Wrap(storage.CodeInvalidArgument, storage.OpInit, err)
	} else if conf.Dim <= 0 || conf.Dim > checkpoint.MaxDim {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpInit, "dim must be in [1, %d], got %d", checkpoint.MaxDim, conf.Dim)
	} else if conf.Capacity <= 0 {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpInit, "capacity must be positive, got %d", conf.Capacity)
	}

	policy, err := ParsePolicy(conf.ScorePolicy)
	if err != nil {
		return err
	}

	t.dim = conf.Dim
	if need, have := t.footprint(conf.Capacity), compute.Space(); need > have {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpInit,
			"a table of %d x %d needs %s, only %s available", conf.Capacity, conf.Dim,
			humanize.Bytes(need), humanize.Bytes(have))
	}

	t.cfg = cfg
	t.limit = conf.Capacity
	t.policy = policy
	t.index = make(map[K]int, conf.Capacity)
	t.slots = make([]entry[K, S], 0, conf.Capacity)
	t.values = make([]V, 0, conf.Capacity*conf.Dim)
	t.order = make([]int, 0, conf.Capacity)
	t.ready = true

	t.log = t.log.WithField("dim", t.dim)
	t.log.WithFields(log.Fields{
		"capacity":  t.limit,
		"policy":    t.policy.String(),
		"footprint": humanize.Bytes(t.footprint(t.limit)),
	}).Info("table initialized")

	return nil
}

func (t *Table[K, V, S]) checkReady(op storage.Op) error {
	if !t.ready {
		return storage.Errorf(storage.CodeNotInitialized, op, "table %s", t.id)
	}
	return nil
}

// Device always reports storage.DeviceCPU.
func (t *Table[K, V, S]) Device() (storage.Device, error) {
	return storage.DeviceCPU, nil
}

func (t *Table[K, V, S]) Dim() (int, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if err := t.checkReady(storage.OpDim); err != nil {
		return 0, err
	}
	return t.dim, nil
}

func (t *Table[K, V, S]) Empty() (bool, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if err := t.checkReady(storage.OpEmpty); err != nil {
		return false, err
	}
	return len(t.slots) == 0, nil
}

func (t *Table[K, V, S]) Size() (int, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if err := t.checkReady(storage.OpSize); err != nil {
		return 0, err
	}
	return len(t.slots), nil
}

func (t *Table[K, V, S]) Capacity() (int, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if err := t.checkReady(storage.OpCapacity); err != nil {
		return 0, err
	}
	return t.limit, nil
}

// Reserve grows the capacity to newCapacity, it never shrinks it.
func (t *Table[K, V, S]) Reserve(newCapacity int) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if err := t.checkReady(storage.OpReserve); err != nil {
		return err
	} else if newCapacity < 0 {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpReserve, "negative capacity %d", newCapacity)
	} else if newCapacity <= t.limit {
		return nil
	} else if need, have := t.footprint(newCapacity), compute.Space(); need > have {
		return storage.Errorf(storage.CodeCapacityExceeded, storage.OpReserve,
			"%s needed, only %s available", humanize.Bytes(need), humanize.Bytes(have))
	}

	slots := make([]entry[K, S], len(t.slots), newCapacity)
	copy(slots, t.slots)
	values := make([]V, len(t.values), newCapacity*t.dim)
	copy(values, t.values)
	order := make([]int, len(t.order), newCapacity)
	copy(order, t.order)

	t.slots, t.values, t.order = slots, values, order

	t.log.WithFields(log.Fields{"from": t.limit, "to": newCapacity}).Info("capacity reserved")
	t.limit = newCapacity

	return nil
}

// Clear removes every entry, capacity and allocations are kept.
func (t *Table[K, V, S]) Clear() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if err := t.checkReady(storage.OpClear); err != nil {
		return err
	}

	removed := len(t.slots)
	t.reset()

	t.log.WithField("removed", removed).Info("table cleared")

	return nil
}

// compile time check
var _ storage.Storage[int64, float32, uint64] = (*Table[int64, float32, uint64])(nil)
