// Package snapshot implements a read-only storage backend serving the
// content of a checkpoint file, as written by the memory backend.
//
// Configuration:
//
//	checkpoint:
//	  path: /var/lib/meepo/users.ckpt
//
// The table is loaded by Init and replaced as a whole by Load, readers
// never block and always see a complete image. Every mutation reports
// storage.CodeUnsupported.
package snapshot

import (
	"sync/atomic"

	"github.com/evilsocket/meepo/storage"
	"github.com/evilsocket/meepo/storage/checkpoint"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Name is the name the backend registers with.
const Name = "snapshot"

var supported = storage.NewOpSet(
	storage.OpInit,
	storage.OpDevice,
	storage.OpDim,
	storage.OpLoad,
	storage.OpFind,
	storage.OpFindMissing,
	storage.OpFindMissingScores,
	storage.OpFindExists,
	storage.OpFindScores,
	storage.OpFindExistsScores,
	storage.OpContains,
	storage.OpExportBatch,
	storage.OpExportBatchIf,
	storage.OpEmpty,
	storage.OpSize,
	storage.OpCapacity,
)

// image is an immutable view of a checkpoint.
type image[K storage.Key, V storage.Value, S storage.Score] struct {
	// configuration given to Init, Load overrides it.
	cfg    storage.Config
	path   string
	dim    int
	keys   []K
	scores []S
	values storage.Values[V]
	index  map[K]int
}

// Snapshot is the read-only backend, mutations are inherited from
// storage.Unsupported.
type Snapshot[K storage.Key, V storage.Value, S storage.Score] struct {
	storage.Unsupported[K, V, S]

	id    uuid.UUID
	log   *log.Entry
	state atomic.Pointer[image[K, V, S]]
}

// New creates a snapshot with nothing loaded yet.
func New[K storage.Key, V storage.Value, S storage.Score]() *Snapshot[K, V, S] {
	id := uuid.New()
	return &Snapshot[K, V, S]{
		id: id,
		log: log.WithFields(log.Fields{
			"backend":  Name,
			"snapshot": id.String(),
			"dtype":    storage.DTypeOf[V]().String(),
		}),
	}
}

func (s *Snapshot[K, V, S]) ID() uuid.UUID {
	return s.id
}

func (s *Snapshot[K, V, S]) Supports(op storage.Op) bool {
	return supported.Has(op)
}

func open[K storage.Key, V storage.Value, S storage.Score](op storage.Op, initCfg, cfg storage.Config) (*image[K, V, S], error) {
	opts, err := checkpoint.OptionsFrom(initCfg, cfg)
	if err != nil {
		return nil, storage.Wrap(storage.CodeInvalidArgument, op, err)
	} else if opts.Merge {
		return nil, storage.Errorf(storage.CodeUnsupported, op, "snapshots can't be merged")
	}

	data, err := checkpoint.Load(opts.Path)
	if err != nil {
		return nil, storage.Wrap(storage.CodePersistence, op, err)
	}

	r, err := checkpoint.NewReader[K, V, S](data)
	if err != nil {
		return nil, storage.Wrap(storage.CodePersistence, op, err)
	}

	hdr := r.Header()
	img := &image[K, V, S]{
		cfg:    initCfg,
		path:   opts.Path,
		dim:    hdr.Dim,
		keys:   make([]K, hdr.Count),
		scores: make([]S, hdr.Count),
		values: storage.NewValues[V](hdr.Count, hdr.Dim),
		index:  make(map[K]int, hdr.Count),
	}

	for i := 0; i < hdr.Count; i++ {
		if img.keys[i], img.scores[i], err = r.Next(img.values.Row(i)); err != nil {
			return nil, storage.Wrap(storage.CodePersistence, op, err)
		} else if _, found := img.index[img.keys[i]]; found {
			return nil, storage.Errorf(storage.CodePersistence, op, "key %d is duplicated", img.keys[i])
		}
		img.index[img.keys[i]] = i
	}

	return img, nil
}

// Init loads the checkpoint at checkpoint.path.
func (s *Snapshot[K, V, S]) Init(cfg storage.Config) error {
	if s.state.Load() != nil {
		return storage.Errorf(storage.CodeInvalidArgument, storage.OpInit, "snapshot %s already initialized", s.id)
	}
	return s.swap(storage.OpInit, cfg, storage.Config{})
}

// Load replaces the served image with another checkpoint of the same
// dimension, readers keep using the previous one until it's complete.
// Without a checkpoint path in cfg the one given to Init is reloaded.
func (s *Snapshot[K, V, S]) Load(cfg storage.Config) error {
	prev := s.state.Load()
	if prev == nil {
		return storage.Errorf(storage.CodeNotInitialized, storage.OpLoad, "snapshot %s", s.id)
	}
	return s.swap(storage.OpLoad, prev.cfg, cfg)
}

func (s *Snapshot[K, V, S]) swap(op storage.Op, initCfg, cfg storage.Config) error {
	img, err := open[K, V, S](op, initCfg, cfg)
	if err != nil {
		return err
	}

	if op == storage.OpInit {
		if !s.state.CompareAndSwap(nil, img) {
			return storage.Errorf(storage.CodeInvalidArgument, op, "snapshot %s already initialized", s.id)
		}
	} else if prev := s.state.Load(); prev.dim != img.dim {
		return storage.Errorf(storage.CodeInvalidArgument, op, "checkpoint has dimension %d, snapshot has %d", img.dim, prev.dim)
	} else {
		s.state.Store(img)
	}

	s.log.WithFields(log.Fields{
		"path":    img.path,
		"dim":     img.dim,
		"entries": len(img.keys),
		"size":    humanize.Bytes(uint64(len(img.values.Data) * storage.DTypeOf[V]().Size())),
	}).Info("snapshot loaded")

	return nil
}

func (s *Snapshot[K, V, S]) current(op storage.Op) (*image[K, V, S], error) {
	img := s.state.Load()
	if img == nil {
		return nil, storage.Errorf(storage.CodeNotInitialized, op, "snapshot %s", s.id)
	}
	return img, nil
}

func (s *Snapshot[K, V, S]) Device() (storage.Device, error) {
	return storage.DeviceCPU, nil
}

func (s *Snapshot[K, V, S]) Dim() (int, error) {
	img, err := s.current(storage.OpDim)
	if err != nil {
		return 0, err
	}
	return img.dim, nil
}

func (s *Snapshot[K, V, S]) Empty() (bool, error) {
	img, err := s.current(storage.OpEmpty)
	if err != nil {
		return false, err
	}
	return len(img.keys) == 0, nil
}

func (s *Snapshot[K, V, S]) Size() (int, error) {
	img, err := s.current(storage.OpSize)
	if err != nil {
		return 0, err
	}
	return len(img.keys), nil
}

// Capacity is the size of the loaded image, snapshots never grow.
func (s *Snapshot[K, V, S]) Capacity() (int, error) {
	img, err := s.current(storage.OpCapacity)
	if err != nil {
		return 0, err
	}
	return len(img.keys), nil
}

// compile time check
var _ storage.Storage[int64, float32, uint64] = (*Snapshot[int64, float32, uint64])(nil)
