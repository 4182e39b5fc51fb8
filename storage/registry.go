package storage

import (
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Factory creates a fresh, uninitialized backend instance.
type Factory[K Key, V Value, S Score] func() Storage[K, V, S]

// Combination is one cell of the type matrix a backend registered.
type Combination struct {
	Backend string
	Key     DType
	Value   DType
	Score   DType
}

func (c Combination) String() string {
	return fmt.Sprintf("%s<%s,%s,%s>", c.Backend, c.Key, c.Value, c.Score)
}

var (
	registryLock sync.RWMutex
	registry     = make(map[Combination]interface{})
)

func combinationOf[K Key, V Value, S Score](name string) Combination {
	return Combination{
		Backend: name,
		Key:     DTypeOf[K](),
		Value:   DTypeOf[V](),
		Score:   DTypeOf[S](),
	}
}

// Register makes a backend available for one (key, value, score)
// combination. Backends call it from init once per combination they
// support, registering the same cell twice panics.
func Register[K Key, V Value, S Score](name string, factory Factory[K, V, S]) {
	if factory == nil {
		panic("storage: Register factory is nil")
	}

	comb := combinationOf[K, V, S](name)

	registryLock.Lock()
	defer registryLock.Unlock()

	if _, found := registry[comb]; found {
		panic("storage: Register called twice for " + comb.String())
	}
	registry[comb] = factory

	log.WithField("combination", comb.String()).Debug("storage backend registered")
}

// New creates an uninitialized instance of the named backend for the
// given types.
func New[K Key, V Value, S Score](name string) (Storage[K, V, S], error) {
	comb := combinationOf[K, V, S](name)

	registryLock.RLock()
	entry, found := registry[comb]
	registryLock.RUnlock()

	if !found {
		return nil, Errorf(CodeNotFound, OpUnknown, "no backend registered for %s", comb)
	}
	return entry.(Factory[K, V, S])(), nil
}

// Open creates the named backend and initializes it with cfg.
func Open[K Key, V Value, S Score](name string, cfg Config) (Storage[K, V, S], error) {
	s, err := New[K, V, S](name)
	if err != nil {
		return nil, err
	} else if err = s.Init(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Combinations lists every registered cell of the matrix, sorted.
func Combinations() []Combination {
	registryLock.RLock()
	defer registryLock.RUnlock()

	list := make([]Combination, 0, len(registry))
	for comb := range registry {
		list = append(list, comb)
	}

	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Backend != b.Backend {
			return a.Backend < b.Backend
		} else if a.Key != b.Key {
			return a.Key < b.Key
		} else if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Score < b.Score
	})

	return list
}

// Backends returns the names of the registered backends.
func Backends() []string {
	seen := map[string]bool{}
	names := []string{}
	for _, comb := range Combinations() {
		if !seen[comb.Backend] {
			seen[comb.Backend] = true
			names = append(names, comb.Backend)
		}
	}
	return names
}
