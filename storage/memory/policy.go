package memory

import (
	"fmt"

	"github.com/evilsocket/meepo/storage"
)

// Policy decides the score an entry gets when it is written.
type Policy int

const (
	// Customized stores the scores provided by the caller. Entries
	// written without one keep their score, new entries get zero.
	Customized Policy = iota
	// LRU stamps every write with a logical clock, ignoring the caller.
	LRU
	// LFU adds the caller score (one when omitted) to the stored one on
	// every write.
	LFU
)

var policyNames = map[Policy]string{
	Customized: "customized",
	LRU:        "lru",
	LFU:        "lfu",
}

func (p Policy) String() string {
	if name, found := policyNames[p]; found {
		return name
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy resolves a policy name, the empty string is Customized.
func ParsePolicy(name string) (Policy, error) {
	if name == "" {
		return Customized, nil
	}
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}
	return Customized, storage.Errorf(storage.CodeInvalidArgument, storage.OpInit, "unknown score policy %q", name)
}

// scoreFor returns the score of a write. stored is the current score of
// the entry, meaningless if exists is false, provided is nil when the
// caller passed no scores.
func (t *Table[K, V, S]) scoreFor(exists bool, stored S, provided []S, i int) S {
	switch t.policy {
	case LRU:
		t.clock++
		return S(t.clock)
	case LFU:
		inc := S(1)
		if provided != nil {
			inc = provided[i]
		}
		if exists {
			return stored + inc
		}
		return inc
	}

	if provided != nil {
		return provided[i]
	} else if exists {
		return stored
	}
	return 0
}
