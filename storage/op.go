package storage

import "fmt"

// Op identifies one capability of the storage contract.
type Op int

const (
	OpUnknown Op = iota
	OpInit
	OpDevice
	OpDim
	OpFind
	OpFindMissing
	OpFindMissingScores
	OpFindExists
	OpFindScores
	OpFindExistsScores
	OpFindOrInsert
	OpFindOrInsertScores
	OpFindOrInsertExists
	OpFindOrInsertExistsScores
	OpContains
	OpAssign
	OpAssignValues
	OpAssignScores
	OpInsertOrAssign
	OpInsertAndEvict
	OpAccumOrAssign
	OpErase
	OpEraseIf
	OpClear
	OpExportBatch
	OpExportBatchIf
	OpEmpty
	OpSize
	OpCapacity
	OpReserve
	OpSave
	OpLoad

	numOps
)

var opNames = [...]string{
	OpUnknown:                  "unknown",
	OpInit:                     "init",
	OpDevice:                   "device",
	OpDim:                      "dim",
	OpFind:                     "find",
	OpFindMissing:              "find_missing",
	OpFindMissingScores:        "find_missing_scores",
	OpFindExists:               "find_exists",
	OpFindScores:               "find_scores",
	OpFindExistsScores:         "find_exists_scores",
	OpFindOrInsert:             "find_or_insert",
	OpFindOrInsertScores:       "find_or_insert_scores",
	OpFindOrInsertExists:       "find_or_insert_exists",
	OpFindOrInsertExistsScores: "find_or_insert_exists_scores",
	OpContains:                 "contains",
	OpAssign:                   "assign",
	OpAssignValues:             "assign_values",
	OpAssignScores:             "assign_scores",
	OpInsertOrAssign:           "insert_or_assign",
	OpInsertAndEvict:           "insert_and_evict",
	OpAccumOrAssign:            "accum_or_assign",
	OpErase:                    "erase",
	OpEraseIf:                  "erase_if",
	OpClear:                    "clear",
	OpExportBatch:              "export_batch",
	OpExportBatchIf:            "export_batch_if",
	OpEmpty:                    "empty",
	OpSize:                     "size",
	OpCapacity:                 "capacity",
	OpReserve:                  "reserve",
	OpSave:                     "save",
	OpLoad:                     "load",
}

func (op Op) String() string {
	if op >= 0 && op < numOps {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Ops returns every capability of the contract, OpUnknown excluded.
func Ops() []Op {
	ops := make([]Op, 0, numOps-1)
	for op := OpInit; op < numOps; op++ {
		ops = append(ops, op)
	}
	return ops
}

// ParseOp resolves a capability by its name.
func ParseOp(name string) (Op, error) {
	for op := OpInit; op < numOps; op++ {
		if opNames[op] == name {
			return op, nil
		}
	}
	return OpUnknown, Errorf(CodeInvalidArgument, OpUnknown, "unknown operation %q", name)
}

// OpSet is a set of capabilities, used by backends to declare what they
// implement.
type OpSet uint64

// NewOpSet returns a set holding ops.
func NewOpSet(ops ...Op) OpSet {
	var s OpSet
	for _, op := range ops {
		s |= 1 << uint(op)
	}
	return s
}

// AllOps is the set of every capability.
func AllOps() OpSet {
	return NewOpSet(Ops()...)
}

func (s OpSet) Has(op Op) bool {
	return op > OpUnknown && op < numOps && s&(1<<uint(op)) != 0
}

// Without returns a copy of the set with ops removed.
func (s OpSet) Without(ops ...Op) OpSet {
	return s &^ NewOpSet(ops...)
}

// Ops lists the capabilities in the set in declaration order.
func (s OpSet) Ops() []Op {
	ops := []Op{}
	for op := OpInit; op < numOps; op++ {
		if s.Has(op) {
			ops = append(ops, op)
		}
	}
	return ops
}
