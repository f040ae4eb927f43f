package assembly

import (
	"encoding/binary"
	"fmt"

	"github.com/onflow/contract-client/model/flow"
)

// OpCode identifies a VM instruction.
type OpCode uint8

const (
	OpPush OpCode = iota + 1
	OpDrop
	OpDup
	OpSwap
	OpMovUp
	OpAdd
	OpSub
	OpMul
	OpNeg
	OpEq
	OpAssert
	OpPadW
	OpAdvMapVal
	OpAdvPushW
	OpGetItem
	OpSetItem
	OpCall
)

var opNames = map[OpCode]string{
	OpPush:      "push",
	OpDrop:      "drop",
	OpDup:       "dup",
	OpSwap:      "swap",
	OpMovUp:     "movup",
	OpAdd:       "add",
	OpSub:       "sub",
	OpMul:       "mul",
	OpNeg:       "neg",
	OpEq:        "eq",
	OpAssert:    "assert",
	OpPadW:      "padw",
	OpAdvMapVal: "adv.mapval",
	OpAdvPushW:  "adv.pushw",
	OpGetItem:   "get_item",
	OpSetItem:   "set_item",
	OpCall:      "call",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Instruction is a single lowered VM instruction.
type Instruction struct {
	Op OpCode
	// Imm is the pushed value, the stack index or the slot index.
	Imm uint64 `cbor:",omitempty"`
	// Target is the digest of the called procedure for OpCall.
	Target flow.Digest
	// Line is only kept in debug mode and is not part of any digest.
	Line int `cbor:",omitempty"`
}

func (i Instruction) String() string {
	switch i.Op {
	case OpPush, OpDup, OpSwap, OpMovUp, OpGetItem, OpSetItem:
		return fmt.Sprintf("%s.%d", i.Op, i.Imm)
	case OpCall:
		return fmt.Sprintf("%s.%s", i.Op, i.Target)
	default:
		return i.Op.String()
	}
}

// validate checks an instruction decoded from bytes against the bounds the
// assembler enforces on source.
func (i Instruction) validate() error {
	switch i.Op {
	case OpPush:
		if i.Imm >= flow.Modulus {
			return fmt.Errorf("%d is not a valid field element", i.Imm)
		}
	case OpDup, OpSwap, OpMovUp:
		if i.Imm > maxStackIndex {
			return fmt.Errorf("stack index %d exceeds %d", i.Imm, maxStackIndex)
		}
	case OpGetItem, OpSetItem:
		if i.Imm > maxSlotIndex {
			return fmt.Errorf("slot index %d exceeds %d", i.Imm, maxSlotIndex)
		}
	case OpCall:
	default:
		if _, ok := opNames[i.Op]; !ok {
			return fmt.Errorf("unknown opcode %d", uint8(i.Op))
		}
		if i.Imm != 0 {
			return fmt.Errorf("%s takes no immediate", i.Op)
		}
	}
	return nil
}

func validateBody(body []Instruction) error {
	for n, inst := range body {
		if err := inst.validate(); err != nil {
			return fmt.Errorf("instruction %d: %w", n, err)
		}
	}
	return nil
}

// hashInput serializes the semantic part of a body for digest computation.
func hashInput(body []Instruction) []byte {
	b := make([]byte, 0, len(body)*9)
	for _, inst := range body {
		b = append(b, byte(inst.Op))
		b = binary.LittleEndian.AppendUint64(b, inst.Imm)
		if inst.Op == OpCall {
			b = append(b, inst.Target[:]...)
		}
	}
	return b
}
