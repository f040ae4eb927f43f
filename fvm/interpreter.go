package fvm

import (
	"math"

	"github.com/onflow/contract-client/fvm/assembly"
	"github.com/onflow/contract-client/fvm/errors"
	"github.com/onflow/contract-client/model/flow"
)

// interpreter is a stack machine over field elements. The top of the stack
// is the last element of the slice.
//
// Words are moved between the stack and storage with element 3 on top: the
// first popped element becomes element 3 of the word.
type interpreter struct {
	ctx    Context
	env    *environment
	stack  []flow.Felt
	cycles uint64
}

func newInterpreter(ctx Context, env *environment) *interpreter {
	return &interpreter{
		ctx: ctx,
		env: env,
	}
}

func (in *interpreter) push(f flow.Felt) error {
	if in.ctx.MaxStackDepth > 0 && len(in.stack) >= in.ctx.MaxStackDepth {
		return errors.NewInvalidArgumentErrorf("stack exceeds %d elements", in.ctx.MaxStackDepth)
	}
	in.stack = append(in.stack, f)
	return nil
}

func (in *interpreter) pushWord(w flow.Word) error {
	for _, f := range w {
		if err := in.push(f); err != nil {
			return err
		}
	}
	return nil
}

func (in *interpreter) require(op assembly.OpCode, n int) error {
	if len(in.stack) < n {
		return errors.NewStackUnderflowError(op.String(), n, len(in.stack))
	}
	return nil
}

// stackIndex returns the depth addressed by inst, which must lie within the
// current stack.
func (in *interpreter) stackIndex(inst assembly.Instruction) (int, error) {
	if inst.Imm >= uint64(len(in.stack)) {
		need := uint64(len(in.stack)) + 1
		if inst.Imm < math.MaxInt32 {
			need = inst.Imm + 1
		}
		return 0, errors.NewStackUnderflowError(inst.Op.String(), int(need), len(in.stack))
	}
	return int(inst.Imm), nil
}

func (in *interpreter) pop() flow.Felt {
	top := in.stack[len(in.stack)-1]
	in.stack = in.stack[:len(in.stack)-1]
	return top
}

func (in *interpreter) popWord() flow.Word {
	var w flow.Word
	for i := flow.WordSize - 1; i >= 0; i-- {
		w[i] = in.pop()
	}
	return w
}

// peek returns the element at depth i, 0 being the top.
func (in *interpreter) peek(i int) flow.Felt {
	return in.stack[len(in.stack)-1-i]
}

func (in *interpreter) run(body []assembly.Instruction, inCall bool) error {
	for _, inst := range body {
		in.cycles++
		if in.cycles > in.ctx.ComputationLimit {
			return errors.NewComputationLimitExceededError(in.ctx.ComputationLimit)
		}
		if err := in.step(inst, inCall); err != nil {
			return err
		}
	}
	return nil
}

func (in *interpreter) step(inst assembly.Instruction, inCall bool) error {
	switch inst.Op {
	case assembly.OpPush:
		return in.push(flow.Felt(inst.Imm))

	case assembly.OpDrop:
		if err := in.require(inst.Op, 1); err != nil {
			return err
		}
		in.pop()

	case assembly.OpDup:
		i, err := in.stackIndex(inst)
		if err != nil {
			return err
		}
		return in.push(in.peek(i))

	case assembly.OpSwap:
		i, err := in.stackIndex(inst)
		if err != nil {
			return err
		}
		top, other := len(in.stack)-1, len(in.stack)-1-i
		in.stack[top], in.stack[other] = in.stack[other], in.stack[top]

	case assembly.OpMovUp:
		i, err := in.stackIndex(inst)
		if err != nil {
			return err
		}
		idx := len(in.stack) - 1 - i
		f := in.stack[idx]
		in.stack = append(in.stack[:idx], in.stack[idx+1:]...)
		in.stack = append(in.stack, f)

	case assembly.OpAdd, assembly.OpSub, assembly.OpMul, assembly.OpEq:
		if err := in.require(inst.Op, 2); err != nil {
			return err
		}
		b, a := in.pop(), in.pop()
		return in.push(binaryOp(inst.Op, a, b))

	case assembly.OpNeg:
		if err := in.require(inst.Op, 1); err != nil {
			return err
		}
		return in.push(in.pop().Neg())

	case assembly.OpAssert:
		if err := in.require(inst.Op, 1); err != nil {
			return err
		}
		if v := in.pop(); v != 1 {
			return errors.NewAssertionFailedError(inst.Line, v)
		}

	case assembly.OpPadW:
		return in.pushWord(flow.EmptyWord)

	case assembly.OpAdvMapVal:
		if err := in.require(inst.Op, 1); err != nil {
			return err
		}
		key := flow.PrepareFeltVec(in.pop().Uint64())
		value, err := in.env.witnessValue(key)
		if err != nil {
			return err
		}
		if len(value) == 0 {
			return errors.NewInvalidWitnessErrorf(key, "value is empty")
		}
		return in.push(value[0])

	case assembly.OpAdvPushW:
		if err := in.require(inst.Op, flow.WordSize); err != nil {
			return err
		}
		key := in.popWord()
		value, err := in.env.witnessValue(key)
		if err != nil {
			return err
		}
		if len(value) < flow.WordSize {
			return errors.NewInvalidWitnessErrorf(key, "expected at least %d elements, got %d", flow.WordSize, len(value))
		}
		var w flow.Word
		copy(w[:], value)
		return in.pushWord(w)

	case assembly.OpGetItem:
		if !inCall {
			return errors.NewStorageAccessError(inst.Op.String())
		}
		w, err := in.env.getItem(int(inst.Imm))
		if err != nil {
			return err
		}
		return in.pushWord(w)

	case assembly.OpSetItem:
		if !inCall {
			return errors.NewStorageAccessError(inst.Op.String())
		}
		if err := in.require(inst.Op, flow.WordSize); err != nil {
			return err
		}
		return in.env.setItem(int(inst.Imm), in.popWord())

	case assembly.OpCall:
		proc, err := in.env.procedure(inst.Target)
		if err != nil {
			return err
		}
		return in.run(proc.Body, true)

	default:
		return errors.NewInvalidScriptErrorf("unknown opcode %d", uint8(inst.Op))
	}
	return nil
}

func binaryOp(op assembly.OpCode, a, b flow.Felt) flow.Felt {
	switch op {
	case assembly.OpAdd:
		return a.Add(b)
	case assembly.OpSub:
		return a.Sub(b)
	case assembly.OpMul:
		return a.Mul(b)
	default:
		if a == b {
			return 1
		}
		return 0
	}
}
