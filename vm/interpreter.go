package vm

import "github.com/alcuadrado/tiny-evm/log"

// table is the interpreter's single dispatch table. It never changes
// across runs, so it is built once at package init rather than per call.
var table = newJumpTable()

var logger = log.Default().Module("vm")

// Run executes bytecode for a single, non-recursive call and returns its
// result. It never mutates anything outside the State it creates: there is
// no shared world state, no gas accounting, and no notion of a sub-call.
//
// A host that wants cancellation or a step limit can wrap this loop itself
// (e.g. checking a context.Context between steps); this core stays
// synchronous so that embedding it doesn't impose a concurrency model on
// the caller.
func Run(code []byte, call *CallContext, block *BlockContext) ExecutionResult {
	bc := NewBytecode(code)
	state := newState()

	for {
		if state.PC >= uint64(bc.Size()) {
			return ExecutionResult{ReturnData: state.ReturnData}
		}

		op := bc.OpcodeAt(state.PC)
		state.PC++

		handler := table[op]
		halted, err := handler(state, bc, call, block)
		if err != nil {
			logger.Debug("step failed", "pc", state.PC-1, "op", op, "err", err)
			return ExecutionResult{ReturnData: state.ReturnData, Err: err}
		}
		if halted {
			return ExecutionResult{ReturnData: state.ReturnData}
		}
	}
}
