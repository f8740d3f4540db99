package vm

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// executionFunc is the behavior of a single opcode. It mutates state in
// place, reading bc/call/block as needed, and reports whether execution
// should stop (halted) alongside any error. The dispatch loop stops on a
// non-nil error regardless of halted.
type executionFunc func(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (halted bool, err error)

// --- 0x00s: stop and arithmetic ---

func opStop(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	return true, nil
}

func opAdd(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	y.Add(&x, y)
	return false, nil
}

func opMul(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	y.Mul(&x, y)
	return false, nil
}

func opSub(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	y.Sub(&x, y)
	return false, nil
}

func opDiv(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	y.Div(&x, y)
	return false, nil
}

func opSdiv(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	y.SDiv(&x, y)
	return false, nil
}

func opMod(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	y.Mod(&x, y)
	return false, nil
}

func opSmod(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	y.SMod(&x, y)
	return false, nil
}

// opAddmod and opMulmod rely on uint256.Int's AddMod/MulMod, which carry a
// wider intermediate internally so a+b or a*b never truncates mod 2^256
// before the reduction, matching the spec's 512-bit-intermediate
// requirement without a hand-rolled wide integer type.
func opAddmod(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	m, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	var result uint256.Int
	result.AddMod(&x, &y, &m)
	return false, state.Stack.push(&result)
}

func opMulmod(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	m, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	var result uint256.Int
	result.MulMod(&x, &y, &m)
	return false, state.Stack.push(&result)
}

func opExp(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	base, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	exponent, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	exponent.Exp(&base, exponent)
	return false, nil
}

func opSignExtend(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	back, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	num, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	num.ExtendSign(num, &back)
	return false, nil
}

// --- 0x10s: comparison and bitwise ---

func opLt(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	setBool(y, x.Lt(y))
	return false, nil
}

func opGt(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	setBool(y, x.Gt(y))
	return false, nil
}

func opSlt(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	setBool(y, CompareSigned(ToSigned(&x), ToSigned(y)) < 0)
	return false, nil
}

func opSgt(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	setBool(y, CompareSigned(ToSigned(&x), ToSigned(y)) > 0)
	return false, nil
}

func opEq(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	setBool(y, x.Eq(y))
	return false, nil
}

func opIszero(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	setBool(x, x.IsZero())
	return false, nil
}

func opAnd(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	y.And(&x, y)
	return false, nil
}

func opOr(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	y.Or(&x, y)
	return false, nil
}

// opXor computes a genuine bitwise exclusive-or. (A prior rendition of this
// handler folded XOR into the OR case by mistake; the two must stay
// distinct opcodes.)
func opXor(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	y, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	y.Xor(&x, y)
	return false, nil
}

func opNot(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	x, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	x.Not(x)
	return false, nil
}

func opByte(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	th, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	val, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	val.Byte(&th)
	return false, nil
}

func opShl(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	shift, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	value, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	if shiftExceeds255(&shift) {
		value.Clear()
	} else {
		value.Lsh(value, uint(shift.Uint64()))
	}
	return false, nil
}

func opShr(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	shift, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	value, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	if shiftExceeds255(&shift) {
		value.Clear()
	} else {
		value.Rsh(value, uint(shift.Uint64()))
	}
	return false, nil
}

// opSar computes an arithmetic right shift via the sign/magnitude bridge:
// for a negative value the magnitude is shifted as ((|x|-1) >> s) + 1 and
// re-complemented, so the result stays correctly rounded toward negative
// infinity instead of toward zero.
func opSar(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	shift, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	value, err := state.Stack.peek(0)
	if err != nil {
		return false, err
	}
	signed := ToSigned(value)
	if shiftExceeds255(&shift) {
		if signed.Sign == Minus {
			value.SetAllOne()
		} else {
			value.Clear()
		}
		return false, nil
	}
	s := uint(shift.Uint64())
	if signed.Sign != Minus {
		value.Rsh(value, s)
		return false, nil
	}
	var one uint256.Int
	one.SetOne()
	mag := signed.Magnitude
	mag.Sub(&mag, &one)
	mag.Rsh(&mag, s)
	mag.Add(&mag, &one)
	result := FromSigned(SignedInt{Sign: Minus, Magnitude: mag})
	value.Set(&result)
	return false, nil
}

func shiftExceeds255(shift *uint256.Int) bool {
	return !shift.IsUint64() || shift.Uint64() >= 256
}

func setBool(z *uint256.Int, v bool) {
	if v {
		z.SetOne()
	} else {
		z.Clear()
	}
}

// --- 0x20: hashing ---

// opSha3 hashes length bytes of memory starting at offset. If offset is at
// or past the current memory size, the hash is taken over length zero bytes
// without growing memory at all; in that case a length at or past
// memoryLimit fails OutOfGas up front rather than allocating it. Otherwise
// the read grows memory as usual.
func opSha3(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	offsetW, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	lengthW, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	offset, length, err := ensureOffsetAndLengthFitUint64(&offsetW, &lengthW)
	if err != nil {
		return false, err
	}

	var data []byte
	if offset >= state.Memory.Size() {
		if length >= memoryLimit {
			return false, ErrOutOfGas
		}
		data = make([]byte, length)
	} else {
		data, err = state.Memory.Read(offset, length)
		if err != nil {
			return false, err
		}
	}
	hash := crypto.Keccak256(data)
	var v uint256.Int
	v.SetBytes(hash)
	return false, state.Stack.push(&v)
}

// --- 0x30s: environment ---

func addressToWord(addr [20]byte) uint256.Int {
	var v uint256.Int
	v.SetBytes(addr[:])
	return v
}

func opAddress(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	v := addressToWord(call.Address)
	return false, state.Stack.push(&v)
}

func opOrigin(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	v := addressToWord(call.Origin)
	return false, state.Stack.push(&v)
}

func opCaller(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	v := addressToWord(call.Caller)
	return false, state.Stack.push(&v)
}

func opCallvalue(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	v := call.Value
	return false, state.Stack.push(&v)
}

// offsetOrBeyond clamps u into [0, dataLen]: a value too large to be a real
// index is treated as pointing past the end of the data, which reads as
// all zero the same way an in-range-but-past-the-real-bytes offset does.
func offsetOrBeyond(u *uint256.Int, dataLen int) int {
	if !u.IsUint64() {
		return dataLen
	}
	v := u.Uint64()
	if v > uint64(dataLen) {
		return dataLen
	}
	return int(v)
}

func opCalldataLoad(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	offsetW, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	start := offsetOrBeyond(&offsetW, len(call.CallData))
	buf := make([]byte, 32)
	end := start + 32
	if end > len(call.CallData) {
		end = len(call.CallData)
	}
	if end > start {
		copy(buf, call.CallData[start:end])
	}
	var v uint256.Int
	v.SetBytes(buf)
	return false, state.Stack.push(&v)
}

func opCalldatasize(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	var v uint256.Int
	v.SetUint64(uint64(len(call.CallData)))
	return false, state.Stack.push(&v)
}

// copyToMemory backs CALLDATACOPY, CODECOPY and RETURNDATACOPY: it writes
// length bytes of source starting at srcOffset into memory at destOffset,
// zero-padding whatever runs past the end of source.
func copyToMemory(state *State, destOffsetW, srcOffsetW, lengthW uint256.Int, source []byte) (bool, error) {
	destOffset, length, err := ensureOffsetAndLengthFitUint64(&destOffsetW, &lengthW)
	if err != nil {
		return false, err
	}
	start := offsetOrBeyond(&srcOffsetW, len(source))
	avail := len(source) - start
	if avail < 0 {
		avail = 0
	}
	if uint64(avail) > length {
		avail = int(length)
	}
	data := source[start : start+avail]
	if err := state.Memory.Write(destOffset, length, data); err != nil {
		return false, err
	}
	return false, nil
}

func opCalldatacopy(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	destOffset, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	srcOffset, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	length, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	return copyToMemory(state, destOffset, srcOffset, length, call.CallData)
}

func opCodesize(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	var v uint256.Int
	v.SetUint64(uint64(bc.Size()))
	return false, state.Stack.push(&v)
}

func opCodecopy(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	destOffset, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	srcOffset, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	length, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	return copyToMemory(state, destOffset, srcOffset, length, bc.Bytes())
}

func opGasprice(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	v := call.GasPrice
	return false, state.Stack.push(&v)
}

func opReturndatasize(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	var v uint256.Int
	v.SetUint64(uint64(len(state.LastCallReturnData)))
	return false, state.Stack.push(&v)
}

func opReturndatacopy(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	destOffset, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	srcOffset, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	length, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	return copyToMemory(state, destOffset, srcOffset, length, state.LastCallReturnData)
}

// --- 0x40s: block ---

func opCoinbase(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	v := addressToWord(block.Coinbase)
	return false, state.Stack.push(&v)
}

func opTimestamp(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	var v uint256.Int
	v.SetUint64(block.Timestamp)
	return false, state.Stack.push(&v)
}

func opNumber(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	var v uint256.Int
	v.SetUint64(block.Number)
	return false, state.Stack.push(&v)
}

func opDifficulty(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	var v uint256.Int
	v.SetUint64(uint64(block.Difficulty))
	return false, state.Stack.push(&v)
}

func opGaslimit(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	var v uint256.Int
	v.SetUint64(block.GasLimit)
	return false, state.Stack.push(&v)
}

func opChainid(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	var v uint256.Int
	v.SetUint64(block.ChainID)
	return false, state.Stack.push(&v)
}

// --- 0x50s: stack, memory, storage, flow ---

func opPop(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	_, err := state.Stack.pop()
	return false, err
}

func opMload(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	offsetW, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	offset, err := ensureFitsUint64(&offsetW)
	if err != nil {
		return false, err
	}
	data, err := state.Memory.Read(offset, 32)
	if err != nil {
		return false, err
	}
	var v uint256.Int
	v.SetBytes(data)
	return false, state.Stack.push(&v)
}

func opMstore(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	offsetW, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	value, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	offset, err := ensureFitsUint64(&offsetW)
	if err != nil {
		return false, err
	}
	buf := value.Bytes32()
	return false, state.Memory.Write(offset, 32, buf[:])
}

func opMstore8(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	offsetW, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	value, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	offset, err := ensureFitsUint64(&offsetW)
	if err != nil {
		return false, err
	}
	buf := value.Bytes32()
	return false, state.Memory.Write(offset, 1, buf[31:32])
}

func opSload(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	key, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	v := state.Storage.Load(key)
	return false, state.Stack.push(&v)
}

func opSstore(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	key, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	value, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	state.Storage.Store(key, value)
	return false, nil
}

func opJump(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	dest, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	if !dest.IsUint64() || !bc.IsJumpDest(dest.Uint64()) {
		return false, ErrInvalidJump
	}
	state.PC = dest.Uint64()
	return false, nil
}

func opJumpi(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	dest, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	cond, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	if cond.IsZero() {
		return false, nil
	}
	if !dest.IsUint64() || !bc.IsJumpDest(dest.Uint64()) {
		return false, ErrInvalidJump
	}
	state.PC = dest.Uint64()
	return false, nil
}

func opPC(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	var v uint256.Int
	v.SetUint64(state.PC - 1)
	return false, state.Stack.push(&v)
}

func opMsize(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	var v uint256.Int
	v.SetUint64(state.Memory.Size())
	return false, state.Stack.push(&v)
}

func opJumpdest(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	return false, nil
}

// --- 0x60s-0x9Fs: PUSH, DUP, SWAP ---

func makePush(n int) executionFunc {
	return func(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
		v := bc.ReadPushValue(int(state.PC), n)
		state.PC += uint64(n)
		return false, state.Stack.push(&v)
	}
}

func makeDup(n int) executionFunc {
	return func(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
		v, err := state.Stack.read(n - 1)
		if err != nil {
			return false, err
		}
		return false, state.Stack.push(&v)
	}
}

func makeSwap(n int) executionFunc {
	return func(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
		return false, state.Stack.swapWithTop(n)
	}
}

// --- 0xF0s: calls and halts ---

func opReturn(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	offsetW, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	lengthW, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	data, err := readMemoryRange(state, offsetW, lengthW)
	if err != nil {
		return false, err
	}
	state.ReturnData = data
	return true, nil
}

func opRevert(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	offsetW, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	lengthW, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	data, err := readMemoryRange(state, offsetW, lengthW)
	if err != nil {
		return false, err
	}
	state.ReturnData = data
	return false, ErrExecutionReverted
}

func readMemoryRange(state *State, offsetW, lengthW uint256.Int) ([]byte, error) {
	if lengthW.IsZero() {
		return nil, nil
	}
	offset, length, err := ensureOffsetAndLengthFitUint64(&offsetW, &lengthW)
	if err != nil {
		return nil, err
	}
	return state.Memory.Read(offset, length)
}

// opSelfdestruct halts the call. The state-level effects of self-destruct
// (account deletion and balance transfer) need a world state this
// interpreter does not model, so it only consumes the beneficiary operand
// and stops, matching the opcode's control-flow behavior without
// fabricating the state change.
func opSelfdestruct(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	_, err := state.Stack.pop()
	if err != nil {
		return false, err
	}
	return true, nil
}

func opInvalid(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
	return false, ErrInvalidOpcode
}

func makeUnsupported(op OpCode) executionFunc {
	return func(state *State, bc *Bytecode, call *CallContext, block *BlockContext) (bool, error) {
		return false, unsupportedOpcode(op)
	}
}
