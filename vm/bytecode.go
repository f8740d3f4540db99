package vm

import "github.com/holiman/uint256"

// Bytecode is a read-only view over a call's runtime code: the raw bytes
// plus a pre-scanned set of valid JUMPDEST offsets. Pre-scanning once at
// construction keeps JUMP/JUMPI's validity check O(1) instead of
// re-walking the code (skipping PUSH immediates) on every jump.
type Bytecode struct {
	code      []byte
	jumpdests jumpdestSet
}

// NewBytecode builds a Bytecode view over code, pre-scanning it for valid
// jump destinations.
func NewBytecode(code []byte) *Bytecode {
	return &Bytecode{
		code:      code,
		jumpdests: scanJumpdests(code),
	}
}

func (b *Bytecode) Size() int { return len(b.code) }

func (b *Bytecode) Bytes() []byte { return b.code }

// OpcodeAt returns the opcode byte at pc. The caller must ensure pc is in
// range; the dispatch loop treats pc >= Size() as an implicit STOP.
func (b *Bytecode) OpcodeAt(pc uint64) OpCode {
	return OpCode(b.code[pc])
}

// IsJumpDest reports whether pc is both in range and a JUMPDEST byte that
// was not swallowed as a PUSH immediate.
func (b *Bytecode) IsJumpDest(pc uint64) bool {
	if pc >= uint64(len(b.code)) {
		return false
	}
	return b.jumpdests.has(pc)
}

// ReadPushValue reads length bytes starting at start as a big-endian value,
// as if the code were followed by infinite zero bytes. It never returns an
// error: a PUSH whose immediate runs past the end of the code keeps its real
// bytes in the high-order positions and reads zero for the missing ones.
func (b *Bytecode) ReadPushValue(start, length int) uint256.Int {
	var v uint256.Int
	if start >= len(b.code) || length <= 0 {
		return v
	}
	buf := make([]byte, length)
	copy(buf, b.code[start:])
	v.SetBytes(buf)
	return v
}

// jumpdestSet is a fixed bitset of valid jump destinations, indexed by pc.
// A bitset is preferred over the teacher's map[uint64]bool: jump validity
// checks happen in the hot dispatch loop, and a bitset gives O(1) lookups
// without hashing or per-entry allocation.
type jumpdestSet struct {
	bits []uint64
}

func newJumpdestSet(codeLen int) jumpdestSet {
	return jumpdestSet{bits: make([]uint64, (codeLen+63)/64)}
}

func (s jumpdestSet) set(pc uint64) {
	word := pc / 64
	if int(word) >= len(s.bits) {
		return
	}
	s.bits[word] |= 1 << (pc % 64)
}

func (s jumpdestSet) has(pc uint64) bool {
	word := pc / 64
	if int(word) >= len(s.bits) {
		return false
	}
	return s.bits[word]&(1<<(pc%64)) != 0
}

// scanJumpdests walks code once, skipping PUSH immediates, recording every
// JUMPDEST byte that appears as a genuine instruction rather than as data
// embedded inside a PUSH's immediate.
func scanJumpdests(code []byte) jumpdestSet {
	set := newJumpdestSet(len(code))
	for pc := 0; pc < len(code); {
		op := OpCode(code[pc])
		if op == JUMPDEST {
			set.set(uint64(pc))
		}
		pc += instructionSize(op)
	}
	return set
}
