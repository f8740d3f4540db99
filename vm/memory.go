package vm

import "github.com/holiman/uint256"

const (
	// memoryLimit caps memory growth so that a crafted offset cannot force
	// an unbounded allocation.
	memoryLimit = 128 * 1024 * 1024

	// initialMemoryCapacity mirrors Solidity's free-memory-pointer
	// convention (0x60): most contracts touch the first 0x60 bytes of
	// memory before anything else, so pre-sizing to it avoids a reallocation
	// on the very first access.
	initialMemoryCapacity = 0x60
)

// Memory is the byte-addressable scratch space available to a single call.
// It is logically zero-extended and grows to the next 32-byte word on
// access, up to memoryLimit.
type Memory struct {
	store []byte
}

func newMemory() *Memory {
	return &Memory{store: make([]byte, 0, initialMemoryCapacity)}
}

func (m *Memory) Size() uint64 { return uint64(len(m.store)) }

// ceil32 rounds x up to the next multiple of 32, leaving it unchanged when
// it already is one.
func ceil32(x uint64) uint64 {
	if x%32 == 0 {
		return x
	}
	return x - x%32 + 32
}

func (m *Memory) ensureSize(size uint64) error {
	if size <= uint64(len(m.store)) {
		return nil
	}
	rounded := ceil32(size)
	if rounded > memoryLimit {
		return ErrOutOfGas
	}
	grown := make([]byte, rounded)
	copy(grown, m.store)
	m.store = grown
	return nil
}

// Read grows memory to cover offset+length, then returns a fresh copy of
// that range.
func (m *Memory) Read(offset, length uint64) ([]byte, error) {
	if offset+length < offset {
		return nil, ErrOutOfGas
	}
	if err := m.ensureSize(offset + length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	copy(out, m.store[offset:offset+length])
	return out, nil
}

// Write grows memory to cover offset+length and copies data into it. If
// data is shorter than length the remaining bytes keep their prior
// (zero-extended) value.
func (m *Memory) Write(offset, length uint64, data []byte) error {
	if offset+length < offset {
		return ErrOutOfGas
	}
	if err := m.ensureSize(offset + length); err != nil {
		return err
	}
	copy(m.store[offset:offset+length], data)
	return nil
}

// ensureFitsUint64 fails with ErrOutOfGas when n does not fit a 64-bit
// memory offset or length.
func ensureFitsUint64(n *uint256.Int) (uint64, error) {
	if !n.IsUint64() {
		return 0, ErrOutOfGas
	}
	return n.Uint64(), nil
}

// ensureOffsetAndLengthFitUint64 fails with ErrOutOfGas when offset+length
// overflows 256 bits or exceeds what fits in a 64-bit memory size.
func ensureOffsetAndLengthFitUint64(offset, length *uint256.Int) (uint64, uint64, error) {
	var sum uint256.Int
	sum.Add(offset, length)
	if sum.Lt(offset) {
		return 0, 0, ErrOutOfGas
	}
	if !sum.IsUint64() {
		return 0, 0, ErrOutOfGas
	}
	return offset.Uint64(), length.Uint64(), nil
}
