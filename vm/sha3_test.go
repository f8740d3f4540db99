package vm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

// TestSha3HighOffsetDoesNotGrowMemory reproduces the case where offset is
// past the current memory size: the hash covers length zero bytes and
// memory must not grow at all.
func TestSha3HighOffsetDoesNotGrowMemory(t *testing.T) {
	code := []byte{
		byte(PUSH2), 0x10, 0x00, // length = 0x1000
		byte(PUSH2), 0x10, 0x00, // offset = 0x1000
		byte(SHA3),
		byte(MSIZE),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	result := Run(code, &CallContext{}, &BlockContext{})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	want := u256From(0)
	if !bytes.Equal(result.ReturnData, want[:]) {
		t.Fatalf("MSIZE after high-offset SHA3 = %x, want 0 (memory must not grow)", result.ReturnData)
	}
}

// TestSha3LengthAtMemoryLimitIsOutOfGas reproduces the case where offset is
// past memory size and length is at MEMORY_LIMIT: must fail OutOfGas
// up front instead of allocating it.
func TestSha3LengthAtMemoryLimitIsOutOfGas(t *testing.T) {
	code := []byte{
		byte(PUSH4), 0x08, 0x00, 0x00, 0x00, // length = memoryLimit (0x08000000)
		byte(PUSH1), 0x00, // offset = 0
		byte(SHA3),
	}
	result := Run(code, &CallContext{}, &BlockContext{})
	if !errors.Is(result.Err, ErrOutOfGas) {
		t.Fatalf("err = %v, want ErrOutOfGas", result.Err)
	}
}

// TestSha3OffsetOverflowWithZeroLengthIsOutOfGas reproduces the case where
// length is zero but offset does not fit a 64-bit memory index: this must
// fail OutOfGas rather than silently hashing empty data.
func TestSha3OffsetOverflowWithZeroLengthIsOutOfGas(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x00, // length = 0
		byte(PUSH9), 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // offset = 2^64
		byte(SHA3),
	}
	result := Run(code, &CallContext{}, &BlockContext{})
	if !errors.Is(result.Err, ErrOutOfGas) {
		t.Fatalf("err = %v, want ErrOutOfGas", result.Err)
	}
}

func TestSha3OfEmptyDataMatchesKeccak256(t *testing.T) {
	got := runOneOp(t, SHA3, 0, 0)
	want := crypto.Keccak256(nil)
	gotBytes := got.Bytes32()
	if !bytes.Equal(gotBytes[:], want) {
		t.Fatalf("SHA3(0, 0) = %x, want %x", gotBytes, want)
	}
}
