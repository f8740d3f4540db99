package vm

import "testing"

func TestJumpdestSkipsPushImmediates(t *testing.T) {
	// PUSH1 0x5B, JUMPDEST. The 0x5B at offset 1 is PUSH data, not an
	// instruction; the real JUMPDEST lives at offset 2.
	code := []byte{byte(PUSH1), 0x5B, byte(JUMPDEST)}
	bc := NewBytecode(code)
	if bc.IsJumpDest(1) {
		t.Fatalf("offset 1 (PUSH immediate) must not be a jumpdest")
	}
	if !bc.IsJumpDest(2) {
		t.Fatalf("offset 2 (real JUMPDEST) must be a jumpdest")
	}
}

func TestJumpdestOutOfRange(t *testing.T) {
	bc := NewBytecode([]byte{byte(STOP)})
	if bc.IsJumpDest(100) {
		t.Fatalf("out-of-range offset must not be a jumpdest")
	}
}

func TestReadPushValuePadsWithZero(t *testing.T) {
	code := []byte{byte(PUSH2), 0xAB}
	bc := NewBytecode(code)
	v := bc.ReadPushValue(1, 2)
	want := uint64(0xAB00)
	if !v.IsUint64() || v.Uint64() != want {
		t.Fatalf("ReadPushValue = %v, want %#x", &v, want)
	}
}

func TestReadPushValueExactFit(t *testing.T) {
	code := []byte{byte(PUSH1), 0x2A}
	bc := NewBytecode(code)
	v := bc.ReadPushValue(1, 1)
	if !v.IsUint64() || v.Uint64() != 0x2A {
		t.Fatalf("ReadPushValue = %v, want 0x2a", &v)
	}
}

func TestInstructionSize(t *testing.T) {
	if instructionSize(STOP) != 1 {
		t.Fatalf("STOP size = %d, want 1", instructionSize(STOP))
	}
	if instructionSize(PUSH1) != 2 {
		t.Fatalf("PUSH1 size = %d, want 2", instructionSize(PUSH1))
	}
	if instructionSize(PUSH32) != 33 {
		t.Fatalf("PUSH32 size = %d, want 33", instructionSize(PUSH32))
	}
}

func TestEveryByteHasAName(t *testing.T) {
	for i := 0; i < 256; i++ {
		op := OpCode(i)
		if op.String() == "" {
			t.Fatalf("opcode 0x%02x has no name", i)
		}
	}
}
