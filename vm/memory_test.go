package vm

import (
	"bytes"
	"errors"
	"testing"
)

func TestCeil32(t *testing.T) {
	cases := map[uint64]uint64{
		0:  0,
		1:  32,
		31: 32,
		32: 32,
		33: 64,
		64: 64,
	}
	for in, want := range cases {
		if got := ceil32(in); got != want {
			t.Errorf("ceil32(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestMemoryGrowsToWordBoundary(t *testing.T) {
	m := newMemory()
	if _, err := m.Read(0, 1); err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Size() != 32 {
		t.Fatalf("size = %d, want 32", m.Size())
	}
	if _, err := m.Read(40, 1); err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Size() != 64 {
		t.Fatalf("size = %d, want 64", m.Size())
	}
}

func TestMemoryWriteReadRoundTrip(t *testing.T) {
	m := newMemory()
	data := []byte{1, 2, 3, 4}
	if err := m.Write(10, 4, data); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := m.Read(10, 4)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("read = %x, want %x", got, data)
	}
}

func TestMemoryReadIsIdempotent(t *testing.T) {
	m := newMemory()
	_ = m.Write(0, 4, []byte{9, 9, 9, 9})
	first, _ := m.Read(0, 4)
	sizeAfterFirst := m.Size()
	second, _ := m.Read(0, 4)
	if !bytes.Equal(first, second) {
		t.Fatalf("two reads disagree: %x vs %x", first, second)
	}
	if m.Size() != sizeAfterFirst {
		t.Fatalf("size shrank across reads: %d -> %d", sizeAfterFirst, m.Size())
	}
}

func TestMemoryOverLimitIsOutOfGas(t *testing.T) {
	m := newMemory()
	_, err := m.Read(memoryLimit, 1)
	if !errors.Is(err, ErrOutOfGas) {
		t.Fatalf("err = %v, want ErrOutOfGas", err)
	}
}

func TestMemoryPartialWriteLeavesRestZero(t *testing.T) {
	m := newMemory()
	if err := m.Write(0, 8, []byte{0xFF, 0xFF}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, _ := m.Read(0, 8)
	want := []byte{0xFF, 0xFF, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("read = %x, want %x", got, want)
	}
}
