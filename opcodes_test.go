package nesquik

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupOpcodeKnown(t *testing.T) {
	cases := []struct {
		op    Op
		mode  AddrMode
		value byte
		size  int
	}{
		{LDA, Immediate, 0xA9, 2},
		{LDA, IndirectIndexedY, 0xB1, 2},
		{STA, IndirectIndexedY, 0x91, 2},
		{JSR, Absolute, 0x20, 3},
		{RTS, Implied, 0x60, 1},
		{BEQ, Relative, 0xF0, 2},
	}
	for _, c := range cases {
		entry, ok := lookupOpcode(c.op, c.mode)
		require.True(t, ok, "%s %v should be a known encoding", c.op, c.mode)
		assert.Equal(t, c.value, entry.Value)
		assert.Equal(t, c.size, entry.Size)
	}
}

func TestLookupOpcodeUnknown(t *testing.T) {
	_, ok := lookupOpcode(LDA, IndexedIndirectX)
	assert.False(t, ok, "LDA has no (zp,X) addressing mode on real hardware")
}

func TestOpcodeTableNoDuplicateBytes(t *testing.T) {
	seen := map[byte]opcodeKey{}
	for key, entry := range opcodeTable {
		if prev, ok := seen[entry.Value]; ok {
			t.Fatalf("opcode byte 0x%02X assigned to both %v and %v", entry.Value, prev, key)
		}
		seen[entry.Value] = key
	}
}
