package cpu6502

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddImmediate(t *testing.T) {
	c := New(0x0600)
	c.Load(0x0600, []byte{
		0xA9, 0x05, // LDA #5
		0x18,       // CLC
		0x69, 0x07, // ADC #7
		0x00, // BRK
	})
	require.NoError(t, c.Run())
	assert.Equal(t, byte(12), c.A)
	assert.True(t, c.Halted)
}

func TestIndirectIndexedYLoad(t *testing.T) {
	c := New(0x0600)
	c.Mem[0x10] = 0x00
	c.Mem[0x11] = 0x03 // pointer at $10/$11 -> 0x0300
	c.Mem[0x0302] = 0x2A
	c.Load(0x0600, []byte{
		0xA0, 0x02, // LDY #2
		0xB1, 0x10, // LDA ($10),Y
		0x00, // BRK
	})
	require.NoError(t, c.Run())
	assert.Equal(t, byte(0x2A), c.A)
}

func TestJsrRts(t *testing.T) {
	c := New(0x0600)
	c.Load(0x0600, []byte{
		0x20, 0x06, 0x06, // JSR $0606
		0x00,       // BRK
		0xA9, 0x09, // (unused filler so fn starts at 0x0606)
		0xA9, 0x42, // LDA #$42 @ 0x0606
		0x60, // RTS
	})
	require.NoError(t, c.Run())
	assert.Equal(t, byte(0x42), c.A)
}
