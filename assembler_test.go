package nesquik

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleSimpleProgram(t *testing.T) {
	code := []*Instruction{
		{Op: LDA, Mode: Immediate, Arg: 0x2A, ArgKind: ArgInt},
		{Op: STA, Mode: Zeropage, Arg: 0x10, ArgKind: ArgInt},
		{Op: RTS, Mode: Implied},
	}
	r := newAddressResolver()
	require.NoError(t, r.Resolve(0x0600, code))

	asm := &Assembler{}
	obj, listing, err := asm.Assemble(code)
	require.NoError(t, err)

	assert.Equal(t, []byte{0xA9, 0x2A, 0x85, 0x10, 0x60}, obj)
	require.Len(t, listing, 3)
	assert.Contains(t, listing[0], "LDA #42")
	assert.Contains(t, listing[1], "STA $10")
}

func TestAssembleAnchoredInstructionIncludesLabelInListing(t *testing.T) {
	code := []*Instruction{
		{Anchor: "start", Op: NOP, Mode: Implied},
	}
	r := newAddressResolver()
	require.NoError(t, r.Resolve(0x0600, code))

	asm := &Assembler{}
	obj, listing, err := asm.Assemble(code)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEA}, obj)
	assert.Contains(t, listing[0], "start:")
}
