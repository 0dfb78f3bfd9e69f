package nesquik

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverAbsoluteAddress(t *testing.T) {
	code := []*Instruction{
		{Op: JSR, Mode: Absolute, Label: "fn_main", ArgKind: ArgLabel},
		{Op: NOP, Mode: Implied},
		{Anchor: "fn_main", Op: RTS, Mode: Implied},
	}
	r := newAddressResolver()
	require.NoError(t, r.Resolve(0xC000, code))

	// fn_main sits after JSR (3 bytes) + NOP (1 byte) = offset 4.
	assert.Equal(t, int(0xC000+4), code[0].resolvedArg)
}

func TestResolverRelativeForwardAndBackward(t *testing.T) {
	code := []*Instruction{
		{Anchor: "loop", Op: NOP, Mode: Implied},
		{Op: BEQ, Mode: Relative, Label: "end", ArgKind: ArgLabel},
		{Op: BNE, Mode: Relative, Label: "loop", ArgKind: ArgLabel},
		{Anchor: "end", Op: RTS, Mode: Implied},
	}
	r := newAddressResolver()
	require.NoError(t, r.Resolve(0x0600, code))

	// BEQ at offset 1, end anchor at offset 1(NOP)+2(BEQ)+2(BNE)=5; disp = 5-3 = 2.
	assert.Equal(t, 2, code[1].resolvedArg)
	// BNE at offset 3, loop anchor at offset 0; disp = 0-3 = -3, minus 2 for
	// the branch itself = -5 -> 0x100-5 = 0xFB.
	disp := 0 - 3
	want := 0x100 + (disp - 2)
	assert.Equal(t, want, code[2].resolvedArg)
}

func TestResolverUndefinedLabel(t *testing.T) {
	code := []*Instruction{
		{Op: JMP, Mode: Absolute, Label: "nowhere", ArgKind: ArgLabel},
	}
	r := newAddressResolver()
	err := r.Resolve(0x0600, code)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrUndefinedLabel, ce.Kind)
}
