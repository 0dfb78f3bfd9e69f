package nesquik

import (
	"fmt"
	"io"
)

// ArgKind tags what an Instruction's operand actually is before the
// resolver has run.
type ArgKind int

const (
	ArgNone ArgKind = iota
	// ArgInt: a literal numeric operand, already final.
	ArgInt
	// ArgLabel: a symbolic reference to another Instruction's Label,
	// resolved to a concrete byte/address by AddressResolver.
	ArgLabel
)

// Instruction is one not-yet-assembled 6502 instruction: a (op, mode, arg)
// triple plus an optional label anchoring its own address, mirroring the
// original compiler's 4-tuple instruction representation.
type Instruction struct {
	Op    Op
	Mode  AddrMode
	Arg   int // literal value when ArgKind==ArgInt
	Label string // symbolic target when ArgKind==ArgLabel
	ArgKind ArgKind

	// Anchor, when non-empty, is this instruction's own address label: other
	// instructions may reference it via Label.
	Anchor string

	// resolved is filled in by AddressResolver: the final numeric operand
	// byte(s) to emit, and the instruction's own address once laid out.
	resolvedArg  int
	address      int
	size         int
}

func (i Instruction) String() string {
	switch i.ArgKind {
	case ArgInt:
		return fmt.Sprintf("%s %d", i.Op, i.Arg)
	case ArgLabel:
		return fmt.Sprintf("%s %s", i.Op, i.Label)
	default:
		if i.Op == OpNone {
			return i.Anchor + ":"
		}
		return i.Op.String()
	}
}

// Program is the result of compiling one NQ source unit: the generated
// instruction stream plus, once Assemble has run, the final byte image and
// a human-readable listing.
type Program struct {
	Org  uint16
	Code []*Instruction
	Asm  []string
	Obj  []byte
}

// WriteListing writes the program's assembly listing, one instruction or
// label per line, to w.
func (p *Program) WriteListing(w io.Writer) error {
	for _, line := range p.Asm {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// newLabelAllocator returns a closure producing fresh "Lk"-style label
// names, the Go stand-in for the original's `_getlabel` counter.
func newLabelAllocator() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("L%d", n)
	}
}
