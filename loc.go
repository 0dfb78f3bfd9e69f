package nesquik

import "fmt"

// Reg names one of the 6502's three registers.
type Reg int

const (
	RegA Reg = iota
	RegX
	RegY
)

func (r Reg) String() string {
	switch r {
	case RegA:
		return "A"
	case RegX:
		return "X"
	case RegY:
		return "Y"
	default:
		return "?"
	}
}

// LocKind tags where a value currently lives. The code generator threads a
// Loc alongside every expression node's generated code, the same role the
// original compiler's dynamically-attached `node.loc` attribute played —
// here it's a value returned up the tree instead of grafted onto the node.
type LocKind int

const (
	// LocNone: not yet materialized anywhere — an immediate constant still
	// waiting to be loaded (Loc carries no value itself; the immediate sits
	// alongside it in exprResult.Imm).
	LocNone LocKind = iota
	// LocReg: value sits in a CPU register.
	LocReg
	// LocZeroPage: value sits at a fixed zero-page address — globals, the
	// ptrTmp/tmpPtr scratch cells, and any address computed by GetRef all
	// live here. Multi-byte values (pointers) occupy Addr, Addr+1, ...
	LocZeroPage
	// LocStackOffset: value is a local, addressed via (base_ptr),Y at a
	// non-negative byte offset from the current function's static frame.
	LocStackOffset
	// LocArgOffset: value is an argument, addressed via (arg_base_ptr),Y at
	// a non-negative offset from the callee's pushed argument block.
	LocArgOffset
)

// Loc records a value's location and its size in bytes (1 for scalars, 2 for
// pointers — byte 0 is the low byte, byte 1 the high byte).
type Loc struct {
	Kind   LocKind
	Reg    Reg
	Addr   byte // zero-page address, for LocZeroPage
	Offset int  // for LocStackOffset / LocArgOffset
	Size   int
}

func (l Loc) String() string {
	switch l.Kind {
	case LocNone:
		return "none"
	case LocReg:
		return l.Reg.String()
	case LocZeroPage:
		return fmt.Sprintf("$%02X", l.Addr)
	case LocStackOffset:
		return fmt.Sprintf("frame%+d", l.Offset)
	case LocArgOffset:
		return fmt.Sprintf("arg+%d", l.Offset)
	default:
		return "?"
	}
}
