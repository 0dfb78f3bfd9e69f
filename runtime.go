package nesquik

// Runtime library subroutines for operations the 6502 has no instruction
// for: multiplication and division. Ported instruction-for-instruction from
// the reference implementation's MUL/DIV (shift-and-add multiply, restoring
// division per http://6502org.wikidot.com/software-math-intdiv), expressed
// here as pre-built Instruction sequences instead of parsed assembly text.
//
// MUL: X * Y -> A.  DIV: mulDivScratch0 / mulDivScratch1 -> A.

const (
	mulLabel     = "__mul"
	mulLoopLabel = "__mul_loop"
	mulSkipLabel = "__mul_skip"

	divLabel       = "__div"
	divLoopLabel   = "__div_loop"
	divRestoreLabel = "__div_restore"
)

// mulRoutine builds the MUL subroutine: X holds one operand, Y the other,
// result comes back in A. mulDivScratch0 is used as the running sum.
func mulRoutine() []*Instruction {
	return []*Instruction{
		{Anchor: mulLabel, Op: LDA, Mode: Immediate, Arg: 0, ArgKind: ArgInt},
		{Op: STA, Mode: Zeropage, Arg: int(mulDivScratch0), ArgKind: ArgInt},
		{Anchor: mulLoopLabel, Op: TYA, Mode: Implied},
		{Op: AND, Mode: Immediate, Arg: 1, ArgKind: ArgInt},
		{Op: BEQ, Mode: Relative, Label: mulSkipLabel, ArgKind: ArgLabel},
		{Op: TXA, Mode: Implied},
		{Op: CLC, Mode: Implied},
		{Op: ADC, Mode: Zeropage, Arg: int(mulDivScratch0), ArgKind: ArgInt},
		{Op: STA, Mode: Zeropage, Arg: int(mulDivScratch0), ArgKind: ArgInt},
		{Anchor: mulSkipLabel, Op: TXA, Mode: Implied},
		{Op: ASL, Mode: Accumulator},
		{Op: TAX, Mode: Implied},
		{Op: TYA, Mode: Implied},
		{Op: LSR, Mode: Accumulator},
		{Op: TAY, Mode: Implied},
		{Op: BNE, Mode: Relative, Label: mulLoopLabel, ArgKind: ArgLabel},
		{Op: LDA, Mode: Zeropage, Arg: int(mulDivScratch0), ArgKind: ArgInt},
		{Op: RTS, Mode: Implied},
	}
}

// divRoutine builds the DIV subroutine: mulDivScratch0 holds the dividend,
// mulDivScratch1 the divisor, result comes back in A.
func divRoutine() []*Instruction {
	return []*Instruction{
		{Anchor: divLabel, Op: LDA, Mode: Immediate, Arg: 0, ArgKind: ArgInt},
		{Op: LDX, Mode: Immediate, Arg: 8, ArgKind: ArgInt},
		{Op: ASL, Mode: Zeropage, Arg: int(mulDivScratch0), ArgKind: ArgInt},
		{Anchor: divLoopLabel, Op: ROL, Mode: Accumulator},
		{Op: CMP, Mode: Zeropage, Arg: int(mulDivScratch1), ArgKind: ArgInt},
		{Op: BCC, Mode: Relative, Label: divRestoreLabel, ArgKind: ArgLabel},
		{Op: SBC, Mode: Zeropage, Arg: int(mulDivScratch1), ArgKind: ArgInt},
		{Anchor: divRestoreLabel, Op: ROL, Mode: Zeropage, Arg: int(mulDivScratch0), ArgKind: ArgInt},
		{Op: DEX, Mode: Implied},
		{Op: BNE, Mode: Relative, Label: divLoopLabel, ArgKind: ArgLabel},
		{Op: LDA, Mode: Zeropage, Arg: int(mulDivScratch0), ArgKind: ArgInt},
		{Op: RTS, Mode: Implied},
	}
}
