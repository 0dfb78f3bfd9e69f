package nesquik

import "fmt"

// AddrMode enumerates the 6502 addressing modes NESQuik's code generator
// needs to distinguish. This is a deliberately small subset of the full
// 6502 addressing mode space (spec §3) — just enough to drive the
// accumulator-machine code generation pipeline.
type AddrMode int

const (
	Implied AddrMode = iota
	Accumulator
	Immediate
	Zeropage
	Absolute
	Relative
	IndirectIndexedY // ($zp),Y
	IndexedIndirectX // ($zp,X)
)

// Op enumerates the 6502 mnemonics the generator, resolver, assembler and
// runtime library ever emit.
type Op int

const (
	OpNone Op = iota // no opcode: a pure label anchor, contributes zero bytes
	ADC
	AND
	ASL
	BCC
	BCS
	BEQ
	BNE
	BRK
	CLC
	CMP
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	PHA
	PLA
	ROL
	RTS
	SBC
	SEC
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA
)

var opNames = map[Op]string{
	OpNone: "",
	ADC:    "ADC", AND: "AND", ASL: "ASL", BCC: "BCC", BCS: "BCS", BEQ: "BEQ",
	BNE: "BNE", BRK: "BRK", CLC: "CLC", CMP: "CMP", DEX: "DEX", DEY: "DEY",
	EOR: "EOR", INC: "INC", INX: "INX", INY: "INY", JMP: "JMP", JSR: "JSR",
	LDA: "LDA", LDX: "LDX", LDY: "LDY", LSR: "LSR", NOP: "NOP", PHA: "PHA",
	PLA: "PLA", ROL: "ROL", RTS: "RTS", SBC: "SBC", SEC: "SEC", STA: "STA",
	STX: "STX", STY: "STY", TAX: "TAX", TAY: "TAY", TSX: "TSX", TXA: "TXA",
	TXS: "TXS", TYA: "TYA",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// opcodeEntry is what the table maps (Op, AddrMode) pairs to: the encoded
// byte value and the instruction's total size in bytes, including the
// opcode byte itself.
type opcodeEntry struct {
	Value byte
	Size  int
}

// opcodeKey is the (Op, AddrMode) lookup key.
type opcodeKey struct {
	Op   Op
	Mode AddrMode
}

// opcodeTable maps (Op, AddrMode) to its encoded byte and size, the minimum
// set the code generator, resolver and assembler need. Byte values are the
// well-known 6502 ISA encodings (http://www.6502.org/tutorials/6502opcodes.html),
// the same reference the teacher's own opcode table cites.
var opcodeTable = map[opcodeKey]opcodeEntry{
	{ADC, Immediate}:        {0x69, 2},
	{ADC, Zeropage}:         {0x65, 2},
	{ADC, IndexedIndirectX}: {0x61, 2},
	{ADC, IndirectIndexedY}: {0x71, 2},

	{AND, Immediate}:        {0x29, 2},
	{AND, Zeropage}:         {0x25, 2},
	{AND, IndexedIndirectX}: {0x21, 2},
	{AND, IndirectIndexedY}: {0x31, 2},

	{ASL, Accumulator}: {0x0A, 1},
	{ASL, Zeropage}:    {0x06, 2},

	{BCC, Relative}: {0x90, 2},
	{BCS, Relative}: {0xB0, 2},
	{BEQ, Relative}: {0xF0, 2},
	{BNE, Relative}: {0xD0, 2},

	{BRK, Implied}: {0x00, 1},

	{CLC, Implied}: {0x18, 1},
	{SEC, Implied}: {0x38, 1},

	{CMP, Immediate}:        {0xC9, 2},
	{CMP, Zeropage}:         {0xC5, 2},
	{CMP, IndexedIndirectX}: {0xC1, 2},
	{CMP, IndirectIndexedY}: {0xD1, 2},

	{DEX, Implied}: {0xCA, 1},
	{DEY, Implied}: {0x88, 1},

	{EOR, Immediate}:        {0x49, 2},
	{EOR, Zeropage}:         {0x45, 2},
	{EOR, IndexedIndirectX}: {0x41, 2},
	{EOR, IndirectIndexedY}: {0x51, 2},

	{INC, Zeropage}: {0xE6, 2},
	{INX, Implied}:  {0xE8, 1},
	{INY, Implied}:  {0xC8, 1},

	{JMP, Absolute}: {0x4C, 3},
	{JSR, Absolute}: {0x20, 3},

	{LDA, Immediate}:        {0xA9, 2},
	{LDA, Zeropage}:         {0xA5, 2},
	{LDA, IndexedIndirectX}: {0xA1, 2},
	{LDA, IndirectIndexedY}: {0xB1, 2},

	{LDX, Immediate}: {0xA2, 2},
	{LDX, Zeropage}:  {0xA6, 2},

	{LDY, Immediate}: {0xA0, 2},
	{LDY, Zeropage}:  {0xA4, 2},

	{LSR, Accumulator}: {0x4A, 1},
	{LSR, Zeropage}:    {0x46, 2},

	{NOP, Implied}: {0xEA, 1},

	{PHA, Implied}: {0x48, 1},
	{PLA, Implied}: {0x68, 1},

	{ROL, Accumulator}: {0x2A, 1},
	{ROL, Zeropage}:    {0x26, 2},

	{RTS, Implied}: {0x60, 1},

	{SBC, Immediate}:        {0xE9, 2},
	{SBC, Zeropage}:         {0xE5, 2},
	{SBC, IndexedIndirectX}: {0xE1, 2},
	{SBC, IndirectIndexedY}: {0xF1, 2},

	{STA, Zeropage}:         {0x85, 2},
	{STA, IndexedIndirectX}: {0x81, 2},
	{STA, IndirectIndexedY}: {0x91, 2},

	{STX, Zeropage}: {0x86, 2},
	{STY, Zeropage}: {0x84, 2},

	{TAX, Implied}: {0xAA, 1},
	{TAY, Implied}: {0xA8, 1},
	{TSX, Implied}: {0xBA, 1},
	{TXA, Implied}: {0x8A, 1},
	{TXS, Implied}: {0x9A, 1},
	{TYA, Implied}: {0x98, 1},
}

func init() {
	// Integrity check, matching the teacher's opcodes.go: every encoded
	// byte value must be unique, otherwise the assembler could not tell
	// two instructions apart.
	seen := make(map[byte]opcodeKey)
	for key, entry := range opcodeTable {
		if prev, ok := seen[entry.Value]; ok {
			panic(fmt.Sprintf("duplicate opcode byte 0x%02X for %v and %v", entry.Value, prev, key))
		}
		seen[entry.Value] = key
	}
}

// lookupOpcode resolves an (Op, AddrMode) pair to its encoded byte and size.
func lookupOpcode(op Op, mode AddrMode) (opcodeEntry, bool) {
	e, ok := opcodeTable[opcodeKey{Op: op, Mode: mode}]
	return e, ok
}
