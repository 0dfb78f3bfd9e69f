package nesquik

import "fmt"

// Assembler turns a fully-resolved instruction stream into the final byte
// image, plus a human-readable assembly listing for debugging.
type Assembler struct{}

func (a *Assembler) Assemble(code []*Instruction) (obj []byte, asm []string, err error) {
	for _, instr := range code {
		line := ""
		if instr.Anchor != "" {
			line += instr.Anchor + ":"
		}

		if instr.Op == OpNone {
			if line != "" {
				asm = append(asm, line)
			}
			continue
		}

		entry, ok := lookupOpcode(instr.Op, instr.Mode)
		if !ok {
			return nil, nil, errInternal("unsupported operand size for " + instr.Op.String())
		}

		obj = append(obj, entry.Value)

		switch {
		case entry.Size == 1:
			// implied/accumulator: no operand byte
		case instr.Mode == Absolute && entry.Size == 3:
			lo := byte(instr.resolvedArg & 0xff)
			hi := byte((instr.resolvedArg >> 8) & 0xff)
			obj = append(obj, lo, hi)
		case entry.Size == 2:
			obj = append(obj, byte(instr.resolvedArg&0xff))
		default:
			return nil, nil, errInternal("mismatching address mode and argument size")
		}

		line += "\t" + formatInstruction(instr, entry)
		asm = append(asm, line)
	}
	return obj, asm, nil
}

func formatInstruction(instr *Instruction, entry opcodeEntry) string {
	switch instr.Mode {
	case Implied:
		return instr.Op.String()
	case Accumulator:
		return instr.Op.String() + " A"
	case Immediate:
		return fmt.Sprintf("%s #%d", instr.Op, instr.resolvedArg)
	case Zeropage:
		return fmt.Sprintf("%s $%02X", instr.Op, instr.resolvedArg)
	case Absolute:
		return fmt.Sprintf("%s $%04X", instr.Op, instr.resolvedArg)
	case Relative:
		return fmt.Sprintf("%s %d", instr.Op, int8(instr.resolvedArg))
	case IndirectIndexedY:
		return fmt.Sprintf("%s ($%02X),Y", instr.Op, instr.resolvedArg)
	case IndexedIndirectX:
		return fmt.Sprintf("%s ($%02X,X)", instr.Op, instr.resolvedArg)
	default:
		return instr.Op.String()
	}
}
