package nesquik

// AddressResolver is the two-pass symbolic-address fixup stage: first it
// walks the instruction stream to learn every label's byte offset from the
// start of the code, then it walks again converting each ArgLabel operand
// into a concrete Relative displacement or Absolute address.
type AddressResolver struct {
	labels map[string]int
}

func newAddressResolver() *AddressResolver {
	return &AddressResolver{labels: map[string]int{}}
}

// Resolve mutates each Instruction's resolvedArg/address/size in place.
func (r *AddressResolver) Resolve(org uint16, code []*Instruction) error {
	if err := r.computeOffsets(code); err != nil {
		return err
	}
	return r.injectOffsets(org, code)
}

func (r *AddressResolver) computeOffsets(code []*Instruction) error {
	offset := 0
	for _, instr := range code {
		size := 0
		if instr.Op != OpNone {
			entry, ok := lookupOpcode(instr.Op, instr.Mode)
			if !ok {
				return errInternal("unsupported addressing mode during offset pass: " + instr.Op.String())
			}
			size = entry.Size
		}
		instr.size = size
		instr.address = offset

		if instr.Anchor != "" {
			r.labels[instr.Anchor] = offset
		}

		offset += size
	}
	return nil
}

func (r *AddressResolver) injectOffsets(org uint16, code []*Instruction) error {
	offset := 0
	for _, instr := range code {
		size := instr.size

		if instr.ArgKind == ArgLabel {
			labelOffset, ok := r.labels[instr.Label]
			if !ok {
				return errUndefinedLabel(instr.Label)
			}

			var resolved int
			if instr.Mode == Relative {
				// Displacement is relative to the address immediately
				// following this branch instruction.
				disp := labelOffset - offset
				if disp < 0 {
					resolved = 0x100 + (disp - 2)
				} else {
					resolved = disp - 2
				}
			} else {
				resolved = int(org) + labelOffset
			}
			instr.resolvedArg = resolved
		} else if instr.ArgKind == ArgInt {
			instr.resolvedArg = instr.Arg
		}

		offset += size
	}
	return nil
}
