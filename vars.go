package nesquik

// Reserved zero-page layout (spec §3): the software base-pointer discipline
// needs a fixed handful of zero-page cells that never participate in the
// general allocator below.
const (
	// basePtr holds the 2-byte address of the current frame's locals area.
	basePtr byte = 0x00
	// argBasePtr holds the 2-byte address of the current frame's arguments
	// area.
	argBasePtr byte = 0x02
	// tmpPtr is scratch space used while shuffling values through
	// (zp),Y addressing, e.g. to stage an array element's address.
	tmpPtr byte = 0x04
	// mulDivScratch0/1 back the MUL and DIV runtime subroutines (runtime.go).
	mulDivScratch0 byte = 0x06
	mulDivScratch1 byte = 0x07

	// ptrTmp0/ptrTmp1 are two 2-byte scratch cells used to stage a
	// just-computed pointer value (e.g. the result of &x) on its way to
	// being stored into a pointer variable or passed as a call argument.
	ptrTmp0 byte = 0x08
	ptrTmp1 byte = 0x0A

	// firstFreeZP is the first zero-page address the allocator below may
	// hand out to globals.
	firstFreeZP byte = 0x0C

	// scratchBase/scratchSlots reserve a small pool at the top of zero page
	// for expression-evaluation spill slots (see scratchPool below), kept
	// separate from global storage so the two allocators never collide.
	scratchBase  byte = 0xF0
	scratchSlots int  = 16
)

// zpAllocator hands out zero-page addresses to global variables in
// declaration order, failing once the page is exhausted.
type zpAllocator struct {
	next byte
}

func newZPAllocator() *zpAllocator {
	return &zpAllocator{next: firstFreeZP}
}

// alloc reserves size bytes of zero page and returns the base address.
func (z *zpAllocator) alloc(size int) (byte, error) {
	if int(z.next)+size > int(scratchBase) {
		return 0, errSizeError("out of zero page memory", 0)
	}
	addr := z.next
	z.next += byte(size)
	return addr, nil
}

// scratchPool hands out single-byte zero-page slots used to spill a
// partially-evaluated expression's accumulator value while the other
// operand is computed, and to hold the value being stored while a pointer or
// array element address is staged in tmpPtr. Slots are freed as soon as the generator is done with
// them, so the pool only needs to be as deep as the expression nesting
// ever gets.
type scratchPool struct {
	used [scratchSlots]bool
}

func newScratchPool() *scratchPool {
	return &scratchPool{}
}

func (p *scratchPool) alloc() (byte, error) {
	for i, taken := range p.used {
		if !taken {
			p.used[i] = true
			return scratchBase + byte(i), nil
		}
	}
	return 0, errInternal("out of scratch memory")
}

func (p *scratchPool) free(addr byte) {
	i := int(addr) - int(scratchBase)
	if i >= 0 && i < scratchSlots {
		p.used[i] = false
	}
}

// ptrTmpPool alternates between the two reserved 2-byte pointer-value
// scratch cells. It bounds how many freshly-computed pointer values (&x
// expressions not yet consumed) can be alive at once to two — enough for
// any call with pointer arguments that the source language's grammar can
// express, since argument expressions are evaluated and stored one at a
// time.
type ptrTmpPool struct {
	next int
}

func (p *ptrTmpPool) alloc() byte {
	addr := ptrTmp0
	if p.next%2 == 1 {
		addr = ptrTmp1
	}
	p.next++
	return addr
}

// Variable describes one declared name: a global, a local, or an argument.
type Variable struct {
	Name      string
	Loc       Loc
	IsPointer bool
	IsArray   bool
	ArrayLen  int
}

// Size returns the variable's storage footprint in bytes.
func (v *Variable) Size() int {
	if v.IsPointer {
		return 2
	}
	if v.IsArray {
		return v.ArrayLen
	}
	return 1
}

// Function records a declared function's signature, enough for the
// generator to validate calls and to lay out the callee's argument frame.
type Function struct {
	Name    string
	Args    []*Variable
	HasRet  bool
	RetSize int
	Label   string
}

// ArgsSize returns the total byte size of the function's argument frame.
func (f *Function) ArgsSize() int {
	n := 0
	for _, a := range f.Args {
		n += a.Size()
	}
	return n
}
