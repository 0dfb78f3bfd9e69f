package nesquik

import (
	"fmt"

	"github.com/V0idExp/nesquik/ast"
)

// exprResult is what generating an expression node hands back to its
// caller: where the computed value now lives, and — when it hasn't been
// materialized into any register or memory cell yet — the immediate
// constant it represents.
type exprResult struct {
	Loc Loc
	Imm int
}

// codegen walks an AST and emits a flat Instruction stream for it. Unlike
// the tree-interpreter this is modeled on, it never mutates a Node: every
// method returns the information the caller needs (an exprResult, a byte
// count, an error) instead of grafting it onto the node in place.
type codegen struct {
	code     []*Instruction
	globals  map[string]*Variable
	funcs    map[string]*Function
	zp       *zpAllocator
	scratch  *scratchPool
	ptrTmp   ptrTmpPool
	nextLbl  func() string
	required map[string]bool

	scope      *scopeStack
	args       map[string]*Variable
	fn         *Function
	curFuncRAM int // compile-time absolute address of the active function's locals frame
	frameBump  int // bump allocator offset for the next function's locals frame
}

func newCodegen() *codegen {
	return &codegen{
		globals:  map[string]*Variable{},
		funcs:    map[string]*Function{},
		zp:       newZPAllocator(),
		scratch:  newScratchPool(),
		nextLbl:  newLabelAllocator(),
		required: map[string]bool{},
	}
}

// ramFrameBase is where the simple bump allocator (codegen.frameBump) starts
// handing out static, non-overlapping RAM regions to each function's locals
// frame; see genFunc. Functions are
// not reentrant: a recursive call would alias its own still-live locals,
// a documented scope limitation (see DESIGN.md).
const ramFrameBase = 0x0300

func (g *codegen) emit(instr *Instruction) *Instruction {
	g.code = append(g.code, instr)
	return instr
}

func (g *codegen) emitOp(op Op, mode AddrMode, arg int) *Instruction {
	return g.emit(&Instruction{Op: op, Mode: mode, Arg: arg, ArgKind: ArgInt})
}

func (g *codegen) emitLabelRef(op Op, mode AddrMode, label string) *Instruction {
	return g.emit(&Instruction{Op: op, Mode: mode, Label: label, ArgKind: ArgLabel})
}

func (g *codegen) anchor(label string) {
	g.emit(&Instruction{Op: OpNone, Anchor: label})
}

func (g *codegen) require(name string) {
	g.required[name] = true
}

// --- byte-level load/store, the common currency every higher-level op goes
// through ---

// loadByte emits code to load byte k of loc into A.
func (g *codegen) loadByte(loc Loc, imm int, k int) error {
	switch loc.Kind {
	case LocNone:
		switch k {
		case 0:
			g.emitOp(LDA, Immediate, imm&0xff)
		case 1:
			g.emitOp(LDA, Immediate, (imm>>8)&0xff)
		default:
			return errInternal("immediate wider than 2 bytes")
		}
	case LocReg:
		if k != 0 {
			return errInternal("register value wider than 1 byte")
		}
		switch loc.Reg {
		case RegA:
			// already there
		case RegX:
			g.emitOp(TXA, Implied, 0)
		case RegY:
			g.emitOp(TYA, Implied, 0)
		}
	case LocZeroPage:
		g.emitOp(LDA, Zeropage, int(loc.Addr)+k)
	case LocStackOffset:
		g.emitOp(LDY, Immediate, loc.Offset+k)
		g.emitOp(LDA, IndirectIndexedY, int(basePtr))
	case LocArgOffset:
		g.emitOp(LDY, Immediate, loc.Offset+k)
		g.emitOp(LDA, IndirectIndexedY, int(argBasePtr))
	default:
		return errInternal("unsupported loc kind in loadByte")
	}
	return nil
}

// storeByte emits code to store A into byte k of loc.
func (g *codegen) storeByte(loc Loc, k int) error {
	switch loc.Kind {
	case LocZeroPage:
		g.emitOp(STA, Zeropage, int(loc.Addr)+k)
	case LocStackOffset:
		g.emitOp(LDY, Immediate, loc.Offset+k)
		g.emitOp(STA, IndirectIndexedY, int(basePtr))
	case LocArgOffset:
		g.emitOp(LDY, Immediate, loc.Offset+k)
		g.emitOp(STA, IndirectIndexedY, int(argBasePtr))
	default:
		return errInternal("unsupported store target")
	}
	return nil
}

// materializeA ensures res's value ends up in A. res must be a 1-byte
// value: a 2-byte value here (a pointer, or a >0xFF literal) means the
// caller tried to narrow it into a byte-sized target, which is the
// narrowing-assignment/operand-size-mismatch SizeError spec.md §9 calls
// for.
func (g *codegen) materializeA(res exprResult, line int) error {
	if res.Loc.Size == 2 {
		return errSizeError("cannot narrow a 2-byte value into a 1-byte target", line)
	}
	return g.loadByte(res.Loc, res.Imm, 0)
}

// materializeReg ensures res's value ends up in reg. X/Y can't be loaded
// indirectly, so every value is loaded into A first and then transferred.
func (g *codegen) materializeReg(res exprResult, reg Reg, line int) error {
	if err := g.materializeA(res, line); err != nil {
		return err
	}
	switch reg {
	case RegX:
		g.emitOp(TAX, Implied, 0)
	case RegY:
		g.emitOp(TAY, Implied, 0)
	}
	return nil
}

// copyValue moves a size-byte value from src to dst, byte by byte, via A.
func (g *codegen) copyValue(src Loc, srcImm int, dst Loc, size int) error {
	for k := 0; k < size; k++ {
		if err := g.loadByte(src, srcImm, k); err != nil {
			return err
		}
		if err := g.storeByte(dst, k); err != nil {
			return err
		}
	}
	return nil
}

// loadAbsAddr loads a compile-time-constant absolute address into the given
// zero-page 2-byte pointer cell (tmpPtr or a ptrTmp slot).
func (g *codegen) loadAbsAddr(addr int, cell byte) {
	g.emitOp(LDA, Immediate, addr&0xff)
	g.emitOp(STA, Zeropage, int(cell))
	g.emitOp(LDA, Immediate, (addr>>8)&0xff)
	g.emitOp(STA, Zeropage, int(cell)+1)
}

// --- variable lookup ---

func (g *codegen) lookup(name string) (*Variable, bool) {
	if g.fn != nil {
		if v, ok := g.scope.lookup(name); ok {
			return v, true
		}
		if v, ok := g.args[name]; ok {
			return v, true
		}
	}
	if v, ok := g.globals[name]; ok {
		return v, true
	}
	return nil, false
}

// staticAddr returns the compile-time-constant absolute address backing a
// global or local (non-argument) variable.
func (g *codegen) staticAddr(v *Variable) (int, bool) {
	switch v.Loc.Kind {
	case LocZeroPage:
		return int(v.Loc.Addr), true
	case LocStackOffset:
		return g.curFuncRAM + v.Loc.Offset, true
	default:
		return 0, false
	}
}

// --- expressions ---

// parseImm parses a literal's digits (decimal, or hex after a leading '$')
// and returns its value alongside its size: 1 byte for values up to 0xFF,
// 2 bytes (lo/hi) for values up to 0xFFFF. Anything wider is a SizeError.
func parseImm(text string, line int) (int, int, error) {
	var n int
	if len(text) > 0 && text[0] == '$' {
		for _, c := range text[1:] {
			n = n*16 + hexVal(c)
		}
	} else {
		for _, c := range text {
			n = n*10 + int(c-'0')
		}
	}
	if n > 0xffff {
		return 0, 0, errSizeError(fmt.Sprintf("literal %s does not fit in 2 bytes", text), line)
	}
	size := 1
	if n > 0xff {
		size = 2
	}
	return n, size, nil
}

func hexVal(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

func (g *codegen) genExpr(n *ast.Node) (exprResult, error) {
	switch n.Kind {
	case ast.Imm:
		v, size, err := parseImm(n.Text, n.Line)
		if err != nil {
			return exprResult{}, err
		}
		return exprResult{Loc: Loc{Kind: LocNone, Size: size}, Imm: v}, nil

	case ast.Ref:
		v, ok := g.lookup(n.Text)
		if !ok {
			return exprResult{}, errUndefinedVariable(n.Text, n.Line)
		}
		return exprResult{Loc: v.Loc}, nil

	case ast.GetRef:
		return g.genGetRef(n)

	case ast.Deref:
		return g.genDeref(n)

	case ast.Index:
		return g.genIndexRead(n)

	case ast.Add:
		return g.genAddSub(n, false)
	case ast.Sub:
		return g.genAddSub(n, true)
	case ast.Mul:
		return g.genMul(n)
	case ast.Div:
		return g.genDiv(n)
	case ast.Neg:
		return g.genNeg(n)

	case ast.Eq, ast.Neq, ast.Lt, ast.Leq, ast.Gt, ast.Geq:
		return g.genCompare(n)

	case ast.Call:
		return g.genCall(n)

	default:
		return exprResult{}, errInternal("unsupported expression node " + n.Kind.String())
	}
}

func (g *codegen) genGetRef(n *ast.Node) (exprResult, error) {
	v, ok := g.lookup(n.Text)
	if !ok {
		return exprResult{}, errUndefinedVariable(n.Text, n.Line)
	}

	slot := g.ptrTmp.alloc()

	if v.Loc.Kind == LocArgOffset {
		// Runtime address: arg_base_ptr + offset, a 16-bit add.
		g.emitOp(LDA, Zeropage, int(argBasePtr))
		g.emitOp(CLC, Implied, 0)
		g.emitOp(ADC, Immediate, v.Loc.Offset)
		g.emitOp(STA, Zeropage, int(slot))
		g.emitOp(LDA, Zeropage, int(argBasePtr)+1)
		g.emitOp(ADC, Immediate, 0)
		g.emitOp(STA, Zeropage, int(slot)+1)
		return exprResult{Loc: Loc{Kind: LocZeroPage, Addr: slot, Size: 2}}, nil
	}

	addr, ok := g.staticAddr(v)
	if !ok {
		return exprResult{}, errInternal("cannot take address of " + n.Text)
	}
	g.loadAbsAddr(addr, slot)
	return exprResult{Loc: Loc{Kind: LocZeroPage, Addr: slot, Size: 2}}, nil
}

// genPointerValue evaluates an expression that is about to be stored into a
// pointer-typed target (a `var *p = ...`, a pointer assignment, or a
// pointer-typed call argument). A raw `$`-literal used here names an
// address directly — zero page or absolute — rather than a byte value, so
// it always carries size 2 regardless of how small its numeric value is
// (e.g. `var *ptr = $6` aliases zero-page address $0006).
func (g *codegen) genPointerValue(n *ast.Node) (exprResult, error) {
	if n.Kind == ast.Imm && len(n.Text) > 0 && n.Text[0] == '$' {
		v, _, err := parseImm(n.Text, n.Line)
		if err != nil {
			return exprResult{}, err
		}
		return exprResult{Loc: Loc{Kind: LocNone, Size: 2}, Imm: v}, nil
	}
	return g.genExpr(n)
}

// loadPointerToTmpPtr copies a pointer variable's runtime value into tmpPtr.
func (g *codegen) loadPointerToTmpPtr(v *Variable) error {
	return g.copyValue(v.Loc, 0, Loc{Kind: LocZeroPage, Addr: tmpPtr}, 2)
}

func (g *codegen) genDeref(n *ast.Node) (exprResult, error) {
	v, ok := g.lookup(n.Text)
	if !ok {
		return exprResult{}, errUndefinedVariable(n.Text, n.Line)
	}
	if !v.IsPointer {
		return exprResult{}, errInvalidDereference(n.Text, n.Line)
	}
	if err := g.loadPointerToTmpPtr(v); err != nil {
		return exprResult{}, err
	}
	g.emitOp(LDY, Immediate, 0)
	g.emitOp(LDA, IndirectIndexedY, int(tmpPtr))
	return exprResult{Loc: Loc{Kind: LocReg, Reg: RegA, Size: 1}}, nil
}

// arrayBase resolves an array variable's compile-time base address.
func (g *codegen) arrayBase(name string, line int) (*Variable, int, error) {
	v, ok := g.lookup(name)
	if !ok {
		return nil, 0, errUndefinedVariable(name, line)
	}
	if !v.IsArray {
		return nil, 0, errInvalidDereference(name, line)
	}
	addr, ok := g.staticAddr(v)
	if !ok {
		return nil, 0, errInternal("array arguments are not supported: " + name)
	}
	return v, addr, nil
}

func (g *codegen) genIndexRead(n *ast.Node) (exprResult, error) {
	_, addr, err := g.arrayBase(n.Text, n.Line)
	if err != nil {
		return exprResult{}, err
	}
	g.loadAbsAddr(addr, tmpPtr)

	idxRes, err := g.genExpr(n.Child(0))
	if err != nil {
		return exprResult{}, err
	}
	if err := g.materializeReg(idxRes, RegY, n.Line); err != nil {
		return exprResult{}, err
	}
	g.emitOp(LDA, IndirectIndexedY, int(tmpPtr))
	return exprResult{Loc: Loc{Kind: LocReg, Reg: RegA, Size: 1}}, nil
}

func (g *codegen) genAddSub(n *ast.Node, sub bool) (exprResult, error) {
	rightRes, err := g.genExpr(n.Child(1))
	if err != nil {
		return exprResult{}, err
	}
	if err := g.materializeA(rightRes, n.Line); err != nil {
		return exprResult{}, err
	}
	slot, err := g.scratch.alloc()
	if err != nil {
		return exprResult{}, err
	}
	g.emitOp(STA, Zeropage, int(slot))

	leftRes, err := g.genExpr(n.Child(0))
	if err != nil {
		return exprResult{}, err
	}
	if err := g.materializeA(leftRes, n.Line); err != nil {
		return exprResult{}, err
	}

	if sub {
		g.emitOp(SEC, Implied, 0)
		g.emitOp(SBC, Zeropage, int(slot))
	} else {
		g.emitOp(CLC, Implied, 0)
		g.emitOp(ADC, Zeropage, int(slot))
	}
	g.scratch.free(slot)
	return exprResult{Loc: Loc{Kind: LocReg, Reg: RegA, Size: 1}}, nil
}

func (g *codegen) genNeg(n *ast.Node) (exprResult, error) {
	res, err := g.genExpr(n.Child(0))
	if err != nil {
		return exprResult{}, err
	}
	if err := g.materializeA(res, n.Line); err != nil {
		return exprResult{}, err
	}
	g.emitOp(CLC, Implied, 0)
	g.emitOp(EOR, Immediate, 0xff)
	g.emitOp(ADC, Immediate, 1)
	return exprResult{Loc: Loc{Kind: LocReg, Reg: RegA, Size: 1}}, nil
}

func (g *codegen) genMul(n *ast.Node) (exprResult, error) {
	left, err := g.genExpr(n.Child(0))
	if err != nil {
		return exprResult{}, err
	}
	if err := g.materializeReg(left, RegX, n.Line); err != nil {
		return exprResult{}, err
	}
	right, err := g.genExpr(n.Child(1))
	if err != nil {
		return exprResult{}, err
	}
	if err := g.materializeReg(right, RegY, n.Line); err != nil {
		return exprResult{}, err
	}
	g.require("MUL")
	g.emitLabelRef(JSR, Absolute, mulLabel)
	return exprResult{Loc: Loc{Kind: LocReg, Reg: RegA, Size: 1}}, nil
}

func (g *codegen) genDiv(n *ast.Node) (exprResult, error) {
	left, err := g.genExpr(n.Child(0))
	if err != nil {
		return exprResult{}, err
	}
	if err := g.materializeA(left, n.Line); err != nil {
		return exprResult{}, err
	}
	g.emitOp(STA, Zeropage, int(mulDivScratch0))

	right, err := g.genExpr(n.Child(1))
	if err != nil {
		return exprResult{}, err
	}
	if err := g.materializeA(right, n.Line); err != nil {
		return exprResult{}, err
	}
	g.emitOp(STA, Zeropage, int(mulDivScratch1))

	g.require("DIV")
	g.emitLabelRef(JSR, Absolute, divLabel)
	return exprResult{Loc: Loc{Kind: LocReg, Reg: RegA, Size: 1}}, nil
}

// genCompare implements relational operators by comparing left to right and
// branching into a 0/1 boolean materialized in A.
func (g *codegen) genCompare(n *ast.Node) (exprResult, error) {
	rightRes, err := g.genExpr(n.Child(1))
	if err != nil {
		return exprResult{}, err
	}
	if err := g.materializeA(rightRes, n.Line); err != nil {
		return exprResult{}, err
	}
	slot, err := g.scratch.alloc()
	if err != nil {
		return exprResult{}, err
	}
	g.emitOp(STA, Zeropage, int(slot))

	leftRes, err := g.genExpr(n.Child(0))
	if err != nil {
		return exprResult{}, err
	}
	if err := g.materializeA(leftRes, n.Line); err != nil {
		return exprResult{}, err
	}
	g.emitOp(CMP, Zeropage, int(slot))
	g.scratch.free(slot)

	trueLbl := g.nextLbl()
	endLbl := g.nextLbl()

	switch n.Kind {
	case ast.Eq:
		g.emitLabelRef(BEQ, Relative, trueLbl)
	case ast.Neq:
		g.emitLabelRef(BNE, Relative, trueLbl)
	case ast.Lt:
		g.emitLabelRef(BCC, Relative, trueLbl)
	case ast.Geq:
		g.emitLabelRef(BCS, Relative, trueLbl)
	case ast.Leq:
		g.emitLabelRef(BCC, Relative, trueLbl)
		g.emitLabelRef(BEQ, Relative, trueLbl)
	case ast.Gt:
		falseLbl := g.nextLbl()
		g.emitLabelRef(BEQ, Relative, falseLbl)
		g.emitLabelRef(BCS, Relative, trueLbl)
		g.anchor(falseLbl)
	default:
		return exprResult{}, errInternal("unsupported comparison " + n.Kind.String())
	}

	g.emitOp(LDA, Immediate, 0)
	g.emitLabelRef(JMP, Absolute, endLbl)
	g.anchor(trueLbl)
	g.emitOp(LDA, Immediate, 1)
	g.anchor(endLbl)

	return exprResult{Loc: Loc{Kind: LocReg, Reg: RegA, Size: 1}}, nil
}

func (g *codegen) genCall(n *ast.Node) (exprResult, error) {
	fn, ok := g.funcs[n.Text]
	if !ok {
		return exprResult{}, errUndefinedFunction(n.Text, n.Line)
	}
	if len(n.Children) != len(fn.Args) {
		return exprResult{}, errBadArgs(n.Text, n.Line)
	}

	// The callee's own code reuses the zero-page scratch slots, and any call
	// overwrites arg_base_ptr: save the slots still holding pending operands,
	// and the caller's own arg_base_ptr, on the stack ahead of the arguments.
	var saved []byte
	for i, taken := range g.scratch.used {
		if taken {
			saved = append(saved, scratchBase+byte(i))
		}
	}
	if g.fn != nil && len(g.fn.Args) > 0 {
		saved = append(saved, argBasePtr)
	}
	for _, addr := range saved {
		g.emitOp(LDA, Zeropage, int(addr))
		g.emitOp(PHA, Implied, 0)
	}

	for i, argNode := range n.Children {
		argDef := fn.Args[i]
		if argDef.IsPointer {
			res, err := g.genPointerValue(argNode)
			if err != nil {
				return exprResult{}, err
			}
			if res.Loc.Size != 2 {
				return exprResult{}, errBadArgs(n.Text, n.Line)
			}
			if err := g.loadByte(res.Loc, res.Imm, 1); err != nil {
				return exprResult{}, err
			}
			g.emitOp(PHA, Implied, 0)
			if err := g.loadByte(res.Loc, res.Imm, 0); err != nil {
				return exprResult{}, err
			}
			g.emitOp(PHA, Implied, 0)
		} else {
			res, err := g.genExpr(argNode)
			if err != nil {
				return exprResult{}, err
			}
			if err := g.materializeA(res, n.Line); err != nil {
				return exprResult{}, err
			}
			g.emitOp(PHA, Implied, 0)
		}
	}

	// arg_base_ptr points at the last byte pushed (SP+1), offset 0 of the
	// argument block.
	g.emitOp(TSX, Implied, 0)
	g.emitOp(INX, Implied, 0)
	g.emitOp(STX, Zeropage, int(argBasePtr))
	g.emitOp(LDA, Immediate, 1)
	g.emitOp(STA, Zeropage, int(argBasePtr)+1)

	g.emitLabelRef(JSR, Absolute, fn.Label)

	// The return value comes back in A; hold it in Y while the stack and
	// the caller's zero-page state are restored, which all goes through A.
	g.emitOp(TAY, Implied, 0)

	argsSize := fn.ArgsSize()
	if argsSize > 0 {
		if argsSize <= 5 {
			for i := 0; i < argsSize; i++ {
				g.emitOp(PLA, Implied, 0)
			}
		} else {
			g.emitOp(TSX, Implied, 0)
			g.emitOp(TXA, Implied, 0)
			g.emitOp(CLC, Implied, 0)
			g.emitOp(ADC, Immediate, argsSize)
			g.emitOp(TAX, Implied, 0)
			g.emitOp(TXS, Implied, 0)
		}
	}

	for i := len(saved) - 1; i >= 0; i-- {
		g.emitOp(PLA, Implied, 0)
		g.emitOp(STA, Zeropage, int(saved[i]))
	}
	if g.fn != nil {
		// The callee pointed base_ptr at its own locals frame.
		g.loadAbsAddr(g.curFuncRAM, basePtr)
	}
	g.emitOp(TYA, Implied, 0)

	if !fn.HasRet {
		return exprResult{Loc: Loc{Kind: LocNone, Size: 0}}, nil
	}
	return exprResult{Loc: Loc{Kind: LocReg, Reg: RegA, Size: 1}}, nil
}

// --- statements ---

func (g *codegen) genStmt(n *ast.Node) error {
	switch n.Kind {
	case ast.Body:
		for _, c := range n.Children {
			if err := g.genStmt(c); err != nil {
				return err
			}
		}
		return nil

	case ast.Pass:
		return nil

	case ast.Var:
		return g.genLocalVar(n)

	case ast.Assign:
		return g.genAssign(n)

	case ast.MemAssign:
		return g.genMemAssign(n)

	case ast.IndexAssign:
		return g.genIndexAssign(n)

	case ast.Ret:
		res, err := g.genExpr(n.Child(0))
		if err != nil {
			return err
		}
		if err := g.materializeA(res, n.Line); err != nil {
			return err
		}
		g.emitOp(RTS, Implied, 0)
		return nil

	case ast.Call:
		_, err := g.genCall(n)
		return err

	case ast.IfStmt:
		return g.genIf(n)

	case ast.WhileStmt:
		return g.genWhile(n)

	default:
		return errInternal("unsupported statement node " + n.Kind.String())
	}
}

func (g *codegen) genLocalVar(n *ast.Node) error {
	v := &Variable{Name: n.Text, IsPointer: n.IsPointer, IsArray: n.IsArray, ArrayLen: n.ArrayLen}
	size := v.Size()

	if g.fn == nil {
		return g.genGlobalVarInto(n, v, size)
	}

	if err := g.scope.declare(v, size, n.Line); err != nil {
		return err
	}
	if len(n.Children) == 1 {
		if err := g.genVarInit(n.Child(0), v); err != nil {
			return err
		}
	}
	return nil
}

func (g *codegen) genGlobalVarInto(n *ast.Node, v *Variable, size int) error {
	addr, err := g.zp.alloc(size)
	if err != nil {
		return err
	}
	v.Loc = Loc{Kind: LocZeroPage, Addr: addr, Size: size}
	g.globals[n.Text] = v
	if len(n.Children) == 1 {
		return g.genVarInit(n.Child(0), v)
	}
	return nil
}

func (g *codegen) genVarInit(exprNode *ast.Node, v *Variable) error {
	if v.IsPointer {
		res, err := g.genPointerValue(exprNode)
		if err != nil {
			return err
		}
		if res.Loc.Size != 2 {
			return errSizeError("pointer initializer must be an address", exprNode.Line)
		}
		return g.copyValue(res.Loc, res.Imm, v.Loc, 2)
	}
	res, err := g.genExpr(exprNode)
	if err != nil {
		return err
	}
	if err := g.materializeA(res, exprNode.Line); err != nil {
		return err
	}
	return g.storeByte(v.Loc, 0)
}

func (g *codegen) genAssign(n *ast.Node) error {
	v, ok := g.lookup(n.Text)
	if !ok {
		return errUndefinedVariable(n.Text, n.Line)
	}
	if v.IsPointer {
		res, err := g.genPointerValue(n.Child(0))
		if err != nil {
			return err
		}
		if res.Loc.Size != 2 {
			return errSizeError("pointer assignment requires an address", n.Line)
		}
		return g.copyValue(res.Loc, res.Imm, v.Loc, 2)
	}
	res, err := g.genExpr(n.Child(0))
	if err != nil {
		return err
	}
	if err := g.materializeA(res, n.Line); err != nil {
		return err
	}
	return g.storeByte(v.Loc, 0)
}

func (g *codegen) genMemAssign(n *ast.Node) error {
	v, ok := g.lookup(n.Text)
	if !ok {
		return errUndefinedVariable(n.Text, n.Line)
	}
	if !v.IsPointer {
		return errInvalidDereference(n.Text, n.Line)
	}

	res, err := g.genExpr(n.Child(0))
	if err != nil {
		return err
	}
	if err := g.materializeA(res, n.Line); err != nil {
		return err
	}
	slot, err := g.scratch.alloc()
	if err != nil {
		return err
	}
	g.emitOp(STA, Zeropage, int(slot))

	if err := g.loadPointerToTmpPtr(v); err != nil {
		return err
	}
	g.emitOp(LDA, Zeropage, int(slot))
	g.scratch.free(slot)
	g.emitOp(LDY, Immediate, 0)
	g.emitOp(STA, IndirectIndexedY, int(tmpPtr))
	return nil
}

func (g *codegen) genIndexAssign(n *ast.Node) error {
	_, addr, err := g.arrayBase(n.Text, n.Line)
	if err != nil {
		return err
	}

	valRes, err := g.genExpr(n.Child(1))
	if err != nil {
		return err
	}
	if err := g.materializeA(valRes, n.Line); err != nil {
		return err
	}
	slot, err := g.scratch.alloc()
	if err != nil {
		return err
	}
	g.emitOp(STA, Zeropage, int(slot))

	g.loadAbsAddr(addr, tmpPtr)

	idxRes, err := g.genExpr(n.Child(0))
	if err != nil {
		return err
	}
	if err := g.materializeReg(idxRes, RegY, n.Line); err != nil {
		return err
	}

	g.emitOp(LDA, Zeropage, int(slot))
	g.scratch.free(slot)
	g.emitOp(STA, IndirectIndexedY, int(tmpPtr))
	return nil
}

func (g *codegen) genIf(n *ast.Node) error {
	endLbl := g.nextLbl()
	for i, branch := range n.Children {
		last := i == len(n.Children)-1

		if branch.Kind == ast.ElseBranch {
			g.scope.push()
			if err := g.genStmt(branch.Child(0)); err != nil {
				return err
			}
			g.genScopeExit()
			break
		}

		nextLbl := endLbl
		if !last {
			nextLbl = g.nextLbl()
		}

		condRes, err := g.genExpr(branch.Child(0))
		if err != nil {
			return err
		}
		if err := g.materializeA(condRes, branch.Line); err != nil {
			return err
		}
		g.emitOp(CMP, Immediate, 0)
		g.emitLabelRef(BEQ, Relative, nextLbl)

		g.scope.push()
		if err := g.genStmt(branch.Child(1)); err != nil {
			return err
		}
		g.genScopeExit()

		if !last {
			g.emitLabelRef(JMP, Absolute, endLbl)
			g.anchor(nextLbl)
		}
	}
	g.anchor(endLbl)
	return nil
}

func (g *codegen) genWhile(n *ast.Node) error {
	startLbl := g.nextLbl()
	endLbl := g.nextLbl()

	g.anchor(startLbl)
	condRes, err := g.genExpr(n.Child(0))
	if err != nil {
		return err
	}
	if err := g.materializeA(condRes, n.Line); err != nil {
		return err
	}
	g.emitOp(CMP, Immediate, 0)
	g.emitLabelRef(BEQ, Relative, endLbl)

	g.scope.push()
	if err := g.genStmt(n.Child(1)); err != nil {
		return err
	}
	g.genScopeExit()

	g.emitLabelRef(JMP, Absolute, startLbl)
	g.anchor(endLbl)
	return nil
}

// genScopeExit pops the innermost scope; locals live in the function's
// static frame (see genFunc) so there is no runtime stack space to
// reclaim — popping only affects name visibility and offset reuse for the
// next sibling scope.
func (g *codegen) genScopeExit() {
	g.scope.pop()
}

// --- functions ---

func buildArgOffsets(args []*Variable) {
	running := 0
	for i := len(args) - 1; i >= 0; i-- {
		a := args[i]
		size := a.Size()
		a.Loc = Loc{Kind: LocArgOffset, Offset: running, Size: size}
		running += size
	}
}

func bodyHasReturn(n *ast.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == ast.Ret {
		return true
	}
	for _, c := range n.Children {
		if bodyHasReturn(c) {
			return true
		}
	}
	return false
}

func (g *codegen) registerFunc(funcNode *ast.Node) error {
	if _, exists := g.funcs[funcNode.Text]; exists {
		return errRedefinedVariable(funcNode.Text, funcNode.Line)
	}

	argListNode := funcNode.Child(0)
	bodyNode := funcNode.Child(1)

	var args []*Variable
	for _, a := range argListNode.Children {
		args = append(args, &Variable{Name: a.Text, IsPointer: a.IsPointer})
	}
	buildArgOffsets(args)

	g.funcs[funcNode.Text] = &Function{
		Name:    funcNode.Text,
		Args:    args,
		HasRet:  bodyHasReturn(bodyNode),
		RetSize: 1,
		Label:   "fn_" + funcNode.Text,
	}
	return nil
}

func (g *codegen) genFunc(funcNode *ast.Node) error {
	fn := g.funcs[funcNode.Text]
	bodyNode := funcNode.Child(1)

	g.fn = fn
	g.scope = newScopeStack()
	g.scope.push()
	g.args = map[string]*Variable{}
	for _, a := range fn.Args {
		g.args[a.Name] = a
	}

	g.anchor(fn.Label)

	ramAddr := ramFrameBase + g.frameBump
	g.curFuncRAM = ramAddr
	g.loadAbsAddr(ramAddr, basePtr)

	if err := g.genStmt(bodyNode); err != nil {
		return err
	}

	g.frameBump += g.scope.frameSize()

	// Fallback RTS for bodies that fall off the end without an explicit
	// return (permitted for functions with no declared return value).
	g.emitOp(RTS, Implied, 0)

	g.fn = nil
	g.scope = nil
	g.args = nil
	return nil
}

// Generate compiles a parsed program into an unresolved Instruction stream
// plus every global/function table the resolver and assembler need. It does
// not itself resolve labels or assemble bytes — see Compile in compile.go.
func Generate(root *ast.Node) (*codegen, error) {
	if root.Kind != ast.Start {
		return nil, errInternal("root node is not a start node")
	}

	g := newCodegen()

	var varListNode, funcListNode *ast.Node
	for _, c := range root.Children {
		switch c.Kind {
		case ast.VarList:
			varListNode = c
		case ast.FuncList:
			funcListNode = c
		}
	}

	// Pre-pass: register every function's signature before generating any
	// body, so forward calls resolve.
	if funcListNode != nil {
		for _, fn := range funcListNode.Children {
			if err := g.registerFunc(fn); err != nil {
				return nil, err
			}
		}
	}

	// Globals are declared ahead of function bodies too; the parser's Start
	// node always lists VarList before FuncList, whatever the source order.
	if varListNode != nil {
		for _, v := range varListNode.Children {
			if err := g.genLocalVar(v); err != nil {
				return nil, err
			}
		}
	}

	mainFn, ok := g.funcs["main"]
	if !ok {
		return nil, errUndefinedFunction("main", root.Line)
	}

	// main is free to return a value: it ends up in A when BRK halts the
	// CPU. A 2-byte return is still rejected, by the same narrowing check
	// every other 1-byte target enforces (see genStmt's Ret case).
	g.emitLabelRef(JSR, Absolute, mainFn.Label)
	g.emitOp(BRK, Implied, 0)

	if funcListNode != nil {
		for _, fn := range funcListNode.Children {
			if err := g.genFunc(fn); err != nil {
				return nil, err
			}
			if g.frameBump > 0xff {
				return nil, errStackOverflow(fn.Line)
			}
		}
	}

	if g.required["MUL"] {
		g.code = append(g.code, mulRoutine()...)
	}
	if g.required["DIV"] {
		g.code = append(g.code, divRoutine()...)
	}

	return g, nil
}
