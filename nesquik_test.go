package nesquik

import (
	"fmt"
	"testing"

	"github.com/V0idExp/nesquik/cpu6502"
	"github.com/V0idExp/nesquik/parser"
	"github.com/stretchr/testify/require"
)

const testOrg = 0x0600

func mustCompile(t *testing.T, src string) *Program {
	t.Helper()
	root, err := parser.Parse(src)
	require.NoError(t, err)
	prog, err := Compile(root, testOrg)
	require.NoError(t, err)
	return prog
}

func runProgram(t *testing.T, prog *Program) *cpu6502.CPU {
	t.Helper()
	c := cpu6502.New(uint16(prog.Org))
	c.Load(uint16(prog.Org), prog.Obj)
	require.NoError(t, c.Run())
	require.True(t, c.Halted, "program should halt via BRK")
	return c
}

func TestEndToEndGlobalAssignAndArithmetic(t *testing.T) {
	prog := mustCompile(t, ""+
		"var result = 0\n"+
		"func main():\n"+
		"    result = 3 + 4\n")
	c := runProgram(t, prog)
	require.Equal(t, byte(7), c.Mem[firstFreeZP])
}

func TestEndToEndFunctionCallWithArgs(t *testing.T) {
	prog := mustCompile(t, ""+
		"var result = 0\n"+
		"func add(a, b):\n"+
		"    return a + b\n"+
		"func main():\n"+
		"    result = add(3, 4)\n")
	c := runProgram(t, prog)
	require.Equal(t, byte(7), c.Mem[firstFreeZP])
}

func TestEndToEndWhileLoop(t *testing.T) {
	prog := mustCompile(t, ""+
		"var total = 0\n"+
		"var i = 0\n"+
		"func main():\n"+
		"    while i != 5:\n"+
		"        total = total + i\n"+
		"        i = i + 1\n")
	c := runProgram(t, prog)
	// total = 0+1+2+3+4 = 10
	require.Equal(t, byte(10), c.Mem[firstFreeZP])
}

func TestEndToEndIfElse(t *testing.T) {
	prog := mustCompile(t, ""+
		"var result = 0\n"+
		"func main():\n"+
		"    var x = 10\n"+
		"    if x > 5:\n"+
		"        result = 1\n"+
		"    else:\n"+
		"        result = 2\n")
	c := runProgram(t, prog)
	require.Equal(t, byte(1), c.Mem[firstFreeZP])
}

func TestEndToEndPointerAndArray(t *testing.T) {
	prog := mustCompile(t, ""+
		"var arr[3]\n"+
		"var result = 0\n"+
		"func main():\n"+
		"    arr[0] = 9\n"+
		"    arr[1] = 8\n"+
		"    var *p = &arr\n"+
		"    result = *p\n")
	c := runProgram(t, prog)
	resultAddr := firstFreeZP + 3 // arr occupies 3 bytes, result comes right after
	require.Equal(t, byte(9), c.Mem[resultAddr])
}

// The following cover the concrete round trips in which main itself returns
// a value: the compiled program's BRK halts with the result sitting in A.

func TestEndToEndMainReturnsOperatorPrecedence(t *testing.T) {
	prog := mustCompile(t, "func main():\n    return 2 + 2 * 2\n")
	c := runProgram(t, prog)
	require.Equal(t, byte(6), c.A)
}

func TestEndToEndMainReturnsParenthesizedExpr(t *testing.T) {
	prog := mustCompile(t, "func main():\n    return (2 + 3) * (4 + 5)\n")
	c := runProgram(t, prog)
	require.Equal(t, byte(45), c.A)
}

func TestEndToEndMainReturnsDivision(t *testing.T) {
	prog := mustCompile(t, "func main():\n    return 8 / 3\n")
	c := runProgram(t, prog)
	require.Equal(t, byte(2), c.A)
}

func TestEndToEndMainReturnsAfterIf(t *testing.T) {
	prog := mustCompile(t, ""+
		"var a = 10\n"+
		"func main():\n"+
		"    if a == 10:\n"+
		"        a = a + 2\n"+
		"    return a\n")
	c := runProgram(t, prog)
	require.Equal(t, byte(12), c.A)
}

func TestEndToEndMainReturnsSumOfTwoCalls(t *testing.T) {
	prog := mustCompile(t, ""+
		"var a = 5\n"+
		"func foo():\n"+
		"    return a + 3\n"+
		"func bar():\n"+
		"    return 2\n"+
		"func main():\n"+
		"    return foo() + bar()\n")
	c := runProgram(t, prog)
	require.Equal(t, byte(10), c.A)
}

func TestEndToEndMainReturnsAfterWhile(t *testing.T) {
	prog := mustCompile(t, ""+
		"func main():\n"+
		"    var i = 0\n"+
		"    while i < 10:\n"+
		"        i = i + 1\n"+
		"    return i\n")
	c := runProgram(t, prog)
	require.Equal(t, byte(10), c.A)
}

func TestEndToEndMainReturnsGlobalAliasedByAddressLiteral(t *testing.T) {
	// 'a' is the first global declared, so it lands at firstFreeZP; a raw
	// address literal naming that same cell aliases it through *ptr.
	src := fmt.Sprintf(""+
		"var a = 200\n"+
		"func main():\n"+
		"    var *ptr = $%x\n"+
		"    *ptr = 123\n"+
		"    return a\n", firstFreeZP)
	prog := mustCompile(t, src)
	c := runProgram(t, prog)
	require.Equal(t, byte(123), c.A)
	require.Equal(t, byte(123), c.Mem[firstFreeZP])
}

func TestEndToEndMainReturnsArraySum(t *testing.T) {
	prog := mustCompile(t, ""+
		"func main():\n"+
		"    var arr[3]\n"+
		"    arr[0] = 5\n"+
		"    arr[1] = 4\n"+
		"    arr[2] = 3\n"+
		"    return arr[0] + arr[1] + arr[2]\n")
	c := runProgram(t, prog)
	require.Equal(t, byte(12), c.A)
}

func TestEndToEndMissingMain(t *testing.T) {
	root, err := parser.Parse("var x = 0\n")
	require.NoError(t, err)
	_, err = Compile(root, testOrg)
	require.Error(t, err)
}
