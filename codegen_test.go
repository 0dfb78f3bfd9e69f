package nesquik

import (
	"testing"

	"github.com/V0idExp/nesquik/parser"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateOrFail(t *testing.T, src string) *codegen {
	t.Helper()
	root, err := parser.Parse(src)
	require.NoError(t, err)
	g, err := Generate(root)
	require.NoError(t, err, "generation failed for:\n%s\nparsed tree:\n%s", src, spew.Sdump(root))
	return g
}

func TestGenerateRejectsUndefinedVariable(t *testing.T) {
	root, err := parser.Parse("func main():\n    x = 1\n")
	require.NoError(t, err)
	_, err = Generate(root)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrUndefinedVariable, ce.Kind)
}

func TestGenerateRejectsUndefinedFunction(t *testing.T) {
	root, err := parser.Parse("func main():\n    missing(1)\n")
	require.NoError(t, err)
	_, err = Generate(root)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrUndefinedFunction, ce.Kind)
}

func TestGenerateRejectsBadArgCount(t *testing.T) {
	root, err := parser.Parse("func add(a, b):\n    return a + b\nfunc main():\n    add(1)\n")
	require.NoError(t, err)
	_, err = Generate(root)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrBadArgs, ce.Kind)
}

func TestGenerateRequiresMain(t *testing.T) {
	root, err := parser.Parse("var x = 0\n")
	require.NoError(t, err)
	_, err = Generate(root)
	require.Error(t, err)
}

func TestGenerateAllowsMainWithByteReturnValue(t *testing.T) {
	g := generateOrFail(t, "func main():\n    return 1\n")
	assert.NotEmpty(t, g.code)
}

func TestGenerateRejectsMainWithTwoByteReturnValue(t *testing.T) {
	root, err := parser.Parse("func main():\n    return 256\n")
	require.NoError(t, err)
	_, err = Generate(root)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrSizeError, ce.Kind)
}

func TestParseImmTwoByteLiteral(t *testing.T) {
	v, size, err := parseImm("256", 1)
	require.NoError(t, err)
	assert.Equal(t, 256, v)
	assert.Equal(t, 2, size)
}

func TestParseImmRejectsLiteralWiderThanTwoBytes(t *testing.T) {
	_, _, err := parseImm("65536", 1)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrSizeError, ce.Kind)
}

func TestGenerateRequiresMulRoutineOnDemand(t *testing.T) {
	g := generateOrFail(t, "var r = 0\nfunc main():\n    r = 3 * 4\n")
	assert.True(t, g.required["MUL"])
	assert.False(t, g.required["DIV"])

	found := false
	for _, instr := range g.code {
		if instr.Anchor == mulLabel {
			found = true
		}
	}
	assert.True(t, found, "MUL routine should be appended once required")
}

func TestGenerateRedefinedLocalFails(t *testing.T) {
	root, err := parser.Parse("func main():\n    var x = 1\n    var x = 2\n    return x\n")
	require.NoError(t, err)
	_, err = Generate(root)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrRedefinedVariable, ce.Kind)
}

func TestGenerateShadowingAcrossScopesIsAllowed(t *testing.T) {
	g := generateOrFail(t, ""+
		"func main():\n"+
		"    var x = 1\n"+
		"    if 1:\n"+
		"        var x = 2\n"+
		"        return x\n"+
		"    return x\n")
	assert.NotEmpty(t, g.code)
}
