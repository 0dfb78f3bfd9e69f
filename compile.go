package nesquik

import "github.com/V0idExp/nesquik/ast"

// Compile runs the full pipeline over a parsed program: code generation,
// address resolution, and assembly into a final byte image.
func Compile(root *ast.Node, org uint16) (*Program, error) {
	g, err := Generate(root)
	if err != nil {
		return nil, err
	}

	resolver := newAddressResolver()
	if err := resolver.Resolve(org, g.code); err != nil {
		return nil, err
	}

	asm := &Assembler{}
	obj, listing, err := asm.Assemble(g.code)
	if err != nil {
		return nil, err
	}

	return &Program{
		Org:  org,
		Code: g.code,
		Asm:  listing,
		Obj:  obj,
	}, nil
}
