// Package ast defines the node-shape contract the NESQuik code generator
// consumes. The lexer/parser that actually produces these trees lives in
// package parser; this package only fixes the shape both sides agree on.
package ast

// Kind tags what a Node represents. The generator switches on Kind rather
// than using per-rule dynamic dispatch.
type Kind int

const (
	Start Kind = iota
	VarList
	FuncList
	Func
	ArgList
	Arg
	Var
	Array
	Body
	IfStmt
	IfBranch
	ElifBranch
	ElseBranch
	WhileStmt
	Assign
	MemAssign
	IndexAssign
	Ret
	Call
	Imm
	Ref
	Deref
	GetRef
	Index
	Add
	Sub
	Mul
	Div
	Neg
	Eq
	Neq
	Gt
	Geq
	Lt
	Leq
	Pass
)

//go:generate stringer -type=Kind

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

var kindNames = map[Kind]string{
	Start:       "start",
	VarList:     "var_list",
	FuncList:    "func_list",
	Func:        "func",
	ArgList:     "arg_list",
	Arg:         "arg",
	Var:         "var",
	Array:       "array",
	Body:        "body",
	IfStmt:      "if_stmt",
	IfBranch:    "if_branch",
	ElifBranch:  "elif_branch",
	ElseBranch:  "else_branch",
	WhileStmt:   "while_stmt",
	Assign:      "assign",
	MemAssign:   "mem_assign",
	IndexAssign: "index_assign",
	Ret:         "ret",
	Call:        "call",
	Imm:         "imm",
	Ref:         "ref",
	Deref:       "deref",
	GetRef:      "getref",
	Index:       "index",
	Add:         "add",
	Sub:         "sub",
	Mul:         "mul",
	Div:         "div",
	Neg:         "neg",
	Eq:          "eq",
	Neq:         "neq",
	Gt:          "gt",
	Geq:         "geq",
	Lt:          "lt",
	Leq:         "leq",
	Pass:        "pass",
}

// Node is one AST node. Nodes are immutable once built: the generator never
// mutates a Node; it hands each expression's location back to its caller
// as a return value instead of storing it on the node.
//
// Text carries a leaf token's literal text for the nodes that have one
// (Imm, Ref, Var, Arg, Call, GetRef, Deref, Index, Assign, MemAssign,
// IndexAssign all carry the identifier they operate on in Text; Imm carries
// the literal digits, with a leading '$' for hex).
type Node struct {
	ID       int
	Kind     Kind
	Text     string
	Line     int
	Children []*Node
	// IsPointer/IsArray are only meaningful on Var/Arg nodes.
	IsPointer bool
	IsArray   bool
	ArrayLen  int
}

// Child returns the i'th child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Dump renders the tree as an indented listing, in the spirit of the
// original compiler's Lark-tree pretty printer.
func (n *Node) Dump() string {
	var sb dumpBuilder
	n.dump(&sb, 0)
	return sb.String()
}

type dumpBuilder struct {
	lines []string
}

func (b *dumpBuilder) String() string {
	out := ""
	for _, l := range b.lines {
		out += l + "\n"
	}
	return out
}

func (n *Node) dump(b *dumpBuilder, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	line := indent + n.Kind.String()
	if n.Text != "" {
		line += " " + n.Text
	}
	b.lines = append(b.lines, line)
	for _, c := range n.Children {
		c.dump(b, depth+1)
	}
}

// Builder allocates Nodes with sequential, stable IDs, the arena the design
// notes call for so that attribute-grafted state (loc, size, labels) can
// live in a side table keyed by ID instead of on the node itself.
type Builder struct {
	next int
}

// New allocates a fresh Node with the next available ID.
func (b *Builder) New(kind Kind, line int, text string, children ...*Node) *Node {
	n := &Node{
		ID:       b.next,
		Kind:     kind,
		Text:     text,
		Line:     line,
		Children: children,
	}
	b.next++
	return n
}
