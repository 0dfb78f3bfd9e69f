package nesquik

import "fmt"

// ErrorKind classifies a CompileError. The taxonomy is flat by design: the
// pipeline has no recovery story, the first error aborts the current stage
// (see compile.go).
type ErrorKind int

const (
	// ErrUndefinedVariable: ref or assign to an unknown name.
	ErrUndefinedVariable ErrorKind = iota
	// ErrRedefinedVariable: var declares a name already present in the
	// innermost scope.
	ErrRedefinedVariable
	// ErrUndefinedFunction: call to, or missing definition of, a function.
	ErrUndefinedFunction
	// ErrUndefinedLabel: the resolver could not map a symbolic target.
	ErrUndefinedLabel
	// ErrInvalidDereference: *, [] or & applied where a pointer/array is
	// required and the operand isn't one.
	ErrInvalidDereference
	// ErrSizeError: literal >2 bytes, a 2-byte value where one byte is
	// expected (operand size mismatch, narrowing assignment, 2-byte return,
	// including from main), a pointer set from a non-address, or globals
	// outgrowing zero page. Locals frames over 255 bytes, including a local
	// array, are reported as ErrStackOverflow instead.
	ErrSizeError
	// ErrStackOverflow: function locals total more than 255 bytes.
	ErrStackOverflow
	// ErrBadArgs: call arity or argument-size mismatch.
	ErrBadArgs
	// ErrInternalError: compiler bug — unsupported addressing mode reached,
	// opcode/size mismatch, arg-mode inconsistency.
	ErrInternalError
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUndefinedVariable:
		return "UndefinedVariable"
	case ErrRedefinedVariable:
		return "RedefinedVariable"
	case ErrUndefinedFunction:
		return "UndefinedFunction"
	case ErrUndefinedLabel:
		return "UndefinedLabel"
	case ErrInvalidDereference:
		return "InvalidDereference"
	case ErrSizeError:
		return "SizeError"
	case ErrStackOverflow:
		return "StackOverflow"
	case ErrBadArgs:
		return "BadArgs"
	case ErrInternalError:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// CompileError is the single error type raised anywhere in the pipeline.
// Name carries the offending identifier where one exists; Line is the
// source line of the AST node that triggered the error, or 0 when no node
// is available (e.g. resolver/assembler failures that only know a byte
// offset).
type CompileError struct {
	Kind    ErrorKind
	Name    string
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	loc := ""
	if e.Line > 0 {
		loc = fmt.Sprintf(" (line %d)", e.Line)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s%s", e.Kind, e.Message, loc)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s%s", e.Kind, e.Name, loc)
	}
	return fmt.Sprintf("%s%s", e.Kind, loc)
}

// Is lets callers compare against a sentinel *CompileError of the wanted
// kind with errors.Is(err, nesquik.ErrSizeErrorKind) style checks.
func (e *CompileError) Is(target error) bool {
	ck, ok := target.(*CompileError)
	if !ok {
		return false
	}
	return e.Kind == ck.Kind
}

func errUndefinedVariable(name string, line int) *CompileError {
	return &CompileError{Kind: ErrUndefinedVariable, Name: name, Line: line, Message: fmt.Sprintf("undefined variable %q", name)}
}

func errRedefinedVariable(name string, line int) *CompileError {
	return &CompileError{Kind: ErrRedefinedVariable, Name: name, Line: line, Message: fmt.Sprintf("%q already declared in this scope", name)}
}

func errUndefinedFunction(name string, line int) *CompileError {
	return &CompileError{Kind: ErrUndefinedFunction, Name: name, Line: line, Message: fmt.Sprintf("undefined function %q", name)}
}

func errUndefinedLabel(name string) *CompileError {
	return &CompileError{Kind: ErrUndefinedLabel, Name: name, Message: fmt.Sprintf("undefined label %q", name)}
}

func errInvalidDereference(name string, line int) *CompileError {
	return &CompileError{Kind: ErrInvalidDereference, Name: name, Line: line, Message: fmt.Sprintf("%q is not a pointer", name)}
}

func errSizeError(msg string, line int) *CompileError {
	return &CompileError{Kind: ErrSizeError, Line: line, Message: msg}
}

func errStackOverflow(line int) *CompileError {
	return &CompileError{Kind: ErrStackOverflow, Line: line, Message: "function locals exceed 255 bytes"}
}

func errBadArgs(name string, line int) *CompileError {
	return &CompileError{Kind: ErrBadArgs, Name: name, Line: line, Message: fmt.Sprintf("bad arguments to %q", name)}
}

func errInternal(msg string) *CompileError {
	return &CompileError{Kind: ErrInternalError, Message: msg}
}

// Sentinel values for errors.Is comparisons that don't need a message.
var (
	ErrSizeErrorKind = &CompileError{Kind: ErrSizeError}
)
