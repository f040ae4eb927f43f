package assembly

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/onflow/contract-client/model/flow"
)

const (
	// maxRepeat bounds the unrolling of repeat blocks.
	maxRepeat = 1000
	// maxStackIndex is the deepest stack position an instruction can address.
	maxStackIndex = 15
	// maxSlotIndex is the largest storage slot index an instruction can address.
	maxSlotIndex = 255
)

// Assembler compiles libraries and scripts. It is immutable; methods that
// configure it return a new assembler.
type Assembler struct {
	debug     bool
	libraries map[string]*Library
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithDebugMode keeps source line numbers on compiled instructions. It does
// not change any digest.
func WithDebugMode(enabled bool) Option {
	return func(a *Assembler) {
		a.debug = enabled
	}
}

// NewAssembler returns an assembler with no linked libraries.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{libraries: make(map[string]*Library)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithDynamicLibrary returns an assembler that links lib. Scripts importing
// it compile calls into references to the library's procedure digests, which
// are resolved against the executing account's code at run time.
func (a *Assembler) WithDynamicLibrary(lib *Library) (*Assembler, error) {
	if err := validatePath(lib.Path); err != nil {
		return nil, newCompileError(lib.Path, 0, "%v", err)
	}
	for path, linked := range a.libraries {
		if path != lib.Path && linked.Alias() == lib.Alias() {
			return nil, newCompileError(lib.Path, 0, "alias %q already used by %s", lib.Alias(), path)
		}
	}

	next := &Assembler{
		debug:     a.debug,
		libraries: make(map[string]*Library, len(a.libraries)+1),
	}
	for path, linked := range a.libraries {
		next.libraries[path] = linked
	}
	next.libraries[lib.Path] = lib
	return next, nil
}

// AssembleLibrary compiles library source under path.
func (a *Assembler) AssembleLibrary(path string, source string) (*Library, error) {
	if err := validatePath(path); err != nil {
		return nil, newCompileError(path, 0, "%v", err)
	}
	m, err := newParser(path, source).parseModule(kindLibrary)
	if err != nil {
		return nil, err
	}

	c := a.newCompiler(path)
	var exported []Procedure
	for _, def := range m.procs {
		body, err := c.lower(def.body)
		if err != nil {
			return nil, err
		}
		c.locals[def.name] = body
		if def.exported {
			exported = append(exported, newProcedure(def.name, true, body))
		}
	}
	return newLibrary(path, exported), nil
}

// AssembleProgram compiles a script. Every imported library must have been
// linked with WithDynamicLibrary.
func (a *Assembler) AssembleProgram(source string) (*Program, error) {
	const unit = "script"
	m, err := newParser(unit, source).parseModule(kindProgram)
	if err != nil {
		return nil, err
	}

	c := a.newCompiler(unit)
	var paths []string
	for _, imp := range m.imports {
		lib, ok := a.libraries[imp.path]
		if !ok {
			return nil, newCompileError(unit, imp.line, "library %s is not linked", imp.path)
		}
		if _, dup := c.imports[imp.alias]; dup {
			return nil, newCompileError(unit, imp.line, "duplicate import %s", imp.path)
		}
		c.imports[imp.alias] = lib
		paths = append(paths, imp.path)
	}
	for _, def := range m.procs {
		body, err := c.lower(def.body)
		if err != nil {
			return nil, err
		}
		c.locals[def.name] = body
	}
	entry, err := c.lower(m.entry)
	if err != nil {
		return nil, err
	}
	return newProgram(entry, paths), nil
}

type compiler struct {
	unit    string
	debug   bool
	locals  map[string][]Instruction
	imports map[string]*Library
}

func (a *Assembler) newCompiler(unit string) *compiler {
	return &compiler{
		unit:    unit,
		debug:   a.debug,
		locals:  make(map[string][]Instruction),
		imports: make(map[string]*Library),
	}
}

func (c *compiler) errorf(line int, format string, args ...interface{}) error {
	return newCompileError(c.unit, line, format, args...)
}

func (c *compiler) lower(nodes []node) ([]Instruction, error) {
	var out []Instruction
	for _, n := range nodes {
		if n.repeat > 0 {
			body, err := c.lower(n.body)
			if err != nil {
				return nil, err
			}
			for i := 0; i < n.repeat; i++ {
				out = append(out, body...)
			}
			continue
		}
		insts, err := c.instruction(n.tok)
		if err != nil {
			return nil, err
		}
		out = append(out, insts...)
	}
	return out, nil
}

func (c *compiler) instruction(tok token) ([]Instruction, error) {
	head, arg, hasArg := strings.Cut(tok.text, ".")
	line := 0
	if c.debug {
		line = tok.line
	}
	single := func(op OpCode, imm uint64) []Instruction {
		return []Instruction{{Op: op, Imm: imm, Line: line}}
	}

	switch head {
	case "push":
		if !hasArg {
			return nil, c.errorf(tok.line, "push requires a value")
		}
		var out []Instruction
		for _, s := range strings.Split(arg, ".") {
			v, err := parseFelt(s)
			if err != nil {
				return nil, c.errorf(tok.line, "%v", err)
			}
			out = append(out, Instruction{Op: OpPush, Imm: uint64(v), Line: line})
		}
		return out, nil

	case "drop", "add", "sub", "mul", "neg", "eq", "assert", "padw":
		if hasArg {
			return nil, c.errorf(tok.line, "%s takes no argument", head)
		}
		return single(simpleOps[head], 0), nil

	case "dup":
		idx, err := c.stackIndex(tok, arg, hasArg, 0, 0)
		if err != nil {
			return nil, err
		}
		return single(OpDup, idx), nil

	case "swap":
		idx, err := c.stackIndex(tok, arg, hasArg, 1, 1)
		if err != nil {
			return nil, err
		}
		return single(OpSwap, idx), nil

	case "movup":
		if !hasArg {
			return nil, c.errorf(tok.line, "movup requires an index")
		}
		idx, err := c.stackIndex(tok, arg, hasArg, 0, 2)
		if err != nil {
			return nil, err
		}
		return single(OpMovUp, idx), nil

	case "adv":
		switch arg {
		case "mapval":
			return single(OpAdvMapVal, 0), nil
		case "pushw":
			return single(OpAdvPushW, 0), nil
		default:
			return nil, c.errorf(tok.line, "unknown instruction %q", tok.text)
		}

	case "get_item", "set_item":
		idx, err := strconv.ParseUint(arg, 10, 64)
		if !hasArg || err != nil || idx > maxSlotIndex {
			return nil, c.errorf(tok.line, "%s requires a slot index between 0 and %d", head, maxSlotIndex)
		}
		if head == "get_item" {
			return single(OpGetItem, idx), nil
		}
		return single(OpSetItem, idx), nil

	case "exec":
		if strings.Contains(arg, PathSeparator) {
			return nil, c.errorf(tok.line, "library procedures must be invoked with call")
		}
		body, ok := c.locals[arg]
		if !ok {
			return nil, c.errorf(tok.line, "unknown procedure %q", arg)
		}
		return append([]Instruction(nil), body...), nil

	case "call":
		alias, name, ok := cutLast(arg, PathSeparator)
		if !ok {
			return nil, c.errorf(tok.line, "call target must be ALIAS::NAME, got %q", arg)
		}
		lib, ok := c.imports[alias]
		if !ok {
			return nil, c.errorf(tok.line, "unknown library %q", alias)
		}
		proc, ok := lib.Procedure(name)
		if !ok {
			return nil, c.errorf(tok.line, "library %s does not export %q", lib.Path, name)
		}
		return []Instruction{{Op: OpCall, Target: proc.Digest, Line: line}}, nil
	}

	return nil, c.errorf(tok.line, "unknown instruction %q", tok.text)
}

var simpleOps = map[string]OpCode{
	"drop":   OpDrop,
	"add":    OpAdd,
	"sub":    OpSub,
	"mul":    OpMul,
	"neg":    OpNeg,
	"eq":     OpEq,
	"assert": OpAssert,
	"padw":   OpPadW,
}

func (c *compiler) stackIndex(tok token, arg string, hasArg bool, def uint64, lo uint64) (uint64, error) {
	if !hasArg {
		return def, nil
	}
	idx, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || idx < lo || idx > maxStackIndex {
		return 0, c.errorf(tok.line, "invalid stack index %q: must be between %d and %d", arg, lo, maxStackIndex)
	}
	return idx, nil
}

func parseFelt(s string) (flow.Felt, error) {
	var (
		v   uint64
		err error
	)
	if strings.HasPrefix(s, "0x") {
		v, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid field element %q", s)
	}
	if v >= flow.Modulus {
		return 0, fmt.Errorf("value %s is not a valid field element", s)
	}
	return flow.Felt(v), nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
