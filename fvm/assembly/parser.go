package assembly

import (
	"strconv"
	"strings"
)

type token struct {
	text string
	line int
}

// tokenize splits source into whitespace separated tokens, dropping
// comments that start with '#'.
func tokenize(source string) []token {
	var tokens []token
	for i, line := range strings.Split(source, "\n") {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		for _, field := range strings.Fields(line) {
			tokens = append(tokens, token{text: field, line: i + 1})
		}
	}
	return tokens
}

// node is either a single instruction token or a repeat block.
type node struct {
	tok    token
	repeat int
	body   []node
}

type procDef struct {
	name     string
	exported bool
	line     int
	body     []node
}

type importDef struct {
	path  string
	alias string
	line  int
}

type moduleKind int

const (
	kindLibrary moduleKind = iota
	kindProgram
)

type module struct {
	imports  []importDef
	procs    []procDef
	entry    []node
	hasEntry bool
}

type parser struct {
	source string
	tokens []token
	pos    int
}

func newParser(source string, text string) *parser {
	return &parser{
		source: source,
		tokens: tokenize(text),
	}
}

func (p *parser) errorf(line int, format string, args ...interface{}) error {
	return newCompileError(p.source, line, format, args...)
}

func (p *parser) parseModule(kind moduleKind) (*module, error) {
	m := &module{}
	names := make(map[string]struct{})

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++
		head, arg, hasArg := strings.Cut(tok.text, ".")

		switch {
		case head == "use" && hasArg:
			if kind != kindProgram {
				return nil, p.errorf(tok.line, "imports are only allowed in scripts")
			}
			if len(m.procs) > 0 || m.hasEntry {
				return nil, p.errorf(tok.line, "imports must precede procedures and the entry block")
			}
			if err := validatePath(arg); err != nil {
				return nil, p.errorf(tok.line, "%v", err)
			}
			m.imports = append(m.imports, importDef{path: arg, alias: pathAlias(arg), line: tok.line})

		case (head == "export" || head == "proc") && hasArg:
			if head == "export" && kind != kindLibrary {
				return nil, p.errorf(tok.line, "scripts cannot export procedures")
			}
			if m.hasEntry {
				return nil, p.errorf(tok.line, "procedures must precede the entry block")
			}
			if !isIdent(arg) {
				return nil, p.errorf(tok.line, "invalid procedure name %q", arg)
			}
			if _, dup := names[arg]; dup {
				return nil, p.errorf(tok.line, "duplicate procedure %q", arg)
			}
			names[arg] = struct{}{}
			body, err := p.parseBlock(tok)
			if err != nil {
				return nil, err
			}
			m.procs = append(m.procs, procDef{name: arg, exported: head == "export", line: tok.line, body: body})

		case tok.text == "begin":
			if kind != kindProgram {
				return nil, p.errorf(tok.line, "libraries cannot have an entry block")
			}
			if m.hasEntry {
				return nil, p.errorf(tok.line, "duplicate entry block")
			}
			body, err := p.parseBlock(tok)
			if err != nil {
				return nil, err
			}
			m.entry = body
			m.hasEntry = true

		default:
			return nil, p.errorf(tok.line, "unexpected token %q at top level", tok.text)
		}
	}

	switch kind {
	case kindProgram:
		if !m.hasEntry {
			return nil, p.errorf(0, "script has no begin block")
		}
	case kindLibrary:
		exported := 0
		for _, proc := range m.procs {
			if proc.exported {
				exported++
			}
		}
		if exported == 0 {
			return nil, p.errorf(0, "library exports no procedures")
		}
	}
	return m, nil
}

// parseBlock reads nodes up to the matching end token.
func (p *parser) parseBlock(opener token) ([]node, error) {
	var body []node
	for {
		if p.pos >= len(p.tokens) {
			return nil, p.errorf(opener.line, "%q is never closed with end", opener.text)
		}
		tok := p.tokens[p.pos]
		p.pos++

		head, arg, _ := strings.Cut(tok.text, ".")
		switch {
		case tok.text == "end":
			if len(body) == 0 {
				return nil, p.errorf(tok.line, "empty block")
			}
			return body, nil
		case head == "repeat":
			count, err := strconv.Atoi(arg)
			if err != nil || count < 1 || count > maxRepeat {
				return nil, p.errorf(tok.line, "invalid repeat count %q", arg)
			}
			inner, err := p.parseBlock(tok)
			if err != nil {
				return nil, err
			}
			body = append(body, node{tok: tok, repeat: count, body: inner})
		case tok.text == "begin", head == "export", head == "proc", head == "use":
			return nil, p.errorf(tok.line, "unexpected %q inside block", tok.text)
		default:
			body = append(body, node{tok: tok})
		}
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
