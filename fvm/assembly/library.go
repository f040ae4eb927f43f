package assembly

import (
	"fmt"
	"strings"

	"github.com/onflow/contract-client/model/encoding"
	"github.com/onflow/contract-client/model/flow"
)

// PathSeparator separates the segments of a library path.
const PathSeparator = "::"

// Procedure is a compiled procedure. Local procedures invoked with exec are
// inlined at assembly time, so a body never refers to another local
// procedure.
type Procedure struct {
	Name     string
	Exported bool
	Body     []Instruction
	Digest   flow.Digest
}

func newProcedure(name string, exported bool, body []Instruction) Procedure {
	return Procedure{
		Name:     name,
		Exported: exported,
		Body:     body,
		Digest:   flow.MakeDigest(encoding.ProcedureTag, hashInput(body)),
	}
}

// Library is a compiled set of exported procedures under a path such as
// "external_contract::calculator".
type Library struct {
	Path       string
	Procedures []Procedure
	Digest     flow.Digest
}

func newLibrary(path string, procedures []Procedure) *Library {
	digests := make([][]byte, 0, len(procedures))
	for i := range procedures {
		digests = append(digests, procedures[i].Digest[:])
	}
	return &Library{
		Path:       path,
		Procedures: procedures,
		Digest:     flow.MakeDigest(encoding.CodeCommitmentTag, digests...),
	}
}

// Alias returns the last segment of the path, which is how scripts refer to
// the library.
func (l *Library) Alias() string {
	return pathAlias(l.Path)
}

// Procedure returns the exported procedure with the given name.
func (l *Library) Procedure(name string) (Procedure, bool) {
	for _, p := range l.Procedures {
		if p.Name == name {
			return p, true
		}
	}
	return Procedure{}, false
}

// ProcedureByDigest returns the exported procedure with the given digest.
func (l *Library) ProcedureByDigest(digest flow.Digest) (Procedure, bool) {
	for _, p := range l.Procedures {
		if p.Digest == digest {
			return p, true
		}
	}
	return Procedure{}, false
}

// Digests returns the digests of all exported procedures in definition order.
func (l *Library) Digests() []flow.Digest {
	digests := make([]flow.Digest, 0, len(l.Procedures))
	for _, p := range l.Procedures {
		digests = append(digests, p.Digest)
	}
	return digests
}

func pathAlias(path string) string {
	segments := strings.Split(path, PathSeparator)
	return segments[len(segments)-1]
}

func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("library path is empty")
	}
	for _, segment := range strings.Split(path, PathSeparator) {
		if !isIdent(segment) {
			return fmt.Errorf("invalid library path segment %q in %q", segment, path)
		}
	}
	return nil
}

// AccountComponent is a library together with the storage layout it
// declares. It is the code installed into an account.
type AccountComponent struct {
	Library      *Library
	StorageSlots []flow.Word
}

// NewAccountComponent compiles source into a component with the given
// initial storage slots.
func NewAccountComponent(assembler *Assembler, path string, source string, slots []flow.Word) (*AccountComponent, error) {
	lib, err := assembler.AssembleLibrary(path, source)
	if err != nil {
		return nil, err
	}
	return &AccountComponent{
		Library:      lib,
		StorageSlots: append([]flow.Word(nil), slots...),
	}, nil
}

// AccountCode encodes the component into the form stored on accounts.
func (c *AccountComponent) AccountCode() (flow.AccountCode, error) {
	encoded, err := encoding.DefaultEncoder.Encode(c)
	if err != nil {
		return flow.AccountCode{}, fmt.Errorf("could not encode account component: %w", err)
	}
	return flow.NewAccountCode(encoded, c.Library.Digests()), nil
}

// DecodeAccountComponent decodes an encoded component and checks that its
// procedures hash to their recorded digests and hold valid instructions.
func DecodeAccountComponent(b []byte) (*AccountComponent, error) {
	var c AccountComponent
	err := encoding.DefaultEncoder.Decode(b, &c)
	if err != nil {
		return nil, fmt.Errorf("could not decode account component: %w", err)
	}
	if c.Library == nil {
		return nil, fmt.Errorf("account component has no library")
	}
	for _, p := range c.Library.Procedures {
		if newProcedure(p.Name, p.Exported, p.Body).Digest != p.Digest {
			return nil, fmt.Errorf("procedure %s does not match its digest", p.Name)
		}
		if err := validateBody(p.Body); err != nil {
			return nil, fmt.Errorf("invalid procedure %s: %w", p.Name, err)
		}
	}
	return &c, nil
}

// Program is a compiled transaction script.
type Program struct {
	Entry []Instruction
	// Libraries lists the paths of the dynamically linked libraries.
	Libraries []string
	Digest    flow.Digest
}

func newProgram(entry []Instruction, libraries []string) *Program {
	return &Program{
		Entry:     entry,
		Libraries: libraries,
		Digest:    flow.MakeDigest(encoding.ProgramTag, hashInput(entry)),
	}
}

// Script encodes the program into a transaction script.
func (p *Program) Script() (flow.TransactionScript, error) {
	encoded, err := encoding.DefaultEncoder.Encode(p)
	if err != nil {
		return flow.TransactionScript{}, fmt.Errorf("could not encode program: %w", err)
	}
	return flow.TransactionScript{Program: encoded, Digest: p.Digest}, nil
}

// DecodeProgram decodes a transaction script, checks it against its digest
// and checks every instruction.
func DecodeProgram(script flow.TransactionScript) (*Program, error) {
	var p Program
	err := encoding.DefaultEncoder.Decode(script.Program, &p)
	if err != nil {
		return nil, fmt.Errorf("could not decode program: %w", err)
	}
	digest := flow.MakeDigest(encoding.ProgramTag, hashInput(p.Entry))
	if digest != p.Digest || digest != script.Digest {
		return nil, fmt.Errorf("program does not match digest %s", script.Digest)
	}
	if err := validateBody(p.Entry); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}
	return &p, nil
}
