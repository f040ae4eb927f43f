package flow

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/field/goldilocks"
)

// Modulus is the order of the base field, p = 2^64 - 2^32 + 1.
const Modulus uint64 = 0xffffffff00000001

// Felt is an element of the base field in canonical form (always < Modulus).
type Felt uint64

// NewFelt reduces v into the field.
func NewFelt(v uint64) Felt {
	if v >= Modulus {
		v -= Modulus
	}
	return Felt(v)
}

func (f Felt) element() goldilocks.Element {
	var e goldilocks.Element
	e.SetUint64(uint64(f))
	return e
}

func fromElement(e *goldilocks.Element) Felt {
	return Felt(e.Uint64())
}

// Add returns f + g.
func (f Felt) Add(g Felt) Felt {
	a, b := f.element(), g.element()
	a.Add(&a, &b)
	return fromElement(&a)
}

// Sub returns f - g.
func (f Felt) Sub(g Felt) Felt {
	a, b := f.element(), g.element()
	a.Sub(&a, &b)
	return fromElement(&a)
}

// Mul returns f * g.
func (f Felt) Mul(g Felt) Felt {
	a, b := f.element(), g.element()
	a.Mul(&a, &b)
	return fromElement(&a)
}

// Neg returns -f.
func (f Felt) Neg() Felt {
	a := f.element()
	a.Neg(&a)
	return fromElement(&a)
}

// Uint64 returns the canonical integer representation.
func (f Felt) Uint64() uint64 {
	return uint64(f)
}

func (f Felt) String() string {
	return fmt.Sprintf("%d", uint64(f))
}

// WordSize is the number of field elements in a Word.
const WordSize = 4

// Word is a fixed-width vector of field elements. It is the unit of storage
// slots, script arguments and witness keys.
type Word [WordSize]Felt

// EmptyWord is the all-zero word.
var EmptyWord = Word{}

// NewWord builds a word from integers, reducing each into the field.
func NewWord(a, b, c, d uint64) Word {
	return Word{NewFelt(a), NewFelt(b), NewFelt(c), NewFelt(d)}
}

// PrepareFeltVec returns the word [n, 0, 0, 0].
func PrepareFeltVec(n uint64) Word {
	return Word{NewFelt(n), 0, 0, 0}
}

// IsEmpty returns true if every element is zero.
func (w Word) IsEmpty() bool {
	return w == EmptyWord
}

// Last returns the last element of the word.
func (w Word) Last() Felt {
	return w[WordSize-1]
}

// Bytes returns the little-endian encoding of the four elements.
func (w Word) Bytes() []byte {
	b := make([]byte, WordSize*8)
	for i, f := range w {
		binary.LittleEndian.PutUint64(b[i*8:], uint64(f))
	}
	return b
}

func (w Word) String() string {
	parts := make([]string, WordSize)
	for i, f := range w {
		parts[i] = f.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
