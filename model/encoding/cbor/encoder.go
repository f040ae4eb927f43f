package cbor

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var encMode = func() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("could not create canonical cbor encoding mode: %s", err))
	}
	return mode
}()

// Encoder is a canonical CBOR encoder: map keys are sorted and integers use
// their shortest form, so encoding is deterministic.
type Encoder struct{}

// NewEncoder returns a canonical CBOR encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Encode(val interface{}) ([]byte, error) {
	b, err := encMode.Marshal(val)
	if err != nil {
		return nil, fmt.Errorf("could not encode value: %w", err)
	}
	return b, nil
}

func (e *Encoder) Decode(b []byte, val interface{}) error {
	err := cbor.Unmarshal(b, val)
	if err != nil {
		return fmt.Errorf("could not decode value: %w", err)
	}
	return nil
}

func (e *Encoder) MustEncode(val interface{}) []byte {
	b, err := e.Encode(val)
	if err != nil {
		panic(err)
	}
	return b
}
