package encoding

import (
	"github.com/onflow/contract-client/model/encoding/cbor"
)

// Encoder turns ledger values such as accounts, programs and transactions
// into bytes and back.
type Encoder interface {
	// Encode returns the canonical bytes of val, or an error for a type the
	// encoder can not represent.
	Encode(val interface{}) ([]byte, error)

	// Decode fills val from b. It fails if b does not describe a value of
	// val's type.
	Decode(b []byte, val interface{}) error

	// MustEncode is Encode for values whose type is known to be encodable,
	// e.g. when hashing an entity into a digest. It panics on failure.
	MustEncode(val interface{}) []byte
}

// DefaultEncoder is the deterministic encoder used for digests, account
// code and the wire format. Equal values always produce equal bytes.
var DefaultEncoder Encoder = cbor.NewEncoder()
