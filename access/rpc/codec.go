package rpc

import (
	"google.golang.org/grpc/encoding"

	modelencoding "github.com/onflow/contract-client/model/encoding"
)

// CodecName is the content subtype messages of the ledger service are
// exchanged with.
const CodecName = "cbor"

// codec encodes ledger messages with the canonical CBOR encoder used for
// hashing, so values hash the same on both ends of a connection.
type codec struct{}

func init() {
	encoding.RegisterCodec(codec{})
}

func (codec) Marshal(v interface{}) ([]byte, error) {
	return modelencoding.DefaultEncoder.Encode(v)
}

func (codec) Unmarshal(data []byte, v interface{}) error {
	return modelencoding.DefaultEncoder.Decode(data, v)
}

func (codec) Name() string {
	return CodecName
}
