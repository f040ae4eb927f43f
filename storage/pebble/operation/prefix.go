package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/onflow/contract-client/model/flow"
)

const (
	codeLatestHeight      byte = 1
	codeBlock             byte = 10
	codeBlockIDToHeight   byte = 11
	codeAccount           byte = 20
	codeTransactionResult byte = 30
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := []byte{code}
	for _, key := range keys {
		switch k := key.(type) {
		case uint64:
			prefix = binary.BigEndian.AppendUint64(prefix, k)
		case flow.Digest:
			prefix = append(prefix, k[:]...)
		case flow.AccountID:
			prefix = append(prefix, k[:]...)
		case flow.TransactionID:
			prefix = append(prefix, k[:]...)
		default:
			panic(fmt.Sprintf("unsupported type to convert (%T)", key))
		}
	}
	return prefix
}
