package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/onflow/contract-client/model/flow"
)

const (

	// codes for special database markers

	codeSyncHeight = 1 // height of the last applied sync
	codeSyncBlock  = 2 // block id of the last applied sync

	// codes for entities

	codeAccount        = 10
	codeContractSource = 11

	// codes for indexes

	codeTrackedAccount = 20
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case string:
		return []byte(i)
	case flow.AccountID:
		return i[:]
	case flow.Digest:
		return i[:]
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}
