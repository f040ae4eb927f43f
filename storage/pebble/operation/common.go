package operation

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/vmihailenco/msgpack"

	"github.com/onflow/contract-client/module/irrecoverable"
	"github.com/onflow/contract-client/storage"
)

// put writes the msgpack encoding of record under key, replacing any
// previous record.
func put(key []byte, record interface{}) func(pebble.Writer) error {
	return func(w pebble.Writer) error {
		value, err := msgpack.Marshal(record)
		if err != nil {
			return irrecoverable.NewExceptionf("could not encode ledger record %x: %w", key, err)
		}
		err = w.Set(key, value, nil)
		if err != nil {
			return irrecoverable.NewExceptionf("could not write ledger record %x: %w", key, err)
		}
		return nil
	}
}

// get decodes the record under key into record. A missing key is
// storage.ErrNotFound, anything else is an exception.
func get(key []byte, record interface{}) func(pebble.Reader) error {
	return func(r pebble.Reader) error {
		value, closer, err := r.Get(key)
		if errors.Is(err, pebble.ErrNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return irrecoverable.NewExceptionf("could not read ledger record %x: %w", key, err)
		}
		defer closer.Close()

		err = msgpack.Unmarshal(value, record)
		if err != nil {
			return irrecoverable.NewExceptionf("could not decode ledger record %x: %w", key, err)
		}
		return nil
	}
}

func has(key []byte, found *bool) func(pebble.Reader) error {
	return func(r pebble.Reader) error {
		_, closer, err := r.Get(key)
		if errors.Is(err, pebble.ErrNotFound) {
			*found = false
			return nil
		}
		if err != nil {
			return irrecoverable.NewExceptionf("could not check ledger record %x: %w", key, err)
		}
		*found = true
		return closer.Close()
	}
}
