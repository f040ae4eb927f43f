package operation

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/contract-client/module/irrecoverable"
	"github.com/onflow/contract-client/storage"
)

// maxConflictAttempts bounds how often a local view write is rerun while a
// concurrent write to the same keys keeps winning.
const maxConflictAttempts = 16

// AllowExisting lets op succeed when the key it inserts is already present,
// e.g. tracking an account that is tracked.
func AllowExisting(op func(*badger.Txn) error) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := op(tx)
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil
		}
		return err
	}
}

// RetryOnConflict runs op through update again while badger reports that a
// concurrent write to the local view committed first.
func RetryOnConflict(update func(func(*badger.Txn) error) error, op func(*badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictAttempts; attempt++ {
		err = update(op)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("local view write still conflicting after %d attempts: %w", maxConflictAttempts, err)
}

// CheckDiskFull turns a write that failed on a full disk into an
// irrecoverable exception: the view can not be synced until space is freed.
func CheckDiskFull(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return irrecoverable.NewExceptionf("local view disk is full: %w", err)
	}
	return err
}
