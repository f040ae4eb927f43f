package storage

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// Note: there are other not found errors: badger.ErrKeyNotFound and
	// pebble.ErrNotFound. Modules in storage/badger, storage/pebble and their
	// operation packages translate those into storage.ErrNotFound.
	ErrNotFound = errors.New("key not found")

	ErrAlreadyExists = errors.New("key already exists")
	ErrDataMismatch  = errors.New("data for key is different")
)

// ConvertStorageError maps storage errors to grpc status errors.
func ConvertStorageError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		// Already converted
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return status.Errorf(codes.NotFound, "not found: %v", err)
	}
	if errors.Is(err, ErrAlreadyExists) {
		return status.Errorf(codes.AlreadyExists, "already exists: %v", err)
	}

	return status.Errorf(codes.Internal, "failed to access storage: %v", err)
}
