package client

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/onflow/contract-client/sdk/keys"
)

// ResetLocalState deletes the local view database in storeDir and every key
// file in keystoreDir. Missing directories are not an error. No client may
// have the directories open.
func ResetLocalState(log zerolog.Logger, storeDir string, keystoreDir string) error {
	var result *multierror.Error

	_, err := os.Stat(storeDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info().Str("dir", storeDir).Msg("store not found")
	case err != nil:
		result = multierror.Append(result, fmt.Errorf("could not stat store: %w", err))
	default:
		err = os.RemoveAll(storeDir)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("could not remove store: %w", err))
		} else {
			log.Info().Str("dir", storeDir).Msg("cleared store")
		}
	}

	_, err = os.Stat(keystoreDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info().Str("dir", keystoreDir).Msg("keystore not found")
	case err != nil:
		result = multierror.Append(result, fmt.Errorf("could not stat keystore: %w", err))
	default:
		ks, err := keys.NewFilesystemKeyStore(keystoreDir)
		if err == nil {
			err = ks.Clear()
		}
		if err != nil {
			result = multierror.Append(result, err)
		} else {
			log.Info().Str("dir", keystoreDir).Msg("cleared keystore")
		}
	}

	return result.ErrorOrNil()
}
