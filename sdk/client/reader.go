package client

import (
	"context"
	"errors"

	"github.com/onflow/contract-client/model/flow"
)

// ReadSlot returns a storage slot of an account from the local view. It
// never queries the ledger: an account the view has not synced yet is
// reported as AccountNotFoundError, like an account that does not exist.
func (c *Client) ReadSlot(_ context.Context, id flow.AccountID, index int) (flow.Word, error) {
	account, err := c.view.Account(id)
	if err != nil {
		return flow.EmptyWord, c.lookupError(id, err)
	}

	value, err := account.GetItem(index)
	var outOfBounds flow.SlotIndexOutOfBoundsError
	if errors.As(err, &outOfBounds) {
		return flow.EmptyWord, &SlotIndexError{ID: id, Index: index, Slots: outOfBounds.Slots}
	}
	if err != nil {
		return flow.EmptyWord, err
	}
	return value, nil
}

// Account returns the last synced state of an account.
func (c *Client) Account(id flow.AccountID) (*flow.Account, error) {
	account, err := c.view.Account(id)
	if err != nil {
		return nil, c.lookupError(id, err)
	}
	return account, nil
}

// SyncHeight returns the block height the local view was last synced to.
func (c *Client) SyncHeight() (uint64, error) {
	return c.view.SyncHeight()
}
