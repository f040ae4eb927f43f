package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/storage"
)

// Sync pulls the state of every tracked account that changed on the ledger
// into the local view and returns the synced height. The update is applied
// atomically; on failure the view stays at its previous height.
//
// Sync is idempotent and may be called at any time.
func (c *Client) Sync(ctx context.Context) (uint64, error) {
	start := time.Now()

	summary, err := c.sync(ctx)
	if err != nil {
		return 0, err
	}

	c.metrics.StateSynced(summary.BlockHeight, len(summary.UpdatedAccounts), time.Since(start))
	c.log.Debug().
		Uint64("height", summary.BlockHeight).
		Hex("block_id", summary.BlockID[:]).
		Int("updated_accounts", len(summary.UpdatedAccounts)).
		Msg("local view synced")

	return summary.BlockHeight, nil
}

func (c *Client) sync(ctx context.Context) (*flow.SyncSummary, error) {
	height, err := c.view.SyncHeight()
	if err != nil {
		return nil, fmt.Errorf("could not read synced height: %w", err)
	}

	req, err := c.syncRequest(height)
	if err != nil {
		return nil, err
	}

	update, err := c.api.SyncState(ctx, req)
	if err != nil {
		return nil, convertRPCError("sync", flow.EmptyAccountID, err)
	}

	updated, err := c.view.ApplySync(update)
	if errors.Is(err, storage.ErrDataMismatch) {
		// the ledger answered from behind the view, e.g. another endpoint
		// that has not caught up yet
		return nil, &TransportError{Op: "sync", Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("could not apply sync at height %d: %w", update.BlockHeight, err)
	}

	err = c.invalidateChanged(updated)
	if err != nil {
		return nil, err
	}

	return &flow.SyncSummary{
		BlockHeight:     update.BlockHeight,
		BlockID:         update.BlockID,
		UpdatedAccounts: updated,
	}, nil
}

// syncRequest asks for tracked accounts changed after height, and for the
// full state of tracked accounts the view has no state for yet.
func (c *Client) syncRequest(height uint64) (*flow.SyncRequest, error) {
	tracked, err := c.view.TrackedAccounts()
	if err != nil {
		return nil, fmt.Errorf("could not list tracked accounts: %w", err)
	}

	req := &flow.SyncRequest{FromHeight: height}
	for _, id := range tracked {
		_, err := c.view.Account(id)
		if errors.Is(err, storage.ErrNotFound) {
			req.UnsyncedAccountIDs = append(req.UnsyncedAccountIDs, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("could not read account %s: %w", id, err)
		}
		req.AccountIDs = append(req.AccountIDs, id)
	}
	return req, nil
}
