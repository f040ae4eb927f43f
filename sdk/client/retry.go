package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onflow/contract-client/model/flow"
)

const (
	retryBase        = 100 * time.Millisecond
	retryMaxDuration = 2 * time.Second
	retryMax         = 5
	retryJitter      = 10
)

// errTransactionPending is retried by AwaitTransaction until the transaction
// is final.
var errTransactionPending = errors.New("transaction is pending")

// DefaultBackoff returns a capped exponential backoff with jitter and at most
// five retries.
func DefaultBackoff() retry.Backoff {
	backoff := retry.NewExponential(retryBase)
	backoff = retry.WithCappedDuration(retryMaxDuration, backoff)
	backoff = retry.WithJitterPercent(retryJitter, backoff)
	return retry.WithMaxRetries(retryMax, backoff)
}

// WithRetry runs fn until it succeeds, fails with an error that is not
// retryable, or the backoff gives up. Only transport errors are retried.
func WithRetry(ctx context.Context, backoff retry.Backoff, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// SyncWithRetry syncs the local view, retrying transport failures.
func (c *Client) SyncWithRetry(ctx context.Context, backoff retry.Backoff) (uint64, error) {
	var height uint64
	attempt := 0
	err := WithRetry(ctx, backoff, func(ctx context.Context) error {
		if attempt > 0 {
			c.metrics.RequestRetried("sync")
		}
		attempt++

		var err error
		height, err = c.Sync(ctx)
		return err
	})
	return height, err
}

// AwaitTransaction polls the ledger until the transaction is committed or
// reverted, then syncs the local view with DefaultBackoff. It returns an ExecutionError for a
// reverted transaction.
func (c *Client) AwaitTransaction(ctx context.Context, txID flow.TransactionID, backoff retry.Backoff) (*flow.TransactionResult, error) {
	var result *flow.TransactionResult
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		result, err = c.api.GetTransactionResult(ctx, txID)
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("transaction %s is unknown to the ledger: %w", txID, err)
		}
		if err != nil {
			err = convertRPCError("get transaction result", flow.EmptyAccountID, err)
			if IsRetryable(err) {
				c.metrics.RequestRetried("get_transaction_result")
				return retry.RetryableError(err)
			}
			return err
		}
		if !result.Status.IsFinal() {
			return retry.RetryableError(errTransactionPending)
		}
		return nil
	})
	if errors.Is(err, errTransactionPending) {
		return nil, fmt.Errorf("transaction %s not final: %w", txID, context.DeadlineExceeded)
	}
	if err != nil {
		return nil, err
	}

	_, err = c.SyncWithRetry(ctx, DefaultBackoff())
	if err != nil {
		return result, err
	}

	if result.Status == flow.TransactionStatusReverted {
		return result, &ExecutionError{TransactionID: txID, Message: result.ErrorMessage}
	}
	return result, nil
}
