package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onflow/contract-client/utils/unittest"
)

func TestConvertRPCError(t *testing.T) {
	id := unittest.AccountIDFixture()

	assert.NoError(t, convertRPCError("sync", id, nil))

	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", status.Error(codes.NotFound, "no account"), IsAccountNotFoundError},
		{"already exists", status.Error(codes.AlreadyExists, "exists"), IsDuplicateAccountError},
		{"unavailable", status.Error(codes.Unavailable, "down"), IsTransportError},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), IsTransportError},
		{"exhausted", status.Error(codes.ResourceExhausted, "full"), IsTransportError},
		{"context canceled", fmt.Errorf("dial: %w", context.Canceled), IsTransportError},
		{"not a status", errors.New("connection reset"), IsTransportError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := convertRPCError("sync", id, c.err)
			assert.True(t, c.check(err), "unexpected error: %v", err)
		})
	}

	t.Run("rejected", func(t *testing.T) {
		cause := status.Error(codes.InvalidArgument, "bad request")
		err := convertRPCError("sync", id, cause)
		assert.False(t, IsRetryable(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("account id is kept", func(t *testing.T) {
		var notFound *AccountNotFoundError
		err := convertRPCError("get account", id, status.Error(codes.NotFound, "no account"))
		assert.True(t, errors.As(err, &notFound))
		assert.Equal(t, id, notFound.ID)
	})
}

func TestConvertSubmitError(t *testing.T) {
	id := unittest.AccountIDFixture()
	txID := unittest.TransactionIDFixture()

	for _, code := range []codes.Code{codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists} {
		err := convertSubmitError(txID, id, status.Error(code, "stale nonce"))
		var execErr *ExecutionError
		assert.True(t, errors.As(err, &execErr), "code %s", code)
		assert.Equal(t, txID, execErr.TransactionID)
		assert.Equal(t, "stale nonce", execErr.Message)
	}

	err := convertSubmitError(txID, id, status.Error(codes.NotFound, "no account"))
	assert.True(t, IsAccountNotFoundError(err))
	assert.Equal(t, "account_not_found", errorKind(err))
}
