package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/onflow/contract-client/model/flow"
)

// ErrUnknownHandle is returned for a handle that was never registered or
// already released.
var ErrUnknownHandle = errors.New("unknown client handle")

// Handle addresses a client held by a Registry.
type Handle uint64

// Registry owns live clients and serializes access to each of them, so
// contracts sharing a client can be driven from several goroutines.
type Registry struct {
	mu      sync.Mutex
	next    Handle
	entries map[Handle]*registryEntry
}

type registryEntry struct {
	mu     sync.Mutex
	client *Client
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[Handle]*registryEntry)}
}

// Register transfers ownership of c to the registry.
func (r *Registry) Register(c *Client) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.entries[r.next] = &registryEntry{client: c}
	return r.next
}

func (r *Registry) entry(h Handle) (*registryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[h]
	if !ok {
		return nil, fmt.Errorf("handle %d: %w", h, ErrUnknownHandle)
	}
	return e, nil
}

// Do runs fn with exclusive access to the client behind h.
func (r *Registry) Do(h Handle, fn func(c *Client) error) error {
	e, err := r.entry(h)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return fmt.Errorf("handle %d: %w", h, ErrUnknownHandle)
	}
	return fn(e.client)
}

// BuildContract deploys a contract with the client behind h. The contract
// runs through h, so it is safe to use concurrently with other contracts of
// the same client.
func (r *Registry) BuildContract(ctx context.Context, h Handle, source string, opts ...ContractOption) (*Contract, error) {
	var contract *Contract
	err := r.Do(h, func(c *Client) error {
		var err error
		contract, err = c.buildContract(ctx, handleRunner{registry: r, handle: h}, source, opts...)
		return err
	})
	return contract, err
}

// Release removes the client behind h from the registry and returns it to
// the caller, who then owns it.
func (r *Registry) Release(h Handle) (*Client, error) {
	r.mu.Lock()
	e, ok := r.entries[h]
	delete(r.entries, h)
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("handle %d: %w", h, ErrUnknownHandle)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.client
	e.client = nil
	return c, nil
}

// Close releases and closes every client.
func (r *Registry) Close() error {
	r.mu.Lock()
	handles := make([]Handle, 0, len(r.entries))
	for h := range r.entries {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	var result *multierror.Error
	for _, h := range handles {
		c, err := r.Release(h)
		if err != nil {
			continue
		}
		err = c.Close()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("could not close client %d: %w", h, err))
		}
	}
	return result.ErrorOrNil()
}

type handleRunner struct {
	registry *Registry
	handle   Handle
}

func (h handleRunner) Invoke(ctx context.Context, contractID flow.AccountID, script string, operands flow.Word, witness flow.WitnessMap) (flow.TransactionID, error) {
	var txID flow.TransactionID
	err := h.registry.Do(h.handle, func(c *Client) error {
		var err error
		txID, err = c.Invoke(ctx, contractID, script, operands, witness)
		return err
	})
	return txID, err
}

func (h handleRunner) ReadSlot(ctx context.Context, id flow.AccountID, index int) (flow.Word, error) {
	var value flow.Word
	err := h.registry.Do(h.handle, func(c *Client) error {
		var err error
		value, err = c.ReadSlot(ctx, id, index)
		return err
	})
	return value, err
}
