package flow

// StateUpdate is the ledger's answer to a sync request. It carries the
// committed chain tip and the full state of every requested account that
// changed after the height the requester was already synced to.
type StateUpdate struct {
	BlockHeight uint64
	BlockID     Digest
	Accounts    []*Account
}

// SyncSummary reports what a sync applied locally.
type SyncSummary struct {
	BlockHeight     uint64
	BlockID         Digest
	UpdatedAccounts []AccountID
}

// SyncRequest asks the ledger for the state changes a follower is missing.
type SyncRequest struct {
	// FromHeight is the height the follower is synced to.
	FromHeight uint64
	// AccountIDs are returned if they changed after FromHeight.
	AccountIDs []AccountID
	// UnsyncedAccountIDs are returned whenever they exist, regardless of
	// when they last changed. Followers use it for accounts they started
	// tracking after FromHeight.
	UnsyncedAccountIDs []AccountID
}
