package encoding

// List of domain separation tags.
//
// Every digest computed by the client or the ledger hashes a tag first, so
// that an account id can never collide with a transaction id or a procedure
// digest computed over the same bytes.

func tag(domain string) string {
	return protocolPrefix + domain
}

const protocolPrefix = "CALC-V0.1_"

var (
	// AccountIDTag is used when deriving account ids from seeds.
	AccountIDTag = tag("Account-ID")
	// TransactionIDTag is used for transaction ids.
	TransactionIDTag = tag("Transaction-ID")
	// ProcedureTag is used for procedure digests.
	ProcedureTag = tag("Procedure")
	// ProgramTag is used for program and library digests.
	ProgramTag = tag("Program")
	// CodeCommitmentTag is used for account code commitments.
	CodeCommitmentTag = tag("Code-Commitment")
	// BlockTag is used for block ids.
	BlockTag = tag("Block")
)
