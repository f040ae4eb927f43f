package metrics

const (
	LabelResource    = "resource"
	LabelAccountType = "account_type"
	LabelErrorKind   = "kind"
	LabelErrorCode   = "code"
	LabelMethod      = "method"
)

// Cached resources.
const (
	ResourceAccount = "account"
	ResourceLibrary = "library"
	ResourceTracked = "tracked_account"
	ResourceBlock   = "block"
	ResourceResult  = "transaction_result"
)
