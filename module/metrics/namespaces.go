package metrics

// Prometheus metric namespaces
const (
	namespaceClient = "client"
	namespaceLedger = "ledger"
	namespaceAccess = "access"
)

// Client subsystems
const (
	subsystemCache        = "cache"
	subsystemTransactions = "transactions"
	subsystemSync         = "sync"
	subsystemCompiler     = "compiler"
)

// Ledger subsystems
const (
	subsystemBlocks    = "blocks"
	subsystemExecution = "execution"
	subsystemAccounts  = "accounts"
)

// Access subsystems
const (
	subsystemRateLimit = "rate_limit"
)
