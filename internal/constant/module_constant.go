package constant

// Logger modules.
const (
	ModuleQuota      = "QUOTA"
	ModuleUsage      = "USAGE"
	ModuleAudit      = "AUDIT"
	ModuleGeneration = "GENERATION"
	ModuleAccount    = "ACCOUNT"
	ModuleEvents     = "EVENTS"
	ModuleHTTP       = "HTTP"
)

const ServiceName = "ai-studio-be"
