package constant

const (
	LimitTypeDaily         = "daily"
	LimitTypeMonthly       = "monthly"
	LimitTypeNotConfigured = "not_configured"
	LimitTypeError         = "error"
)

const (
	ReasonNotConfigured = "No quota configured for user and generation type"
	ReasonCheckError    = "Error checking quota"
	ReasonDailyFormat   = "Daily limit reached (%d/%d)"
	ReasonMonthlyFormat = "Monthly limit reached (%d/%d)"
)

const (
	TierFree = "free"
	TierPaid = "paid"
)

const (
	DefaultGenerationsLimit = 50
	MaxGenerationsLimit     = 200
	PromptPreviewLength     = 100

	DefaultHistoryDays = 30
	MaxHistoryDays     = 365
)
