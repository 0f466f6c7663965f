package constant

import "fmt"

const (
	ActionCheckQuota       = "CHECK_QUOTA"
	ActionGetQuotas        = "GET_QUOTAS"
	ActionRecordGeneration = "RECORD_GENERATION"
	ActionGetUserStats     = "GET_USER_STATS"
	ActionEstimateCost     = "ESTIMATE_COST"
	ActionApplyTier        = "APPLY_TIER"
)

// Outcomes of a generation request, suffixed to the type: IMAGE_GENERATION_SUCCESS.
const (
	OutcomeSuccess         = "SUCCESS"
	OutcomeFailed          = "FAILED"
	OutcomeQuotaExceeded   = "QUOTA_EXCEEDED"
	OutcomeRateLimited     = "RATE_LIMITED"
	OutcomeValidationError = "VALIDATION_ERROR"
)

const (
	AuditStatusSuccess = "SUCCESS"
	AuditStatusFailed  = "FAILED"
	AuditStatusDenied  = "DENIED"
)

func GenerationAction(generationType, outcome string) string {
	return fmt.Sprintf("%s_GENERATION_%s", generationType, outcome)
}
