package models

// Reasons reported by a credit pre-flight check.
const (
	CreditReasonUnlimited    = "unlimited"
	CreditReasonSuccess      = "success"
	CreditReasonInsufficient = "insufficient_credits"
)

// CreditCheck is the advisory result of a pre-flight balance check. It is not
// a reservation: the balance may change before a deduction runs.
type CreditCheck struct {
	Allowed         bool     `json:"allowed"`
	Reason          string   `json:"reason"`
	CurrentBalance  int      `json:"current_balance"`
	RequiredCredits int      `json:"required_credits"`
	PlanTier        PlanTier `json:"plan_tier"`
}

// Deduction is the result of an atomic credit deduction.
type Deduction struct {
	Success        bool `json:"success"`
	NewBalance     int  `json:"new_balance"`
	AmountDeducted int  `json:"amount_deducted"`
	WasUnlimited   bool `json:"was_unlimited"`
}

// ResetResult reports a daily allowance reset attempt.
type ResetResult struct {
	Balance            int  `json:"balance"`
	ResetOccurred      bool `json:"reset_occurred"`
	HoursUntilEligible int  `json:"hours_until_eligible"`
}

// CreditStatus is the credit/plan view returned to the client.
type CreditStatus struct {
	Balance         int             `json:"balance"`
	PlanTier        PlanTier        `json:"plan_tier"`
	DailyAllowance  CreditAllowance `json:"daily_allowance"`
	LastCreditReset string          `json:"last_credit_reset"`
}
