package service

import (
	"errors"
	"fmt"

	"github.com/melodia/melodia-backend/internal/models"
)

// Sentinel errors returned by the service layer. Handlers map these to HTTP
// statuses with errors.Is / errors.As instead of matching message text.
var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAccountNotFound     = errors.New("account not found")
	ErrBundleNotFound      = errors.New("bundle not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrNotTaskOwner        = errors.New("task belongs to another account")
	ErrPurchaseNotFound    = errors.New("purchase not found")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrNotPurchaseOwner    = errors.New("purchase belongs to another account")
	ErrFeatureNotInPlan    = errors.New("feature not available on this plan")
	ErrInvalidCaptcha      = errors.New("captcha verification failed")
)

// EntitlementDenial rejects a requested parameter value and carries the full
// allowed set as structured data so the client can render an upgrade prompt.
type EntitlementDenial struct {
	Dimension models.Dimension `json:"dimension"`
	Requested string           `json:"requested"`
	PlanTier  models.PlanTier  `json:"plan_tier"`
	Allowed   []string         `json:"allowed"`
}

func (d *EntitlementDenial) Error() string {
	return fmt.Sprintf("%s %q is not available on the %s plan", d.Dimension, d.Requested, d.PlanTier)
}

// GatewayError wraps a failure from the external generation API so handlers
// can distinguish it from validation and ledger failures.
type GatewayError struct {
	Op  models.OperationKind
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
