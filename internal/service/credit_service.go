package service

import (
	"errors"
	"math"
	"time"

	"github.com/melodia/melodia-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// resetWindow is the minimum age of the previous reset before a new daily
// allowance applies.
const resetWindow = 24 * time.Hour

// CreditStore is the narrow persistence interface the ledger needs. All
// balance mutations behind it are single guarded updates, atomic per account.
type CreditStore interface {
	GetByID(id uint) (*models.User, error)
	DeductBalance(id uint, amount int) (newBalance int, deducted bool, err error)
	AddBalance(id uint, amount int) (int, error)
	RemoveBalanceClamped(id uint, amount int) (int, error)
	ApplyReset(id uint, allowance int, now time.Time, window time.Duration) (bool, error)
}

// CreditService owns every balance mutation. Nothing else in the codebase
// writes credit_balance.
type CreditService struct {
	store  CreditStore
	logger *zap.Logger
}

func NewCreditService(store CreditStore, logger *zap.Logger) *CreditService {
	return &CreditService{
		store:  store,
		logger: logger,
	}
}

// CheckCredits is the advisory pre-flight check used by the UI. It is not
// atomic with DeductCredits and must never be used as a reservation.
func (s *CreditService) CheckCredits(userID uint, kind models.OperationKind) (*models.CreditCheck, error) {
	user, err := s.store.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	cost := models.CostOf(kind)

	if models.IsUnlimitedFor(kind, user.PlanTier) {
		return &models.CreditCheck{
			Allowed:        true,
			Reason:         models.CreditReasonUnlimited,
			CurrentBalance: user.CreditBalance,
			PlanTier:       user.PlanTier,
		}, nil
	}

	check := &models.CreditCheck{
		CurrentBalance:  user.CreditBalance,
		RequiredCredits: cost,
		PlanTier:        user.PlanTier,
	}
	if user.CreditBalance >= cost {
		check.Allowed = true
		check.Reason = models.CreditReasonSuccess
	} else {
		check.Reason = models.CreditReasonInsufficient
	}
	return check, nil
}

// DeductCredits atomically charges the cost of the given operation kind.
// Unlimited-exempt plans pass through without a balance change. On an
// insufficient balance the account is untouched and ErrInsufficientCredits
// is returned alongside the result.
func (s *CreditService) DeductCredits(userID uint, kind models.OperationKind) (*models.Deduction, error) {
	user, err := s.store.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if models.IsUnlimitedFor(kind, user.PlanTier) {
		return &models.Deduction{
			Success:      true,
			NewBalance:   user.CreditBalance,
			WasUnlimited: true,
		}, nil
	}

	cost := models.CostOf(kind)
	newBalance, deducted, err := s.store.DeductBalance(userID, cost)
	if err != nil {
		return nil, err
	}
	if !deducted {
		return &models.Deduction{
			Success:    false,
			NewBalance: newBalance,
		}, ErrInsufficientCredits
	}

	if newBalance < 0 {
		// Unreachable with the guarded update; if the store ever reports a
		// negative balance the ledger invariant is broken.
		s.logger.Error("credit balance went negative",
			zap.Uint("user_id", userID),
			zap.String("operation", string(kind)),
			zap.Int("balance", newBalance))
		newBalance = 0
	}

	return &models.Deduction{
		Success:        true,
		NewBalance:     newBalance,
		AmountDeducted: cost,
	}, nil
}

// CreditAccount adds purchased or promotional credits. Amounts are positive;
// the balance never decreases through this path.
func (s *CreditService) CreditAccount(userID uint, amount int) (int, error) {
	if amount <= 0 {
		return 0, errors.New("credit amount must be positive")
	}
	newBalance, err := s.store.AddBalance(userID, amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return newBalance, nil
}

// RefundCredits returns a deduction after a synchronous dispatch failure.
func (s *CreditService) RefundCredits(userID uint, amount int) (int, error) {
	newBalance, err := s.CreditAccount(userID, amount)
	if err != nil {
		s.logger.Error("failed to refund credits",
			zap.Uint("user_id", userID),
			zap.Int("amount", amount),
			zap.Error(err))
		return 0, err
	}
	s.logger.Info("refunded credits after failed dispatch",
		zap.Uint("user_id", userID),
		zap.Int("amount", amount),
		zap.Int("balance", newBalance))
	return newBalance, nil
}

// RevokeCredits claws back credits granted by a refunded purchase, flooring
// at zero if the user already spent part of them.
func (s *CreditService) RevokeCredits(userID uint, amount int) (int, error) {
	if amount <= 0 {
		return 0, errors.New("revoke amount must be positive")
	}
	newBalance, err := s.store.RemoveBalanceClamped(userID, amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return newBalance, nil
}

// ResetDailyAllowance applies the plan's daily allowance if the previous
// reset is at least 24h old. The balance is set to the allowance, not added.
// Safe to call concurrently: the guarded update makes at most one reset
// effective per window.
func (s *CreditService) ResetDailyAllowance(userID uint, now time.Time) (*models.ResetResult, error) {
	user, err := s.store.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	allowance := models.CapabilitiesFor(user.PlanTier).DailyAllowance
	if allowance.Unlimited {
		return &models.ResetResult{Balance: user.CreditBalance}, nil
	}

	occurred, err := s.store.ApplyReset(userID, allowance.PerDay, now, resetWindow)
	if err != nil {
		return nil, err
	}
	if occurred {
		return &models.ResetResult{
			Balance:       allowance.PerDay,
			ResetOccurred: true,
		}, nil
	}

	remaining := resetWindow - now.Sub(user.LastCreditReset)
	hours := int(math.Ceil(remaining.Hours()))
	if hours < 0 {
		hours = 0
	}
	return &models.ResetResult{
		Balance:            user.CreditBalance,
		HoursUntilEligible: hours,
	}, nil
}

// Status returns the credit/plan view for the authenticated account.
func (s *CreditService) Status(userID uint) (*models.CreditStatus, error) {
	user, err := s.store.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return &models.CreditStatus{
		Balance:         user.CreditBalance,
		PlanTier:        user.PlanTier,
		DailyAllowance:  models.CapabilitiesFor(user.PlanTier).DailyAllowance,
		LastCreditReset: user.LastCreditReset.UTC().Format(time.RFC3339),
	}, nil
}
