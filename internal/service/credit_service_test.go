package service

import (
	"testing"
	"time"

	"github.com/melodia/melodia-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeCreditStore is an in-memory CreditStore mirroring the guarded-update
// semantics of the real repository: deductions refuse to go below zero,
// resets apply at most once per window.
type fakeCreditStore struct {
	users map[uint]*models.User
	// deductCalls counts balance mutations for never-touched assertions.
	deductCalls int
}

func newFakeCreditStore(users ...*models.User) *fakeCreditStore {
	s := &fakeCreditStore{users: make(map[uint]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeCreditStore) GetByID(id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (s *fakeCreditStore) DeductBalance(id uint, amount int) (int, bool, error) {
	s.deductCalls++
	u, ok := s.users[id]
	if !ok {
		return 0, false, gorm.ErrRecordNotFound
	}
	if u.CreditBalance < amount {
		return u.CreditBalance, false, nil
	}
	u.CreditBalance -= amount
	return u.CreditBalance, true, nil
}

func (s *fakeCreditStore) AddBalance(id uint, amount int) (int, error) {
	u, ok := s.users[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	u.CreditBalance += amount
	return u.CreditBalance, nil
}

func (s *fakeCreditStore) RemoveBalanceClamped(id uint, amount int) (int, error) {
	u, ok := s.users[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	u.CreditBalance -= amount
	if u.CreditBalance < 0 {
		u.CreditBalance = 0
	}
	return u.CreditBalance, nil
}

func (s *fakeCreditStore) SetStripeCustomerID(id uint, customerID string) error {
	u, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if u.StripeCustomerID == "" {
		u.StripeCustomerID = customerID
	}
	return nil
}

func (s *fakeCreditStore) ApplyReset(id uint, allowance int, now time.Time, window time.Duration) (bool, error) {
	u, ok := s.users[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if u.LastCreditReset.After(now.Add(-window)) {
		return false, nil
	}
	u.CreditBalance = allowance
	u.LastCreditReset = now
	return true, nil
}

func freeUser(id uint, balance int) *models.User {
	return &models.User{ID: id, PlanTier: models.PlanFree, CreditBalance: balance}
}

func TestDeductCredits_ExactDecrement(t *testing.T) {
	store := newFakeCreditStore(freeUser(1, 50))
	svc := NewCreditService(store, zap.NewNop())

	d, err := svc.DeductCredits(1, models.OpMusicGeneration)
	require.NoError(t, err)
	assert.True(t, d.Success)
	assert.Equal(t, 5, d.AmountDeducted)
	assert.Equal(t, 45, d.NewBalance)
	assert.False(t, d.WasUnlimited)
	assert.Equal(t, 45, store.users[1].CreditBalance)
}

func TestDeductCredits_InsufficientLeavesBalanceUntouched(t *testing.T) {
	store := newFakeCreditStore(freeUser(1, 3))
	svc := NewCreditService(store, zap.NewNop())

	d, err := svc.DeductCredits(1, models.OpMusicGeneration)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	require.NotNil(t, d)
	assert.False(t, d.Success)
	assert.Equal(t, 3, d.NewBalance)
	assert.Equal(t, 3, store.users[1].CreditBalance)
}

func TestDeductCredits_ExactBalanceSucceeds(t *testing.T) {
	store := newFakeCreditStore(freeUser(1, 5))
	svc := NewCreditService(store, zap.NewNop())

	d, err := svc.DeductCredits(1, models.OpMusicGeneration)
	require.NoError(t, err)
	assert.Equal(t, 0, d.NewBalance)
	assert.Equal(t, 0, store.users[1].CreditBalance)
}

func TestDeductCredits_UnlimitedTierSkipsLedger(t *testing.T) {
	store := newFakeCreditStore(&models.User{ID: 1, PlanTier: models.PlanStudio, CreditBalance: 10})
	svc := NewCreditService(store, zap.NewNop())

	d, err := svc.DeductCredits(1, models.OpMusicGeneration)
	require.NoError(t, err)
	assert.True(t, d.Success)
	assert.True(t, d.WasUnlimited)
	assert.Equal(t, 0, d.AmountDeducted)
	assert.Equal(t, 10, d.NewBalance)
	assert.Equal(t, 0, store.deductCalls, "unlimited deduction must not touch the store")
}

func TestDeductCredits_UnlimitedIsPerOperation(t *testing.T) {
	// Studio is exempt for music but not for video.
	store := newFakeCreditStore(&models.User{ID: 1, PlanTier: models.PlanStudio, CreditBalance: 25})
	svc := NewCreditService(store, zap.NewNop())

	d, err := svc.DeductCredits(1, models.OpVideoGeneration)
	require.NoError(t, err)
	assert.False(t, d.WasUnlimited)
	assert.Equal(t, 10, d.AmountDeducted)
	assert.Equal(t, 15, store.users[1].CreditBalance)
}

// negativeBalanceStore reports a successful deduction with a negative
// balance, violating the guarded-update contract.
type negativeBalanceStore struct {
	*fakeCreditStore
}

func (s *negativeBalanceStore) DeductBalance(id uint, amount int) (int, bool, error) {
	return -7, true, nil
}

func TestDeductCredits_NegativeBalanceFromStoreIsClamped(t *testing.T) {
	store := &negativeBalanceStore{newFakeCreditStore(freeUser(1, 50))}
	svc := NewCreditService(store, zap.NewNop())

	d, err := svc.DeductCredits(1, models.OpMusicGeneration)
	require.NoError(t, err)
	assert.True(t, d.Success)
	assert.Equal(t, 0, d.NewBalance, "a broken store must never surface a negative balance")
}

func TestDeductCredits_UnknownAccount(t *testing.T) {
	svc := NewCreditService(newFakeCreditStore(), zap.NewNop())

	_, err := svc.DeductCredits(99, models.OpMusicGeneration)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCheckCredits_Reasons(t *testing.T) {
	store := newFakeCreditStore(
		freeUser(1, 50),
		freeUser(2, 2),
		&models.User{ID: 3, PlanTier: models.PlanAllAccess, CreditBalance: 0},
	)
	svc := NewCreditService(store, zap.NewNop())

	ok, err := svc.CheckCredits(1, models.OpMusicGeneration)
	require.NoError(t, err)
	assert.True(t, ok.Allowed)
	assert.Equal(t, models.CreditReasonSuccess, ok.Reason)
	assert.Equal(t, 5, ok.RequiredCredits)

	insufficient, err := svc.CheckCredits(2, models.OpMusicGeneration)
	require.NoError(t, err)
	assert.False(t, insufficient.Allowed)
	assert.Equal(t, models.CreditReasonInsufficient, insufficient.Reason)

	unlimited, err := svc.CheckCredits(3, models.OpVideoGeneration)
	require.NoError(t, err)
	assert.False(t, unlimited.Allowed)

	unlimitedMusic, err := svc.CheckCredits(3, models.OpMusicGeneration)
	require.NoError(t, err)
	assert.True(t, unlimitedMusic.Allowed)
	assert.Equal(t, models.CreditReasonUnlimited, unlimitedMusic.Reason)
}

func TestCheckCredits_DoesNotMutateBalance(t *testing.T) {
	store := newFakeCreditStore(freeUser(1, 50))
	svc := NewCreditService(store, zap.NewNop())

	_, err := svc.CheckCredits(1, models.OpMusicGeneration)
	require.NoError(t, err)
	assert.Equal(t, 50, store.users[1].CreditBalance)
}

func TestCreditAccount_AddsAndRejectsNonPositive(t *testing.T) {
	store := newFakeCreditStore(freeUser(1, 10))
	svc := NewCreditService(store, zap.NewNop())

	balance, err := svc.CreditAccount(1, 400)
	require.NoError(t, err)
	assert.Equal(t, 410, balance)

	_, err = svc.CreditAccount(1, 0)
	assert.Error(t, err)
	_, err = svc.CreditAccount(1, -5)
	assert.Error(t, err)
	assert.Equal(t, 410, store.users[1].CreditBalance)
}

func TestRevokeCredits_ClampsAtZero(t *testing.T) {
	store := newFakeCreditStore(freeUser(1, 100))
	svc := NewCreditService(store, zap.NewNop())

	balance, err := svc.RevokeCredits(1, 400)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestResetDailyAllowance_SetsNotAdds(t *testing.T) {
	now := time.Now()
	user := freeUser(1, 7)
	user.LastCreditReset = now.Add(-25 * time.Hour)
	store := newFakeCreditStore(user)
	svc := NewCreditService(store, zap.NewNop())

	res, err := svc.ResetDailyAllowance(1, now)
	require.NoError(t, err)
	assert.True(t, res.ResetOccurred)
	assert.Equal(t, 50, res.Balance, "reset sets the balance to the allowance, never adds to it")
	assert.Equal(t, 50, store.users[1].CreditBalance)
}

func TestResetDailyAllowance_IdempotentWithinWindow(t *testing.T) {
	now := time.Now()
	user := freeUser(1, 7)
	user.LastCreditReset = now.Add(-25 * time.Hour)
	store := newFakeCreditStore(user)
	svc := NewCreditService(store, zap.NewNop())

	first, err := svc.ResetDailyAllowance(1, now)
	require.NoError(t, err)
	require.True(t, first.ResetOccurred)

	second, err := svc.ResetDailyAllowance(1, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, second.ResetOccurred)
	assert.Equal(t, 50, second.Balance)
	assert.Equal(t, 23, second.HoursUntilEligible)
}

func TestResetDailyAllowance_UnlimitedPlanNoop(t *testing.T) {
	user := &models.User{ID: 1, PlanTier: models.PlanAllAccess, CreditBalance: 123}
	store := newFakeCreditStore(user)
	svc := NewCreditService(store, zap.NewNop())

	res, err := svc.ResetDailyAllowance(1, time.Now())
	require.NoError(t, err)
	assert.False(t, res.ResetOccurred)
	assert.Equal(t, 123, res.Balance)
	assert.Equal(t, 123, store.users[1].CreditBalance)
}

func TestStatus_ReportsPlanAndAllowance(t *testing.T) {
	user := &models.User{
		ID:              1,
		PlanTier:        models.PlanStudio,
		CreditBalance:   77,
		LastCreditReset: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}
	svc := NewCreditService(newFakeCreditStore(user), zap.NewNop())

	status, err := svc.Status(1)
	require.NoError(t, err)
	assert.Equal(t, 77, status.Balance)
	assert.Equal(t, models.PlanStudio, status.PlanTier)
	assert.Equal(t, models.Metered(2500), status.DailyAllowance)
	assert.Equal(t, "2026-08-25T12:00:00Z", status.LastCreditReset)
}
