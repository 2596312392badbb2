package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/melodia/melodia-backend/internal/models"
	"github.com/stripe/stripe-go/v74"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memPurchaseStore mirrors the guarded status transitions of the real
// repository: a claim only succeeds from the expected prior status.
type memPurchaseStore struct {
	purchases map[string]*models.CreditPurchase
}

func newMemPurchaseStore(purchases ...*models.CreditPurchase) *memPurchaseStore {
	s := &memPurchaseStore{purchases: make(map[string]*models.CreditPurchase)}
	for _, p := range purchases {
		s.purchases[p.StripeSessionID] = p
	}
	return s
}

func (s *memPurchaseStore) Create(p *models.CreditPurchase) error {
	s.purchases[p.StripeSessionID] = p
	return nil
}

func (s *memPurchaseStore) GetBySessionID(sessionID string) (*models.CreditPurchase, error) {
	p, ok := s.purchases[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *memPurchaseStore) ClaimCompleted(sessionID string) (bool, error) {
	p, ok := s.purchases[sessionID]
	if !ok || p.Status != models.PurchaseStatusPending {
		return false, nil
	}
	p.Status = models.PurchaseStatusCompleted
	return true, nil
}

func (s *memPurchaseStore) ReleaseClaim(sessionID string) error {
	if p, ok := s.purchases[sessionID]; ok {
		p.Status = models.PurchaseStatusPending
	}
	return nil
}

func (s *memPurchaseStore) ClaimRefunded(sessionID string) (bool, error) {
	p, ok := s.purchases[sessionID]
	if !ok || p.Status != models.PurchaseStatusCompleted {
		return false, nil
	}
	p.Status = models.PurchaseStatusRefunded
	return true, nil
}

func (s *memPurchaseStore) MarkFailed(sessionID string) error {
	if p, ok := s.purchases[sessionID]; ok && p.Status == models.PurchaseStatusPending {
		p.Status = models.PurchaseStatusFailed
	}
	return nil
}

func (s *memPurchaseStore) GetUserPurchaseHistory(userID uint) ([]models.CreditPurchase, error) {
	var out []models.CreditPurchase
	for _, p := range s.purchases {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type stubBundleStore struct {
	bundles map[uint]*models.CreditBundle
}

func (s *stubBundleStore) GetByID(id uint) (*models.CreditBundle, error) {
	b, ok := s.bundles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (s *stubBundleStore) GetBySlug(slug string) (*models.CreditBundle, error) {
	for _, b := range s.bundles {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBundleStore) GetAll() ([]models.CreditBundle, error) {
	var out []models.CreditBundle
	for _, b := range s.bundles {
		out = append(out, *b)
	}
	return out, nil
}

// stubCheckoutVerifier serves canned session payment states keyed by id.
type stubCheckoutVerifier struct {
	sessions map[string]*stripe.CheckoutSession
}

func (s *stubCheckoutVerifier) GetCheckoutSession(sessionID string) (*stripe.CheckoutSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such session")
	}
	return session, nil
}

func paidSession(id string) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:            id,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
	}
}

type recordingReceiptSender struct {
	sent int
}

func (r *recordingReceiptSender) SendPurchaseReceipt(email, bundleName string, credits int, price float64) error {
	r.sent++
	return nil
}

func popularBundle() *models.CreditBundle {
	return &models.CreditBundle{ID: 2, Slug: "popular", Name: "Popular Pack", Credits: 350, BonusCredits: 50, Price: 19.99}
}

func pendingPurchase(userID uint, sessionID string) *models.CreditPurchase {
	return &models.CreditPurchase{
		UserID:          userID,
		BundleID:        2,
		Credits:         350,
		BonusCredits:    50,
		Price:           19.99,
		StripeSessionID: sessionID,
		Status:          models.PurchaseStatusPending,
	}
}

func newPaymentFixture(t *testing.T) (*PaymentService, *fakeCreditStore, *memPurchaseStore, *recordingReceiptSender) {
	t.Helper()
	store := newFakeCreditStore(freeUser(1, 10))
	purchases := newMemPurchaseStore(pendingPurchase(1, "cs_test_1"))
	receipts := &recordingReceiptSender{}
	verifier := &stubCheckoutVerifier{sessions: map[string]*stripe.CheckoutSession{
		"cs_test_1": paidSession("cs_test_1"),
	}}
	svc := NewPaymentService(
		nil, // checkout provider unused on the reconcile path
		verifier,
		NewCreditService(store, zap.NewNop()),
		store,
		&stubBundleStore{bundles: map[uint]*models.CreditBundle{2: popularBundle()}},
		purchases,
		receipts,
		zap.NewNop(),
	)
	return svc, store, purchases, receipts
}

func TestReconcile_CreditsFullBundleOnce(t *testing.T) {
	svc, store, purchases, receipts := newPaymentFixture(t)

	require.NoError(t, svc.Reconcile("cs_test_1"))

	assert.Equal(t, 410, store.users[1].CreditBalance, "350 + 50 bonus on top of the starting 10")
	assert.Equal(t, models.PurchaseStatusCompleted, purchases.purchases["cs_test_1"].Status)
	assert.Equal(t, 1, receipts.sent)
}

func TestReconcile_ReplayIsNoop(t *testing.T) {
	svc, store, _, receipts := newPaymentFixture(t)

	require.NoError(t, svc.Reconcile("cs_test_1"))
	require.NoError(t, svc.Reconcile("cs_test_1"))
	require.NoError(t, svc.Reconcile("cs_test_1"))

	assert.Equal(t, 410, store.users[1].CreditBalance, "replayed deliveries must not double-credit")
	assert.Equal(t, 1, receipts.sent)
}

func TestReconcile_UnknownSession(t *testing.T) {
	svc, _, _, _ := newPaymentFixture(t)

	assert.ErrorIs(t, svc.Reconcile("cs_missing"), ErrPurchaseNotFound)
}

func TestReconcile_ReleasesClaimWhenCreditingFails(t *testing.T) {
	// Purchase references a user the ledger does not know, so crediting fails
	// after the claim is won. The claim must be released for the next retry.
	purchases := newMemPurchaseStore(pendingPurchase(42, "cs_test_2"))
	store := newFakeCreditStore()
	svc := NewPaymentService(
		nil,
		nil,
		NewCreditService(store, zap.NewNop()),
		store,
		&stubBundleStore{bundles: map[uint]*models.CreditBundle{2: popularBundle()}},
		purchases,
		nil,
		zap.NewNop(),
	)

	assert.Error(t, svc.Reconcile("cs_test_2"))
	assert.Equal(t, models.PurchaseStatusPending, purchases.purchases["cs_test_2"].Status)
}

func TestConfirmCheckout_ConvergesWithWebhook(t *testing.T) {
	svc, store, _, _ := newPaymentFixture(t)

	// Webhook lands first, then the client confirm fallback fires.
	require.NoError(t, svc.Reconcile("cs_test_1"))
	require.NoError(t, svc.ConfirmCheckout(1, "cs_test_1"))

	assert.Equal(t, 410, store.users[1].CreditBalance)
}

func TestConfirmCheckout_RejectsOtherAccount(t *testing.T) {
	svc, store, _, _ := newPaymentFixture(t)

	assert.ErrorIs(t, svc.ConfirmCheckout(99, "cs_test_1"), ErrNotPurchaseOwner)
	assert.Equal(t, 10, store.users[1].CreditBalance)
}

func TestConfirmCheckout_RejectsUnpaidSession(t *testing.T) {
	// A pending purchase row exists as soon as checkout starts; confirming
	// with its session id before Stripe collected anything must not credit.
	svc, store, purchases, receipts := newPaymentFixture(t)
	svc.verifier = &stubCheckoutVerifier{sessions: map[string]*stripe.CheckoutSession{
		"cs_test_1": {
			ID:            "cs_test_1",
			PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
		},
	}}

	assert.ErrorIs(t, svc.ConfirmCheckout(1, "cs_test_1"), ErrPaymentNotCompleted)
	assert.Equal(t, 10, store.users[1].CreditBalance)
	assert.Equal(t, models.PurchaseStatusPending, purchases.purchases["cs_test_1"].Status)
	assert.Equal(t, 0, receipts.sent)
}

func TestConfirmCheckout_VerifierFailureBlocksCrediting(t *testing.T) {
	svc, store, _, _ := newPaymentFixture(t)
	svc.verifier = &stubCheckoutVerifier{sessions: map[string]*stripe.CheckoutSession{}}

	assert.Error(t, svc.ConfirmCheckout(1, "cs_test_1"))
	assert.Equal(t, 10, store.users[1].CreditBalance)
}

func TestConfirmCheckout_PersistsStripeCustomer(t *testing.T) {
	svc, store, _, _ := newPaymentFixture(t)
	session := paidSession("cs_test_1")
	session.Customer = &stripe.Customer{ID: "cus_test_1"}
	svc.verifier = &stubCheckoutVerifier{sessions: map[string]*stripe.CheckoutSession{
		"cs_test_1": session,
	}}

	require.NoError(t, svc.ConfirmCheckout(1, "cs_test_1"))
	assert.Equal(t, "cus_test_1", store.users[1].StripeCustomerID)
}

func TestHandleStripeWebhook_CompletedSessionCredits(t *testing.T) {
	svc, store, _, _ := newPaymentFixture(t)

	raw, err := json.Marshal(map[string]any{"id": "cs_test_1"})
	require.NoError(t, err)
	event := &stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}

	require.NoError(t, svc.HandleStripeWebhook(event))
	assert.Equal(t, 410, store.users[1].CreditBalance)
}

func TestHandleStripeWebhook_CompletedSessionPersistsCustomer(t *testing.T) {
	svc, store, _, _ := newPaymentFixture(t)

	raw, err := json.Marshal(map[string]any{
		"id":       "cs_test_1",
		"customer": "cus_test_1",
	})
	require.NoError(t, err)
	event := &stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}

	require.NoError(t, svc.HandleStripeWebhook(event))
	assert.Equal(t, "cus_test_1", store.users[1].StripeCustomerID)

	// First writer wins; a later session must not overwrite it.
	require.NoError(t, svc.users.SetStripeCustomerID(1, "cus_other"))
	assert.Equal(t, "cus_test_1", store.users[1].StripeCustomerID)
}

func TestHandleStripeWebhook_ExpiredSessionMarksFailed(t *testing.T) {
	svc, store, purchases, _ := newPaymentFixture(t)

	raw, err := json.Marshal(map[string]any{"id": "cs_test_1"})
	require.NoError(t, err)
	event := &stripe.Event{
		Type: "checkout.session.expired",
		Data: &stripe.EventData{Raw: raw},
	}

	require.NoError(t, svc.HandleStripeWebhook(event))
	assert.Equal(t, models.PurchaseStatusFailed, purchases.purchases["cs_test_1"].Status)
	assert.Equal(t, 10, store.users[1].CreditBalance)
}

func TestHandleStripeWebhook_ChargeRefundedRevokesCredits(t *testing.T) {
	svc, store, purchases, _ := newPaymentFixture(t)
	require.NoError(t, svc.Reconcile("cs_test_1"))
	require.Equal(t, 410, store.users[1].CreditBalance)

	// Simulate the user spending some credits before the refund.
	_, err := svc.credits.DeductCredits(1, models.OpVideoGeneration)
	require.NoError(t, err)
	require.Equal(t, 400, store.users[1].CreditBalance)

	raw, err := json.Marshal(map[string]any{
		"id": "ch_test_1",
		"payment_intent": map[string]any{
			"id":       "pi_test_1",
			"metadata": map[string]string{"checkout_session_id": "cs_test_1"},
		},
	})
	require.NoError(t, err)
	event := &stripe.Event{
		Type: "charge.refunded",
		Data: &stripe.EventData{Raw: raw},
	}

	require.NoError(t, svc.HandleStripeWebhook(event))
	assert.Equal(t, models.PurchaseStatusRefunded, purchases.purchases["cs_test_1"].Status)
	assert.Equal(t, 0, store.users[1].CreditBalance, "revoking 400 from 400 floors at zero")

	// Duplicate refund events are no-ops once the purchase is refunded.
	require.NoError(t, svc.HandleStripeWebhook(event))
	assert.Equal(t, 0, store.users[1].CreditBalance)
}

func TestHandleStripeWebhook_ForeignChargeIgnored(t *testing.T) {
	svc, store, _, _ := newPaymentFixture(t)

	raw, err := json.Marshal(map[string]any{
		"id": "ch_other",
		"payment_intent": map[string]any{
			"id":       "pi_other",
			"metadata": map[string]string{},
		},
	})
	require.NoError(t, err)
	event := &stripe.Event{
		Type: "charge.refunded",
		Data: &stripe.EventData{Raw: raw},
	}

	require.NoError(t, svc.HandleStripeWebhook(event))
	assert.Equal(t, 10, store.users[1].CreditBalance)
}

func TestHandleStripeWebhook_UnhandledEventIgnored(t *testing.T) {
	svc, _, _, _ := newPaymentFixture(t)

	event := &stripe.Event{Type: "customer.created", Data: &stripe.EventData{Raw: []byte("{}")}}
	assert.NoError(t, svc.HandleStripeWebhook(event))
}
