package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/melodia/melodia-backend/internal/models"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/price"
	"github.com/stripe/stripe-go/v74/product"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckoutProvider creates hosted checkout sessions.
type CheckoutProvider interface {
	CreateCheckoutSession(userEmail string, priceID string, metadata map[string]string) (*stripe.CheckoutSession, error)
}

// CheckoutVerifier reads a session's payment state back from the provider.
// The confirm fallback must not trust a session id alone: a pending purchase
// row exists before any money moves.
type CheckoutVerifier interface {
	GetCheckoutSession(sessionID string) (*stripe.CheckoutSession, error)
}

// PurchaseStore persists checkout attempts keyed by the Stripe session id.
type PurchaseStore interface {
	Create(purchase *models.CreditPurchase) error
	GetBySessionID(sessionID string) (*models.CreditPurchase, error)
	ClaimCompleted(sessionID string) (bool, error)
	ReleaseClaim(sessionID string) error
	ClaimRefunded(sessionID string) (bool, error)
	MarkFailed(sessionID string) error
	GetUserPurchaseHistory(userID uint) ([]models.CreditPurchase, error)
}

type BundleStore interface {
	GetByID(id uint) (*models.CreditBundle, error)
	GetAll() ([]models.CreditBundle, error)
}

type AccountReader interface {
	GetByID(id uint) (*models.User, error)
}

// AccountStore extends AccountReader with the one write payments need: the
// Stripe customer id learned from a completed session.
type AccountStore interface {
	AccountReader
	SetStripeCustomerID(id uint, customerID string) error
}

type ReceiptSender interface {
	SendPurchaseReceipt(email, bundleName string, credits int, price float64) error
}

// PaymentService turns external payment confirmations into ledger credits.
// Both entry points, the Stripe webhook and the client confirm fallback, run
// through the same idempotent reconcile, so a payment event credits the
// account exactly once no matter how often it is delivered.
type PaymentService struct {
	stripeService CheckoutProvider
	verifier      CheckoutVerifier
	credits       *CreditService
	users         AccountStore
	bundles       BundleStore
	purchases     PurchaseStore
	email         ReceiptSender
	logger        *zap.Logger
}

func NewPaymentService(
	stripeService CheckoutProvider,
	verifier CheckoutVerifier,
	credits *CreditService,
	users AccountStore,
	bundles BundleStore,
	purchases PurchaseStore,
	email ReceiptSender,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		stripeService: stripeService,
		verifier:      verifier,
		credits:       credits,
		users:         users,
		bundles:       bundles,
		purchases:     purchases,
		email:         email,
		logger:        logger,
	}
}

func (s *PaymentService) CreateCheckoutSession(userID uint, bundleID uint) (*models.CheckoutSession, error) {
	bundle, err := s.bundles.GetByID(bundleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	productParams := &stripe.ProductParams{
		Name: stripe.String(bundle.Name),
		Description: stripe.String(fmt.Sprintf("%d credits + %d bonus",
			bundle.Credits,
			bundle.BonusCredits)),
	}
	prod, err := product.New(productParams)
	if err != nil {
		return nil, err
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(int64(bundle.Price * 100)), // USD to cents
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
	}
	p, err := price.New(priceParams)
	if err != nil {
		return nil, err
	}

	session, err := s.stripeService.CreateCheckoutSession(
		user.Email,
		p.ID,
		map[string]string{
			"user_id":   fmt.Sprintf("%d", userID),
			"bundle_id": fmt.Sprintf("%d", bundleID),
		},
	)
	if err != nil {
		return nil, err
	}

	purchase := &models.CreditPurchase{
		UserID:          userID,
		BundleID:        bundleID,
		Credits:         bundle.Credits,
		BonusCredits:    bundle.BonusCredits,
		Price:           bundle.Price,
		StripeSessionID: session.ID,
		Status:          models.PurchaseStatusPending,
	}

	if err := s.purchases.Create(purchase); err != nil {
		return nil, err
	}

	return &models.CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

// HandleStripeWebhook routes a verified Stripe event into reconciliation.
// Redelivered events are, by construction, no-ops.
func (s *PaymentService) HandleStripeWebhook(event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return err
		}
		if session.Customer != nil {
			if purchase, err := s.purchases.GetBySessionID(session.ID); err == nil {
				s.rememberStripeCustomer(purchase.UserID, session.Customer.ID)
			}
		}
		return s.Reconcile(session.ID)

	case "checkout.session.expired", "checkout.session.async_payment_failed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return err
		}
		return s.purchases.MarkFailed(session.ID)

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return err
		}
		if charge.PaymentIntent == nil || charge.PaymentIntent.Metadata == nil {
			return nil
		}
		sessionID, ok := charge.PaymentIntent.Metadata["checkout_session_id"]
		if !ok {
			return nil // not one of ours
		}
		return s.handleRefund(sessionID)
	}

	return nil
}

// ConfirmCheckout is the synchronous client fallback for when the webhook is
// delayed. Unlike the webhook, the session id here comes from the client, so
// the payment state is read back from Stripe before any crediting: a pending
// purchase row exists the moment checkout starts, paid or not. On a paid
// session it runs the same reconcile as the webhook, so the two paths can
// never double-credit.
func (s *PaymentService) ConfirmCheckout(userID uint, sessionID string) error {
	purchase, err := s.purchases.GetBySessionID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPurchaseNotFound
		}
		return err
	}
	if purchase.UserID != userID {
		return ErrNotPurchaseOwner
	}

	session, err := s.verifier.GetCheckoutSession(sessionID)
	if err != nil {
		return err
	}
	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return ErrPaymentNotCompleted
	}
	if session.Customer != nil {
		s.rememberStripeCustomer(purchase.UserID, session.Customer.ID)
	}

	return s.Reconcile(sessionID)
}

// Reconcile credits a purchase exactly once. The pending-to-completed claim
// is a guarded update; a replay loses the claim and returns success without
// touching the ledger. If crediting fails after a won claim, the claim is
// released so the next delivery retries.
func (s *PaymentService) Reconcile(sessionID string) error {
	purchase, err := s.purchases.GetBySessionID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPurchaseNotFound
		}
		return err
	}

	claimed, err := s.purchases.ClaimCompleted(sessionID)
	if err != nil {
		return err
	}
	if !claimed {
		s.logger.Info("payment already reconciled",
			zap.String("session_id", sessionID))
		return nil
	}

	newBalance, err := s.credits.CreditAccount(purchase.UserID, purchase.TotalCredits())
	if err != nil {
		if releaseErr := s.purchases.ReleaseClaim(sessionID); releaseErr != nil {
			s.logger.Error("failed to release reconcile claim",
				zap.String("session_id", sessionID), zap.Error(releaseErr))
		}
		return err
	}

	s.logger.Info("payment reconciled",
		zap.String("session_id", sessionID),
		zap.Uint("user_id", purchase.UserID),
		zap.Int("credits", purchase.TotalCredits()),
		zap.Int("balance", newBalance))

	s.sendReceipt(purchase)
	return nil
}

func (s *PaymentService) handleRefund(sessionID string) error {
	purchase, err := s.purchases.GetBySessionID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPurchaseNotFound
		}
		return err
	}

	claimed, err := s.purchases.ClaimRefunded(sessionID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil // never completed, or already refunded
	}

	newBalance, err := s.credits.RevokeCredits(purchase.UserID, purchase.TotalCredits())
	if err != nil {
		return err
	}

	s.logger.Info("purchase refunded",
		zap.String("session_id", sessionID),
		zap.Uint("user_id", purchase.UserID),
		zap.Int("balance", newBalance))
	return nil
}

// rememberStripeCustomer records the customer id from a completed session so
// later flows (refund lookups, support tooling) can reach the Stripe account.
// Best effort.
func (s *PaymentService) rememberStripeCustomer(userID uint, customerID string) {
	if customerID == "" {
		return
	}
	if err := s.users.SetStripeCustomerID(userID, customerID); err != nil {
		s.logger.Warn("failed to store stripe customer id",
			zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (s *PaymentService) sendReceipt(purchase *models.CreditPurchase) {
	if s.email == nil {
		return
	}
	user, err := s.users.GetByID(purchase.UserID)
	if err != nil {
		return
	}
	bundle, err := s.bundles.GetByID(purchase.BundleID)
	if err != nil {
		return
	}
	// Receipt delivery is best effort; the credits are already granted.
	_ = s.email.SendPurchaseReceipt(user.Email, bundle.Name, purchase.TotalCredits(), purchase.Price)
}

func (s *PaymentService) GetCreditBundles() ([]models.CreditBundle, error) {
	return s.bundles.GetAll()
}

func (s *PaymentService) GetUserPurchaseHistory(userID uint) ([]models.CreditPurchase, error) {
	return s.purchases.GetUserPurchaseHistory(userID)
}
