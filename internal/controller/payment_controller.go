package controller

import (
	"github.com/melodia/melodia-backend/internal/models"
	"github.com/melodia/melodia-backend/internal/service"
	"github.com/stripe/stripe-go/v74"
)

type PaymentController struct {
	paymentService *service.PaymentService
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

func (c *PaymentController) CreateCheckoutSession(userID uint, bundleID uint) (*models.CheckoutSession, error) {
	return c.paymentService.CreateCheckoutSession(userID, bundleID)
}

func (c *PaymentController) HandleStripeWebhook(event *stripe.Event) error {
	return c.paymentService.HandleStripeWebhook(event)
}

func (c *PaymentController) ConfirmCheckout(userID uint, sessionID string) error {
	return c.paymentService.ConfirmCheckout(userID, sessionID)
}

func (c *PaymentController) GetCreditBundles() ([]models.CreditBundle, error) {
	return c.paymentService.GetCreditBundles()
}

func (c *PaymentController) GetUserPurchaseHistory(userID uint) ([]models.CreditPurchase, error) {
	return c.paymentService.GetUserPurchaseHistory(userID)
}
