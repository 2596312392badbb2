package handler

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/melodia/melodia-backend/internal/controller"
	"github.com/melodia/melodia-backend/internal/models"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentController *controller.PaymentController
	logger            *zap.Logger
}

func NewPaymentHandler(paymentController *controller.PaymentController, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentController: paymentController,
		logger:            logger,
	}
}

func (h *PaymentHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	bundleID, err := strconv.ParseUint(c.Params("bundleId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid bundle ID"))
	}

	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	session, err := h.paymentController.CreateCheckoutSession(userID, uint(bundleID))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(models.SuccessResponse(session, "Checkout session created"))
}

// HandleStripeWebhook receives provider-signed payment events. Signature
// verification happens before anything else; reconciliation downstream is
// idempotent, so Stripe redelivery is harmless.
func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		h.logger.Warn("stripe webhook signature verification failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Webhook verification failed"))
	}

	if err := h.paymentController.HandleStripeWebhook(&event); err != nil {
		h.logger.Error("stripe webhook processing failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.SendStatus(fiber.StatusOK)
}

// ConfirmCheckout is the client-side fallback when the webhook is delayed.
// It converges on the same idempotent reconciliation as the webhook.
func (h *PaymentHandler) ConfirmCheckout(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	var req models.ConfirmCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}

	if err := h.paymentController.ConfirmCheckout(userID, req.SessionID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(models.SuccessResponse(nil, "Payment confirmed"))
}

func (h *PaymentHandler) GetCreditBundles(c *fiber.Ctx) error {
	bundles, err := h.paymentController.GetCreditBundles()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(bundles, "Bundles retrieved successfully"))
}

func (h *PaymentHandler) GetPurchaseHistory(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	purchases, err := h.paymentController.GetUserPurchaseHistory(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(purchases, "Purchase history retrieved successfully"))
}
