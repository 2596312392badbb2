package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/melodia/melodia-backend/internal/models"
	"github.com/melodia/melodia-backend/internal/service"
)

// respondServiceError maps service-layer errors onto HTTP statuses. The
// ledger and guard return typed errors, so no message matching happens here.
func respondServiceError(c *fiber.Ctx, err error) error {
	var denial *service.EntitlementDenial
	if errors.As(err, &denial) {
		// 403 with the allowed set so the client can render an upgrade prompt.
		return c.Status(fiber.StatusForbidden).JSON(models.Response{
			Success: false,
			Error:   denial.Error(),
			Data:    denial,
		})
	}

	var gatewayErr *service.GatewayError
	if errors.As(err, &gatewayErr) {
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse(gatewayErr.Error()))
	}

	switch {
	case errors.Is(err, service.ErrInsufficientCredits):
		// 402 distinguishes the expected business condition from faults so
		// the client can show the purchase flow.
		return c.Status(fiber.StatusPaymentRequired).JSON(models.ErrorResponse(err.Error()))
	case errors.Is(err, service.ErrPaymentNotCompleted):
		return c.Status(fiber.StatusPaymentRequired).JSON(models.ErrorResponse(err.Error()))
	case errors.Is(err, service.ErrFeatureNotInPlan):
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse(err.Error()))
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrBundleNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrPurchaseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse(err.Error()))
	case errors.Is(err, service.ErrNotTaskOwner),
		errors.Is(err, service.ErrNotPurchaseOwner):
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidCaptcha):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
}

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c *fiber.Ctx) (uint, error) {
	userIDRaw := c.Locals("userID")
	if userIDRaw == nil {
		return 0, errors.New("user not authenticated")
	}
	userID, ok := userIDRaw.(uint)
	if !ok {
		return 0, errors.New("invalid user ID format")
	}
	return userID, nil
}
