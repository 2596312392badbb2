package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/melodia/melodia-backend/internal/controller"
	"github.com/melodia/melodia-backend/internal/models"
)

type CreditHandler struct {
	creditController *controller.CreditController
}

func NewCreditHandler(creditController *controller.CreditController) *CreditHandler {
	return &CreditHandler{
		creditController: creditController,
	}
}

// GetCredits returns the balance, plan tier and last reset timestamp for the
// authenticated account.
func (h *CreditHandler) GetCredits(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	status, err := h.creditController.Status(userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(models.SuccessResponse(status, "Credits retrieved successfully"))
}

// CheckCredits is the advisory pre-flight check for the UI. It is not a
// reservation; the deduction path re-checks atomically.
func (h *CreditHandler) CheckCredits(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	kind := models.OperationKind(c.Query("operation"))
	switch kind {
	case models.OpMusicGeneration, models.OpMusicExtension, models.OpWAVConversion,
		models.OpVideoGeneration, models.OpImageGeneration, models.OpLyricsGeneration:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Unknown operation kind"))
	}

	check, err := h.creditController.CheckCredits(userID, kind)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(models.SuccessResponse(check, "Credit check completed"))
}

// ResetDailyAllowance applies the daily reset if the account is eligible and
// reports the hours remaining otherwise.
func (h *CreditHandler) ResetDailyAllowance(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	result, err := h.creditController.ResetDailyAllowance(userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	message := "Daily allowance reset"
	if !result.ResetOccurred {
		message = "Reset not yet eligible"
	}
	return c.JSON(models.SuccessResponse(result, message))
}

// GetPlans lists every plan's capability set for the pricing page.
func (h *CreditHandler) GetPlans(c *fiber.Ctx) error {
	return c.JSON(models.SuccessResponse(h.creditController.PlanCapabilities(), "Plans retrieved successfully"))
}
