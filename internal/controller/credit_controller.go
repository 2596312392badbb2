package controller

import (
	"time"

	"github.com/melodia/melodia-backend/internal/models"
	"github.com/melodia/melodia-backend/internal/service"
)

type CreditController struct {
	creditService      *service.CreditService
	entitlementService *service.EntitlementService
}

func NewCreditController(creditService *service.CreditService, entitlementService *service.EntitlementService) *CreditController {
	return &CreditController{
		creditService:      creditService,
		entitlementService: entitlementService,
	}
}

func (c *CreditController) Status(userID uint) (*models.CreditStatus, error) {
	return c.creditService.Status(userID)
}

func (c *CreditController) CheckCredits(userID uint, kind models.OperationKind) (*models.CreditCheck, error) {
	return c.creditService.CheckCredits(userID, kind)
}

func (c *CreditController) ResetDailyAllowance(userID uint) (*models.ResetResult, error) {
	return c.creditService.ResetDailyAllowance(userID, time.Now())
}

func (c *CreditController) PlanCapabilities() []models.PlanDefinition {
	return c.entitlementService.Capabilities()
}
