package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/melodia/melodia-backend/internal/models"
	"github.com/melodia/melodia-backend/internal/service"
)

type BundleHandler struct {
	bundleService *service.BundleService
}

func NewBundleHandler(bundleService *service.BundleService) *BundleHandler {
	return &BundleHandler{
		bundleService: bundleService,
	}
}

func (h *BundleHandler) GetAllBundles(c *fiber.Ctx) error {
	bundles, err := h.bundleService.GetAllBundles()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(bundles, "Bundles retrieved successfully"))
}

// GetBundleByID accepts either a numeric id or a catalog slug such as
// "popular".
func (h *BundleHandler) GetBundleByID(c *fiber.Ctx) error {
	param := c.Params("id")

	var bundle *models.CreditBundle
	if id, err := strconv.ParseUint(param, 10, 32); err == nil {
		bundle, err = h.bundleService.GetBundleByID(uint(id))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Bundle not found"))
		}
	} else {
		bundle, err = h.bundleService.GetBundleBySlug(param)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse("Bundle not found"))
		}
	}

	return c.JSON(models.SuccessResponse(bundle, "Bundle retrieved successfully"))
}
