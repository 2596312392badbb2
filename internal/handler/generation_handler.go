package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/melodia/melodia-backend/internal/controller"
	"github.com/melodia/melodia-backend/internal/models"
	"github.com/melodia/melodia-backend/pkg/gateway"
	"github.com/melodia/melodia-backend/pkg/utils"
)

type GenerationHandler struct {
	generationController *controller.GenerationController
	validator            *utils.Validator
}

func NewGenerationHandler(generationController *controller.GenerationController, validator *utils.Validator) *GenerationHandler {
	return &GenerationHandler{
		generationController: generationController,
		validator:            validator,
	}
}

func (h *GenerationHandler) GenerateMusic(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	var req models.GenerateMusicRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	resp, err := h.generationController.GenerateMusic(userID, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(models.SuccessResponse(resp, "Generation dispatched"))
}

func (h *GenerationHandler) ExtendMusic(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	var req models.ExtendMusicRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	resp, err := h.generationController.ExtendMusic(userID, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(models.SuccessResponse(resp, "Extension dispatched"))
}

func (h *GenerationHandler) ConvertToWAV(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	var req models.WAVConversionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	resp, err := h.generationController.ConvertToWAV(userID, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(models.SuccessResponse(resp, "Conversion dispatched"))
}

func (h *GenerationHandler) GenerateVideo(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	var req models.GenerateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	resp, err := h.generationController.GenerateVideo(userID, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(models.SuccessResponse(resp, "Video dispatched"))
}

func (h *GenerationHandler) GenerateImage(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	var req models.GenerateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	resp, err := h.generationController.GenerateImage(userID, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(models.SuccessResponse(resp, "Image dispatched"))
}

func (h *GenerationHandler) GenerateLyrics(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	var req models.GenerateLyricsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	resp, err := h.generationController.GenerateLyrics(userID, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(models.SuccessResponse(resp, "Lyrics dispatched"))
}

func (h *GenerationHandler) GetTask(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	task, err := h.generationController.GetTask(userID, c.Params("taskId"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(models.SuccessResponse(task, "Task retrieved successfully"))
}

func (h *GenerationHandler) ListTasks(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	tasks, err := h.generationController.ListTasks(userID, c.QueryInt("limit"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(err.Error()))
	}

	return c.JSON(models.SuccessResponse(tasks, "Tasks retrieved successfully"))
}

// HandleCallback receives push notifications from the generation gateway.
func (h *GenerationHandler) HandleCallback(c *fiber.Ctx) error {
	var status gateway.TaskStatus
	if err := c.BodyParser(&status); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid callback body"))
	}

	if err := h.generationController.HandleCallback(c.Query("token"), status); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// GetSharedTask serves the public share page lookup, no auth required.
func (h *GenerationHandler) GetSharedTask(c *fiber.Ctx) error {
	task, err := h.generationController.GetSharedTask(c.Params("slug"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(models.SuccessResponse(task, "Track retrieved successfully"))
}

func (h *GenerationHandler) GetTaskQR(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(err.Error()))
	}

	png, err := h.generationController.TaskQR(userID, c.Params("taskId"), c.QueryInt("size"))
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}
