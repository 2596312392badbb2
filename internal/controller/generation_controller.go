package controller

import (
	"github.com/melodia/melodia-backend/internal/models"
	"github.com/melodia/melodia-backend/internal/service"
	"github.com/melodia/melodia-backend/pkg/gateway"
)

type GenerationController struct {
	generationService *service.GenerationService
}

func NewGenerationController(generationService *service.GenerationService) *GenerationController {
	return &GenerationController{
		generationService: generationService,
	}
}

func (c *GenerationController) GenerateMusic(userID uint, req models.GenerateMusicRequest) (*models.DispatchResponse, error) {
	return c.generationService.GenerateMusic(userID, req)
}

func (c *GenerationController) ExtendMusic(userID uint, req models.ExtendMusicRequest) (*models.DispatchResponse, error) {
	return c.generationService.ExtendMusic(userID, req)
}

func (c *GenerationController) ConvertToWAV(userID uint, req models.WAVConversionRequest) (*models.DispatchResponse, error) {
	return c.generationService.ConvertToWAV(userID, req)
}

func (c *GenerationController) GenerateVideo(userID uint, req models.GenerateVideoRequest) (*models.DispatchResponse, error) {
	return c.generationService.GenerateVideo(userID, req)
}

func (c *GenerationController) GenerateImage(userID uint, req models.GenerateImageRequest) (*models.DispatchResponse, error) {
	return c.generationService.GenerateImage(userID, req)
}

func (c *GenerationController) GenerateLyrics(userID uint, req models.GenerateLyricsRequest) (*models.DispatchResponse, error) {
	return c.generationService.GenerateLyrics(userID, req)
}

func (c *GenerationController) GetTask(userID uint, taskID string) (*models.GenerationTask, error) {
	return c.generationService.GetTask(userID, taskID)
}

func (c *GenerationController) ListTasks(userID uint, limit int) ([]models.GenerationTask, error) {
	return c.generationService.ListTasks(userID, limit)
}

func (c *GenerationController) HandleCallback(token string, status gateway.TaskStatus) error {
	return c.generationService.HandleCallback(token, status)
}

func (c *GenerationController) GetSharedTask(slug string) (*models.GenerationTask, error) {
	return c.generationService.GetSharedTask(slug)
}

func (c *GenerationController) TaskQR(userID uint, taskID string, size int) ([]byte, error) {
	return c.generationService.TaskQR(userID, taskID, size)
}
