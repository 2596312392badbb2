package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/melodia/melodia-backend/internal/models"
	"github.com/melodia/melodia-backend/pkg/gateway"
	"github.com/melodia/melodia-backend/pkg/qrcode"
	"github.com/melodia/melodia-backend/pkg/storage"
	"github.com/melodia/melodia-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GenerationGateway is the outbound contract with the external generation
// API. Dispatches return an opaque task id; results arrive later.
type GenerationGateway interface {
	GenerateMusic(req gateway.MusicRequest) (string, error)
	ExtendMusic(req gateway.ExtendRequest) (string, error)
	ConvertToWAV(req gateway.WAVRequest) (string, error)
	GenerateVideo(req gateway.VideoRequest) (string, error)
	GenerateImage(req gateway.ImageRequest) (string, error)
	GenerateLyrics(req gateway.LyricsRequest) (string, error)
	GetTask(taskID string) (*gateway.TaskStatus, error)
}

// TaskStore persists dispatched generation tasks.
type TaskStore interface {
	Create(task *models.GenerationTask) error
	GetByTaskID(taskID string) (*models.GenerationTask, error)
	GetByShareSlug(slug string) (*models.GenerationTask, error)
	Update(task *models.GenerationTask) error
	GetUserTasks(userID uint, limit int) ([]models.GenerationTask, error)
}

// GenerationService orchestrates every paid operation: entitlement guard
// first, then the atomic credit deduction, and only then the gateway call.
// A request the plan does not allow never reaches the ledger; a request the
// balance does not cover never reaches the gateway. When the dispatch itself
// fails synchronously, the deducted amount is refunded (the gateway does not
// resume a dispatch that never got a task id).
type GenerationService struct {
	gateway       GenerationGateway
	tasks         TaskStore
	credits       *CreditService
	entitlements  *EntitlementService
	users         AccountReader
	archive       storage.StorageService
	images        storage.ImageService
	qr            *qrcode.QRService
	callbackToken string
	logger        *zap.Logger
}

func NewGenerationService(
	gw GenerationGateway,
	tasks TaskStore,
	credits *CreditService,
	entitlements *EntitlementService,
	users AccountReader,
	archive storage.StorageService,
	images storage.ImageService,
	qr *qrcode.QRService,
	callbackToken string,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		gateway:       gw,
		tasks:         tasks,
		credits:       credits,
		entitlements:  entitlements,
		users:         users,
		archive:       archive,
		images:        images,
		qr:            qr,
		callbackToken: callbackToken,
		logger:        logger,
	}
}

func (s *GenerationService) GenerateMusic(userID uint, req models.GenerateMusicRequest) (*models.DispatchResponse, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}
	if denial := s.entitlements.Validate(user.PlanTier, models.DimensionMusicModel, req.Model); denial != nil {
		return nil, denial
	}

	return s.dispatch(userID, models.OpMusicGeneration, &models.GenerationTask{
		UserID: userID,
		Kind:   models.OpMusicGeneration,
		Title:  req.Title,
		Prompt: req.Prompt,
		Model:  req.Model,
	}, func() (string, error) {
		return s.gateway.GenerateMusic(gateway.MusicRequest{
			Prompt:       req.Prompt,
			Style:        req.Style,
			Title:        req.Title,
			Model:        req.Model,
			Instrumental: req.Instrumental,
		})
	})
}

func (s *GenerationService) ExtendMusic(userID uint, req models.ExtendMusicRequest) (*models.DispatchResponse, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}
	if denial := s.entitlements.Validate(user.PlanTier, models.DimensionMusicModel, req.Model); denial != nil {
		return nil, denial
	}
	source, err := s.ownedCompleteTask(userID, req.TaskID)
	if err != nil {
		return nil, err
	}

	return s.dispatch(userID, models.OpMusicExtension, &models.GenerationTask{
		UserID: userID,
		Kind:   models.OpMusicExtension,
		Title:  source.Title,
		Prompt: req.Prompt,
		Model:  req.Model,
	}, func() (string, error) {
		return s.gateway.ExtendMusic(gateway.ExtendRequest{
			AudioTaskID: source.TaskID,
			Prompt:      req.Prompt,
			Model:       req.Model,
			ContinueAt:  req.Continue,
		})
	})
}

func (s *GenerationService) ConvertToWAV(userID uint, req models.WAVConversionRequest) (*models.DispatchResponse, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}
	if !s.entitlements.FeatureEnabled(user.PlanTier, models.FeatureWAVConversion) {
		return nil, ErrFeatureNotInPlan
	}
	source, err := s.ownedCompleteTask(userID, req.TaskID)
	if err != nil {
		return nil, err
	}

	return s.dispatch(userID, models.OpWAVConversion, &models.GenerationTask{
		UserID: userID,
		Kind:   models.OpWAVConversion,
		Title:  source.Title,
	}, func() (string, error) {
		return s.gateway.ConvertToWAV(gateway.WAVRequest{
			AudioTaskID: source.TaskID,
		})
	})
}

func (s *GenerationService) GenerateVideo(userID uint, req models.GenerateVideoRequest) (*models.DispatchResponse, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}
	if denial := s.entitlements.Validate(user.PlanTier, models.DimensionVideoResolution, req.Resolution); denial != nil {
		return nil, denial
	}
	source, err := s.ownedCompleteTask(userID, req.TaskID)
	if err != nil {
		return nil, err
	}

	return s.dispatch(userID, models.OpVideoGeneration, &models.GenerationTask{
		UserID: userID,
		Kind:   models.OpVideoGeneration,
		Title:  source.Title,
		Model:  req.Resolution,
	}, func() (string, error) {
		return s.gateway.GenerateVideo(gateway.VideoRequest{
			AudioTaskID: source.TaskID,
			Resolution:  req.Resolution,
		})
	})
}

func (s *GenerationService) GenerateImage(userID uint, req models.GenerateImageRequest) (*models.DispatchResponse, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}
	if denial := s.entitlements.Validate(user.PlanTier, models.DimensionImageEngine, req.Engine); denial != nil {
		return nil, denial
	}

	return s.dispatch(userID, models.OpImageGeneration, &models.GenerationTask{
		UserID: userID,
		Kind:   models.OpImageGeneration,
		Prompt: req.Prompt,
		Model:  req.Engine,
	}, func() (string, error) {
		return s.gateway.GenerateImage(gateway.ImageRequest{
			Prompt: req.Prompt,
			Engine: req.Engine,
		})
	})
}

func (s *GenerationService) GenerateLyrics(userID uint, req models.GenerateLyricsRequest) (*models.DispatchResponse, error) {
	// Lyrics have no plan-restricted dimension; metering alone applies.
	return s.dispatch(userID, models.OpLyricsGeneration, &models.GenerationTask{
		UserID: userID,
		Kind:   models.OpLyricsGeneration,
		Prompt: req.Prompt,
	}, func() (string, error) {
		return s.gateway.GenerateLyrics(gateway.LyricsRequest{
			Prompt: req.Prompt,
		})
	})
}

// dispatch runs the deduct-then-call sequence shared by every paid
// operation. The entitlement guard has already passed by the time a caller
// gets here.
func (s *GenerationService) dispatch(userID uint, kind models.OperationKind, task *models.GenerationTask, call func() (string, error)) (*models.DispatchResponse, error) {
	deduction, err := s.credits.DeductCredits(userID, kind)
	if err != nil {
		return nil, err
	}

	taskID, err := call()
	if err != nil {
		balance := deduction.NewBalance
		if deduction.AmountDeducted > 0 {
			if refunded, refundErr := s.credits.RefundCredits(userID, deduction.AmountDeducted); refundErr == nil {
				balance = refunded
			}
		}
		s.logger.Warn("gateway dispatch failed",
			zap.Uint("user_id", userID),
			zap.String("operation", string(kind)),
			zap.Int("balance", balance),
			zap.Error(err))
		return nil, &GatewayError{Op: kind, Err: err}
	}

	task.TaskID = taskID
	task.Status = models.TaskStatusPending
	task.CreditsCharged = deduction.AmountDeducted
	task.ShareSlug = utils.GenerateRandomString(10)
	if err := s.tasks.Create(task); err != nil {
		// The gateway call is already in flight; losing the row would strand
		// the task, so this is a loud failure.
		s.logger.Error("failed to persist generation task",
			zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}

	return &models.DispatchResponse{
		TaskID:         taskID,
		Status:         task.Status,
		CreditsCharged: deduction.AmountDeducted,
		Balance:        deduction.NewBalance,
		WasUnlimited:   deduction.WasUnlimited,
	}, nil
}

// GetTask returns the caller's task, polling the gateway for fresh state
// while the task is not terminal.
func (s *GenerationService) GetTask(userID uint, taskID string) (*models.GenerationTask, error) {
	task, err := s.tasks.GetByTaskID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrNotTaskOwner
	}
	if task.Terminal() {
		return task, nil
	}

	status, err := s.gateway.GetTask(taskID)
	if err != nil {
		// Stale state is better than a failed status check.
		s.logger.Warn("task poll failed",
			zap.String("task_id", taskID), zap.Error(err))
		return task, nil
	}

	s.applyStatus(task, status)
	return task, nil
}

func (s *GenerationService) ListTasks(userID uint, limit int) ([]models.GenerationTask, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.tasks.GetUserTasks(userID, limit)
}

// HandleCallback processes a push notification from the gateway. The shared
// token keeps random callers from completing other people's tasks.
func (s *GenerationService) HandleCallback(token string, status gateway.TaskStatus) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.callbackToken)) != 1 {
		return errors.New("invalid callback token")
	}

	task, err := s.tasks.GetByTaskID(status.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	if task.Terminal() {
		return nil // duplicate callback
	}

	s.applyStatus(task, &status)
	return nil
}

// GetSharedTask resolves a public share slug. Only completed tasks are
// visible through the share page.
func (s *GenerationService) GetSharedTask(slug string) (*models.GenerationTask, error) {
	task, err := s.tasks.GetByShareSlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.Status != models.TaskStatusComplete {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// TaskQR renders the share QR code for the caller's completed task.
func (s *GenerationService) TaskQR(userID uint, taskID string, size int) ([]byte, error) {
	task, err := s.tasks.GetByTaskID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrNotTaskOwner
	}
	if size <= 0 {
		size = 256
	}
	return s.qr.GenerateShareQR(task.ShareSlug, size)
}

func (s *GenerationService) applyStatus(task *models.GenerationTask, status *gateway.TaskStatus) {
	switch status.Status {
	case models.TaskStatusProcessing:
		task.Status = models.TaskStatusProcessing
	case models.TaskStatusComplete:
		task.Status = models.TaskStatusComplete
		task.ResultURL = status.ResultURL
		task.CoverURL = status.CoverURL
		s.archiveResult(task)
	case models.TaskStatusFailed:
		task.Status = models.TaskStatusFailed
		task.FailureReason = status.Error
	default:
		return
	}

	if err := s.tasks.Update(task); err != nil {
		s.logger.Error("failed to update generation task",
			zap.String("task_id", task.TaskID), zap.Error(err))
	}
}

// archiveResult copies the gateway's expiring result into our own storage.
// Best effort: the task is complete either way.
func (s *GenerationService) archiveResult(task *models.GenerationTask) {
	if s.archive != nil && task.ResultURL != "" {
		resp, err := http.Get(task.ResultURL)
		if err == nil {
			defer resp.Body.Close()
			key := fmt.Sprintf("tracks/%s%s", task.TaskID, resultExtension(task.Kind))
			url, upErr := s.archive.Upload(key, resp.Body, resultContentType(task.Kind))
			if upErr == nil {
				task.ArchiveURL = url
			} else {
				s.logger.Warn("failed to archive result",
					zap.String("task_id", task.TaskID), zap.Error(upErr))
			}
		}
	}

	if s.images != nil && task.CoverURL != "" {
		imageID, err := s.images.UploadFromURL(task.CoverURL)
		if err == nil {
			task.CoverURL = s.images.GetPublicURL(imageID)
		} else {
			s.logger.Warn("failed to mirror cover art",
				zap.String("task_id", task.TaskID), zap.Error(err))
		}
	}
}

func resultExtension(kind models.OperationKind) string {
	switch kind {
	case models.OpWAVConversion:
		return ".wav"
	case models.OpVideoGeneration:
		return ".mp4"
	case models.OpImageGeneration:
		return ".png"
	case models.OpLyricsGeneration:
		return ".txt"
	}
	return ".mp3"
}

func resultContentType(kind models.OperationKind) string {
	switch kind {
	case models.OpWAVConversion:
		return "audio/wav"
	case models.OpVideoGeneration:
		return "video/mp4"
	case models.OpImageGeneration:
		return "image/png"
	case models.OpLyricsGeneration:
		return "text/plain"
	}
	return "audio/mpeg"
}

func (s *GenerationService) getUser(userID uint) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *GenerationService) ownedCompleteTask(userID uint, taskID string) (*models.GenerationTask, error) {
	task, err := s.tasks.GetByTaskID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.UserID != userID {
		return nil, ErrNotTaskOwner
	}
	if task.Status != models.TaskStatusComplete {
		return nil, fmt.Errorf("source task %s is not complete", taskID)
	}
	return task, nil
}
