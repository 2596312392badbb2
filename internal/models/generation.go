package models

import (
	"fmt"
	"time"
)

// MusicModel is the closed set of music generation models the gateway offers.
type MusicModel string

const (
	MusicModelV3_5 MusicModel = "V3_5"
	MusicModelV4   MusicModel = "V4"
	MusicModelV4_5 MusicModel = "V4_5"
	MusicModelV5   MusicModel = "V5"
)

func ParseMusicModel(s string) (MusicModel, error) {
	switch MusicModel(s) {
	case MusicModelV3_5, MusicModelV4, MusicModelV4_5, MusicModelV5:
		return MusicModel(s), nil
	}
	return "", fmt.Errorf("unknown music model %q", s)
}

// VideoResolution is the closed set of supported video output resolutions.
type VideoResolution string

const (
	Resolution480p  VideoResolution = "480p"
	Resolution720p  VideoResolution = "720p"
	Resolution1080p VideoResolution = "1080p"
)

func ParseVideoResolution(s string) (VideoResolution, error) {
	switch VideoResolution(s) {
	case Resolution480p, Resolution720p, Resolution1080p:
		return VideoResolution(s), nil
	}
	return "", fmt.Errorf("unknown video resolution %q", s)
}

// ImageEngine is the closed set of cover art engines.
type ImageEngine string

const (
	EngineClassic ImageEngine = "classic"
	EngineFlux    ImageEngine = "flux"
)

func ParseImageEngine(s string) (ImageEngine, error) {
	switch ImageEngine(s) {
	case EngineClassic, EngineFlux:
		return ImageEngine(s), nil
	}
	return "", fmt.Errorf("unknown image engine %q", s)
}

// Task statuses. A task is terminal once complete or failed.
const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusComplete   = "complete"
	TaskStatusFailed     = "failed"
)

// GenerationTask tracks one dispatched gateway operation. Credits are charged
// at dispatch time; the task itself is not credit-bearing.
type GenerationTask struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	UserID         uint          `json:"user_id" gorm:"not null;index"`
	TaskID         string        `json:"task_id" gorm:"unique;not null"`
	Kind           OperationKind `json:"kind" gorm:"not null"`
	Status         string        `json:"status" gorm:"not null;default:'pending'"`
	Title          string        `json:"title"`
	Prompt         string        `json:"prompt"`
	Model          string        `json:"model"`
	CreditsCharged int           `json:"credits_charged" gorm:"not null"`
	ResultURL      string        `json:"result_url"`
	CoverURL       string        `json:"cover_url"`
	ArchiveURL     string        `json:"archive_url"`
	ShareSlug      string        `json:"share_slug" gorm:"unique"`
	FailureReason  string        `json:"failure_reason,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (t *GenerationTask) Terminal() bool {
	return t.Status == TaskStatusComplete || t.Status == TaskStatusFailed
}

type GenerateMusicRequest struct {
	Prompt       string `json:"prompt" validate:"required,max=2000"`
	Style        string `json:"style" validate:"max=200"`
	Title        string `json:"title" validate:"max=100"`
	Model        string `json:"model" validate:"required,music_model"`
	Instrumental bool   `json:"instrumental"`
}

type ExtendMusicRequest struct {
	TaskID   string `json:"task_id" validate:"required"`
	Prompt   string `json:"prompt" validate:"max=2000"`
	Model    string `json:"model" validate:"required,music_model"`
	Continue int    `json:"continue_at" validate:"gte=0"`
}

type WAVConversionRequest struct {
	TaskID string `json:"task_id" validate:"required"`
}

type GenerateVideoRequest struct {
	TaskID     string `json:"task_id" validate:"required"`
	Resolution string `json:"resolution" validate:"required,video_resolution"`
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
	Engine string `json:"engine" validate:"required,image_engine"`
}

type GenerateLyricsRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

// DispatchResponse is returned by every paid generation endpoint.
type DispatchResponse struct {
	TaskID         string `json:"task_id"`
	Status         string `json:"status"`
	CreditsCharged int    `json:"credits_charged"`
	Balance        int    `json:"balance"`
	WasUnlimited   bool   `json:"was_unlimited"`
}
