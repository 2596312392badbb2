package utils

import (
	"testing"

	"github.com/melodia/melodia-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidator_GenerateMusicRequest(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(models.GenerateMusicRequest{
		Prompt: "a lo-fi beat",
		Model:  "V4",
	}))

	assert.Error(t, v.Struct(models.GenerateMusicRequest{
		Prompt: "a lo-fi beat",
		Model:  "V99",
	}), "unknown model must fail the music_model tag")

	assert.Error(t, v.Struct(models.GenerateMusicRequest{
		Model: "V4",
	}), "prompt is required")
}

func TestValidator_GenerateVideoRequest(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(models.GenerateVideoRequest{
		TaskID:     "task_1",
		Resolution: "720p",
	}))
	assert.Error(t, v.Struct(models.GenerateVideoRequest{
		TaskID:     "task_1",
		Resolution: "4k",
	}))
}

func TestValidator_GenerateImageRequest(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(models.GenerateImageRequest{
		Prompt: "album cover, neon city",
		Engine: "flux",
	}))
	assert.Error(t, v.Struct(models.GenerateImageRequest{
		Prompt: "album cover",
		Engine: "dalle",
	}))
}

func TestGenerateRandomString(t *testing.T) {
	a := GenerateRandomString(10)
	b := GenerateRandomString(10)
	assert.Len(t, a, 10)
	assert.Len(t, b, 10)
	assert.NotEqual(t, a, b)
}
