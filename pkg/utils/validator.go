package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/melodia/melodia-backend/internal/models"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Custom validations for the closed generation enums
	v.RegisterValidation("music_model", validateMusicModel)
	v.RegisterValidation("video_resolution", validateVideoResolution)
	v.RegisterValidation("image_engine", validateImageEngine)

	return &Validator{
		validate: v,
	}
}

func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

func validateMusicModel(fl validator.FieldLevel) bool {
	_, err := models.ParseMusicModel(fl.Field().String())
	return err == nil
}

func validateVideoResolution(fl validator.FieldLevel) bool {
	_, err := models.ParseVideoResolution(fl.Field().String())
	return err == nil
}

func validateImageEngine(fl validator.FieldLevel) bool {
	_, err := models.ParseImageEngine(fl.Field().String())
	return err == nil
}
