package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/melodia/melodia-backend/internal/models"
	"github.com/melodia/melodia-backend/internal/repository"
	"github.com/melodia/melodia-backend/pkg/bcrypt"
	"github.com/melodia/melodia-backend/pkg/email"
)

type UserService struct {
	userRepo     *repository.UserRepository
	emailService *email.EmailService
}

func NewUserService(userRepo *repository.UserRepository, emailService *email.EmailService) *UserService {
	return &UserService{
		userRepo:     userRepo,
		emailService: emailService,
	}
}

func (s *UserService) GetUserByEmail(email string) (*models.User, error) {
	return s.userRepo.GetByEmail(email)
}

func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

func (s *UserService) ChangePassword(userID uint, req models.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.ComparePassword(user.Password, req.CurrentPassword); err != nil {
		return errors.New("current password is incorrect")
	}

	hashedPassword, err := bcrypt.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(user.ID, hashedPassword)
}

func (s *UserService) InitiateEmailChange(userID uint, req models.ChangeEmailRequest) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		return errors.New("invalid password")
	}

	exists, err := s.userRepo.EmailExists(req.NewEmail)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("email already in use")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   userID,
		"new_email": req.NewEmail,
		"exp":       time.Now().Add(TokenExpiryEmailChange).Unix(),
	})

	tokenString, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return err
	}

	return s.emailService.SendEmailChangeVerification(req.NewEmail, tokenString)
}

func (s *UserService) CompleteEmailChange(token string) error {
	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !parsedToken.Valid {
		return errors.New("invalid or expired token")
	}

	userIDClaim, ok := claims["user_id"].(float64)
	if !ok {
		return errors.New("invalid token claims")
	}
	newEmail, ok := claims["new_email"].(string)
	if !ok {
		return errors.New("invalid token claims")
	}

	return s.userRepo.UpdateEmail(uint(userIDClaim), newEmail)
}

func (s *UserService) UpdateProfile(userID uint, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return user, nil
}
