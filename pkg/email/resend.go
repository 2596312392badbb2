package email

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

type EmailService struct {
	client       *resend.Client
	from         string
	fromName     string
	templatesDir string
	logger       *zap.Logger
}

func NewEmailService(logger *zap.Logger) *EmailService {
	return &EmailService{
		client:       resend.NewClient(os.Getenv("RESEND_API_KEY")),
		from:         os.Getenv("EMAIL_FROM_ADDRESS"),
		fromName:     os.Getenv("EMAIL_FROM_NAME"),
		templatesDir: "pkg/email/templates",
		logger:       logger,
	}
}

func (s *EmailService) SendWelcomeEmail(email, fullName string) error {
	templateData := map[string]interface{}{
		"FullName": fullName,
		"Email":    email,
		"Year":     time.Now().Year(),
	}

	html, err := s.parseTemplate("welcome.html", templateData)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{email},
		Subject: "Welcome to Melodia",
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Warn("failed to send welcome email",
			zap.String("email", email), zap.Error(err))
		return err
	}

	s.logger.Info("sent welcome email",
		zap.String("email", email), zap.String("message_id", resp.Id))
	return nil
}

func (s *EmailService) SendPasswordResetEmail(email string, resetToken string) error {
	templateData := map[string]interface{}{
		"ResetLink": os.Getenv("FRONTEND_URL") + "/reset-password?token=" + resetToken,
		"Email":     email,
		"Year":      time.Now().Year(),
	}

	html, err := s.parseTemplate("password-reset.html", templateData)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{email},
		Subject: "Reset Your Password - Melodia",
		Html:    html,
	}

	_, err = s.client.Emails.Send(params)
	if err != nil {
		s.logger.Warn("failed to send reset password email",
			zap.String("email", email), zap.Error(err))
	}
	return err
}

func (s *EmailService) SendEmailChangeVerification(email, token string) error {
	templateData := map[string]interface{}{
		"VerificationLink": os.Getenv("FRONTEND_URL") + "/verify-email?token=" + token,
		"Email":            email,
		"Year":             time.Now().Year(),
	}

	html, err := s.parseTemplate("verify-email.html", templateData)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{email},
		Subject: "Verify Your New Email - Melodia",
		Html:    html,
	}

	_, err = s.client.Emails.Send(params)
	return err
}

func (s *EmailService) SendPurchaseReceipt(email, bundleName string, credits int, price float64) error {
	templateData := map[string]interface{}{
		"BundleName": bundleName,
		"Credits":    credits,
		"Price":      price,
		"Email":      email,
		"Year":       time.Now().Year(),
	}

	html, err := s.parseTemplate("purchase-receipt.html", templateData)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{email},
		Subject: "Your Melodia Credits",
		Html:    html,
	}

	_, err = s.client.Emails.Send(params)
	if err != nil {
		s.logger.Warn("failed to send purchase receipt",
			zap.String("email", email), zap.Error(err))
	}
	return err
}

func (s *EmailService) parseTemplate(templateName string, data interface{}) (string, error) {
	tmpl, err := template.ParseFiles(filepath.Join(s.templatesDir, templateName))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
