package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/redmonkez12/go-blog-auth/internal/config"
	"github.com/redmonkez12/go-blog-auth/internal/logging"
)

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service mails issued sign-up pins and temporary passwords.
// Delivery is synchronous; callers decide whether a failure matters.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	frontendURL  string
	send         sendFunc
}

func NewService(cfg config.EmailConfig) *Service {
	return &Service{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUser:     cfg.SMTPUser,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.SMTPUser,
		frontendURL:  cfg.FrontendURL,
		send:         smtp.SendMail,
	}
}

// SendSignUpPin mails the pin that completes a pending sign-up
func (s *Service) SendSignUpPin(ctx context.Context, toEmail, name, pin string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := render(signUpPinTemplate, struct {
		Name        string
		Pin         string
		FrontendURL string
	}{Name: name, Pin: pin, FrontendURL: s.frontendURL})
	if err != nil {
		logger.Error("failed to render sign-up email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, "Your sign-up pin", body); err != nil {
		logger.Error("failed to send sign-up email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("sign-up email sent", "email", toEmail)
	return nil
}

// SendTemporaryPassword mails the reset token id together with the temporary password
func (s *Service) SendTemporaryPassword(ctx context.Context, toEmail, tokenID, temporaryPassword string) error {
	logger := logging.GetLoggerFromContext(ctx)

	body, err := render(temporaryPasswordTemplate, struct {
		TokenID           string
		TemporaryPassword string
		ResetLink         string
	}{
		TokenID:           tokenID,
		TemporaryPassword: temporaryPassword,
		ResetLink:         fmt.Sprintf("%s/reset-password?token_id=%s", s.frontendURL, tokenID),
	})
	if err != nil {
		logger.Error("failed to render password reset email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, "Reset your password", body); err != nil {
		logger.Error("failed to send password reset email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("password reset email sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	if s.smtpHost == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return s.send(addr, auth, s.fromEmail, []string{to}, msg)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

const layoutHead = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #4F46E5; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
        .secret { font-family: monospace; font-size: 28px; letter-spacing: 4px; color: #4F46E5; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; text-align: center; }
    </style>
</head>
<body>
`

var signUpPinTemplate = template.Must(template.New("signUpPin").Parse(layoutHead + `
    <div class="header">
        <h1>Welcome, {{.Name}}!</h1>
    </div>
    <div class="content">
        <p>Enter this pin to finish creating your account:</p>
        <p class="secret">{{.Pin}}</p>
        <p style="margin-top: 30px;">If you didn't sign up at {{.FrontendURL}}, you can safely ignore this email.</p>
    </div>
    <div class="footer">
        <p>This pin is valid for a short time only.</p>
    </div>
</body>
</html>
`))

var temporaryPasswordTemplate = template.Must(template.New("temporaryPassword").Parse(layoutHead + `
    <div class="header">
        <h1>Password Reset Request</h1>
    </div>
    <div class="content">
        <p>Use the temporary password below to choose a new password.</p>
        <p>Reset id: <code>{{.TokenID}}</code></p>
        <p class="secret">{{.TemporaryPassword}}</p>
        <p><a href="{{.ResetLink}}">Reset your password</a></p>
        <p style="margin-top: 30px;">If you didn't request a password reset, you can safely ignore this email. Your password will remain unchanged.</p>
    </div>
    <div class="footer">
        <p>This temporary password is valid for a short time only.</p>
    </div>
</body>
</html>
`))
