package mailer

import (
	"github.com/solarvest/auth-service/pkg/logger"
)

// DevMailer logs outgoing mail instead of sending it.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendOTPEmail(toEmail, firstName, otp string) error {
	logger.Info("[DEV MAIL] verification code",
		"to", toEmail,
		"name", firstName,
		"otp", otp,
	)
	return nil
}

func (d *DevMailer) SendPasswordResetEmail(toEmail, firstName, resetURL, secret string) error {
	logger.Info("[DEV MAIL] password reset",
		"to", toEmail,
		"name", firstName,
		"reset_url", resetURL,
		"secret", secret,
	)
	return nil
}
