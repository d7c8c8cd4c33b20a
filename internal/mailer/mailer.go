package mailer

import (
	"github.com/solarvest/auth-service/pkg/config"
)

// Service delivers verification and password-reset material over email.
// Success means the transport accepted the message; no delivery receipt is
// awaited.
type Service interface {
	SendOTPEmail(toEmail, firstName, otp string) error
	SendPasswordResetEmail(toEmail, firstName, resetURL, secret string) error
}

// New selects the email channel variant by configuration.
func New(cfg config.EmailConfig) Service {
	switch cfg.Provider {
	case "mailersend":
		return NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.From)
	case "smtp":
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.From, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	default:
		return NewDevMailer()
	}
}
