package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/solarvest/auth-service/internal/domain"
	"github.com/solarvest/auth-service/internal/mailer"
	"github.com/solarvest/auth-service/internal/phone"
	"github.com/solarvest/auth-service/internal/repository"
	"github.com/solarvest/auth-service/pkg/auth"
	"github.com/solarvest/auth-service/pkg/config"
	"github.com/solarvest/auth-service/pkg/events"
	"github.com/solarvest/auth-service/pkg/logger"
)

// AuthService drives the account lifecycle: signup, email/phone OTP
// verification, resend, login, password reset and update.
type AuthService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.SessionResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.SessionResponse, error)
	VerifyEmail(ctx context.Context, req *domain.VerifyEmailRequest) (*domain.UserInfo, error)
	VerifyPhone(ctx context.Context, req *domain.VerifyPhoneRequest) (*domain.UserInfo, error)
	ResendEmailOTP(ctx context.Context, email string) error
	ResendPhoneOTP(ctx context.Context, phoneNumber string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) (*domain.SessionResponse, error)
	UpdatePassword(ctx context.Context, userID int64, req *domain.UpdatePasswordRequest) (*domain.SessionResponse, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

type authService struct {
	users    repository.UserRepository
	mailer   mailer.Service
	verifier phone.Verifier
	events   events.Publisher
	config   *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	mailSvc mailer.Service,
	verifier phone.Verifier,
	publisher events.Publisher,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:    users,
		mailer:   mailSvc,
		verifier: verifier,
		events:   publisher,
		config:   cfg,
	}
}

func (s *authService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.SessionResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return nil, domain.E(domain.KindConflict, "email already in use")
	}

	if req.Phone != "" {
		existing, err = s.users.FindByPhone(ctx, req.Phone)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing phone: %w", err)
		}
		if existing != nil {
			return nil, domain.E(domain.KindConflict, "phone number already in use")
		}
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Issue one OTP per channel that has a destination. The account itself
	// is never rolled back on dispatch failure, only the pending OTPs; the
	// user can retry via resend.
	emailOTP, err := auth.GenerateOTP()
	if err != nil {
		return nil, err
	}
	emailExpiry := time.Now().Add(s.config.Auth.OTPTTL)
	if err := s.users.SetEmailOTP(ctx, user.ID, &emailOTP, &emailExpiry); err != nil {
		return nil, fmt.Errorf("failed to persist email otp: %w", err)
	}

	if user.Phone != nil {
		phoneOTP, err := auth.GenerateOTP()
		if err != nil {
			return nil, err
		}
		phoneExpiry := time.Now().Add(s.config.Auth.OTPTTL)
		if err := s.users.SetPhoneOTP(ctx, user.ID, &phoneOTP, &phoneExpiry, nil); err != nil {
			return nil, fmt.Errorf("failed to persist phone otp: %w", err)
		}

		sessionID, err := s.verifier.RequestCode(ctx, *user.Phone, phoneOTP)
		if err != nil {
			s.rollbackOTPs(ctx, user.ID)
			return nil, domain.Wrap(domain.KindDelivery, "failed to send verification code", err)
		}
		if sessionID != "" {
			if err := s.users.SetPhoneOTP(ctx, user.ID, &phoneOTP, &phoneExpiry, &sessionID); err != nil {
				return nil, fmt.Errorf("failed to persist verification session: %w", err)
			}
		}
	}

	if err := s.mailer.SendOTPEmail(user.Email, user.FirstName, emailOTP); err != nil {
		s.rollbackOTPs(ctx, user.ID)
		return nil, domain.Wrap(domain.KindDelivery, "failed to send verification code", err)
	}

	s.publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Phone:     derefOrEmpty(user.Phone),
		CreatedAt: user.CreatedAt,
	})

	return s.newSession(user)
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.SessionResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	// Unknown email and wrong password are indistinguishable to the caller.
	if user == nil {
		return nil, domain.E(domain.KindUnauthorized, "incorrect email or password")
	}
	match, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, domain.E(domain.KindUnauthorized, "incorrect email or password")
	}

	if !user.IsActive {
		return nil, domain.E(domain.KindForbidden, "account is disabled")
	}

	return s.newSession(user)
}

func (s *authService) VerifyEmail(ctx context.Context, req *domain.VerifyEmailRequest) (*domain.UserInfo, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}
	if user.IsEmailVerified {
		return nil, domain.E(domain.KindValidation, "email already verified")
	}
	if !user.HasValidEmailOTP(req.OTP, time.Now()) {
		return nil, domain.E(domain.KindValidation, "invalid or expired OTP")
	}

	if err := s.users.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}

	s.publish(ctx, events.UserEmailVerified, events.UserVerifiedEvent{
		UserID:     user.ID,
		Channel:    "email",
		VerifiedAt: time.Now(),
	})

	user.IsEmailVerified = true
	return user.ToUserInfo(), nil
}

func (s *authService) VerifyPhone(ctx context.Context, req *domain.VerifyPhoneRequest) (*domain.UserInfo, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}
	// Reject re-verification before touching the external provider.
	if user.IsPhoneVerified {
		return nil, domain.E(domain.KindValidation, "phone number already verified")
	}
	if user.PhoneOTP == nil || user.PhoneOTPExpiresAt == nil || time.Now().After(*user.PhoneOTPExpiresAt) {
		return nil, domain.E(domain.KindValidation, "invalid or expired OTP")
	}

	ok, err := s.verifier.VerifyCode(ctx, req.Phone, derefOrEmpty(user.PhoneVerificationID), req.OTP, *user.PhoneOTP)
	if err != nil {
		return nil, fmt.Errorf("failed to verify phone code: %w", err)
	}
	if !ok {
		return nil, domain.E(domain.KindValidation, "invalid or expired OTP")
	}

	if err := s.users.MarkPhoneVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to mark phone verified: %w", err)
	}

	s.publish(ctx, events.UserPhoneVerified, events.UserVerifiedEvent{
		UserID:     user.ID,
		Channel:    "phone",
		VerifiedAt: time.Now(),
	})

	user.IsPhoneVerified = true
	return user.ToUserInfo(), nil
}

func (s *authService) ResendEmailOTP(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return domain.E(domain.KindNotFound, "user not found")
	}
	if user.IsEmailVerified {
		return domain.E(domain.KindValidation, "email already verified")
	}

	// A fresh OTP replaces the previous one; the old value no longer
	// verifies.
	otp, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.config.Auth.OTPTTL)
	if err := s.users.SetEmailOTP(ctx, user.ID, &otp, &expiry); err != nil {
		return fmt.Errorf("failed to persist email otp: %w", err)
	}

	if err := s.mailer.SendOTPEmail(user.Email, user.FirstName, otp); err != nil {
		if clearErr := s.users.SetEmailOTP(ctx, user.ID, nil, nil); clearErr != nil {
			logger.ErrorContext(ctx, "failed to roll back email otp", "error", clearErr, "user_id", user.ID)
		}
		return domain.Wrap(domain.KindDelivery, "failed to send verification code", err)
	}

	return nil
}

func (s *authService) ResendPhoneOTP(ctx context.Context, phoneNumber string) error {
	phoneNumber = domain.NormalizePhone(phoneNumber)

	user, err := s.users.FindByPhone(ctx, phoneNumber)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return domain.E(domain.KindNotFound, "user not found")
	}
	if user.IsPhoneVerified {
		return domain.E(domain.KindValidation, "phone number already verified")
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.config.Auth.OTPTTL)
	if err := s.users.SetPhoneOTP(ctx, user.ID, &otp, &expiry, nil); err != nil {
		return fmt.Errorf("failed to persist phone otp: %w", err)
	}

	sessionID, err := s.verifier.RequestCode(ctx, phoneNumber, otp)
	if err != nil {
		if clearErr := s.users.SetPhoneOTP(ctx, user.ID, nil, nil, nil); clearErr != nil {
			logger.ErrorContext(ctx, "failed to roll back phone otp", "error", clearErr, "user_id", user.ID)
		}
		return domain.Wrap(domain.KindDelivery, "failed to send verification code", err)
	}
	if sessionID != "" {
		if err := s.users.SetPhoneOTP(ctx, user.ID, &otp, &expiry, &sessionID); err != nil {
			return fmt.Errorf("failed to persist verification session: %w", err)
		}
	}

	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return domain.E(domain.KindNotFound, "there is no user with that email address")
	}

	secret, err := auth.NewResetSecret()
	if err != nil {
		return err
	}
	tokenHash := auth.HashSecret(secret)
	expiry := time.Now().Add(s.config.Auth.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, &tokenHash, &expiry); err != nil {
		return fmt.Errorf("failed to persist reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s?token=%s", s.config.Auth.ResetBaseURL, secret)
	if err := s.mailer.SendPasswordResetEmail(user.Email, user.FirstName, resetURL, secret); err != nil {
		if clearErr := s.users.SetResetToken(ctx, user.ID, nil, nil); clearErr != nil {
			logger.ErrorContext(ctx, "failed to roll back reset token", "error", clearErr, "user_id", user.ID)
		}
		return domain.Wrap(domain.KindDelivery, "failed to send password reset email", err)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) (*domain.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByResetTokenHash(ctx, auth.HashSecret(req.Token))
	if err != nil {
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}
	if user == nil {
		return nil, domain.E(domain.KindValidation, "reset token is invalid or has expired")
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	s.publish(ctx, events.UserPasswordReset, events.PasswordResetEvent{
		UserID:  user.ID,
		ResetAt: time.Now(),
	})

	// Log the user in with the new password.
	return s.newSession(user)
}

func (s *authService) UpdatePassword(ctx context.Context, userID int64, req *domain.UpdatePasswordRequest) (*domain.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}

	match, err := argon2id.ComparePasswordAndHash(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, domain.E(domain.KindUnauthorized, "current password is incorrect")
	}

	passwordHash, err := argon2id.CreateHash(req.NewPassword, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	return s.newSession(user)
}

func (s *authService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}
	return user, nil
}

// newSession issues a fresh session token for the account.
func (s *authService) newSession(user *domain.User) (*domain.SessionResponse, error) {
	token, err := auth.NewSessionToken(user.ID, user.Role, s.config.Auth.JWTSecret, s.config.Auth.SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return &domain.SessionResponse{
		Token:     token,
		ExpiresIn: int64(s.config.Auth.SessionTokenTTL.Seconds()),
		User:      user.ToUserInfo(),
	}, nil
}

// rollbackOTPs clears both channels' pending OTP material so a failed
// dispatch leaves the account with nothing pending.
func (s *authService) rollbackOTPs(ctx context.Context, userID int64) {
	if err := s.users.SetEmailOTP(ctx, userID, nil, nil); err != nil {
		logger.ErrorContext(ctx, "failed to roll back email otp", "error", err, "user_id", userID)
	}
	if err := s.users.SetPhoneOTP(ctx, userID, nil, nil, nil); err != nil {
		logger.ErrorContext(ctx, "failed to roll back phone otp", "error", err, "user_id", userID)
	}
}

func (s *authService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "subject", subject, "error", err)
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
