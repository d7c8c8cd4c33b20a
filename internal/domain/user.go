package domain

import (
	"regexp"
	"strings"
	"time"
)

// User is the account record. Secret material (password hash, pending OTPs,
// reset-token digest) never serializes.
type User struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone,omitempty"`
	PasswordHash string  `json:"-"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Role         string  `json:"role"`
	IsActive     bool    `json:"is_active"`

	IsEmailVerified bool `json:"is_email_verified"`
	IsPhoneVerified bool `json:"is_phone_verified"`

	EmailOTP          *string    `json:"-"`
	EmailOTPExpiresAt *time.Time `json:"-"`

	PhoneOTP            *string    `json:"-"`
	PhoneOTPExpiresAt   *time.Time `json:"-"`
	PhoneVerificationID *string    `json:"-"`

	ResetTokenHash      *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserInfo is the account summary returned to callers.
type UserInfo struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Role            string `json:"role"`
	IsEmailVerified bool   `json:"is_email_verified"`
	IsPhoneVerified bool   `json:"is_phone_verified"`
}

func (u *User) ToUserInfo() *UserInfo {
	info := &UserInfo{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
		IsPhoneVerified: u.IsPhoneVerified,
	}
	if u.Phone != nil {
		info.Phone = *u.Phone
	}
	return info
}

// HasValidEmailOTP reports whether a pending email OTP exists, matches the
// submitted code exactly, and is unexpired at now.
func (u *User) HasValidEmailOTP(code string, now time.Time) bool {
	return u.EmailOTP != nil && *u.EmailOTP == code &&
		u.EmailOTPExpiresAt != nil && now.Before(*u.EmailOTPExpiresAt)
}

// HasValidPhoneOTP is the phone-channel counterpart of HasValidEmailOTP.
func (u *User) HasValidPhoneOTP(code string, now time.Time) bool {
	return u.PhoneOTP != nil && *u.PhoneOTP == code &&
		u.PhoneOTPExpiresAt != nil && now.Before(*u.PhoneOTPExpiresAt)
}

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var validRoles = map[string]bool{
	RoleUser:  true,
	RoleAdmin: true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

// Request DTOs

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type VerifyPhoneRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type ResendEmailOTPRequest struct {
	Email string `json:"email"`
}

type ResendPhoneOTPRequest struct {
	Phone string `json:"phone"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// SessionResponse carries a freshly issued session token plus the account
// summary.
type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	User      *UserInfo `json:"user"`
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)
)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func isValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// NormalizePhone squeezes a phone number toward E.164: strips spaces,
// hyphens, dots, and parentheses, keeping a single leading plus.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (r *SignupRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.Phone != "" {
		r.Phone = NormalizePhone(r.Phone)
	}
}

func (r *SignupRequest) Validate() error {
	if r.Email == "" {
		return E(KindValidation, "email is required")
	}
	if !isValidEmail(r.Email) {
		return E(KindValidation, "invalid email format")
	}
	if r.Password == "" {
		return E(KindValidation, "password is required")
	}
	if len(r.Password) < 8 {
		return E(KindValidation, "password must be at least 8 characters")
	}
	if r.FirstName == "" {
		return E(KindValidation, "first name is required")
	}
	if r.LastName == "" {
		return E(KindValidation, "last name is required")
	}
	if r.Phone != "" && !isValidPhone(r.Phone) {
		return E(KindValidation, "phone must be in E.164 format")
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return E(KindValidation, "email is required")
	}
	if r.Password == "" {
		return E(KindValidation, "password is required")
	}
	return nil
}

func (r *VerifyEmailRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r *VerifyEmailRequest) Validate() error {
	if r.Email == "" {
		return E(KindValidation, "email is required")
	}
	if r.OTP == "" {
		return E(KindValidation, "otp is required")
	}
	return nil
}

func (r *VerifyPhoneRequest) Normalize() {
	r.Phone = NormalizePhone(r.Phone)
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r *VerifyPhoneRequest) Validate() error {
	if r.Phone == "" {
		return E(KindValidation, "phone is required")
	}
	if r.OTP == "" {
		return E(KindValidation, "otp is required")
	}
	return nil
}

func (r *ResetPasswordRequest) Validate() error {
	if r.Token == "" {
		return E(KindValidation, "reset token is required")
	}
	if len(r.Password) < 8 {
		return E(KindValidation, "password must be at least 8 characters")
	}
	return nil
}

func (r *UpdatePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return E(KindValidation, "current password is required")
	}
	if len(r.NewPassword) < 8 {
		return E(KindValidation, "new password must be at least 8 characters")
	}
	return nil
}
