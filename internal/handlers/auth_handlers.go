package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/solarvest/auth-service/internal/domain"
)

// Signup creates an account and dispatches one OTP per channel that has a
// destination.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON format", "INVALID_INPUT")
		return
	}

	session, err := h.authService.Signup(r.Context(), &req)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON format", "INVALID_INPUT")
		return
	}

	session, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusOK, session)
}

// Logout expires the client-held cookie; session tokens are stateless so
// there is nothing to revoke server-side.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON format", "INVALID_INPUT")
		return
	}

	user, err := h.authService.VerifyEmail(r.Context(), &req)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "email verified successfully",
		"user":    user,
	})
}

func (h *Handlers) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON format", "INVALID_INPUT")
		return
	}

	user, err := h.authService.VerifyPhone(r.Context(), &req)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "phone number verified successfully",
		"user":    user,
	})
}

func (h *Handlers) ResendEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendEmailOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required", "INVALID_INPUT")
		return
	}

	if err := h.authService.ResendEmailOTP(r.Context(), req.Email); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "verification code sent",
	})
}

func (h *Handlers) ResendPhoneOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendPhoneOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required", "INVALID_INPUT")
		return
	}

	if err := h.authService.ResendPhoneOTP(r.Context(), req.Phone); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "verification code sent",
	})
}

func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required", "INVALID_INPUT")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "password reset link sent to email",
	})
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON format", "INVALID_INPUT")
		return
	}

	session, err := h.authService.ResetPassword(r.Context(), &req)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusOK, session)
}

// UpdatePassword rotates the credential for the authenticated account and
// issues a fresh session token.
func (h *Handlers) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "you are not logged in", "UNAUTHORIZED")
		return
	}

	var req domain.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON format", "INVALID_INPUT")
		return
	}

	session, err := h.authService.UpdatePassword(r.Context(), user.ID, &req)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusOK, session)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "you are not logged in", "UNAUTHORIZED")
		return
	}

	writeJSON(w, http.StatusOK, user.ToUserInfo())
}
