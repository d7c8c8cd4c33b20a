package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/solarvest/auth-service/internal/domain"
	"github.com/solarvest/auth-service/internal/service"
	"github.com/solarvest/auth-service/pkg/auth"
	"github.com/solarvest/auth-service/pkg/config"
	"github.com/solarvest/auth-service/pkg/logger"
)

type Handlers struct {
	authService service.AuthService
	config      *config.Config
}

func New(authService service.AuthService, cfg *config.Config) *Handlers {
	return &Handlers{
		authService: authService,
		config:      cfg,
	}
}

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the account resolved by RequireAuth.
func UserFromContext(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(userContextKey).(*domain.User); ok {
		return u
	}
	return nil
}

// RequireAuth extracts a bearer token from the Authorization header or the
// jwt cookie (header wins), validates it, and resolves the account onto
// the request context.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "you are not logged in", "UNAUTHORIZED")
			return
		}

		claims, err := auth.ParseSessionToken(token, h.config.Auth.JWTSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token", "INVALID_TOKEN")
			return
		}

		user, err := h.authService.GetUser(r.Context(), claims.Sub)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "the user belonging to this token no longer exists", "UNAUTHORIZED")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, logger.UserIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireVerifiedEmail gates a capability on a verified email address.
func (h *Handlers) RequireVerifiedEmail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "you are not logged in", "UNAUTHORIZED")
			return
		}
		if !user.IsEmailVerified {
			writeError(w, http.StatusForbidden, "please verify your email address to continue", "FORBIDDEN")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("jwt"); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.config.Auth.SessionTokenTTL),
		HttpOnly: true,
		Secure:   h.config.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    "loggedout",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.config.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
		"code":  code,
	})
}

// writeDomainError maps the closed error-kind taxonomy onto the HTTP
// envelope. Internal causes never leak to the caller.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	message := domain.MessageOf(err)

	switch kind {
	case domain.KindValidation:
		writeError(w, http.StatusBadRequest, message, "INVALID_INPUT")
	case domain.KindConflict:
		writeError(w, http.StatusConflict, message, "CONFLICT")
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, message, "NOT_FOUND")
	case domain.KindUnauthorized:
		writeError(w, http.StatusUnauthorized, message, "UNAUTHORIZED")
	case domain.KindForbidden:
		writeError(w, http.StatusForbidden, message, "FORBIDDEN")
	case domain.KindDelivery:
		logger.ErrorContext(ctx, "notification dispatch failed", "error", err)
		writeError(w, http.StatusBadGateway, message, "DELIVERY_FAILED")
	default:
		logger.ErrorContext(ctx, "internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "something went wrong", "INTERNAL_ERROR")
	}
}
