package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/solarvest/auth-service/internal/handlers"
	"github.com/solarvest/auth-service/internal/mailer"
	"github.com/solarvest/auth-service/internal/phone"
	"github.com/solarvest/auth-service/internal/repository"
	"github.com/solarvest/auth-service/internal/service"
	"github.com/solarvest/auth-service/pkg/config"
	"github.com/solarvest/auth-service/pkg/database"
	"github.com/solarvest/auth-service/pkg/events"
	"github.com/solarvest/auth-service/pkg/logger"
	mw "github.com/solarvest/auth-service/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// The account store is the one dependency we cannot run without.
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var publisher events.Publisher
	if bus, err := events.NewNATSPublisher(cfg.NATS.URL); err != nil {
		logger.Warn("NATS unavailable, events disabled", "error", err)
	} else {
		publisher = bus
		defer bus.Close()
	}

	userRepo := repository.NewUserRepository(pool)
	mailSvc := mailer.New(cfg.Email)
	verifier := phone.New(cfg.Phone)

	authService := service.NewAuthService(userRepo, mailSvc, verifier, publisher, cfg)
	h := handlers.New(authService, cfg)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if store, err := repository.NewRedisIdempotencyStore(cfg.Redis.URL); err != nil {
				logger.Warn("redis unavailable, idempotency disabled", "error", err)
			} else {
				r.Use(mw.Idempotency(store))
			}
			r.Post("/signup", h.Signup)
		})

		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/verify-email", h.VerifyEmail)
		r.Post("/verify-phone", h.VerifyPhone)
		r.Post("/resend-email-otp", h.ResendEmailOTP)
		r.Post("/resend-phone-otp", h.ResendPhoneOTP)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Patch("/password", h.UpdatePassword)
			r.Get("/me", h.Me)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down auth service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("auth service shutdown error", "error", err)
		}
	}()

	logger.Info("starting auth service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("auth service error", "error", err)
		os.Exit(1)
	}
}
