package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muhammedshamil8/CivicGuard/internal/config"
	"github.com/muhammedshamil8/CivicGuard/internal/features/relay"
	"github.com/muhammedshamil8/CivicGuard/internal/middleware"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/logger"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/ratelimit"
	"github.com/muhammedshamil8/CivicGuard/internal/routes"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.ValidateRelay(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if cfg.RelayAPIKey == "" {
		log.Warn("RELAY_API_KEY not set, relay endpoints are unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var caller relay.Caller
	twilioCaller, err := relay.NewTwilioCaller(
		cfg.TwilioAccountSID,
		cfg.TwilioAuthToken,
		cfg.TwilioFromNumber,
		cfg.TwilioToNumber,
		cfg.TwilioVoiceURL,
	)
	if err != nil {
		log.WithError(err).Warn("Twilio unavailable, alert calls disabled")
	} else {
		caller = twilioCaller
	}

	var mailer relay.Mailer
	smtpMailer, err := relay.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword, cfg.EmailRecipient)
	if err != nil {
		log.WithError(err).Warn("SMTP unavailable, report emails disabled")
	} else {
		mailer = smtpMailer
	}

	limits, err := ratelimit.NewStore(ctx, cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to create rate limit store")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(middleware.CORS(cfg.FrontendURL))

	svc := relay.NewService(caller, mailer, logger.Component("relay"))
	if err := routes.SetupRelayRoutes(router, svc, cfg, limits); err != nil {
		log.WithError(err).Fatal("Failed to register relay routes")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.RelayPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Relay starting on port %s", cfg.RelayPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start relay")
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down relay...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Relay forced to shutdown")
	}

	log.Info("Relay exited")
}
