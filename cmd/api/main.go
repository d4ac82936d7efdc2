// @title CivicGuard API
// @version 1.0
// @description Anonymous civic reporting with an authenticated review workflow
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer <token>"
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	docs "github.com/muhammedshamil8/CivicGuard/docs"
	"github.com/muhammedshamil8/CivicGuard/internal/config"
	"github.com/muhammedshamil8/CivicGuard/internal/database"
	"github.com/muhammedshamil8/CivicGuard/internal/features/reports"
	"github.com/muhammedshamil8/CivicGuard/internal/features/review"
	"github.com/muhammedshamil8/CivicGuard/internal/features/session"
	"github.com/muhammedshamil8/CivicGuard/internal/middleware"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/anchoring"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/cloudinary"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/jwt"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/logger"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/notify"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/ratelimit"
	"github.com/muhammedshamil8/CivicGuard/internal/pkg/storage"
	"github.com/muhammedshamil8/CivicGuard/internal/routes"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.ValidateAPI(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn("JWT_SECRET not set, using the development default")
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	uploader := openUploader(ctx, cfg, log)

	reportService := reports.NewService(
		store,
		uploader,
		notify.NewClient(cfg.RelayURL, cfg.RelayAPIKey, logger.Component("notify")),
		reports.Options{
			DefaultWalletAddress: cfg.DefaultWalletAddress,
			MaxImageBytes:        cfg.MaxImageBytes,
		},
		logger.Component("reports"),
	)

	var anchor review.Anchorer
	if cfg.AnchorURL != "" {
		anchor = anchoring.NewClient(cfg.AnchorURL, 15*time.Second)
	} else {
		log.Warn("ANCHOR_URL not set, confirmed reports will not be anchored")
	}
	reviewService := review.NewService(store, anchor, logger.Component("review"))

	var provider session.Provider
	firebaseProvider, err := session.NewFirebaseProvider(ctx, cfg.FirebaseServiceAccountPath, cfg.FirebaseAPIKey)
	switch {
	case err == nil:
		provider = firebaseProvider
	case cfg.IsProduction():
		log.WithError(err).Fatal("Failed to initialize Firebase")
	default:
		log.WithError(err).Warn("Firebase unavailable, reviewer sign-in disabled")
		provider = session.DisabledProvider{}
	}
	sessions := session.NewManager(
		provider,
		jwt.DefaultConfig(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour),
		logger.Component("session"),
	)
	unsubscribe := sessions.Subscribe(func(e session.Event) {
		log.WithFields(logrus.Fields{
			"event":      e.Kind,
			"session_id": e.Session.ID,
			"user":       e.Session.User.ID,
		}).Debug("session changed")
	})
	go purgeSessions(ctx, sessions)

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

	router.GET(
		"/swagger/*any",
		ginSwagger.WrapHandler(
			swaggerFiles.Handler,
			ginSwagger.URL("/swagger/doc.json"),
			ginSwagger.DeepLinking(true),
			ginSwagger.DefaultModelsExpandDepth(-1),
			ginSwagger.DocExpansion("none"),
			ginSwagger.PersistAuthorization(true),
		),
	)

	err = routes.SetupRoutes(router, routes.Dependencies{
		Config:   cfg,
		Store:    store,
		Reports:  reportService,
		Review:   reviewService,
		Sessions: sessions,
		Limits:   limits,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to register routes")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server...")
	unsubscribe()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exited")
}

func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (reports.Store, func()) {
	if cfg.StoreDriver == "memory" {
		log.Warn("STORE_DRIVER=memory, reports are lost on restart")
		return reports.NewMemoryStore(), func() {}
	}

	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}

	repo := reports.NewRepository(db.Database)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("Failed to create report indexes")
	}

	return repo, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}
}

func openUploader(ctx context.Context, cfg *config.Config, log *logrus.Logger) reports.ImageUploader {
	switch cfg.StorageDriver {
	case "s3":
		s3, err := storage.NewS3Storage(ctx, storage.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKeyID,
			SecretKey: cfg.S3SecretAccessKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.WithError(err).Warn("S3 storage unavailable, photo uploads disabled")
			return nil
		}
		return s3
	default:
		cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
		if err != nil {
			log.WithError(err).Warn("Cloudinary unavailable, photo uploads disabled")
			return nil
		}
		return cld
	}
}

func purgeSessions(ctx context.Context, sessions *session.Manager) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.PurgeExpired()
		}
	}
}
