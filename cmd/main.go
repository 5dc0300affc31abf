package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/inventory-sales-api/config"
	"github.com/oksasatya/inventory-sales-api/internal/container"
	mongoinfra "github.com/oksasatya/inventory-sales-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/inventory-sales-api/internal/interface/middleware"
	"github.com/oksasatya/inventory-sales-api/internal/router"
	"github.com/oksasatya/inventory-sales-api/pkg/helpers"
	"github.com/oksasatya/inventory-sales-api/pkg/mailer"
	"github.com/oksasatya/inventory-sales-api/pkg/media"
	"github.com/oksasatya/inventory-sales-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// MongoDB
	client, err := mongoinfra.NewClient(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		logger.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongoinfra.RunMigrations(cfg.MongoURI, cfg.MongoDB, cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	// Redis (rate limiting; requests are not limited while it is down)
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		logger.WithError(err).Warn("redis unavailable, rate limiting fails open")
	}

	store, closeStore := buildMediaStore(ctx, cfg, logger)
	defer closeStore()

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch disabled")
		es = nil
	}

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMongo(client.Database(cfg.MongoDB))
	container.SetRedis(rdb)
	container.SetMedia(store)
	container.SetMailer(buildMailer(cfg, logger))
	container.SetES(es)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:  cfg.CORSOrigins(),
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r, cfg.APIPrefix)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// buildMediaStore selects the image store from MEDIA_DRIVER. A missing
// bucket leaves uploads disabled rather than stopping the server.
func buildMediaStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (media.Store, func()) {
	noop := func() {}
	switch strings.ToLower(cfg.MediaDriver) {
	case "s3":
		s, err := media.NewS3Store(ctx, media.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			logger.WithError(err).Warn("s3 media store disabled")
			return nil, noop
		}
		return s, noop
	default:
		if cfg.GCSBucket == "" {
			logger.Warn("GCS_BUCKET not set, image uploads disabled")
			return nil, noop
		}
		gcs, err := media.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs media store disabled")
			return nil, noop
		}
		return media.NewGCSStore(gcs, cfg.GCSBucket), func() { _ = gcs.Close() }
	}
}

func buildMailer(cfg *config.Config, logger *logrus.Logger) mailer.Mailer {
	if !cfg.MailSendEnabled {
		return mailer.Disabled{Logger: logger}
	}
	if strings.EqualFold(cfg.MailDriver, "mailgun") {
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	}
	return mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
}
