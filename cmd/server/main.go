package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/profullstack/food-delivery-multivendor/internal/assets"
	"github.com/profullstack/food-delivery-multivendor/internal/audit"
	"github.com/profullstack/food-delivery-multivendor/internal/notification"
	"github.com/profullstack/food-delivery-multivendor/internal/platform/config"
	"github.com/profullstack/food-delivery-multivendor/internal/platform/database"
	"github.com/profullstack/food-delivery-multivendor/internal/platform/health"
	"github.com/profullstack/food-delivery-multivendor/internal/platform/kafka/producer"
	"github.com/profullstack/food-delivery-multivendor/internal/platform/logger"
	"github.com/profullstack/food-delivery-multivendor/internal/platform/middleware"
	platformredis "github.com/profullstack/food-delivery-multivendor/internal/platform/redis"
	"github.com/profullstack/food-delivery-multivendor/internal/platform/token"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/cache"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/events"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/handler"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/metrics"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/models"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/service"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/store"
	"github.com/profullstack/food-delivery-multivendor/internal/verification/workers/expiry"
	"github.com/profullstack/food-delivery-multivendor/migrations"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing age verification service", "addr", cfg.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence. Without DATABASE_URL the service runs on in-memory stores,
	// which is only suitable for local development.
	var recordStore store.Store = store.New()
	var auditStore audit.Store = audit.NewInMemoryStore()
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
			log.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		recordStore = store.NewPostgres(pool.DB())
		auditStore = audit.NewPostgresStore(pool.DB())
		defer pool.Close()
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Document assets. Falls back to memory when object storage is absent.
	var assetStore assets.Store
	if cfg.MinioEndpoint != "" {
		assetStore, err = assets.NewMinio(ctx, assets.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Error("failed to connect to object storage", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("MINIO_ENDPOINT not set, storing document assets in memory")
		assetStore = assets.NewInMemory()
	}

	// Event fan-out: in-process hub for connected clients, Kafka for the
	// rest of the platform when brokers are configured.
	hub := events.NewHub()
	publisher := events.Multi{hub}
	var kafkaProducer *producer.Producer
	if cfg.KafkaBrokers != "" {
		kafkaProducer, err = producer.New(producer.Config{
			Brokers: cfg.KafkaBrokers,
			Retries: 5,
		}, log)
		if err != nil {
			log.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer kafkaProducer.Close()
		publisher = append(publisher, events.NewKafkaPublisher(kafkaProducer, log))
	}

	var notifier notification.Sender = notification.Noop{}
	if cfg.PushGatewayURL != "" && redisClient != nil {
		// Device tokens are registered by the mobile apps under
		// push:tokens:<userID>. Users without tokens resolve to none.
		lookup := func(ctx context.Context, userID string) ([]string, error) {
			return redisClient.SMembers(ctx, "push:tokens:"+userID).Result()
		}
		notifier = notification.NewPushSender(cfg.PushGatewayURL, lookup)
	}

	auditor := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(1024),
		audit.WithPublisherLogger(log),
	)
	defer auditor.Close()

	verificationMetrics := metrics.New()
	var statusCache *cache.StatusCache
	if redisClient != nil {
		statusCache = cache.New(redisClient.Client)
	}

	svc := service.NewService(
		recordStore,
		assetStore,
		auditor,
		log,
		service.WithEvents(publisher),
		service.WithNotifier(notifier),
		service.WithCache(statusCache),
		service.WithMetrics(verificationMetrics),
		service.WithExpiryMonths(cfg.Verification.VerificationExpiryMonths),
		service.WithMaxUploadSize(cfg.Verification.MaxUploadSizeBytes),
		service.WithMinimumSubmissionAge(cfg.Verification.MinimumSubmissionAge),
		service.WithAllowedDocumentTypes(allowedDocumentTypes(cfg.Verification.AllowedDocumentTypes)),
		service.WithMinimumAge(models.RestrictedTobacco, cfg.Verification.MinimumAgeTobacco),
		service.WithMinimumAge(models.RestrictedAlcohol, cfg.Verification.MinimumAgeAlcohol),
	)

	sweeper := expiry.New(recordStore, auditor, log,
		expiry.WithInterval(cfg.Verification.ExpirySweepInterval),
		expiry.WithEvents(publisher),
		expiry.WithMetrics(verificationMetrics),
	)

	tokens := token.NewService(cfg.JWTSigningKey, "food-delivery-multivendor", 24*time.Hour)
	verificationHandler := handler.New(svc, log)

	healthHandler := health.New(envOr("ENVIRONMENT", "development"))
	if pool != nil {
		healthHandler.RegisterCheck("postgres", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(checkCtx)
		})
	}
	if kafkaProducer != nil {
		healthHandler.RegisterCheck("kafka", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if !kafkaProducer.Healthy(checkCtx) {
				return errors.New("kafka unreachable")
			}
			return nil
		})
	}

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)

	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.RequireAuth(token.NewMiddlewareAdapter(tokens), log)
	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		verificationHandler.Register(r)
	})
	router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireAdmin(log))
		verificationHandler.RegisterAdmin(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		sweeper.Start(groupCtx)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()

		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func allowedDocumentTypes(raw []string) []models.DocumentType {
	types := make([]models.DocumentType, 0, len(raw))
	for _, t := range raw {
		types = append(types, models.DocumentType(t))
	}
	return types
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
