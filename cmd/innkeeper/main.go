package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	applocks "innkeeper/internal/app/locks"
	appoutbox "innkeeper/internal/app/outbox"
	"innkeeper/internal/app/services/catalogue"
	"innkeeper/internal/app/services/payments"
	"innkeeper/internal/app/services/reservations"
	appuow "innkeeper/internal/app/uow"
	domainpayment "innkeeper/internal/domain/payment"
	domaintenant "innkeeper/internal/domain/tenant"
	"innkeeper/internal/infra/broker/kafka"
	"innkeeper/internal/infra/config"
	mongostore "innkeeper/internal/infra/db/mongo"
	ginserver "innkeeper/internal/infra/http/gin"
	infralocks "innkeeper/internal/infra/locks"
	"innkeeper/internal/infra/obs"
	infraoutbox "innkeeper/internal/infra/outbox"
	"innkeeper/internal/infra/storage/memory"
	"innkeeper/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, cleanup, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	ready    func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, func(), error) {
	var (
		factory     appuow.Factory
		outboxSink  appoutbox.Outbox
		outboxStore infraoutbox.Store
		ready       = func() error { return nil }
		cleanups    []func()
	)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.MongoURI != "" {
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, cleanup, err
		}
		if err := mongostore.EnsureIndexes(ctx, client.DB); err != nil {
			return application{}, cleanup, err
		}
		cleanups = append(cleanups, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Close(closeCtx)
		})
		store := mongostore.NewOutboxStore(client.DB)
		factory = mongostore.NewFactory(client.DB)
		outboxSink = store
		outboxStore = store
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		logger.Info("storage ready", "backend", "mongodb", "database", cfg.MongoDB)
	} else {
		memFactory := memory.NewFactory()
		memOutbox := memory.NewOutbox()
		factory = memFactory
		outboxSink = memOutbox
		outboxStore = memOutbox
		if err := seedDemoTenant(ctx, memFactory); err != nil {
			return application{}, cleanup, err
		}
		logger.Warn("running on in-memory storage, data is not persisted")
	}

	var locker applocks.RoomLocker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		cleanups = append(cleanups, func() { _ = rdb.Close() })
		locker = infralocks.NewRedisLocker(rdb)
		logger.Info("room locks ready", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		locker = infralocks.NewMemoryLocker()
	}

	var uploader catalogue.Uploader
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("object storage unavailable, document upload disabled", "error", err)
			uploader = s3.NoopUploader{}
		} else {
			uploader = client
		}
	} else {
		uploader = s3.NoopUploader{}
	}

	var worker *infraoutbox.Worker
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, cleanup, err
		}
		cleanups = append(cleanups, func() { _ = producer.Close() })
		worker = &infraoutbox.Worker{
			Store:       outboxStore,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			ID:          uuid.NewString(),
			Backoff:     cfg.RetryBackoff,
		}
		logger.Info("event publishing ready", "brokers", cfg.KafkaBrokers)
	} else {
		outboxSink = nil
		logger.Warn("kafka not configured, domain events are not published")
	}

	encoder := appoutbox.JSONEventEncoder{}
	reservationSvc := &reservations.Service{
		UoW:     factory,
		Locks:   locker,
		Outbox:  outboxSink,
		Encoder: encoder,
		Logger:  logger,
		LockTTL: cfg.RoomLockTTL,
	}
	paymentSvc := &payments.Service{
		UoW:             factory,
		Outbox:          outboxSink,
		Encoder:         encoder,
		Logger:          logger,
		RefundDowngrade: domainpayment.RefundDowngrade(cfg.RefundDowngrade),
	}
	catalogueSvc := &catalogue.Service{
		UoW:      factory,
		Uploader: uploader,
		Logger:   logger,
	}

	authMW := ginserver.AuthMiddleware{Secret: []byte(cfg.JWTSecret), Logger: logger}

	return application{
		handlers: ginserver.Handlers{
			Reservation:    ginserver.ReservationHandler{Service: reservationSvc, Logger: logger},
			Availability:   ginserver.AvailabilityHandler{Service: reservationSvc, Logger: logger},
			Payment:        ginserver.PaymentHandler{Service: paymentSvc, Logger: logger},
			Property:       ginserver.PropertyHandler{Service: catalogueSvc, Logger: logger},
			Room:           ginserver.RoomHandler{Service: catalogueSvc, Logger: logger},
			Guest:          ginserver.GuestHandler{Service: catalogueSvc, Logger: logger},
			AuthMiddleware: authMW.Handle,
		},
		worker: worker,
		ready:  ready,
	}, cleanup, nil
}

// seedDemoTenant gives the in-memory mode one active tenant so the API is
// usable out of the box; the id matches the "tid" claim of locally issued
// demo tokens.
func seedDemoTenant(ctx context.Context, factory memory.Factory) error {
	now := time.Now().UTC()
	t, err := domaintenant.New("demo", "Demo Hotel Group", domaintenant.Subscription{
		Start: now,
		End:   now.AddDate(1, 0, 0),
		Trial: true,
	}, now)
	if err != nil {
		return err
	}
	unit, err := factory.Begin(ctx, appuow.TxOptions{})
	if err != nil {
		return err
	}
	if err := unit.Tenants().Save(ctx, t); err != nil {
		return err
	}
	return unit.Commit(ctx)
}
