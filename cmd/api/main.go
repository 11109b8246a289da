package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/leadbridge/internal/config"
	"github.com/xavierca1/leadbridge/internal/infra/http/handlers"
	"github.com/xavierca1/leadbridge/internal/infra/http/middleware"
	"github.com/xavierca1/leadbridge/internal/infra/mail"
	"github.com/xavierca1/leadbridge/internal/infra/queue"
	"github.com/xavierca1/leadbridge/internal/infra/storage"
	"github.com/xavierca1/leadbridge/internal/infra/worker"
	"github.com/xavierca1/leadbridge/internal/infra/wsnotify"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	origin := instanceID()

	// 1. Storage (sqlite, postgres, mysql ou arquivo JSON)
	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer backend.Close()

	// 2. Destinos dos eventos: métricas, websocket e, se configurado, RabbitMQ
	hub := wsnotify.NewHub(cfg.CORSOrigins, logger)
	publishers := usecase.MultiPublisher{
		middleware.StoreMetrics{},
		middleware.CountPublishErrors("websocket", hub),
	}

	var rabbitMQ *queue.RabbitMQ
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer rabbitMQ.Close()

		producer := queue.NewProducer(rabbitMQ.Ch, origin)
		publishers = append(publishers, middleware.CountPublishErrors("rabbitmq", localChangesOnly(producer)))
	}

	// 3. Store
	store, err := usecase.OpenStore(ctx, backend,
		usecase.WithLogger(logger),
		usecase.WithPublisher(publishers),
	)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	// 4. Workers
	// Arquivo editado por fora (CLI, outro processo) -> recarrega
	if backend.File != nil {
		err := backend.File.Watch(ctx, func() {
			if err := store.Reload(ctx); err != nil {
				logger.Error("reload after file change failed", "error", err)
			}
		})
		if err != nil {
			log.Fatalf("watch store file: %v", err)
		}
	}

	// Relay: eventos de outras instâncias/CLI. Backend SQL compartilhado -> recarrega antes
	if rabbitMQ != nil {
		queueName, err := rabbitMQ.DeclareInstanceQueue(origin)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		relay := queue.NewWorker(rabbitMQ.Ch, origin, func(ctx context.Context, ev usecase.ChangeEvent) error {
			if backend.Shared() {
				if err := store.Reload(ctx); err != nil {
					return err
				}
			}
			return hub.Publish(ctx, ev)
		}, logger)
		go func() {
			if err := relay.Start(ctx, queueName); err != nil {
				logger.Error("event worker stopped", "error", err)
			}
		}()
	}

	if cfg.MailEnabled() {
		sender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.ReminderTo)
		reminders := worker.NewReminderWorker(store, sender, cfg.ReminderInterval, logger, middleware.RemindersSent)
		go reminders.Start(ctx)
	} else {
		logger.Info("⚠️ Lembretes desativados: MAIL_HOST ou REMINDER_TO não configurados")
	}

	// 5. Router
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute, cfg.TrustedProxies...)
	defer limiter.Stop()

	var broker handlers.BrokerState
	if rabbitMQ != nil {
		broker = rabbitMQ
	}
	health := handlers.NewHealthHandler(backend, backend.Driver, broker, handlers.DefaultAppInfo.Version)
	api := handlers.NewAPI(store, cfg.Language, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", hub.ServeHTTP)
	r.Mount("/api", api.Routes(middleware.Metrics, limiter.LimitWrites))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🔥 LeadBridge API rodando", "addr", cfg.HTTPAddr, "storage", backend.Driver, "origin", origin)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Encerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("final store flush failed", "error", err)
	}
}

// localChangesOnly descarta store.reloaded, senão as instâncias ficam ecoando reloads entre si
func localChangesOnly(next usecase.EventPublisher) usecase.EventPublisher {
	return usecase.PublisherFunc(func(ctx context.Context, ev usecase.ChangeEvent) error {
		if ev.Type == usecase.EventStoreReloaded {
			return nil
		}
		return next.Publish(ctx, ev)
	})
}

func instanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "leadbridge"
	}
	return host + "-" + uuid.NewString()[:8]
}
