package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jobpilot/apiserver/config"
	"github.com/jobpilot/apiserver/internal/auth"
	"github.com/jobpilot/apiserver/internal/db"
	"github.com/jobpilot/apiserver/internal/handlers"
	"github.com/jobpilot/apiserver/internal/mailer"
	"github.com/jobpilot/apiserver/internal/mq"
	"github.com/jobpilot/apiserver/internal/notify"
	"github.com/jobpilot/apiserver/internal/services"
	"github.com/jobpilot/apiserver/internal/storage"
	"github.com/jobpilot/apiserver/internal/store"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server wraps the HTTP server, router and background workers.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	database   *mongo.Database
	broker     *mq.MQ
	dispatcher *notify.Dispatcher

	notifyCancel context.CancelFunc
}

// New constructs a fully wired Server from config.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	database, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureIndexes(ctx, database); err != nil {
		_ = db.Close(context.Background(), database)
		return nil, err
	}

	userRepo := store.NewUserRepository(database)
	employerRepo := store.NewEmployerRepository(database)
	vendorRepo := store.NewVendorRepository(database)
	superAdminRepo := store.NewSuperAdminRepository(database)
	jobRepo := store.NewJobRepository(database)
	applicationRepo := store.NewApplicationRepository(database)

	sender, err := mailer.New(cfg.Mail)
	if err != nil {
		_ = db.Close(context.Background(), database)
		return nil, err
	}

	broker, err := newBroker(ctx, cfg.MQ)
	if err != nil {
		_ = db.Close(context.Background(), database)
		return nil, err
	}
	dispatcher := notify.New(broker, sender)

	uploads, err := newUploads(ctx, cfg.Storage)
	if err != nil {
		closeAll(database, broker)
		return nil, err
	}

	codec := auth.NewCodec(cfg.Auth.JWTSecret)
	resolver := auth.NewResolver(codec, services.NewDirectory(userRepo, employerRepo, vendorRepo))

	authService := services.NewAuthService(
		userRepo, employerRepo, vendorRepo, superAdminRepo,
		codec, dispatcher,
		cfg.Auth.TokenTTL, cfg.Auth.VendorTokenTTL, cfg.Auth.OTPTTL,
	)
	userService := services.NewUserService(userRepo)
	employerService := services.NewEmployerService(employerRepo, dispatcher)
	vendorService := services.NewVendorService(vendorRepo)
	jobService := services.NewJobService(jobRepo)
	applicationService := services.NewApplicationService(applicationRepo, jobRepo, userRepo, dispatcher)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.LoginRouter(router, authService)
	router.Route("/user", func(r chi.Router) {
		handlers.UserRouter(r, userService, authService, uploads, cfg.BaseURL)
	})
	router.Route("/employer", func(r chi.Router) {
		handlers.EmployerRouter(r, resolver, employerService, userService, authService)
	})
	router.Route("/vendor", func(r chi.Router) {
		handlers.VendorRouter(r, resolver, vendorService, userService, authService)
	})
	router.Route("/superadmin", func(r chi.Router) {
		handlers.SuperAdminRouter(r, authService)
	})
	router.Route("/job", func(r chi.Router) {
		handlers.JobRouter(r, resolver, jobService, applicationService)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		database:   database,
		broker:     broker,
		dispatcher: dispatcher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the notification worker and the HTTP server.
func (s *Server) Start() error {
	if s.broker != nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.notifyCancel = cancel
		go func() {
			if err := s.dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logrus.WithError(err).Error("notification worker stopped")
			}
		}()
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.notifyCancel != nil {
		s.notifyCancel()
	}
	closeAll(s.database, s.broker)
	return s.httpServer.Close()
}

func newBroker(ctx context.Context, cfg config.MQConfig) (*mq.MQ, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	default:
		return nil, fmt.Errorf("unknown mq provider %q", cfg.Provider)
	}
}

func newUploads(ctx context.Context, cfg config.StorageConfig) (*storage.Uploads, error) {
	var backend storage.ObjectStorage
	switch cfg.Provider {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}

	uploads := storage.NewUploads(backend)
	if err := uploads.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return uploads, nil
}

func closeAll(database *mongo.Database, broker *mq.MQ) {
	if broker != nil {
		_ = broker.Close()
	}
	_ = db.Close(context.Background(), database)
}
