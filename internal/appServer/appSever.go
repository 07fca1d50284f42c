// launching the server, tag cache, session store, kafka publisher
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/autotagger/config"
	"github.com/ds124wfegd/autotagger/internal/database"
	"github.com/ds124wfegd/autotagger/internal/pkg/kafka"
	"github.com/ds124wfegd/autotagger/internal/pkg/normalizer"
	"github.com/ds124wfegd/autotagger/internal/pkg/redis"
	"github.com/ds124wfegd/autotagger/internal/pkg/storage"
	"github.com/ds124wfegd/autotagger/internal/pkg/tagging"
	"github.com/ds124wfegd/autotagger/internal/service"
	"github.com/ds124wfegd/autotagger/internal/transport"
	"github.com/ds124wfegd/autotagger/internal/transport/middleware"
	"github.com/ds124wfegd/autotagger/internal/worker"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func setupLogger(cfg *config.LogConfig) {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func newTagCache(ctx context.Context, cfg *config.Config) (database.TagCache, func()) {
	if !cfg.Redis.Enabled {
		return database.NewMemoryTagCache(), func() {}
	}

	client, err := redis.Connect(ctx, &cfg.Redis)
	if err != nil {
		logrus.Errorf("Redis unavailable: %v. Falling back to in-memory tag cache", err)
		return database.NewMemoryTagCache(), func() {}
	}
	return database.NewRedisTagCache(client, cfg.Cache.TTL), func() { client.Close() }
}

func NewServer(cfg *config.Config) {

	setupLogger(&cfg.Log)

	assets, err := storage.LoadAssets(storage.NewFileStorage(cfg.Assets.Dir), cfg.Assets.Logo, cfg.Assets.Icon)
	if err != nil {
		logrus.Fatalf("Failed to load static assets: %v", err)
	}

	client, err := tagging.NewClient(tagging.Config{
		BaseURL:    cfg.Tagger.BaseURL,
		Path:       cfg.Tagger.Path,
		Timeout:    cfg.Tagger.Timeout,
		MaxRetries: cfg.Tagger.MaxRetries,
		RetryDelay: cfg.Tagger.RetryDelay,
		RateLimit:  cfg.Tagger.RateLimit,
		Burst:      cfg.Tagger.Burst,
	}, nil)
	if err != nil {
		logrus.Fatalf("Failed to create tagging client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tagCache, closeCache := newTagCache(ctx, cfg)
	defer closeCache()

	producer := kafka.NewLogProducer()
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	defer producer.Close()

	sessionRepo := database.NewSessionRepository()
	svc := service.NewService(
		normalizer.NewNormalizer(cfg.Normalizer.Width, cfg.Normalizer.Quality, cfg.Normalizer.MaxPixels),
		client,
		tagCache,
		sessionRepo,
		producer,
	)

	cleanupWorker := worker.NewSessionCleanupWorker(svc.SessionService, cfg.Session.CleanupInterval, cfg.Session.TTL)
	go cleanupWorker.Start(ctx)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	sessionOpts := middleware.SessionOptions{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}
	router := transport.InitRoutes(
		transport.NewHandler(svc, cfg.Upload.MaxBytes),
		middleware.Session(svc.SessionService, sessionOpts),
		assets,
		cfg.Server.RequestTimeout,
	)

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, router); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":    cfg.Server.Port,
		"version": cfg.Server.AppVersion,
		"tagger":  cfg.Tagger.BaseURL,
		"cache":   cfg.Cache.Backend,
	}).Info("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
