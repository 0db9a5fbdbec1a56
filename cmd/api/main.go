package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sueworkspace/sungji-drop/api/routes"
	"github.com/sueworkspace/sungji-drop/internal/auth"
	"github.com/sueworkspace/sungji-drop/internal/catalog"
	"github.com/sueworkspace/sungji-drop/internal/chat"
	"github.com/sueworkspace/sungji-drop/internal/dealers"
	"github.com/sueworkspace/sungji-drop/internal/notifications"
	"github.com/sueworkspace/sungji-drop/internal/quotes"
	"github.com/sueworkspace/sungji-drop/internal/realtime"
	"github.com/sueworkspace/sungji-drop/internal/stats"
	"github.com/sueworkspace/sungji-drop/internal/users"
	"github.com/sueworkspace/sungji-drop/pkg/auth/session"
	"github.com/sueworkspace/sungji-drop/pkg/config"
	"github.com/sueworkspace/sungji-drop/pkg/db"
	"github.com/sueworkspace/sungji-drop/pkg/instance"
	"github.com/sueworkspace/sungji-drop/pkg/logger"
	"github.com/sueworkspace/sungji-drop/pkg/migrate"
	"github.com/sueworkspace/sungji-drop/pkg/outbox"
	"github.com/sueworkspace/sungji-drop/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	services, err := buildServices(cfg, logg, dbClient, redisClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, services),
	}

	stop, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown error", err)
		}
	}

	logg.Info(ctx, "api server stopped")
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
) (routes.Services, error) {
	gormDB := dbClient.DB()

	userRepo := users.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	quotesRepo := quotes.NewRepository(gormDB)
	chatRepo := chat.NewRepository(gormDB)
	dealersRepo := dealers.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	realtimePublisher, err := realtime.NewPublisher(redisClient)
	if err != nil {
		return routes.Services{}, err
	}
	streamer, err := realtime.NewStreamer(redisClient, logg)
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		UserRepo:       userRepo,
		DealerRepo:     dealersRepo,
		SessionManager: sessionManager,
		OTPStore:       redisClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		OTPConfig:      cfg.OTP,
		AppConfig:      cfg.App,
	})
	if err != nil {
		return routes.Services{}, err
	}

	usersService, err := users.NewService(userRepo)
	if err != nil {
		return routes.Services{}, err
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		return routes.Services{}, err
	}

	quotesParams := quotes.ServiceParams{
		DB:       dbClient,
		Repo:     quotesRepo,
		Devices:  catalogRepo,
		Dealers:  dealersRepo,
		Outbox:   outboxService,
		Realtime: realtimePublisher,
		Logger:   logg,
		Config:   cfg.Quotes,
	}
	if cfg.FeatureFlags.SeedQuotes {
		seeder, err := quotes.NewSeeder(dbClient, quotesRepo, dealersRepo, outboxService, cfg.Quotes.ContractTerm)
		if err != nil {
			return routes.Services{}, err
		}
		quotesParams.Seeder = seeder
	}
	quotesService, err := quotes.NewService(quotesParams)
	if err != nil {
		return routes.Services{}, err
	}

	chatService, err := chat.NewService(chat.ServiceParams{
		DB:       dbClient,
		Repo:     chatRepo,
		Quotes:   quotesRepo,
		Dealers:  dealersRepo,
		Outbox:   outboxService,
		Realtime: realtimePublisher,
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	dealersService, err := dealers.NewService(dealers.ServiceParams{
		DB:     dbClient,
		Repo:   dealersRepo,
		Outbox: outboxService,
	})
	if err != nil {
		return routes.Services{}, err
	}

	notificationsService, err := notifications.NewService(notificationsRepo, cfg.Notifications)
	if err != nil {
		return routes.Services{}, err
	}

	statsService, err := stats.NewService(quotesRepo, chatRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authService,
		Users:         usersService,
		Catalog:       catalogService,
		Quotes:        quotesService,
		Chat:          chatService,
		Dealers:       dealersService,
		Notifications: notificationsService,
		Stats:         statsService,
		Streamer:      streamer,
	}, nil
}
