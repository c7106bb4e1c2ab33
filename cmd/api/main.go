package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/heartlink/heartlink-backend/api/routes"
	"github.com/heartlink/heartlink-backend/internal/auth"
	"github.com/heartlink/heartlink-backend/internal/circles"
	"github.com/heartlink/heartlink-backend/internal/engagement"
	"github.com/heartlink/heartlink-backend/internal/invitations"
	"github.com/heartlink/heartlink-backend/internal/memberships"
	"github.com/heartlink/heartlink-backend/internal/notifications"
	"github.com/heartlink/heartlink-backend/internal/users"
	"github.com/heartlink/heartlink-backend/internal/viewcache"
	"github.com/heartlink/heartlink-backend/pkg/auth/session"
	"github.com/heartlink/heartlink-backend/pkg/config"
	"github.com/heartlink/heartlink-backend/pkg/db"
	"github.com/heartlink/heartlink-backend/pkg/logger"
	"github.com/heartlink/heartlink-backend/pkg/migrate"
	"github.com/heartlink/heartlink-backend/pkg/outbox"
	"github.com/heartlink/heartlink-backend/pkg/redis"
)

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

	usersRepo := users.NewRepository(dbClient.DB())
	circlesRepo := circles.NewRepository(dbClient.DB())
	invitationsRepo := invitations.NewRepository(dbClient.DB())
	membershipsRepo := memberships.NewRepository(dbClient.DB())
	engagementRepo := engagement.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	events := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	memberViews, err := viewcache.NewCache(viewcache.CacheParams{
		Store:  redisClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create member view cache", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	circlesService, err := circles.NewService(circlesRepo, dbClient, events)
	if err != nil {
		logg.Error(context.Background(), "failed to create circles service", err)
		os.Exit(1)
	}

	membershipsService, err := memberships.NewService(
		membershipsRepo,
		circlesRepo,
		dbClient,
		events,
		notificationsService,
		memberships.WithMemberViewCache(memberViews),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create memberships service", err)
		os.Exit(1)
	}

	invitationsService, err := invitations.NewService(
		invitationsRepo,
		circlesRepo,
		usersRepo,
		membershipsService,
		dbClient,
		events,
		notificationsService,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create invitations service", err)
		os.Exit(1)
	}

	engagementService, err := engagement.NewService(
		engagementRepo,
		circlesRepo,
		membershipsRepo,
		dbClient,
		events,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create engagement service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:          authService,
			Register:      registerService,
			Circles:       circlesService,
			Invitations:   invitationsService,
			Memberships:   membershipsService,
			Engagement:    engagementService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
