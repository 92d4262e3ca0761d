package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"syllabus-service/internal/app"
	"syllabus-service/internal/config"
	"syllabus-service/internal/infra/memory"
	mongostore "syllabus-service/internal/infra/mongo"
	pgstore "syllabus-service/internal/infra/postgres"
	rediscache "syllabus-service/internal/infra/redis"
	"syllabus-service/internal/notify"
	transport "syllabus-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the syllabus server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	content, users, mistakes, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
		content = rediscache.NewContentCache(redisClient, content, contentTTL)
	}

	var notifier app.Notifier = app.NopNotifier{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewDiscordNotifier(cfg.Notify.WebhookURL)
	}

	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)
	authService := app.NewAuthService(users, []byte(cfg.Auth.Secret), tokenTTL)
	mistakeService := app.NewMistakeService(mistakes)
	adminService := app.NewAdminService(content, users, notifier)

	wsHandler := transport.NewWSHandler(authService, content, mistakeService, adminService)
	authHandler := transport.NewAuthHandler(authService)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(wsHandler, authHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting syllabus service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildStores picks the persistence backend: Mongo when configured,
// Postgres JSONB as the self-hosted alternative, and a seeded in-memory
// store for local development without either.
func buildStores(ctx context.Context, cfg config.Config) (app.ContentStore, app.UserStore, app.MistakeStore, func(), error) {
	switch {
	case cfg.Mongo.URI != "":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, nil, nil, err
		}
		dbName := cfg.Mongo.Database
		if dbName == "" {
			dbName = "syllabus"
		}
		db := client.Database(dbName)
		cleanup := func() {
			_ = client.Disconnect(context.Background())
		}
		return mongostore.NewContentStore(db, uuid.NewString),
			mongostore.NewUserStore(db),
			mongostore.NewMistakeStore(db),
			cleanup, nil

	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		// Profiles and mistakes stay in memory under the Postgres backend;
		// only content is durable there.
		store := memory.NewStore()
		return pgstore.NewContentStore(pool, uuid.NewString), store, store, pool.Close, nil

	default:
		store := memory.NewStore()
		store.Seed(memory.SampleSubjects())
		return store, store, store, func() {}, nil
	}
}
