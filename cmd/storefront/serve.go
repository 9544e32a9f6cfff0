package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/auth"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/cache"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/catalog"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/config"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/events"
	sfgrpc "github.com/Deepanshu0211/MahadevEnterprises/internal/grpc"
	sfhttp "github.com/Deepanshu0211/MahadevEnterprises/internal/http"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/session"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/state"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	seedOnStart   bool
	secureCookies bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the gRPC health endpoint",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "Load the demo catalog before serving")
	serveCmd.Flags().BoolVar(&secureCookies, "secure-cookies", false, "Mark the client cookie Secure (serve behind TLS)")
}

type publisher interface {
	catalog.EventPublisher
	Close() error
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) error { return nil }

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openCatalog()
	if err != nil {
		return err
	}
	defer repo.Close()

	if seedOnStart {
		if err := seedCatalog(cmd, repo); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
	}

	var provider catalog.Provider = repo
	var invalidator catalog.Invalidator = noopInvalidator{}
	if redisClient != nil {
		cached := catalog.NewCachedProvider(repo, cache.NewRedisCache(redisClient, cfg.CatalogCacheTTL), logger)
		provider = cached
		invalidator = cached
	}

	var pub publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewPublisher(cfg.KafkaBrokers...)
	}
	defer pub.Close()

	hooks := []catalog.Option{
		catalog.WithInvalidator(invalidator),
		catalog.WithPublisher(pub),
	}
	admin := catalog.NewAdmin(repo, logger, hooks...)
	reviews := catalog.NewReviews(repo, logger, hooks...)

	blobs, closeBlobs, err := openBlobStore(ctx, redisClient)
	if err != nil {
		return err
	}
	defer closeBlobs()

	directory, err := auth.NewDirectory(auth.DemoAccounts(), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	sessions := session.NewManager(blobs, directory, logger)

	if len(cfg.KafkaBrokers) > 0 {
		poller := events.NewPoller(invalidator, sessions, logger, cfg.KafkaBrokers...)
		defer poller.Close()
		go poller.Run(ctx)
	}

	router := sfhttp.NewRouter(sfhttp.RouterConfig{
		Catalog:        provider,
		Admin:          admin,
		Reviews:        reviews,
		Sessions:       sessions,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
		SecureCookies:  secureCookies,
		Ping:           repo.Ping,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: otelhttp.NewHandler(router, "storefront"),
	}

	grpcServer := sfgrpc.NewServer(logger)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	grpcServer.SetServing(true)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
		logger.Error("server failed", zap.Error(err))
	}

	grpcServer.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("HTTP shutdown", zap.Error(shutdownErr))
	}
	grpcServer.GracefulStop()

	logger.Info("server stopped")
	return err
}

// openBlobStore selects the client-state backend. Remote backends sit behind a
// circuit breaker; while it is open, loads start empty and saves are dropped.
func openBlobStore(ctx context.Context, redisClient *redis.Client) (state.BlobStore, func(), error) {
	settings := state.BreakerSettings{Name: cfg.StateBackend}

	switch cfg.StateBackend {
	case config.StateRedis:
		store := state.NewRedisStore(redisClient, "", cfg.StateTTL)
		return state.NewBreakerStore(store, settings, logger), func() {}, nil

	case config.StateMongo:
		db, err := state.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		store := state.NewMongoStore(db)
		if err := store.CreateIndexes(ctx); err != nil {
			logger.Warn("failed to create client state indexes", zap.Error(err))
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := db.Client().Disconnect(ctx); err != nil {
				logger.Error("failed to disconnect MongoDB", zap.Error(err))
			}
		}
		return state.NewBreakerStore(store, settings, logger), closeFn, nil

	default:
		return state.NewMemoryStore(), func() {}, nil
	}
}
