package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"alcyxob/gym-membership/internal/api"
	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/config"
	"alcyxob/gym-membership/internal/directory"
	"alcyxob/gym-membership/internal/repository"
	"alcyxob/gym-membership/internal/repository/memory"
	"alcyxob/gym-membership/internal/repository/mongo"
	"alcyxob/gym-membership/internal/service"
	"alcyxob/gym-membership/internal/session"
	"alcyxob/gym-membership/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

type repositories struct {
	users     repository.UserRepository
	members   repository.MemberRepository
	payments  repository.PaymentRepository
	exercises repository.ExerciseTemplateRepository
}

func run() error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "driver", cfg.Database.Driver, "address", cfg.Server.Address)

	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	loc, err := cfg.Gym.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Repositories ---
	var repos repositories
	var rdb *redis.Client
	switch cfg.Database.Driver {
	case config.DriverMemory:
		// Development mode: nothing outside the process.
		logger.Warn("using in-memory storage, data is lost on exit")
		repos = repositories{
			users:     memory.NewUsers(),
			members:   memory.NewMembers(),
			payments:  memory.NewPayments(),
			exercises: memory.NewExercises(),
		}
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("could not start embedded redis: %w", err)
		}
		defer mr.Close()
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	default:
		dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			return fmt.Errorf("could not connect to MongoDB: %w", err)
		}
		defer func() {
			logger.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				logger.Error("failed to disconnect MongoDB", "error", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)

		go func() {
			ictx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := mongo.EnsureIndexes(ictx, appDB); err != nil {
				logger.Error("index creation failed", "error", err)
				return
			}
			logger.Info("indexes ensured")
		}()

		repos = repositories{
			users:     mongo.NewMongoUserRepository(appDB),
			members:   mongo.NewMongoMemberRepository(appDB),
			payments:  mongo.NewMongoPaymentRepository(appDB),
			exercises: mongo.NewMongoExerciseRepository(appDB),
		}
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not reach Redis at %s: %w", cfg.Redis.Addr, err)
	}

	// --- Storage ---
	files, err := newPhotoStorage(ctx, cfg.S3, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 storage: %w", err)
	}

	// --- Services ---
	clk := clock.NewSystemClock(loc)
	roster := directory.NewDeduped(repos.members)
	templates := service.Templates{
		Expired:  cfg.Messaging.ExpiredTemplate,
		Expiring: cfg.Messaging.ExpiringTemplate,
		Active:   cfg.Messaging.ActiveTemplate,
	}
	svc := api.Services{
		Auth:      service.NewAuthService(repos.users, session.NewRevocations(rdb, cfg.Redis.Namespace), clk, cfg.JWT.Secret, cfg.JWT.Expiration),
		Members:   service.NewMemberService(repos.members, repos.payments, roster, files, clk, logger),
		Payments:  service.NewPaymentService(repos.members, repos.payments, clk, logger),
		Dashboard: service.NewDashboardService(roster, clk),
		Broadcast: service.NewBroadcastService(roster, clk, templates, cfg.Messaging.CountryCode, logger),
		Exercises: service.NewExerciseService(repos.exercises),
	}

	// --- HTTP ---
	if cfg.Server.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, svc, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", cfg.Server.Address, "gym", cfg.Gym.Name, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

// newPhotoStorage returns nil when no bucket is configured. Without static
// keys the AWS default credential chain is used.
func newPhotoStorage(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (storage.FileStorage, error) {
	if cfg.BucketName == "" {
		logger.Warn("S3 bucket not configured, member photos are disabled")
		return nil, nil
	}
	return storage.NewS3Storage(ctx, cfg, logger)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
