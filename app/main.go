package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/placevote/domain"
	"github.com/Guyuepp/placevote/internal/config"
	"github.com/Guyuepp/placevote/internal/database"
	"github.com/Guyuepp/placevote/internal/metrics"
	"github.com/Guyuepp/placevote/internal/repository"
	mysqlRepo "github.com/Guyuepp/placevote/internal/repository/mysql"
	myRedisCache "github.com/Guyuepp/placevote/internal/repository/redis"
	"github.com/Guyuepp/placevote/internal/rest"
	"github.com/Guyuepp/placevote/internal/rest/middleware"
	"github.com/Guyuepp/placevote/internal/usecase/aggregate"
	"github.com/Guyuepp/placevote/internal/usecase/catalogue"
	"github.com/Guyuepp/placevote/internal/usecase/identity"
	"github.com/Guyuepp/placevote/internal/usecase/rank"
	"github.com/Guyuepp/placevote/internal/usecase/vote"
	"github.com/Guyuepp/placevote/internal/workers"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Fatalf("Error loading .env file: %v", err)
	}
}

func setupLogger(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	setupLogger(cfg)

	// prepare database
	db, err := database.Connect(cfg)
	if err != nil {
		logrus.Fatal(err)
	}
	defer func() {
		sqlDB, err := db.DB()
		if err != nil {
			logrus.Error("got error when getting sql.DB from gorm.DB", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			logrus.Error("got error when closing the DB connection", err)
		}
	}()
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	// prepare cache, the leaderboard falls back to the database without it
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.CacheAddr(),
		Password: cfg.CachePass,
		DB:       cfg.CacheDB,
	})
	defer func() {
		if err := client.Close(); err != nil {
			logrus.Error("got error when closing the cache connection", err)
		}
	}()
	var leaderboardRepo domain.LeaderboardRepository
	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.Warnf("cache unavailable, leaderboards are served uncached: %v", err)
	} else {
		leaderboardCache := myRedisCache.NewLeaderboardCache(client)
		leaderboardRepo = repository.NewLeaderboardRepository(leaderboardCache, cfg.LeaderboardTTL)
	}

	// Prepare Repository
	userRepo := mysqlRepo.NewUserRepository(db)
	targetRepo := mysqlRepo.NewTargetRepository(db)
	voteRepo := mysqlRepo.NewVoteRepository(db)
	placeRepo := mysqlRepo.NewPlaceRepository(db)

	// Start worker
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reconcileSvc := aggregate.NewService(targetRepo, cfg.ReconcileBatchSize)
	reconciler := workers.NewReconcileWorker(reconcileSvc, cfg.ReconcileInterval)
	workerDone := make(chan struct{})
	go func() {
		reconciler.Start(ctx)
		close(workerDone)
	}()

	// Build service Layer
	voteSvc := vote.NewService(voteRepo, targetRepo, userRepo, reconciler, cfg.CastMaxAttempts)
	rankSvc := rank.NewService(targetRepo, leaderboardRepo, cfg.LeaderboardLimit)
	identitySvc := identity.NewService(placeRepo, targetRepo)
	catalogueSvc := catalogue.NewService(targetRepo)

	voteHandler := rest.NewVoteHandler(voteSvc)
	leaderboardHandler := rest.NewLeaderboardHandler(rankSvc)
	placeHandler := rest.NewPlaceHandler(identitySvc)
	collectionHandler := rest.NewCollectionHandler(catalogueSvc)

	// prepare gin
	route := gin.New()
	route.Use(gin.Logger(), gin.Recovery())
	route.Use(middleware.CORS())
	route.Use(metrics.Middleware())
	route.Use(middleware.SetRequestContextWithTimeout(cfg.ContextTimeout))

	// Register routes
	route.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	route.GET("/metrics", gin.WrapH(metrics.Handler()))

	route.GET("/leaderboard", leaderboardHandler.Fetch)
	route.POST("/places/resolve", placeHandler.Resolve)

	authorized := route.Group("/")
	authorized.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		authorized.POST("/votes", voteHandler.Cast)
		authorized.GET("/votes/:kind/:id", voteHandler.State)
		authorized.DELETE("/votes/:kind/:id", voteHandler.Remove)
		authorized.POST("/places", placeHandler.Ingest)
		authorized.POST("/collections", collectionHandler.Store)
	}

	// Start Server
	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: route,
	}
	go func() {
		logrus.Infof("Server is running on %s", cfg.ServerAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("listen: %s", err)
		}
	}()

	// shutdown
	<-ctx.Done()
	logrus.Info("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Error("Server forced to shutdown: ", err)
	}

	logrus.Info("Waiting for worker to cleanup...")
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
	}

	logrus.Info("Server exiting")
}
