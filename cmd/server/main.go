package main

import (
	"cardclash/internal/cache"
	"cardclash/internal/catalog"
	"cardclash/internal/config"
	"cardclash/internal/engine"
	"cardclash/internal/model"
	"cardclash/internal/repository"
	"cardclash/internal/service"
	"cardclash/internal/store"
	"cardclash/internal/transport/rest"
	"cardclash/internal/transport/ws"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger, _ := zap.NewProduction()
	cfg := config.Load(logger)
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server exited")
}

// clients opens each external connection at most once
type clients struct {
	cfg    *config.Config
	logger *zap.Logger
	redis  *redis.Client
	mongo  *mongo.Client
}

func (c *clients) Redis(ctx context.Context) (*redis.Client, error) {
	if c.redis != nil {
		return c.redis, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     strings.TrimPrefix(c.cfg.RedisAddr, "redis://"),
		Password: c.cfg.RedisPassword,
		DB:       c.cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	c.logger.Info("connected to redis", zap.String("addr", c.cfg.RedisAddr))
	c.redis = rdb
	return rdb, nil
}

func (c *clients) Mongo(ctx context.Context) (*mongo.Client, error) {
	if c.mongo != nil {
		return c.mongo, nil
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	c.logger.Info("connected to mongodb", zap.String("database", c.cfg.MongoDB))
	c.mongo = client
	return client, nil
}

// openBackend picks the document store backend. Redis and Mongo backends
// take ownership of the shared client and close it with the store.
func openBackend(ctx context.Context, cfg *config.Config, c *clients) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryBackend(), nil
	case config.BackendFile:
		return store.NewFileBackend(cfg.DataDir)
	case config.BackendRedis:
		rdb, err := c.Redis(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewRedisBackend(rdb), nil
	case config.BackendMongo:
		client, err := c.Mongo(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewMongoBackend(client, cfg.MongoDB), nil
	case config.BackendPostgres:
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store.NewPostgresBackend(db)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func loadQuestions(ctx context.Context, cfg *config.Config, c *clients) ([]model.Question, error) {
	if cfg.QuestionSource != config.QuestionsMongo {
		return catalog.DefaultQuestions()
	}
	client, err := c.Mongo(ctx)
	if err != nil {
		return nil, err
	}
	found, err := repository.NewQuestionRepo(client, cfg.MongoDB).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	questions := make([]model.Question, 0, len(found))
	for _, q := range found {
		questions = append(questions, *q)
	}
	return questions, nil
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conns := &clients{cfg: cfg, logger: logger}

	backend, err := openBackend(ctx, cfg, conns)
	if err != nil {
		return err
	}
	st := store.New(backend, logger, store.WithVerifyWrites(cfg.StoreVerifyWrites))
	logger.Info("document store ready", zap.String("backend", cfg.StoreBackend))

	questions, err := loadQuestions(ctx, cfg, conns)
	if err != nil {
		return err
	}
	cat, err := catalog.New(questions, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", zap.Any("pools", cat.PoolSizes()))

	defaults := cfg.GameDefaults()
	eng := engine.New(cat, engine.RulesFrom(defaults))

	// Repositories
	configRepo := repository.NewConfigRepo(st, defaults)
	roomRepo := repository.NewRoomRepo(st)
	queueRepo := repository.NewQueueRepo(st, func(ctx context.Context) int {
		gc, err := configRepo.Get(ctx)
		if err != nil {
			return defaults.MaxQueuePlayers
		}
		return gc.MaxQueuePlayers
	})

	var board service.Leaderboard = repository.NewLeaderboardRepo(st)
	if cfg.LeaderboardBackend == "redis" {
		rdb, err := conns.Redis(ctx)
		if err != nil {
			return err
		}
		board = cache.NewLeaderboardCache(rdb)
	}

	// Services
	authSvc, err := service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret)
	if err != nil {
		return err
	}
	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD not set, admin login disabled")
	}
	leaderboardSvc := service.NewLeaderboardService(board, logger)
	configSvc := service.NewConfigService(configRepo, logger)
	roomSvc := service.NewRoomService(roomRepo, configRepo, eng, leaderboardSvc, logger)
	gameSvc := service.NewGameService(roomRepo, configRepo, eng, leaderboardSvc, logger)
	queueSvc := service.NewQueueService(queueRepo, roomSvc, configRepo,
		rand.New(rand.NewSource(time.Now().UnixNano())), cfg.MatchHoldover, logger)

	// Inject broadcaster (hub implements service.Broadcaster)
	hub := ws.NewHub(logger)
	defer hub.Close()
	roomSvc.SetBroadcaster(hub)
	gameSvc.SetBroadcaster(hub)
	queueSvc.SetBroadcaster(hub)
	queueSvc.SetLiveness(hub)
	connSvc := service.NewConnectionService(queueSvc, roomSvc, gameSvc, hub, logger)

	wsHandler := ws.NewHandler(hub, ws.Services{
		Queue:       queueSvc,
		Rooms:       roomSvc,
		Games:       gameSvc,
		Connections: connSvc,
		Auth:        authSvc,
	}, cfg.CORSAllowedOrigins, cfg.DisconnectGrace, logger)

	router := rest.NewRouter(&rest.Container{
		AuthService:        authSvc,
		RoomService:        roomSvc,
		QueueService:       queueSvc,
		ConfigService:      configSvc,
		LeaderboardService: leaderboardSvc,
		WSHandler:          wsHandler,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		Logger:             logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err = g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cerr := st.Close(closeCtx); cerr != nil {
		logger.Warn("failed to close store", zap.Error(cerr))
	}
	// clients the store backend does not own
	if conns.redis != nil && cfg.StoreBackend != config.BackendRedis {
		conns.redis.Close()
	}
	if conns.mongo != nil && cfg.StoreBackend != config.BackendMongo {
		conns.mongo.Disconnect(closeCtx)
	}
	return err
}
