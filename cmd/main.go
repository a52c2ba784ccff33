package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MN15LONER/grocer/internal/auth"
	"github.com/MN15LONER/grocer/internal/cache"
	"github.com/MN15LONER/grocer/internal/checkout"
	grocerhttp "github.com/MN15LONER/grocer/internal/http"
	"github.com/MN15LONER/grocer/internal/orders"
	"github.com/MN15LONER/grocer/internal/poller"
	"github.com/MN15LONER/grocer/internal/repository"
	"github.com/MN15LONER/grocer/internal/service"
	"github.com/MN15LONER/grocer/internal/session"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	PGHost          string
	PGPort          int
	PGUser          string
	PGPassword      string
	PGDBName        string
	MigrationsPath  string
	JWTKey          string
	Currency        string
	SessionTimeout  time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	pgPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		pgPort = 5432
	}
	sessionTimeout := session.DefaultTimeout
	if raw := os.Getenv("SESSION_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			sessionTimeout = d
		}
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "grocerdb"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		PGHost:          getEnv("DB_HOST", "localhost"),
		PGPort:          pgPort,
		PGUser:          getEnv("DB_USER", "postgres"),
		PGPassword:      getEnv("DB_PASSWORD", "postgres"),
		PGDBName:        getEnv("DB_NAME", "grocer"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./internal/orders/migrations"),
		JWTKey:          os.Getenv("JWT_KEY"),
		Currency:        getEnv("CURRENCY", "ZAR"),
		SessionTimeout:  sessionTimeout,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if cfg.JWTKey == "" {
		logger.Fatal("missing JWT signing key (JWT_KEY)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// MongoDB: carts and users
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongoDB.Client().Disconnect(context.Background()) }()
	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}
	logger.Info("connected to MongoDB", zap.String("uri", cfg.MongoURI))

	// Redis: cart cache and session records
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

	// Postgres: captured orders
	creds := &orders.Credentials{
		Host:              cfg.PGHost,
		Port:              cfg.PGPort,
		User:              cfg.PGUser,
		Password:          cfg.PGPassword,
		DBName:            cfg.PGDBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	orderRepo, err := orders.NewRepository(creds)
	if err != nil {
		logger.Fatal("failed to connect to Postgres", zap.Error(err))
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(creds); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("connected to Postgres", zap.String("db", cfg.PGDBName))

	// Cart aggregation
	cartRepo := repository.NewMongoCartRepository(mongoDB)
	cartCache := cache.NewRedisCache(redisClient)
	cartService := service.NewCartService(cartRepo, cartCache, logger)

	// Auth and sessions
	userRepo := repository.NewMongoUserRepository(mongoDB)
	tokens := auth.NewTokenManager([]byte(cfg.JWTKey))
	authService := auth.NewService(userRepo, tokens, logger)

	sessionStore := session.NewRedisStore(redisClient, cfg.SessionTimeout+time.Hour)
	sessions := session.NewManager(sessionStore, authService, logger,
		session.WithTimeout(cfg.SessionTimeout))
	defer sessions.Close()

	// Checkout pipeline
	publisher := checkout.NewKafkaPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()
	checkoutService := checkout.NewService(cartService, publisher, cfg.Currency, logger)

	cartPoller := poller.NewPoller(cartService, logger, cfg.KafkaBrokers...)
	defer cartPoller.Close()
	go cartPoller.Run(ctx)

	orderConsumer := orders.NewConsumer(orderRepo, logger, cfg.KafkaBrokers...)
	defer orderConsumer.Close()
	go orderConsumer.Run(ctx)

	// HTTP gateway
	cartHandler := grocerhttp.NewCartHandler(cartService)
	authHandler := grocerhttp.NewAuthHandler(authService, sessions)
	checkoutHandler := grocerhttp.NewCheckoutHandler(checkoutService)
	ordersHandler := grocerhttp.NewOrdersHandler(orderRepo)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(grocerhttp.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(grocerhttp.AuthMiddleware(tokens, sessions))

			r.Post("/auth/logout", authHandler.Logout)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items", cartHandler.UpdateQuantity)
				r.Delete("/items", cartHandler.RemoveItem)
				r.Delete("/", cartHandler.ClearCart)
			})

			r.Post("/checkout", checkoutHandler.Checkout)
			r.Get("/orders", ordersHandler.ListOrders)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("grocer gateway starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
