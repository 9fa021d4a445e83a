package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/cache"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/config"
	h "github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/http"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/publisher"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/service"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/worker"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		boot := logger.New("shop-api", "info")
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.ServiceName, cfg.LogLevel)

	store, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	products, closeCache := openCache(cfg, log)
	defer closeCache()

	opts := service.Options{RestockPolicy: service.RestockPolicy(cfg.RestockPolicy), Logger: log}
	catalog := service.NewCatalogService(store, products, opts)
	carts := service.NewCartService(store, products, opts)
	orders := service.NewOrderService(store, products, opts)
	stock := service.NewStockService(store, products, opts)
	promotions := service.NewPromotionService(store, products, opts)
	users := service.NewUserService(store, opts)

	router := h.NewRouter(h.Handlers{
		Catalog:    h.NewCatalogHandler(catalog, cfg.RequestTimeout),
		Carts:      h.NewCartHandler(carts, cfg.RequestTimeout),
		Orders:     h.NewOrdersHandler(orders, cfg.RequestTimeout),
		Stock:      h.NewStockHandler(stock, cfg.RequestTimeout),
		Promotions: h.NewPromotionHandler(promotions, cfg.RequestTimeout),
		Community:  h.NewCommunityHandler(service.NewReviewService(store), service.NewFavoriteService(store), cfg.RequestTimeout),
		Users:      h.NewUserHandler(users, cfg.RequestTimeout),
	}, log, cfg.RequestTimeout)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	if len(cfg.KafkaBrokers) > 0 {
		writer := publisher.NewKafkaWriter(cfg.EventsTopic, cfg.KafkaBrokers...)
		defer writer.Close()
		poller := publisher.NewOutboxPoller(store, writer, log.With().Str("component", "outbox").Logger())
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(bgCtx)
		}()
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.EventsTopic).Msg("outbox poller started")
	} else {
		log.Warn().Msg("KAFKA_BROKERS not set, outbox events stay unpublished")
	}

	expirer := worker.NewPromotionExpirer(promotions, cfg.PromotionSweepInterval, log.With().Str("component", "promotion-expirer").Logger())
	wg.Add(1)
	go func() {
		defer wg.Done()
		expirer.Run(bgCtx)
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("restock_policy", cfg.RestockPolicy).Msg("shop api starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	stopBackground()
	wg.Wait()

	log.Info().Msg("server exited")
}

func openStore(cfg *config.Config, log zerolog.Logger) (repository.Store, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil
	}

	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := repository.NewRepository(creds)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(creds); err != nil {
		repo.Close()
		return nil, err
	}
	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("database migrations completed")
	return repo, nil
}

func openCache(cfg *config.Config, log zerolog.Logger) (cache.ProductCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.Nop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, product cache disabled")
		client.Close()
		return cache.Nop{}, func() {}
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis ping succeeded")
	return cache.NewRedisCache(client), func() { client.Close() }
}
